package keycodec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stellar/go/hash"

	"github.com/feral-file/ff-stellar-market/internal/domain"
)

// Digest computes a cryptographic digest of the input
type Digest func(data []byte) []byte

// SHA256 is the digest used for every slot written by this market
func SHA256(data []byte) []byte {
	sum := hash.Hash(data)
	return sum[:]
}

// Codec derives data entry names from token identifiers
type Codec struct {
	digest Digest
}

// New creates a codec using the SHA-256 digest
func New() *Codec {
	return &Codec{digest: SHA256}
}

// NewWithDigest creates a codec with a custom digest.
// A nil digest makes the codec fall back to the sanitized identifier.
func NewWithDigest(digest Digest) *Codec {
	return &Codec{digest: digest}
}

// Slot returns the fixed-width slot of a token identifier. Any non-empty identifier
// has a slot, whitespace included.
func (c *Codec) Slot(tokenID domain.TokenID) (string, error) {
	if tokenID == "" {
		return "", domain.NewValidationError("tokenId", "must not be empty")
	}

	if c.digest != nil {
		sum := hex.EncodeToString(c.digest([]byte(tokenID)))
		return truncate(sum, domain.SLOT_WIDTH), nil
	}

	sanitized := Sanitize(string(tokenID))
	if sanitized == "" {
		// nothing alphanumeric to keep, use the raw bytes instead
		sanitized = hex.EncodeToString([]byte(tokenID))
	}
	return truncate(sanitized, domain.SLOT_WIDTH), nil
}

// Key returns the storage key nft_<slot>_<field>
func (c *Codec) Key(tokenID domain.TokenID, field domain.Field) (string, error) {
	if !domain.IsValidField(field) {
		return "", domain.NewValidationError("field", "unknown storage field %q", field)
	}

	slot, err := c.Slot(tokenID)
	if err != nil {
		return "", err
	}

	return SlotKey(slot, field)
}

// SlotKey returns the storage key for an already derived slot
func SlotKey(slot string, field domain.Field) (string, error) {
	key := fmt.Sprintf("%s%s_%s", domain.STORAGE_KEY_PREFIX, slot, field)
	if len(key) > domain.MAX_DATA_ENTRY_BYTES {
		return "", domain.NewValidationError("key", "%d bytes exceeds the %d byte limit", len(key), domain.MAX_DATA_ENTRY_BYTES)
	}
	return key, nil
}

// LegacyKey returns the unhashed key format written before slots were digested.
// The second result is false when the key would not fit in a data entry name.
func (c *Codec) LegacyKey(tokenID domain.TokenID, field domain.Field) (string, bool) {
	sanitized := Sanitize(string(tokenID))
	if sanitized == "" || !domain.IsValidField(field) {
		return "", false
	}

	key := fmt.Sprintf("%s%s_%s", domain.STORAGE_KEY_PREFIX, sanitized, field)
	if len(key) > domain.MAX_DATA_ENTRY_BYTES {
		return "", false
	}
	return key, true
}

// ParseKey splits a data entry name of the nft_ family into slot and field.
// The field is returned as written and may not be a known field.
func ParseKey(name string) (string, domain.Field, bool) {
	if !strings.HasPrefix(name, domain.STORAGE_KEY_PREFIX) {
		return "", "", false
	}

	rest := strings.TrimPrefix(name, domain.STORAGE_KEY_PREFIX)
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", false
	}

	return rest[:idx], domain.Field(rest[idx+1:]), true
}

// Sanitize strips every character that is not an ASCII letter or digit
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
