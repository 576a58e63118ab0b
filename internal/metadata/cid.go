package metadata

import (
	"strings"
	"unicode/utf8"

	"github.com/ipfs/go-cid"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
)

var contentPrefixes = []string{"ipfs://ipfs/", "ipfs://", "/ipfs/", "ipfs/"}

// stripContentPrefix removes the ipfs scheme or path prefix
func stripContentPrefix(s string) string {
	for _, p := range contentPrefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimPrefix(s, p)
		}
	}
	return s
}

// IsCID reports whether s, or its first path segment, is a valid content identifier
func IsCID(s string) bool {
	head, _, _ := strings.Cut(s, "/")
	if head == "" {
		return false
	}
	_, err := cid.Decode(head)
	return err == nil
}

// NormalizeCID turns a possibly prefixed or base64 obfuscated reference into a bare CID.
// Anything that is not recognizable as a CID is reduced to its alphanumeric characters.
func NormalizeCID(raw string, b64 adapter.Base64) (string, error) {
	s := stripContentPrefix(strings.TrimSpace(raw))
	if IsCID(s) {
		return s, nil
	}

	if decoded, err := b64.Decode(s); err == nil && utf8.Valid(decoded) {
		candidate := stripContentPrefix(strings.TrimSpace(string(decoded)))
		if IsCID(candidate) {
			return candidate, nil
		}
	}

	normalized := keycodec.Sanitize(s)
	if normalized == "" {
		return "", domain.NewValidationError("cid", "no content identifier in %q", raw)
	}
	return normalized, nil
}
