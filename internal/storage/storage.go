package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stellar/go/strkey"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
)

// Storage encodes marketplace records as data entry mutations on one account.
// Mutations are returned as data; only the read path talks to the ledger.
type Storage struct {
	codec  *keycodec.Codec
	ledger ledger.Client
	base64 adapter.Base64
}

// New creates a storage over the ledger client
func New(codec *keycodec.Codec, ledgerClient ledger.Client, base64 adapter.Base64) *Storage {
	return &Storage{
		codec:  codec,
		ledger: ledgerClient,
		base64: base64,
	}
}

// Codec returns the key codec used by the storage
func (s *Storage) Codec() *keycodec.Codec {
	return s.codec
}

// ValidateAccount checks that id is a public account id
func ValidateAccount(field, id string) error {
	if !strkey.IsValidEd25519PublicKey(id) {
		return domain.NewValidationError(field, "invalid account id %q", id)
	}
	return nil
}

// WriteListing returns the price key and the mutation listing tokenID at price
func (s *Storage) WriteListing(account string, tokenID domain.TokenID, price string) (string, []ledger.Operation, error) {
	if err := ValidateAccount("account", account); err != nil {
		return "", nil, err
	}

	stroops, err := ParsePrice(price)
	if err != nil {
		return "", nil, err
	}

	key, err := s.codec.Key(tokenID, domain.FieldPrice)
	if err != nil {
		return "", nil, err
	}

	return key, []ledger.Operation{ledger.SetData(key, strconv.FormatInt(stroops, 10))}, nil
}

// ClearListing returns the deletions needed to delist tokenID.
// No operations are returned when nothing is listed, deleting a missing entry fails on the ledger.
func (s *Storage) ClearListing(ctx context.Context, account string, tokenID domain.TokenID) ([]ledger.Operation, error) {
	if err := ValidateAccount("account", account); err != nil {
		return nil, err
	}

	key, err := s.codec.Key(tokenID, domain.FieldPrice)
	if err != nil {
		return nil, err
	}

	acct, err := s.loadAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}

	var ops []ledger.Operation
	if _, ok := acct.Data[key]; ok {
		ops = append(ops, ledger.DeleteData(key))
	}
	if legacy, ok := s.codec.LegacyKey(tokenID, domain.FieldPrice); ok && legacy != key {
		if _, exists := acct.Data[legacy]; exists {
			ops = append(ops, ledger.DeleteData(legacy))
		}
	}

	return ops, nil
}

// WriteOwnershipMarker returns the mutations pointing tokenID at destination
func (s *Storage) WriteOwnershipMarker(account string, tokenID domain.TokenID, destination string) ([]ledger.Operation, error) {
	if err := ValidateAccount("account", account); err != nil {
		return nil, err
	}
	if err := ValidateAccount("destination", destination); err != nil {
		return nil, err
	}

	transferKey, err := s.codec.Key(tokenID, domain.FieldTransfer)
	if err != nil {
		return nil, err
	}
	ownerKey, err := s.codec.Key(tokenID, domain.FieldOwner)
	if err != nil {
		return nil, err
	}

	return []ledger.Operation{
		ledger.SetData(transferKey, destination),
		ledger.SetData(ownerKey, destination),
	}, nil
}

// WriteOwnershipClaim returns the mutation recording account as the holder of tokenID
func (s *Storage) WriteOwnershipClaim(account string, tokenID domain.TokenID) ([]ledger.Operation, error) {
	if err := ValidateAccount("account", account); err != nil {
		return nil, err
	}

	ownerKey, err := s.codec.Key(tokenID, domain.FieldOwner)
	if err != nil {
		return nil, err
	}

	return []ledger.Operation{ledger.SetData(ownerKey, account)}, nil
}

// WriteMintMarker returns the mutations recording a mint of the metadata cid.
// The cid doubles as the token identifier.
func (s *Storage) WriteMintMarker(account string, cid string) ([]ledger.Operation, error) {
	if cid == "" {
		return nil, domain.NewValidationError("cid", "must not be empty")
	}
	if len(cid) > domain.MAX_DATA_ENTRY_BYTES {
		return nil, domain.NewValidationError("cid", "%d bytes exceeds the %d byte limit", len(cid), domain.MAX_DATA_ENTRY_BYTES)
	}

	claim, err := s.WriteOwnershipClaim(account, domain.TokenID(cid))
	if err != nil {
		return nil, err
	}

	return append([]ledger.Operation{ledger.SetData(domain.MINT_MARKER_KEY, cid)}, claim...), nil
}

// ReadListing returns the display price of tokenID listed on account
func (s *Storage) ReadListing(ctx context.Context, account string, tokenID domain.TokenID) (string, bool, error) {
	if err := ValidateAccount("account", account); err != nil {
		return "", false, err
	}

	acct, err := s.loadAccount(ctx, account)
	if err != nil {
		return "", false, err
	}
	if acct == nil {
		return "", false, nil
	}

	price, found := s.ListingFromEntries(acct, tokenID)
	return price, found, nil
}

// ReadOwner returns the owner entry of tokenID on account
func (s *Storage) ReadOwner(ctx context.Context, account string, tokenID domain.TokenID) (string, bool, error) {
	acct, err := s.loadAccount(ctx, account)
	if err != nil {
		return "", false, err
	}
	if acct == nil {
		return "", false, nil
	}

	owner, found := s.OwnerFromEntries(acct, tokenID)
	return owner, found, nil
}

// LoadAccount returns the account, or nil when it does not exist on the ledger
func (s *Storage) LoadAccount(ctx context.Context, account string) (*ledger.Account, error) {
	return s.loadAccount(ctx, account)
}

// ListingFromEntries decodes the price of tokenID from loaded data entries.
// The hashed key wins over the legacy key.
func (s *Storage) ListingFromEntries(acct *ledger.Account, tokenID domain.TokenID) (string, bool) {
	key, err := s.codec.Key(tokenID, domain.FieldPrice)
	if err != nil {
		return "", false
	}

	candidates := []string{key}
	if legacy, ok := s.codec.LegacyKey(tokenID, domain.FieldPrice); ok && legacy != key {
		candidates = append(candidates, legacy)
	}

	for _, k := range candidates {
		value, ok := s.entry(acct, k)
		if !ok {
			continue
		}
		price, err := DecodePrice(value)
		if err != nil {
			continue
		}
		return price, true
	}

	return "", false
}

// OwnerFromEntries decodes the owner entry of tokenID from loaded data entries
func (s *Storage) OwnerFromEntries(acct *ledger.Account, tokenID domain.TokenID) (string, bool) {
	key, err := s.codec.Key(tokenID, domain.FieldOwner)
	if err != nil {
		return "", false
	}
	if value, ok := s.entry(acct, key); ok {
		return value, true
	}
	if legacy, ok := s.codec.LegacyKey(tokenID, domain.FieldOwner); ok {
		if value, ok := s.entry(acct, legacy); ok {
			return value, true
		}
	}
	return "", false
}

// entry returns the decoded value of a data entry
func (s *Storage) entry(acct *ledger.Account, key string) (string, bool) {
	if acct == nil {
		return "", false
	}
	raw, ok := acct.Data[key]
	if !ok {
		return "", false
	}
	value, err := s.base64.Decode(raw)
	if err != nil {
		return "", false
	}
	return string(value), true
}

func (s *Storage) loadAccount(ctx context.Context, account string) (*ledger.Account, error) {
	acct, err := s.ledger.LoadAccount(ctx, account)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load account %s: %w", account, err)
	}
	return acct, nil
}
