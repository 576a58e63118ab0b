package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/pinning"
	"github.com/feral-file/ff-stellar-market/internal/pipeline"
	"github.com/feral-file/ff-stellar-market/internal/scanner"
	"github.com/feral-file/ff-stellar-market/internal/signer"
	"github.com/feral-file/ff-stellar-market/internal/storage"
)

// ActionType is a mutation that can be prepared for an external signer
type ActionType string

const (
	ActionList           ActionType = "list"
	ActionDelist         ActionType = "delist"
	ActionBuy            ActionType = "buy"
	ActionTransfer       ActionType = "transfer"
	ActionAcceptTransfer ActionType = "accept_transfer"
	ActionMint           ActionType = "mint"
)

// Action describes one mutation
type Action struct {
	Type        ActionType     `json:"type"`
	TokenID     domain.TokenID `json:"tokenId,omitempty"`
	Price       string         `json:"price,omitempty"`
	Destination string         `json:"destination,omitempty"`
	// Sender is the account that marked the token for the acting account, for accept_transfer
	Sender string `json:"sender,omitempty"`
	// CID is the pinned metadata document, for mint
	CID string `json:"cid,omitempty"`
}

// MintRequest holds the content of a new token
type MintRequest struct {
	Name        string
	Description string
	ImageName   string
	Image       []byte
	Attributes  []domain.Attribute
}

// Market composes storage, the transaction pipeline and the scanner into marketplace operations
type Market struct {
	storage  *storage.Storage
	pipeline *pipeline.Pipeline
	scanner  *scanner.Scanner
	pinning  pinning.Client
	jcs      adapter.JCS
	json     adapter.JSON
}

// New creates a marketplace facade
func New(store *storage.Storage, pipe *pipeline.Pipeline, scan *scanner.Scanner, pin pinning.Client, jcs adapter.JCS, json adapter.JSON) *Market {
	return &Market{
		storage:  store,
		pipeline: pipe,
		scanner:  scan,
		pinning:  pin,
		jcs:      jcs,
		json:     json,
	}
}

// List lists tokenID at price on the identity's account
func (m *Market) List(ctx context.Context, identity *signer.Identity, tokenID domain.TokenID, price string) (*domain.TxResult, error) {
	return m.execute(ctx, identity, Action{Type: ActionList, TokenID: tokenID, Price: price})
}

// Delist removes the listing of tokenID. Delisting a token that is not listed succeeds without a transaction.
func (m *Market) Delist(ctx context.Context, identity *signer.Identity, tokenID domain.TokenID) (*domain.TxResult, error) {
	return m.execute(ctx, identity, Action{Type: ActionDelist, TokenID: tokenID})
}

// Buy pays the seller of tokenID and claims ownership in one transaction
func (m *Market) Buy(ctx context.Context, identity *signer.Identity, tokenID domain.TokenID, price string) (*domain.TxResult, error) {
	return m.execute(ctx, identity, Action{Type: ActionBuy, TokenID: tokenID, Price: price})
}

// Transfer starts a two phase transfer: the sender clears its listing and points the token at destination.
// Until the destination accepts, the token shows up in the destination's received view only.
func (m *Market) Transfer(ctx context.Context, identity *signer.Identity, tokenID domain.TokenID, destination string) (*domain.TxResult, error) {
	return m.execute(ctx, identity, Action{Type: ActionTransfer, TokenID: tokenID, Destination: destination})
}

// AcceptTransfer completes a transfer from sender by claiming ownership on the identity's account
func (m *Market) AcceptTransfer(ctx context.Context, identity *signer.Identity, tokenID domain.TokenID, sender string) (*domain.TxResult, error) {
	return m.execute(ctx, identity, Action{Type: ActionAcceptTransfer, TokenID: tokenID, Sender: sender})
}

// Mint pins the image and the metadata document, then records the mint on the identity's account.
// The metadata cid is the new token's identifier.
func (m *Market) Mint(ctx context.Context, identity *signer.Identity, req MintRequest) (*domain.TxResult, domain.TokenID, error) {
	if err := identity.Validate(); err != nil {
		return &domain.TxResult{Error: err.Error()}, "", err
	}

	cid, err := m.Publish(ctx, req)
	if err != nil {
		return &domain.TxResult{Error: err.Error()}, "", err
	}

	result, err := m.execute(ctx, identity, Action{Type: ActionMint, CID: cid})
	return result, domain.TokenID(cid), err
}

// Publish pins the image and the canonical metadata document of req and returns the metadata cid
func (m *Market) Publish(ctx context.Context, req MintRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", domain.NewValidationError("name", "must not be empty")
	}
	imageName := req.ImageName
	if imageName == "" {
		imageName = req.Name
	}

	imageCID, err := m.pinning.PinFile(ctx, imageName, req.Image)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	attributes := req.Attributes
	if attributes == nil {
		attributes = []domain.Attribute{}
	}
	doc, err := m.json.Marshal(domain.MetadataRecord{
		Name:        req.Name,
		Description: req.Description,
		Image:       "ipfs://" + imageCID,
		Attributes:  attributes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	canonical, err := m.jcs.Transform(doc)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize metadata: %w", err)
	}

	cid, err := m.pinning.PinJSON(ctx, req.Name+".json", canonical)
	if err != nil {
		return "", fmt.Errorf("failed to upload metadata: %w", err)
	}

	logger.InfoCtx(ctx, "published token metadata", zap.String("cid", cid), zap.String("image", imageCID))
	return cid, nil
}

// Prepare builds the unsigned transaction of action for a signer outside this process.
// A nil transaction with a nil error means there is nothing to submit.
func (m *Market) Prepare(ctx context.Context, account string, action Action) (*pipeline.UnsignedTx, error) {
	ops, err := m.operations(ctx, account, action)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}
	return m.pipeline.Build(ctx, account, ops)
}

// Submit submits an envelope signed outside this process
func (m *Market) Submit(ctx context.Context, signedXDR string) (*domain.TxResult, error) {
	return m.pipeline.Submit(ctx, signedXDR)
}

// GetByOwner returns the tokens account currently holds
func (m *Market) GetByOwner(ctx context.Context, identity *signer.Identity, account string) ([]domain.NFTRecord, error) {
	if err := validateRead(identity, account); err != nil {
		return nil, err
	}
	return m.scanner.ScanOwned(ctx, account)
}

// GetByCreator returns the tokens account minted
func (m *Market) GetByCreator(ctx context.Context, identity *signer.Identity, account string) ([]domain.NFTRecord, error) {
	if err := validateRead(identity, account); err != nil {
		return nil, err
	}
	return m.scanner.ScanCreated(ctx, account)
}

// GetReceived returns the tokens other accounts transferred to account
func (m *Market) GetReceived(ctx context.Context, identity *signer.Identity, account string) ([]domain.NFTRecord, error) {
	if err := validateRead(identity, account); err != nil {
		return nil, err
	}
	return m.scanner.ScanReceived(ctx, account)
}

// GetHistory returns the marketplace events of account, newest first
func (m *Market) GetHistory(ctx context.Context, identity *signer.Identity, account string) ([]domain.LedgerEvent, error) {
	if err := validateRead(identity, account); err != nil {
		return nil, err
	}
	return m.scanner.ScanHistory(ctx, account)
}

// GetMarketplace returns at most limit live listings
func (m *Market) GetMarketplace(ctx context.Context, identity *signer.Identity, limit int) ([]domain.ListingRecord, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return m.scanner.ScanMarketplace(ctx, limit)
}

// GetListing returns the live listing of tokenID
func (m *Market) GetListing(ctx context.Context, identity *signer.Identity, tokenID domain.TokenID) (*domain.ListingRecord, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if !tokenID.Valid() {
		return nil, domain.NewValidationError("tokenId", "must not be empty")
	}
	return m.scanner.FindListing(ctx, tokenID)
}

func validateRead(identity *signer.Identity, account string) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	return storage.ValidateAccount("account", account)
}

func (m *Market) execute(ctx context.Context, identity *signer.Identity, action Action) (*domain.TxResult, error) {
	if err := identity.Validate(); err != nil {
		return &domain.TxResult{Error: err.Error()}, err
	}

	ops, err := m.operations(ctx, identity.Account, action)
	if err != nil {
		return &domain.TxResult{Error: err.Error()}, err
	}
	if len(ops) == 0 {
		logger.DebugCtx(ctx, "nothing to submit", zap.String("action", string(action.Type)), logger.Account(identity.Account))
		return &domain.TxResult{Success: true}, nil
	}

	return m.pipeline.Execute(ctx, identity, ops)
}

// operations returns the ledger mutations of action performed by account
func (m *Market) operations(ctx context.Context, account string, action Action) ([]ledger.Operation, error) {
	if err := storage.ValidateAccount("account", account); err != nil {
		return nil, err
	}
	if action.Type != ActionMint && !action.TokenID.Valid() {
		return nil, domain.NewValidationError("tokenId", "must not be empty")
	}

	switch action.Type {
	case ActionList:
		if err := m.requireHolder(ctx, account, action.TokenID); err != nil {
			return nil, err
		}
		_, ops, err := m.storage.WriteListing(account, action.TokenID, action.Price)
		return ops, err

	case ActionDelist:
		return m.storage.ClearListing(ctx, account, action.TokenID)

	case ActionBuy:
		return m.buyOperations(ctx, account, action.TokenID, action.Price)

	case ActionTransfer:
		if err := storage.ValidateAccount("destination", action.Destination); err != nil {
			return nil, err
		}
		if action.Destination == account {
			return nil, domain.NewValidationError("destination", "cannot transfer to the sending account")
		}
		if err := m.requireHolder(ctx, account, action.TokenID); err != nil {
			return nil, err
		}
		delist, err := m.storage.ClearListing(ctx, account, action.TokenID)
		if err != nil {
			return nil, err
		}
		marker, err := m.storage.WriteOwnershipMarker(account, action.TokenID, action.Destination)
		if err != nil {
			return nil, err
		}
		return append(delist, marker...), nil

	case ActionAcceptTransfer:
		if err := storage.ValidateAccount("sender", action.Sender); err != nil {
			return nil, err
		}
		owner, found, err := m.storage.ReadOwner(ctx, action.Sender, action.TokenID)
		if err != nil {
			return nil, err
		}
		if !found || owner != account {
			return nil, fmt.Errorf("%w: no pending transfer from %s", domain.ErrTokenNotFound, action.Sender)
		}
		return m.storage.WriteOwnershipClaim(account, action.TokenID)

	case ActionMint:
		return m.storage.WriteMintMarker(account, action.CID)

	default:
		return nil, domain.NewValidationError("type", "unknown action %q", action.Type)
	}
}

func (m *Market) buyOperations(ctx context.Context, buyer string, tokenID domain.TokenID, price string) ([]ledger.Operation, error) {
	if _, err := storage.ParsePrice(price); err != nil {
		return nil, err
	}

	listing, err := m.scanner.FindListing(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if listing.Seller == buyer {
		return nil, domain.NewValidationError("account", "cannot buy a token listed by the same account")
	}
	if !storage.SamePrice(listing.Price, price) {
		return nil, domain.NewValidationError("price", "offered %s but the listing asks %s", price, listing.Price)
	}

	claim, err := m.storage.WriteOwnershipClaim(buyer, tokenID)
	if err != nil {
		return nil, err
	}
	return append([]ledger.Operation{ledger.Payment(listing.Seller, listing.Price)}, claim...), nil
}

// requireHolder rejects a mutation of a token the account does not currently hold
func (m *Market) requireHolder(ctx context.Context, account string, tokenID domain.TokenID) error {
	held, err := m.scanner.IsHolder(ctx, account, tokenID)
	if err != nil {
		return err
	}
	if !held {
		return fmt.Errorf("%w: %s does not hold %s", domain.ErrTokenNotFound, account, tokenID)
	}
	return nil
}

// IsPrecondition reports whether err is a failed precondition rather than bad input or an upstream failure
func IsPrecondition(err error) bool {
	return errors.Is(err, domain.ErrIdentityRequired) ||
		errors.Is(err, domain.ErrListingNotFound) ||
		errors.Is(err, domain.ErrTokenNotFound)
}
