package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/stellar/go/txnbuild"
	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/metrics"
	"github.com/feral-file/ff-stellar-market/internal/signer"
	"github.com/feral-file/ff-stellar-market/internal/storage"
)

// maxOperations is the ledger limit of operations per transaction
const maxOperations = 100

// Config holds transaction building parameters
type Config struct {
	NetworkPassphrase string
	BaseFee           int64
	Timeout           time.Duration
}

// UnsignedTx is a built transaction waiting for a signature
type UnsignedTx struct {
	XDR     string `json:"xdr"`
	Hash    string `json:"hash"`
	Network string `json:"network"`
	Account string `json:"account"`
}

// Pipeline builds, signs and submits transactions. It never retries a submission.
type Pipeline struct {
	cfg    Config
	ledger ledger.Client
	clock  adapter.Clock
}

// New creates a pipeline
func New(cfg Config, ledgerClient ledger.Client, clock adapter.Clock) *Pipeline {
	if cfg.BaseFee < txnbuild.MinBaseFee {
		cfg.BaseFee = txnbuild.MinBaseFee
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DEFAULT_TX_TIMEOUT_SECS * time.Second
	}
	return &Pipeline{
		cfg:    cfg,
		ledger: ledgerClient,
		clock:  clock,
	}
}

// NetworkPassphrase returns the network the pipeline builds for
func (p *Pipeline) NetworkPassphrase() string {
	return p.cfg.NetworkPassphrase
}

// Build creates an unsigned transaction for account.
// Payments are ordered before data entry operations, keeping their relative order.
func (p *Pipeline) Build(ctx context.Context, account string, ops []ledger.Operation) (*UnsignedTx, error) {
	if err := storage.ValidateAccount("account", account); err != nil {
		return nil, err
	}
	if err := validateOperations(ops); err != nil {
		return nil, err
	}

	ordered := orderOperations(ops)
	txOps := make([]txnbuild.Operation, 0, len(ordered))
	for _, op := range ordered {
		txOp, err := ledger.ToTxnbuild(op)
		if err != nil {
			return nil, domain.NewValidationError("operations", "%v", err)
		}
		txOps = append(txOps, txOp)
	}

	acct, err := p.ledger.LoadAccount(ctx, account)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, domain.NewValidationError("account", "account %s does not exist", account)
		}
		return nil, fmt.Errorf("failed to load source account: %w", err)
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: account, Sequence: acct.Sequence},
		IncrementSequenceNum: true,
		Operations:           txOps,
		BaseFee:              p.cfg.BaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(0, p.clock.Now().Add(p.cfg.Timeout).Unix()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	envelope, err := tx.Base64()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	hash, err := tx.HashHex(p.cfg.NetworkPassphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to hash transaction: %w", err)
	}

	return &UnsignedTx{
		XDR:     envelope,
		Hash:    hash,
		Network: p.cfg.NetworkPassphrase,
		Account: account,
	}, nil
}

// Sign delegates signing to the external signer
func (p *Pipeline) Sign(ctx context.Context, s signer.Signer, tx *UnsignedTx) (string, error) {
	if s == nil {
		return "", &signer.Error{Kind: signer.KindUnavailable, Cause: errors.New("no signer connected")}
	}

	signed, err := s.Sign(ctx, tx.XDR, tx.Network)
	if err != nil {
		return "", signer.Wrap(err)
	}
	return signed, nil
}

// Submit submits a signed envelope and maps the outcome to a TxResult.
// A non-nil error is always a *domain.SubmissionError.
func (p *Pipeline) Submit(ctx context.Context, signedXDR string) (*domain.TxResult, error) {
	if signedXDR == "" {
		subErr := &domain.SubmissionError{Reason: domain.SubmissionReasonMalformed, Message: "empty envelope"}
		return failed(subErr), subErr
	}

	result, err := p.ledger.SubmitTransaction(ctx, signedXDR)
	if err != nil {
		subErr := classify(err)
		metrics.Submissions.WithLabelValues("failed", subErr.Reason).Inc()
		logger.WarnCtx(ctx, "transaction submission failed",
			zap.String("reason", subErr.Reason),
			zap.Strings("codes", subErr.Codes))
		return failed(subErr), subErr
	}

	metrics.Submissions.WithLabelValues("success", "").Inc()
	logger.InfoCtx(ctx, "transaction submitted", logger.TxHash(result.Hash), zap.Int32("ledger", result.Ledger))
	return &domain.TxResult{Success: true, Hash: result.Hash}, nil
}

// Execute builds, signs and submits ops for the identity
func (p *Pipeline) Execute(ctx context.Context, identity *signer.Identity, ops []ledger.Operation) (*domain.TxResult, error) {
	if err := identity.Validate(); err != nil {
		return failed(err), err
	}

	tx, err := p.Build(ctx, identity.Account, ops)
	if err != nil {
		return failed(err), err
	}

	signed, err := p.Sign(ctx, identity.Signer, tx)
	if err != nil {
		return failed(err), err
	}

	return p.Submit(ctx, signed)
}

func failed(err error) *domain.TxResult {
	return &domain.TxResult{Success: false, Error: err.Error()}
}

// classify maps a ledger submission error to a SubmissionError
func classify(err error) *domain.SubmissionError {
	var subErr *ledger.SubmitError
	if errors.As(err, &subErr) {
		var codes []string
		if subErr.TransactionCode != "" {
			codes = append(codes, subErr.TransactionCode)
		}
		codes = append(codes, subErr.OperationCodes...)

		reason := subErr.TransactionCode
		for _, code := range subErr.OperationCodes {
			if code != "op_success" {
				reason = code
				break
			}
		}

		switch {
		case subErr.Status == http.StatusGatewayTimeout:
			reason = domain.SubmissionReasonTimeout
		case reason == "":
			reason = domain.SubmissionReasonRejected
		}

		return &domain.SubmissionError{Reason: reason, Codes: codes, Message: subErr.Detail}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.SubmissionError{Reason: domain.SubmissionReasonTimeout, Message: "outcome unknown"}
	}

	return &domain.SubmissionError{Reason: domain.SubmissionReasonTransport, Message: err.Error()}
}

func validateOperations(ops []ledger.Operation) error {
	if len(ops) == 0 {
		return domain.NewValidationError("operations", "nothing to submit")
	}
	if len(ops) > maxOperations {
		return domain.NewValidationError("operations", "%d operations exceed the limit of %d", len(ops), maxOperations)
	}

	for _, op := range ops {
		switch op.Kind {
		case ledger.OperationManageData:
			if op.Name == "" || len(op.Name) > domain.MAX_DATA_ENTRY_BYTES {
				return domain.NewValidationError("key", "invalid data entry name %q", op.Name)
			}
			if len(op.Value) > domain.MAX_DATA_ENTRY_BYTES {
				return domain.NewValidationError("value", "%d bytes exceeds the %d byte limit", len(op.Value), domain.MAX_DATA_ENTRY_BYTES)
			}
		case ledger.OperationPayment:
			if err := storage.ValidateAccount("destination", op.Destination); err != nil {
				return err
			}
			if _, err := storage.ParsePrice(op.Amount); err != nil {
				return err
			}
		default:
			return domain.NewValidationError("operations", "unsupported operation kind %q", op.Kind)
		}

		if op.SourceAccount != "" {
			if err := storage.ValidateAccount("source", op.SourceAccount); err != nil {
				return err
			}
		}
	}

	return nil
}

func orderOperations(ops []ledger.Operation) []ledger.Operation {
	ordered := make([]ledger.Operation, len(ops))
	copy(ordered, ops)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind == ledger.OperationPayment && ordered[j].Kind != ledger.OperationPayment
	})
	return ordered
}
