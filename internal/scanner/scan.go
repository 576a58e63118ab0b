package scanner

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/metrics"
)

const networkScope = "network"

// window is the classified history of one account or of the network, newest first
type window struct {
	events []domain.LedgerEvent
	// payees maps a transaction hash to the destinations of its payments
	payees map[string][]string
}

// scan holds the memoized state of one scanner call. It is never shared between calls.
type scan struct {
	s *Scanner

	windows  map[string]*window
	accounts map[string]*ledger.Account
	// index maps slots, hashed and legacy, to the token identifiers minted in any loaded window
	index map[string]domain.TokenID
	// networkIndexed is set once any network wide window has been indexed
	networkIndexed bool
}

func (s *Scanner) newScan() *scan {
	return &scan{
		s:        s,
		windows:  make(map[string]*window),
		accounts: make(map[string]*ledger.Account),
		index:    make(map[string]domain.TokenID),
	}
}

// window loads the history of account, or of the network when account is empty.
// Events are classified from the perspective of the given account.
func (sc *scan) window(ctx context.Context, account, perspective string) (*window, error) {
	scope := account
	if scope == "" {
		scope = networkScope
	}
	memoKey := scope + "|" + perspective
	if w, ok := sc.windows[memoKey]; ok {
		return w, nil
	}

	txs, err := sc.s.ledger.ListTransactions(ctx, ledger.TransactionQuery{
		Account: account,
		Limit:   sc.s.cfg.HistoryLimit,
		Order:   ledger.OrderDesc,
	})
	if err != nil {
		return nil, &domain.ScanError{Scope: scope, Cause: err}
	}

	w := &window{payees: make(map[string][]string)}
	for _, tx := range txs {
		ops, err := sc.operations(ctx, tx)
		if err != nil {
			metrics.ScanSkippedTransactions.Inc()
			logger.WarnCtx(ctx, "skipping undecodable transaction", logger.TxHash(tx.Hash), zap.Error(err))
			continue
		}

		// newest operation of the transaction first
		for i := len(ops) - 1; i >= 0; i-- {
			op := ops[i]
			if op.Kind == ledger.OperationPayment {
				w.payees[tx.Hash] = append(w.payees[tx.Hash], op.Destination)
				continue
			}
			event, ok := sc.s.classifier.Classify(op, perspective)
			if !ok {
				continue
			}
			w.events = append(w.events, event)
			if event.Type == domain.EventTypeMint {
				sc.indexMint(event)
			}
		}
	}

	sc.windows[memoKey] = w
	if account == "" {
		sc.networkIndexed = true
	}
	return w, nil
}

// operations decodes the envelope of tx. When the envelope is missing or undecodable the
// ledger's operation records of the transaction are used instead.
func (sc *scan) operations(ctx context.Context, tx ledger.Transaction) ([]ledger.Operation, error) {
	ops, err := ledger.DecodeOperations(tx)
	if err == nil {
		return ops, nil
	}
	logger.DebugCtx(ctx, "envelope not decodable, loading operation records", logger.TxHash(tx.Hash), zap.Error(err))

	ops, listErr := sc.s.ledger.ListOperations(ctx, tx.Hash)
	if listErr != nil {
		return nil, errors.Join(err, listErr)
	}
	for i := range ops {
		if ops[i].TransactionHash == "" {
			ops[i].TransactionHash = tx.Hash
		}
		if ops[i].SourceAccount == "" {
			ops[i].SourceAccount = tx.Account
		}
		if ops[i].CreatedAt.IsZero() {
			ops[i].CreatedAt = tx.CreatedAt
		}
		if ops[i].ID == "" {
			ops[i].ID = ledger.OperationID(tx.Hash, i)
		}
	}
	return ops, nil
}

func (sc *scan) indexMint(event domain.LedgerEvent) {
	if _, ok := sc.index[event.Slot]; !ok {
		sc.index[event.Slot] = event.TokenID
	}
	if legacy, ok := sc.s.codec.LegacyKey(event.TokenID, domain.FieldPrice); ok {
		if slot, _, ok := keycodec.ParseKey(legacy); ok {
			if _, exists := sc.index[slot]; !exists {
				sc.index[slot] = event.TokenID
			}
		}
	}
}

// tokenFor resolves a slot to its token identifier. The windows loaded so far are
// consulted first, then the history of each related account, then the network window.
func (sc *scan) tokenFor(ctx context.Context, slot string, related ...string) (domain.TokenID, bool) {
	if token, ok := sc.index[slot]; ok {
		return token, true
	}

	for _, account := range related {
		if account == "" {
			continue
		}
		if _, err := sc.window(ctx, account, account); err != nil {
			logger.WarnCtx(ctx, "failed to load history for slot resolution", logger.Account(account), zap.Error(err))
			continue
		}
		if token, ok := sc.index[slot]; ok {
			return token, true
		}
	}

	if !sc.networkIndexed {
		if _, err := sc.window(ctx, "", ""); err != nil {
			logger.WarnCtx(ctx, "failed to load network history for slot resolution", zap.Error(err))
			return "", false
		}
	}
	token, ok := sc.index[slot]
	return token, ok
}

// account returns the live account state, nil when the account does not exist
func (sc *scan) account(ctx context.Context, id string) (*ledger.Account, error) {
	if acct, ok := sc.accounts[id]; ok {
		return acct, nil
	}
	acct, err := sc.s.storage.LoadAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	sc.accounts[id] = acct
	return acct, nil
}

// holds reports whether account currently holds token: its owner entry names the account
// and no other account claimed the token after the account last minted or claimed it
func (sc *scan) holds(ctx context.Context, account string, token domain.TokenID) (bool, error) {
	acct, err := sc.account(ctx, account)
	if err != nil {
		return false, &domain.ScanError{Scope: account, Cause: err}
	}
	if owner, ok := sc.s.storage.OwnerFromEntries(acct, token); !ok || owner != account {
		return false, nil
	}

	w, err := sc.window(ctx, account, account)
	if err != nil {
		return false, err
	}
	if buyer, sold := soldTo(w.events, account, sc.s.slots(token)...); sold {
		logger.DebugCtx(ctx, "stale owner entry", logger.Account(account), zap.String("token", string(token)), zap.String("claimed_by", buyer))
		return false, nil
	}
	return true, nil
}

// slots returns the hashed slot of token and its legacy slot when one exists
func (s *Scanner) slots(token domain.TokenID) []string {
	var slots []string
	if slot, err := s.codec.Slot(token); err == nil {
		slots = append(slots, slot)
	}
	if legacy, ok := s.codec.LegacyKey(token, domain.FieldOwner); ok {
		if slot, _, ok := keycodec.ParseKey(legacy); ok && (len(slots) == 0 || slot != slots[0]) {
			slots = append(slots, slot)
		}
	}
	return slots
}

// related returns the accounts that can explain an event: its source and the payees of its transaction
func (w *window) related(event domain.LedgerEvent) []string {
	return append([]string{event.Account}, w.payees[event.TransactionHash]...)
}
