// Package ledgertest provides an in-memory ledger that applies signed envelopes
package ledgertest

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/feral-file/ff-stellar-market/internal/ledger"
)

type account struct {
	seq     int64
	balance int64
	data    map[string][]byte
}

// FakeLedger implements ledger.Client over in-memory accounts.
// Envelopes are decoded, signature checked and applied atomically.
type FakeLedger struct {
	mu         sync.Mutex
	passphrase string
	accounts   map[string]*account
	history    []ledger.Transaction
	// participants maps a transaction hash to the accounts it touched
	participants map[string]map[string]bool
	ledgerSeq    int32
	now          time.Time

	// FailListTransactions makes ListTransactions fail with this error
	FailListTransactions error
	// FailSubmit makes the next submission fail with this error
	FailSubmit error

	// records holds operation records served in place of decoding the envelope
	records map[string][]ledger.Operation
}

// New creates an empty ledger for the network passphrase
func New(passphrase string) *FakeLedger {
	return &FakeLedger{
		passphrase:   passphrase,
		accounts:     make(map[string]*account),
		participants: make(map[string]map[string]bool),
		records:      make(map[string][]ledger.Operation),
		ledgerSeq:    1,
		now:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// CreateAccount funds a new account with a native balance such as "100"
func (f *FakeLedger) CreateAccount(id string, balance string) error {
	stroops, err := amount.ParseInt64(balance)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id] = &account{
		seq:     int64(f.ledgerSeq) << 32,
		balance: stroops,
		data:    make(map[string][]byte),
	}
	return nil
}

// Balance returns the native balance of an account
func (f *FakeLedger) Balance(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acct, ok := f.accounts[id]; ok {
		return amount.StringFromInt64(acct.balance)
	}
	return ""
}

// Entry returns a raw data entry value
func (f *FakeLedger) Entry(id, name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[id]
	if !ok {
		return "", false
	}
	v, ok := acct.data[name]
	return string(v), ok
}

// SetEntry writes a data entry without a transaction, for seeding legacy state
func (f *FakeLedger) SetEntry(id, name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acct, ok := f.accounts[id]; ok {
		acct.data[name] = []byte(value)
	}
}

// AppendTransaction records a raw transaction in the history window
func (f *FakeLedger) AppendTransaction(tx ledger.Transaction, participants ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, tx)
	set := make(map[string]bool, len(participants))
	for _, p := range participants {
		set[p] = true
	}
	f.participants[tx.Hash] = set
}

func (f *FakeLedger) LoadAccount(ctx context.Context, id string) (*ledger.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.accounts[id]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}

	data := make(map[string]string, len(acct.data))
	for k, v := range acct.data {
		data[k] = base64.StdEncoding.EncodeToString(v)
	}
	return &ledger.Account{ID: id, Sequence: acct.seq, Data: data}, nil
}

func (f *FakeLedger) ListTransactions(ctx context.Context, query ledger.TransactionQuery) ([]ledger.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailListTransactions != nil {
		return nil, f.FailListTransactions
	}

	var txs []ledger.Transaction
	for _, tx := range f.history {
		if query.Account != "" && !f.participants[tx.Hash][query.Account] {
			continue
		}
		txs = append(txs, tx)
	}

	if query.Order != ledger.OrderAsc {
		for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
			txs[i], txs[j] = txs[j], txs[i]
		}
	}
	if query.Limit > 0 && len(txs) > query.Limit {
		txs = txs[:query.Limit]
	}
	return txs, nil
}

// SetOperationRecords makes ListOperations return ops for txHash
func (f *FakeLedger) SetOperationRecords(txHash string, ops []ledger.Operation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[txHash] = ops
}

func (f *FakeLedger) ListOperations(ctx context.Context, txHash string) ([]ledger.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ops, ok := f.records[txHash]; ok {
		return append([]ledger.Operation(nil), ops...), nil
	}

	for _, tx := range f.history {
		if tx.Hash == txHash {
			return ledger.DecodeOperations(tx)
		}
	}
	return nil, fmt.Errorf("transaction %s not found", txHash)
}

func (f *FakeLedger) SubmitTransaction(ctx context.Context, signedXDR string) (*ledger.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailSubmit != nil {
		err := f.FailSubmit
		f.FailSubmit = nil
		return nil, err
	}

	generic, err := txnbuild.TransactionFromXDR(signedXDR)
	if err != nil {
		return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_malformed", Detail: err.Error()}
	}
	tx, ok := generic.Transaction()
	if !ok {
		return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_not_supported"}
	}

	hash, err := tx.Hash(f.passphrase)
	if err != nil {
		return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_malformed", Detail: err.Error()}
	}
	hashHex := fmt.Sprintf("%x", hash)

	source := tx.SourceAccount().AccountID
	src, ok := f.accounts[source]
	if !ok {
		return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_no_source_account"}
	}
	if tx.SourceAccount().Sequence != src.seq+1 {
		return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_bad_seq"}
	}
	if bounds := tx.Timebounds(); bounds.MaxTime != 0 && f.now.Unix() > bounds.MaxTime {
		return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_too_late"}
	}

	// every distinct source must have signed the transaction hash
	signers := map[string]bool{source: true}
	for _, op := range tx.Operations() {
		if s := op.GetSourceAccount(); s != "" {
			signers[s] = true
		}
	}
	for signer := range signers {
		if !signedBy(tx, hash[:], signer) {
			return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_bad_auth"}
		}
	}

	staged := make(map[string]*account)
	stage := func(id string) (*account, bool) {
		if a, ok := staged[id]; ok {
			return a, true
		}
		a, ok := f.accounts[id]
		if !ok {
			return nil, false
		}
		cp := &account{seq: a.seq, balance: a.balance, data: make(map[string][]byte, len(a.data))}
		for k, v := range a.data {
			cp.data[k] = v
		}
		staged[id] = cp
		return cp, true
	}

	participants := map[string]bool{source: true}
	opCodes := make([]string, 0, len(tx.Operations()))
	failed := false
	for _, op := range tx.Operations() {
		opSource := op.GetSourceAccount()
		if opSource == "" {
			opSource = source
		}
		participants[opSource] = true
		code := f.apply(op, opSource, stage, participants)
		opCodes = append(opCodes, code)
		if code != "op_success" {
			failed = true
		}
	}
	if failed {
		return nil, &ledger.SubmitError{Status: 400, TransactionCode: "tx_failed", OperationCodes: opCodes}
	}

	for id, a := range staged {
		f.accounts[id] = a
	}
	f.accounts[source].seq++

	f.ledgerSeq++
	f.now = f.now.Add(5 * time.Second)
	f.history = append(f.history, ledger.Transaction{
		Hash:        hashHex,
		Ledger:      f.ledgerSeq,
		Account:     source,
		CreatedAt:   f.now,
		EnvelopeXDR: signedXDR,
		PagingToken: fmt.Sprintf("%d", len(f.history)+1),
	})
	f.participants[hashHex] = participants

	return &ledger.SubmitResult{Hash: hashHex, Ledger: f.ledgerSeq}, nil
}

func (f *FakeLedger) apply(op txnbuild.Operation, source string, stage func(string) (*account, bool), participants map[string]bool) string {
	switch o := op.(type) {
	case *txnbuild.ManageData:
		acct, ok := stage(source)
		if !ok {
			return "op_no_account"
		}
		if o.Value == nil {
			if _, exists := acct.data[o.Name]; !exists {
				return "op_not_found"
			}
			delete(acct.data, o.Name)
			return "op_success"
		}
		acct.data[o.Name] = append([]byte(nil), o.Value...)
		return "op_success"
	case *txnbuild.Payment:
		if o.Asset == nil || !o.Asset.IsNative() {
			return "op_not_supported"
		}
		stroops, err := amount.ParseInt64(o.Amount)
		if err != nil || stroops <= 0 {
			return "op_malformed"
		}
		from, ok := stage(source)
		if !ok {
			return "op_no_account"
		}
		to, ok := stage(o.Destination)
		if !ok {
			return "op_no_destination"
		}
		if from.balance < stroops {
			return "op_underfunded"
		}
		from.balance -= stroops
		to.balance += stroops
		participants[o.Destination] = true
		return "op_success"
	default:
		return "op_not_supported"
	}
}

func signedBy(tx *txnbuild.Transaction, hash []byte, address string) bool {
	kp, err := keypair.ParseAddress(address)
	if err != nil {
		return false
	}
	for _, sig := range tx.Signatures() {
		if kp.Verify(hash, sig.Signature) == nil {
			return true
		}
	}
	return false
}
