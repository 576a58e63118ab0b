package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrAccountNotFound is returned when the account does not exist on the ledger
var ErrAccountNotFound = errors.New("account not found")

// Account is the ledger view of one account
type Account struct {
	ID       string
	Sequence int64
	// Data holds data entry values as transported, base64 encoded
	Data map[string]string
}

// Transaction is one successful transaction of the history window
type Transaction struct {
	Hash        string
	Ledger      int32
	Account     string
	CreatedAt   time.Time
	EnvelopeXDR string
	PagingToken string
}

// OperationKind is the kind of ledger operation relevant to the market
type OperationKind string

const (
	OperationManageData OperationKind = "manage_data"
	OperationPayment    OperationKind = "payment"
	OperationOther      OperationKind = "other"
)

// Operation is either a decoded history operation or a mutation to submit.
// For manage data a nil Value deletes the entry.
type Operation struct {
	ID              string
	Kind            OperationKind
	SourceAccount   string
	TransactionHash string
	CreatedAt       time.Time

	Name  string
	Value []byte

	Destination string
	Amount      string
}

// SetData returns a mutation writing value under name
func SetData(name, value string) Operation {
	return Operation{Kind: OperationManageData, Name: name, Value: []byte(value)}
}

// DeleteData returns a mutation removing the entry under name
func DeleteData(name string) Operation {
	return Operation{Kind: OperationManageData, Name: name}
}

// Payment returns a native asset payment mutation
func Payment(destination, amount string) Operation {
	return Operation{Kind: OperationPayment, Destination: destination, Amount: amount}
}

// Deleted reports whether a manage data operation removes its entry
func (o Operation) Deleted() bool {
	return o.Kind == OperationManageData && o.Value == nil
}

// Order of a history query
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// TransactionQuery selects a window of transactions.
// An empty Account selects the network wide window.
type TransactionQuery struct {
	Account string
	Limit   int
	Order   Order
}

// SubmitResult is returned for an accepted transaction
type SubmitResult struct {
	Hash   string
	Ledger int32
}

// SubmitError is returned when the ledger rejects or cannot confirm a transaction
type SubmitError struct {
	Status          int
	TransactionCode string
	OperationCodes  []string
	Detail          string
}

func (e *SubmitError) Error() string {
	msg := fmt.Sprintf("transaction rejected with status %d", e.Status)
	if e.TransactionCode != "" {
		msg += ": " + e.TransactionCode
	}
	if len(e.OperationCodes) > 0 {
		msg += " [" + strings.Join(e.OperationCodes, ", ") + "]"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Client defines the ledger read and write API
//
//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Client=MockLedgerClient
type Client interface {
	// LoadAccount returns the account with its data entries and sequence number
	LoadAccount(ctx context.Context, id string) (*Account, error)

	// ListTransactions returns successful transactions of an account or of the network
	ListTransactions(ctx context.Context, query TransactionQuery) ([]Transaction, error)

	// ListOperations returns the operations of one transaction
	ListOperations(ctx context.Context, txHash string) ([]Operation, error)

	// SubmitTransaction submits a signed transaction envelope
	SubmitTransaction(ctx context.Context, signedXDR string) (*SubmitResult, error)
}
