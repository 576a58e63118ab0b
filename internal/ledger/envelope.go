package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/stellar/go/txnbuild"
)

// DecodeOperations decodes the operations of a transaction envelope.
// Operation ids are derived from the transaction hash and the operation index.
func DecodeOperations(tx Transaction) ([]Operation, error) {
	if tx.EnvelopeXDR == "" {
		return nil, errors.New("empty envelope")
	}

	generic, err := txnbuild.TransactionFromXDR(tx.EnvelopeXDR)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	inner, ok := generic.Transaction()
	if !ok {
		feeBump, ok := generic.FeeBump()
		if !ok {
			return nil, errors.New("unsupported envelope type")
		}
		inner = feeBump.InnerTransaction()
	}

	source := inner.SourceAccount().AccountID
	if source == "" {
		source = tx.Account
	}

	ops := make([]Operation, 0, len(inner.Operations()))
	for i, op := range inner.Operations() {
		ops = append(ops, fromTxnbuild(op, source, tx.Hash, i, tx.CreatedAt))
	}

	return ops, nil
}

// OperationID returns the id of the i-th operation of a transaction
func OperationID(txHash string, index int) string {
	return fmt.Sprintf("%s-%d", txHash, index)
}

func fromTxnbuild(op txnbuild.Operation, txSource, txHash string, index int, createdAt time.Time) Operation {
	source := op.GetSourceAccount()
	if source == "" {
		source = txSource
	}

	decoded := Operation{
		ID:              OperationID(txHash, index),
		Kind:            OperationOther,
		SourceAccount:   source,
		TransactionHash: txHash,
		CreatedAt:       createdAt,
	}

	switch o := op.(type) {
	case *txnbuild.ManageData:
		decoded.Kind = OperationManageData
		decoded.Name = o.Name
		decoded.Value = o.Value
	case *txnbuild.Payment:
		if o.Asset != nil && o.Asset.IsNative() {
			decoded.Kind = OperationPayment
			decoded.Destination = o.Destination
			decoded.Amount = o.Amount
		}
	}

	return decoded
}

// ToTxnbuild converts a mutation into the txnbuild operation submitted to the ledger
func ToTxnbuild(op Operation) (txnbuild.Operation, error) {
	switch op.Kind {
	case OperationManageData:
		return &txnbuild.ManageData{
			Name:          op.Name,
			Value:         op.Value,
			SourceAccount: op.SourceAccount,
		}, nil
	case OperationPayment:
		return &txnbuild.Payment{
			Destination:   op.Destination,
			Amount:        op.Amount,
			Asset:         txnbuild.NativeAsset{},
			SourceAccount: op.SourceAccount,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported operation kind %q", op.Kind)
	}
}
