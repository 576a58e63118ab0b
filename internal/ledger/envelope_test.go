package ledger_test

import (
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/ledger"
)

func buildEnvelope(t *testing.T, source *keypair.Full, ops ...txnbuild.Operation) string {
	t.Helper()

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: source.Address(), Sequence: 100},
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewInfiniteTimeout()},
	})
	require.NoError(t, err)

	tx, err = tx.Sign(network.TestNetworkPassphrase, source)
	require.NoError(t, err)

	envelope, err := tx.Base64()
	require.NoError(t, err)
	return envelope
}

func TestDecodeOperations(t *testing.T) {
	seller := keypair.MustRandom()
	buyer := keypair.MustRandom()

	envelope := buildEnvelope(t, seller,
		&txnbuild.Payment{Destination: buyer.Address(), Amount: "12.5", Asset: txnbuild.NativeAsset{}},
		&txnbuild.ManageData{Name: "nft_0a1b2c3d4e_price", Value: []byte("125000000")},
		&txnbuild.ManageData{Name: "nft_0a1b2c3d4e_owner", SourceAccount: buyer.Address()},
		&txnbuild.BumpSequence{BumpTo: 200},
	)

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ops, err := ledger.DecodeOperations(ledger.Transaction{
		Hash:        "abc",
		Account:     seller.Address(),
		CreatedAt:   createdAt,
		EnvelopeXDR: envelope,
	})
	require.NoError(t, err)
	require.Len(t, ops, 4)

	assert.Equal(t, ledger.OperationPayment, ops[0].Kind)
	assert.Equal(t, buyer.Address(), ops[0].Destination)
	assert.Equal(t, "12.5000000", ops[0].Amount)
	assert.Equal(t, seller.Address(), ops[0].SourceAccount)
	assert.Equal(t, "abc-0", ops[0].ID)

	assert.Equal(t, ledger.OperationManageData, ops[1].Kind)
	assert.Equal(t, "nft_0a1b2c3d4e_price", ops[1].Name)
	assert.Equal(t, []byte("125000000"), ops[1].Value)
	assert.False(t, ops[1].Deleted())
	assert.Equal(t, createdAt, ops[1].CreatedAt)

	assert.True(t, ops[2].Deleted())
	assert.Equal(t, buyer.Address(), ops[2].SourceAccount)

	assert.Equal(t, ledger.OperationOther, ops[3].Kind)
	assert.Equal(t, "abc-3", ops[3].ID)
}

func TestDecodeOperations_Invalid(t *testing.T) {
	_, err := ledger.DecodeOperations(ledger.Transaction{Hash: "abc"})
	assert.EqualError(t, err, "empty envelope")

	_, err = ledger.DecodeOperations(ledger.Transaction{Hash: "abc", EnvelopeXDR: "not-xdr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode envelope")
}

func TestToTxnbuild(t *testing.T) {
	op, err := ledger.ToTxnbuild(ledger.SetData("metadata_cid", "bafy"))
	require.NoError(t, err)
	md, ok := op.(*txnbuild.ManageData)
	require.True(t, ok)
	assert.Equal(t, []byte("bafy"), md.Value)

	op, err = ledger.ToTxnbuild(ledger.DeleteData("nft_x_price"))
	require.NoError(t, err)
	assert.Nil(t, op.(*txnbuild.ManageData).Value)

	op, err = ledger.ToTxnbuild(ledger.Payment("GDEST", "1"))
	require.NoError(t, err)
	p, ok := op.(*txnbuild.Payment)
	require.True(t, ok)
	assert.Equal(t, txnbuild.NativeAsset{}, p.Asset)

	_, err = ledger.ToTxnbuild(ledger.Operation{Kind: ledger.OperationOther})
	assert.Error(t, err)
}
