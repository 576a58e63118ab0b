package ledger_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/base"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/support/render/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/ratelimit"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestHorizon() (*horizonclient.MockClient, ledger.Client) {
	hc := &horizonclient.MockClient{}
	limiter := ratelimit.New(nil, ratelimit.ProviderConfig{})
	return hc, ledger.NewHorizonClient(hc, limiter, adapter.NewBase64())
}

func TestHorizonClient_LoadAccount(t *testing.T) {
	hc, client := newTestHorizon()

	hc.On("AccountDetail", horizonclient.AccountRequest{AccountID: "GSELLER"}).Return(hProtocol.Account{
		AccountID: "GSELLER",
		Sequence:  4294967300,
		Data:      map[string]string{"nft_0a1b2c3d4e_price": "MTI1MDAwMDAw"},
	}, nil).Once()
	hc.On("AccountDetail", horizonclient.AccountRequest{AccountID: "GMISSING"}).Return(hProtocol.Account{}, &horizonclient.Error{
		Problem: problem.P{Type: "https://stellar.org/horizon-errors/not_found", Status: 404},
	}).Once()

	account, err := client.LoadAccount(context.Background(), "GSELLER")
	require.NoError(t, err)
	assert.Equal(t, int64(4294967300), account.Sequence)
	assert.Equal(t, "MTI1MDAwMDAw", account.Data["nft_0a1b2c3d4e_price"])

	_, err = client.LoadAccount(context.Background(), "GMISSING")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	hc.AssertExpectations(t)
}

func TestHorizonClient_ListTransactions(t *testing.T) {
	hc, client := newTestHorizon()
	closed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	page := hProtocol.TransactionsPage{}
	page.Embedded.Records = []hProtocol.Transaction{
		{Hash: "h2", Ledger: 12, Account: "GA", Successful: true, LedgerCloseTime: closed, EnvelopeXdr: "env2"},
		{Hash: "h1", Ledger: 11, Account: "GB", Successful: false, EnvelopeXdr: "env1"},
		{Hash: "h0", Ledger: 10, Account: "GA", Successful: true, EnvelopeXdr: "env0"},
	}

	hc.On("Transactions", horizonclient.TransactionRequest{
		ForAccount: "GA",
		Limit:      50,
		Order:      horizonclient.OrderDesc,
	}).Return(page, nil).Once()

	txs, err := client.ListTransactions(context.Background(), ledger.TransactionQuery{Account: "GA", Limit: 50})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "h2", txs[0].Hash)
	assert.Equal(t, closed, txs[0].CreatedAt)
	assert.Equal(t, "env0", txs[1].EnvelopeXDR)

	hc.On("Transactions", horizonclient.TransactionRequest{
		Limit: 200,
		Order: horizonclient.OrderDesc,
	}).Return(hProtocol.TransactionsPage{}, errors.New("connection reset")).Once()

	_, err = client.ListTransactions(context.Background(), ledger.TransactionQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	hc.AssertExpectations(t)
}

func TestHorizonClient_ListOperations(t *testing.T) {
	hc, client := newTestHorizon()

	page := operations.OperationsPage{}
	page.Embedded.Records = []operations.Operation{
		operations.ManageData{
			Base:  operations.Base{ID: "1", SourceAccount: "GA", TransactionHash: "h1"},
			Name:  "metadata_cid",
			Value: "YmFmeQ==",
		},
		operations.ManageData{
			Base: operations.Base{ID: "2", SourceAccount: "GA", TransactionHash: "h1"},
			Name: "nft_0a1b2c3d4e_price",
		},
		operations.Payment{
			Base:   operations.Base{ID: "3", SourceAccount: "GA", TransactionHash: "h1"},
			Asset:  base.Asset{Type: "native"},
			From:   "GA",
			To:     "GB",
			Amount: "1.0000000",
		},
	}

	hc.On("Operations", horizonclient.OperationRequest{ForTransaction: "h1", Limit: 200}).Return(page, nil).Once()

	ops, err := client.ListOperations(context.Background(), "h1")
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, []byte("bafy"), ops[0].Value)
	assert.True(t, ops[1].Deleted())
	assert.Equal(t, ledger.OperationPayment, ops[2].Kind)
	assert.Equal(t, "GB", ops[2].Destination)
}

func TestHorizonClient_SubmitTransaction(t *testing.T) {
	hc, client := newTestHorizon()

	hc.On("SubmitTransactionXDR", "ok-envelope").Return(hProtocol.Transaction{Hash: "h9", Ledger: 99}, nil).Once()
	hc.On("SubmitTransactionXDR", "bad-envelope").Return(hProtocol.Transaction{}, &horizonclient.Error{
		Problem: problem.P{
			Status: 400,
			Title:  "Transaction Failed",
			Extras: map[string]interface{}{
				"result_codes": map[string]interface{}{
					"transaction": "tx_failed",
					"operations":  []interface{}{"op_success", "op_not_found"},
				},
			},
		},
	}).Once()

	result, err := client.SubmitTransaction(context.Background(), "ok-envelope")
	require.NoError(t, err)
	assert.Equal(t, "h9", result.Hash)

	_, err = client.SubmitTransaction(context.Background(), "bad-envelope")
	var subErr *ledger.SubmitError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, 400, subErr.Status)
	assert.Equal(t, "tx_failed", subErr.TransactionCode)
	assert.Equal(t, []string{"op_success", "op_not_found"}, subErr.OperationCodes)

	hc.AssertExpectations(t)
}
