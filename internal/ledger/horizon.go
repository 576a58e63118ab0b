package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/operations"
	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/ratelimit"
)

type horizonClient struct {
	client  horizonclient.ClientInterface
	limiter ratelimit.Limiter
	base64  adapter.Base64
}

// NewHorizonClient creates a ledger client backed by a Horizon server
func NewHorizonClient(client horizonclient.ClientInterface, limiter ratelimit.Limiter, base64 adapter.Base64) Client {
	return &horizonClient{
		client:  client,
		limiter: limiter,
		base64:  base64,
	}
}

// NewHorizonHTTPClient creates the underlying Horizon client for url
func NewHorizonHTTPClient(url string, httpClient *http.Client) *horizonclient.Client {
	return &horizonclient.Client{
		HorizonURL: url,
		HTTP:       httpClient,
	}
}

func (c *horizonClient) LoadAccount(ctx context.Context, id string) (*Account, error) {
	account, err := ratelimit.Do(ctx, c.limiter, ratelimit.ProviderHorizon, func(ctx context.Context) (hProtocol.Account, error) {
		return c.client.AccountDetail(horizonclient.AccountRequest{AccountID: id})
	})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account %s: %w", id, err)
	}

	seq, err := account.GetSequenceNumber()
	if err != nil {
		return nil, fmt.Errorf("invalid sequence number for %s: %w", id, err)
	}

	data := make(map[string]string, len(account.Data))
	for k, v := range account.Data {
		data[k] = v
	}

	return &Account{
		ID:       account.AccountID,
		Sequence: seq,
		Data:     data,
	}, nil
}

func (c *horizonClient) ListTransactions(ctx context.Context, query TransactionQuery) ([]Transaction, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = domain.DEFAULT_HISTORY_LIMIT
	}
	order := horizonclient.OrderDesc
	if query.Order == OrderAsc {
		order = horizonclient.OrderAsc
	}

	request := horizonclient.TransactionRequest{
		ForAccount: query.Account,
		Limit:      uint(min(limit, domain.MAX_HORIZON_PAGE_LIMIT)),
		Order:      order,
	}

	page, err := ratelimit.Do(ctx, c.limiter, ratelimit.ProviderHorizon, func(ctx context.Context) (hProtocol.TransactionsPage, error) {
		return c.client.Transactions(request)
	})
	if err != nil {
		if query.Account != "" && horizonclient.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]Transaction, 0, limit)
	for {
		for _, record := range page.Embedded.Records {
			if !record.Successful {
				continue
			}
			txs = append(txs, Transaction{
				Hash:        record.Hash,
				Ledger:      record.Ledger,
				Account:     record.Account,
				CreatedAt:   record.LedgerCloseTime,
				EnvelopeXDR: record.EnvelopeXdr,
				PagingToken: record.PT,
			})
			if len(txs) >= limit {
				return txs, nil
			}
		}

		if len(page.Embedded.Records) < int(request.Limit) {
			return txs, nil
		}

		current := page
		page, err = ratelimit.Do(ctx, c.limiter, ratelimit.ProviderHorizon, func(ctx context.Context) (hProtocol.TransactionsPage, error) {
			return c.client.NextTransactionsPage(current)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list next transactions page: %w", err)
		}
	}
}

func (c *horizonClient) ListOperations(ctx context.Context, txHash string) ([]Operation, error) {
	page, err := ratelimit.Do(ctx, c.limiter, ratelimit.ProviderHorizon, func(ctx context.Context) (operations.OperationsPage, error) {
		return c.client.Operations(horizonclient.OperationRequest{
			ForTransaction: txHash,
			Limit:          domain.MAX_HORIZON_PAGE_LIMIT,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list operations of %s: %w", txHash, err)
	}

	ops := make([]Operation, 0, len(page.Embedded.Records))
	for _, record := range page.Embedded.Records {
		op, err := c.fromHorizon(record)
		if err != nil {
			logger.WarnCtx(ctx, "skipping undecodable operation", logger.TxHash(txHash), zap.Error(err))
			continue
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (c *horizonClient) fromHorizon(record operations.Operation) (Operation, error) {
	switch o := record.(type) {
	case operations.ManageData:
		return c.manageData(o)
	case *operations.ManageData:
		return c.manageData(*o)
	case operations.Payment:
		return payment(o), nil
	case *operations.Payment:
		return payment(*o), nil
	}

	return Operation{
		ID:              record.GetID(),
		Kind:            OperationOther,
		TransactionHash: record.GetTransactionHash(),
	}, nil
}

func (c *horizonClient) manageData(o operations.ManageData) (Operation, error) {
	op := Operation{
		ID:              o.ID,
		Kind:            OperationManageData,
		SourceAccount:   o.SourceAccount,
		TransactionHash: o.TransactionHash,
		CreatedAt:       o.LedgerCloseTime,
		Name:            o.Name,
	}
	// an empty value is how Horizon reports a removed entry
	if o.Value != "" {
		value, err := c.base64.Decode(o.Value)
		if err != nil {
			return Operation{}, fmt.Errorf("invalid value for %s: %w", o.Name, err)
		}
		op.Value = value
	}
	return op, nil
}

func payment(o operations.Payment) Operation {
	kind := OperationOther
	if o.Asset.Type == "native" {
		kind = OperationPayment
	}
	return Operation{
		ID:              o.ID,
		Kind:            kind,
		SourceAccount:   o.SourceAccount,
		TransactionHash: o.TransactionHash,
		CreatedAt:       o.LedgerCloseTime,
		Destination:     o.To,
		Amount:          o.Amount,
	}
}

func (c *horizonClient) SubmitTransaction(ctx context.Context, signedXDR string) (*SubmitResult, error) {
	// submissions are never retried, a second attempt could double apply
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := c.client.SubmitTransactionXDR(signedXDR)
	if err != nil {
		var hErr *horizonclient.Error
		if errors.As(err, &hErr) {
			return nil, submitError(hErr)
		}
		return nil, fmt.Errorf("failed to submit transaction: %w", err)
	}

	return &SubmitResult{
		Hash:   tx.Hash,
		Ledger: tx.Ledger,
	}, nil
}

func submitError(hErr *horizonclient.Error) *SubmitError {
	subErr := &SubmitError{
		Status: hErr.Problem.Status,
		Detail: hErr.Problem.Title,
	}
	if codes, err := hErr.ResultCodes(); err == nil && codes != nil {
		subErr.TransactionCode = codes.TransactionCode
		if codes.InnerTransactionCode != "" {
			subErr.TransactionCode = codes.InnerTransactionCode
		}
		subErr.OperationCodes = codes.OperationCodes
	}
	return subErr
}
