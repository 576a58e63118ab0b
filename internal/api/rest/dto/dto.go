package dto

import (
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/market"
	"github.com/feral-file/ff-stellar-market/internal/pipeline"
)

// NFTListResponse is a list of tokens from one account's perspective
type NFTListResponse struct {
	Account string             `json:"account"`
	Items   []domain.NFTRecord `json:"items"`
	Total   int                `json:"total"`
}

// ListingListResponse is a page of live marketplace listings
type ListingListResponse struct {
	Items []domain.ListingRecord `json:"items"`
	Total int                    `json:"total"`
}

// EventListResponse is the classified history of an account
type EventListResponse struct {
	Account string               `json:"account"`
	Items   []domain.LedgerEvent `json:"items"`
	Total   int                  `json:"total"`
}

// PrepareTransactionRequest asks for the unsigned transaction of one action
type PrepareTransactionRequest struct {
	Account string        `json:"account" binding:"required"`
	Action  market.Action `json:"action"`
}

// PrepareTransactionResponse carries the transaction to sign.
// Transaction is omitted when the action needs no ledger change.
type PrepareTransactionResponse struct {
	Transaction     *pipeline.UnsignedTx `json:"transaction,omitempty"`
	NothingToSubmit bool                 `json:"nothing_to_submit"`
}

// SubmitTransactionRequest carries an envelope signed by the wallet
type SubmitTransactionRequest struct {
	XDR string `json:"xdr" binding:"required"`
}

// PublishMetadataResponse is the pinned metadata of a token about to be minted
type PublishMetadataResponse struct {
	CID     string         `json:"cid"`
	TokenID domain.TokenID `json:"token_id"`
}
