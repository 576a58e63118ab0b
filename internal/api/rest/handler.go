package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/api/middleware"
	"github.com/feral-file/ff-stellar-market/internal/api/rest/dto"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/market"
	"github.com/feral-file/ff-stellar-market/internal/pipeline"
	"github.com/feral-file/ff-stellar-market/internal/storage"
)

// Reader serves the public views straight from ledger history.
// No signer is needed, the caller names the account.
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_market.go -package=mocks -mock_names=Reader=MockMarketReader,Writer=MockMarketWriter,Handler=MockAPIHandler
type Reader interface {
	ScanCreated(ctx context.Context, account string) ([]domain.NFTRecord, error)
	ScanOwned(ctx context.Context, account string) ([]domain.NFTRecord, error)
	ScanReceived(ctx context.Context, account string) ([]domain.NFTRecord, error)
	ScanHistory(ctx context.Context, account string) ([]domain.LedgerEvent, error)
	ScanMarketplace(ctx context.Context, limit int) ([]domain.ListingRecord, error)
	FindListing(ctx context.Context, tokenID domain.TokenID) (*domain.ListingRecord, error)
}

// Writer prepares mutations for wallets that sign outside the server
type Writer interface {
	Prepare(ctx context.Context, account string, action market.Action) (*pipeline.UnsignedTx, error)
	Submit(ctx context.Context, signedXDR string) (*domain.TxResult, error)
	Publish(ctx context.Context, req market.MintRequest) (string, error)
}

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetCreated lists the tokens minted by an account
	// GET /api/v1/accounts/:account/created
	GetCreated(c *gin.Context)

	// GetOwned lists the tokens an account holds
	// GET /api/v1/accounts/:account/owned
	GetOwned(c *gin.Context)

	// GetReceived lists the transfers waiting for the account to accept
	// GET /api/v1/accounts/:account/received
	GetReceived(c *gin.Context)

	// GetHistory lists the classified marketplace events of an account, newest first
	// GET /api/v1/accounts/:account/history
	GetHistory(c *gin.Context)

	// GetMarketplace lists live listings across the network
	// GET /api/v1/marketplace?limit=<limit>
	GetMarketplace(c *gin.Context)

	// GetListing returns the live listing of a token
	// GET /api/v1/listings/:token_id
	GetListing(c *gin.Context)

	// PrepareTransaction builds the unsigned transaction of an action
	// POST /api/v1/transactions/prepare
	PrepareTransaction(c *gin.Context)

	// SubmitTransaction submits a wallet-signed envelope
	// POST /api/v1/transactions/submit
	SubmitTransaction(c *gin.Context)

	// PublishMetadata pins an image and its metadata document (multipart form)
	// POST /api/v1/metadata
	PublishMetadata(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	reader         Reader
	writer         Writer
	json           adapter.JSON
	maxUploadBytes int64
}

// NewHandler creates a new REST API handler
func NewHandler(reader Reader, writer Writer, json adapter.JSON, maxUploadBytes int64) Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = domain.DEFAULT_MAX_UPLOAD_BYTES
	}
	return &handler{
		reader:         reader,
		writer:         writer,
		json:           json,
		maxUploadBytes: maxUploadBytes,
	}
}

type nftView func(ctx context.Context, account string) ([]domain.NFTRecord, error)

func (h *handler) GetCreated(c *gin.Context) {
	h.listNFTs(c, h.reader.ScanCreated, "Failed to list created tokens")
}

func (h *handler) GetOwned(c *gin.Context) {
	h.listNFTs(c, h.reader.ScanOwned, "Failed to list owned tokens")
}

func (h *handler) GetReceived(c *gin.Context) {
	h.listNFTs(c, h.reader.ScanReceived, "Failed to list received tokens")
}

func (h *handler) listNFTs(c *gin.Context, view nftView, message string) {
	account, ok := accountParam(c)
	if !ok {
		return
	}

	records, err := view(c.Request.Context(), account)
	if err != nil {
		respondError(c, err, message)
		return
	}

	c.JSON(http.StatusOK, dto.NFTListResponse{
		Account: account,
		Items:   nonNil(records),
		Total:   len(records),
	})
}

// GetHistory lists the classified events of an account
func (h *handler) GetHistory(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}

	events, err := h.reader.ScanHistory(c.Request.Context(), account)
	if err != nil {
		respondError(c, err, "Failed to load history")
		return
	}

	c.JSON(http.StatusOK, dto.EventListResponse{
		Account: account,
		Items:   nonNil(events),
		Total:   len(events),
	})
}

// GetMarketplace lists live listings
func (h *handler) GetMarketplace(c *gin.Context) {
	queryParams, err := ParseMarketplaceQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	listings, err := h.reader.ScanMarketplace(c.Request.Context(), queryParams.Limit)
	if err != nil {
		respondError(c, err, "Failed to load marketplace")
		return
	}

	c.JSON(http.StatusOK, dto.ListingListResponse{
		Items: nonNil(listings),
		Total: len(listings),
	})
}

// GetListing returns the live listing of a token
func (h *handler) GetListing(c *gin.Context) {
	tokenID := domain.TokenID(c.Param("token_id"))
	if !tokenID.Valid() {
		respondBadRequest(c, "Token ID is required")
		return
	}

	listing, err := h.reader.FindListing(c.Request.Context(), tokenID)
	if err != nil {
		respondError(c, err, "Failed to find listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// PrepareTransaction builds the unsigned transaction of an action
func (h *handler) PrepareTransaction(c *gin.Context) {
	var req dto.PrepareTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := storage.ValidateAccount("account", req.Account); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	// Wallet sessions may only prepare transactions for their own account
	if subject := middleware.SubjectAccount(c); subject != "" && subject != req.Account {
		respondUnauthorized(c, "Account does not match the authenticated wallet")
		return
	}

	tx, err := h.writer.Prepare(c.Request.Context(), req.Account, req.Action)
	if err != nil {
		respondError(c, err, "Failed to prepare transaction")
		return
	}

	c.JSON(http.StatusOK, dto.PrepareTransactionResponse{
		Transaction:     tx,
		NothingToSubmit: tx == nil,
	})
}

// SubmitTransaction submits a signed envelope
func (h *handler) SubmitTransaction(c *gin.Context) {
	var req dto.SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.writer.Submit(c.Request.Context(), req.XDR)
	if err != nil {
		respondError(c, err, "Failed to submit transaction")
		return
	}

	c.JSON(http.StatusOK, result)
}

// PublishMetadata pins the uploaded image and its metadata document
func (h *handler) PublishMetadata(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		respondValidationError(c, "name is required")
		return
	}

	fileHeader, err := c.FormFile(MULTIPART_IMAGE_FIELD)
	if err != nil {
		respondValidationError(c, fmt.Sprintf("%s file is required", MULTIPART_IMAGE_FIELD))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		respondValidationError(c, fmt.Sprintf("%s exceeds the %d byte limit", MULTIPART_IMAGE_FIELD, h.maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "Failed to read upload", err.Error())
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WarnCtx(c.Request.Context(), "failed to close upload", zap.Error(err))
		}
	}()

	image, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
	if err != nil {
		respondBadRequest(c, "Failed to read upload", err.Error())
		return
	}

	var attributes []domain.Attribute
	if raw := c.PostForm(MULTIPART_ATTRIBUTES_FIELD); raw != "" {
		if err := h.json.Unmarshal([]byte(raw), &attributes); err != nil {
			respondValidationError(c, fmt.Sprintf("attributes must be a JSON array: %v", err))
			return
		}
	}

	cid, err := h.writer.Publish(c.Request.Context(), market.MintRequest{
		Name:        name,
		Description: c.PostForm("description"),
		ImageName:   fileHeader.Filename,
		Image:       image,
		Attributes:  attributes,
	})
	if err != nil {
		respondError(c, err, "Failed to publish metadata")
		return
	}

	c.JSON(http.StatusCreated, dto.PublishMetadataResponse{
		CID:     cid,
		TokenID: domain.TokenID(cid),
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-stellar-market-api",
	})
}

// accountParam validates the :account path parameter
func accountParam(c *gin.Context) (string, bool) {
	account := c.Param("account")
	if err := storage.ValidateAccount("account", account); err != nil {
		respondValidationError(c, err.Error())
		return "", false
	}
	return account, true
}

// nonNil keeps empty lists as [] in responses
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
