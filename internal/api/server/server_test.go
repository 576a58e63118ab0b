package server_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/api/middleware"
	"github.com/feral-file/ff-stellar-market/internal/api/rest/dto"
	"github.com/feral-file/ff-stellar-market/internal/api/server"
	apierrors "github.com/feral-file/ff-stellar-market/internal/api/shared/errors"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/market"
	"github.com/feral-file/ff-stellar-market/internal/mocks"
	"github.com/feral-file/ff-stellar-market/internal/pipeline"
)

const testAPIKey = "test-key"

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	gin.SetMode(gin.TestMode)
	code := m.Run()
	os.Exit(code)
}

// testServerMocks contains all the mocks needed for testing the API server
type testServerMocks struct {
	ctrl       *gomock.Controller
	reader     *mocks.MockMarketReader
	writer     *mocks.MockMarketWriter
	router     *gin.Engine
	privateKey *rsa.PrivateKey
}

// setupTestServer creates all the mocks and the router for testing
func setupTestServer(t *testing.T) *testServerMocks {
	ctrl := gomock.NewController(t)

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	tm := &testServerMocks{
		ctrl:       ctrl,
		reader:     mocks.NewMockMarketReader(ctrl),
		writer:     mocks.NewMockMarketWriter(ctrl),
		privateKey: privateKey,
	}

	srv := server.New(server.Config{
		MaxUploadBytes: 1024,
		Auth: middleware.AuthConfig{
			JWTPublicKey: string(publicPEM),
			APIKeys:      []string{testAPIKey},
		},
	}, tm.reader, tm.writer, adapter.NewJSON())
	tm.router = srv.Router()

	return tm
}

func (tm *testServerMocks) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	tm.router.ServeHTTP(rec, req)
	return rec
}

func (tm *testServerMocks) walletToken(t *testing.T, account string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   account,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(tm.privateKey)
	require.NoError(t, err)
	return signed
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apierrors.APIError {
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	tm := setupTestServer(t)
	defer tm.ctrl.Finish()

	rec := tm.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
	assert.NotEmpty(t, rec.Header().Get(middleware.REQUEST_ID_HEADER))
}

func TestMetricsEndpoint(t *testing.T) {
	tm := setupTestServer(t)
	defer tm.ctrl.Finish()

	rec := tm.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccountViews(t *testing.T) {
	account := keypair.MustRandom().Address()
	records := []domain.NFTRecord{{TokenID: "QmToken", Slot: "0123456789", Owner: account}}

	tests := []struct {
		name       string
		path       string
		setup      func(tm *testServerMocks)
		wantStatus int
		wantCode   apierrors.ErrorCode
	}{
		{
			name: "owned",
			path: "/api/v1/accounts/" + account + "/owned",
			setup: func(tm *testServerMocks) {
				tm.reader.EXPECT().ScanOwned(gomock.Any(), account).Return(records, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "created",
			path: "/api/v1/accounts/" + account + "/created",
			setup: func(tm *testServerMocks) {
				tm.reader.EXPECT().ScanCreated(gomock.Any(), account).Return(records, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "received",
			path: "/api/v1/accounts/" + account + "/received",
			setup: func(tm *testServerMocks) {
				tm.reader.EXPECT().ScanReceived(gomock.Any(), account).Return(records, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid account",
			path:       "/api/v1/accounts/not-an-account/owned",
			setup:      func(tm *testServerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.ErrCodeValidationFailed,
		},
		{
			name: "history unavailable",
			path: "/api/v1/accounts/" + account + "/history",
			setup: func(tm *testServerMocks) {
				tm.reader.EXPECT().
					ScanHistory(gomock.Any(), account).
					Return(nil, &domain.ScanError{Scope: account, Cause: context.DeadlineExceeded})
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   apierrors.ErrCodeUpstreamError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestServer(t)
			defer tm.ctrl.Finish()
			tt.setup(tm)

			rec := tm.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
				return
			}
			var resp dto.NFTListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, account, resp.Account)
			assert.Equal(t, 1, resp.Total)
			assert.Equal(t, domain.TokenID("QmToken"), resp.Items[0].TokenID)
		})
	}
}

func TestGetHistory_EmptyList(t *testing.T) {
	tm := setupTestServer(t)
	defer tm.ctrl.Finish()

	account := keypair.MustRandom().Address()
	tm.reader.EXPECT().ScanHistory(gomock.Any(), account).Return(nil, nil)

	rec := tm.do(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+account+"/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestGetMarketplace(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantStatus int
	}{
		{name: "default limit", query: "", wantLimit: 50, wantStatus: http.StatusOK},
		{name: "explicit limit", query: "?limit=5", wantLimit: 5, wantStatus: http.StatusOK},
		{name: "capped limit", query: "?limit=1000", wantLimit: 200, wantStatus: http.StatusOK},
		{name: "zero limit", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "bad limit", query: "?limit=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestServer(t)
			defer tm.ctrl.Finish()

			if tt.wantStatus == http.StatusOK {
				tm.reader.EXPECT().
					ScanMarketplace(gomock.Any(), tt.wantLimit).
					Return([]domain.ListingRecord{{TokenID: "QmToken", Price: "10.0000000"}}, nil)
			}

			rec := tm.do(httptest.NewRequest(http.MethodGet, "/api/v1/marketplace"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestGetListing(t *testing.T) {
	tm := setupTestServer(t)
	defer tm.ctrl.Finish()

	seller := keypair.MustRandom().Address()
	tm.reader.EXPECT().
		FindListing(gomock.Any(), domain.TokenID("QmListed")).
		Return(&domain.ListingRecord{TokenID: "QmListed", Price: "12.5000000", Seller: seller}, nil)
	tm.reader.EXPECT().
		FindListing(gomock.Any(), domain.TokenID("QmMissing")).
		Return(nil, domain.ErrListingNotFound)

	rec := tm.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/QmListed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listing domain.ListingRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, seller, listing.Seller)

	rec = tm.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/QmMissing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestPrepareTransaction(t *testing.T) {
	account := keypair.MustRandom().Address()
	action := market.Action{Type: market.ActionList, TokenID: "QmToken", Price: "10"}

	t.Run("requires authentication", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		req := jsonRequest(t, http.MethodPost, "/api/v1/transactions/prepare",
			dto.PrepareTransactionRequest{Account: account, Action: action})
		rec := tm.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("api key", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		tm.writer.EXPECT().
			Prepare(gomock.Any(), account, action).
			Return(&pipeline.UnsignedTx{XDR: "AAAA", Hash: "abc", Account: account}, nil)

		req := jsonRequest(t, http.MethodPost, "/api/v1/transactions/prepare",
			dto.PrepareTransactionRequest{Account: account, Action: action})
		req.Header.Set("Authorization", "ApiKey "+testAPIKey)
		rec := tm.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp dto.PrepareTransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Transaction)
		assert.Equal(t, "AAAA", resp.Transaction.XDR)
		assert.False(t, resp.NothingToSubmit)
	})

	t.Run("nothing to submit", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		delist := market.Action{Type: market.ActionDelist, TokenID: "QmToken"}
		tm.writer.EXPECT().Prepare(gomock.Any(), account, delist).Return(nil, nil)

		req := jsonRequest(t, http.MethodPost, "/api/v1/transactions/prepare",
			dto.PrepareTransactionRequest{Account: account, Action: delist})
		req.Header.Set("Authorization", "Bearer "+tm.walletToken(t, account))
		rec := tm.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp dto.PrepareTransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Nil(t, resp.Transaction)
		assert.True(t, resp.NothingToSubmit)
	})

	t.Run("wallet account mismatch", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		other := keypair.MustRandom().Address()
		req := jsonRequest(t, http.MethodPost, "/api/v1/transactions/prepare",
			dto.PrepareTransactionRequest{Account: account, Action: action})
		req.Header.Set("Authorization", "Bearer "+tm.walletToken(t, other))
		rec := tm.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("precondition failure", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		accept := market.Action{Type: market.ActionAcceptTransfer, TokenID: "QmToken", Sender: keypair.MustRandom().Address()}
		tm.writer.EXPECT().Prepare(gomock.Any(), account, accept).Return(nil, domain.ErrTokenNotFound)

		req := jsonRequest(t, http.MethodPost, "/api/v1/transactions/prepare",
			dto.PrepareTransactionRequest{Account: account, Action: accept})
		req.Header.Set("Authorization", "ApiKey "+testAPIKey)
		rec := tm.do(req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, apierrors.ErrCodePreconditionFailed, decodeError(t, rec).Code)
	})

	t.Run("invalid account", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		req := jsonRequest(t, http.MethodPost, "/api/v1/transactions/prepare",
			dto.PrepareTransactionRequest{Account: "GBAD", Action: action})
		req.Header.Set("Authorization", "ApiKey "+testAPIKey)
		rec := tm.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubmitTransaction(t *testing.T) {
	tm := setupTestServer(t)
	defer tm.ctrl.Finish()

	tm.writer.EXPECT().
		Submit(gomock.Any(), "signed-ok").
		Return(&domain.TxResult{Success: true, Hash: "abc"}, nil)
	tm.writer.EXPECT().
		Submit(gomock.Any(), "signed-stale").
		Return(&domain.TxResult{Error: "tx_bad_seq"}, &domain.SubmissionError{Reason: "tx_bad_seq", Codes: []string{"tx_bad_seq"}})

	req := jsonRequest(t, http.MethodPost, "/api/v1/transactions/submit", dto.SubmitTransactionRequest{XDR: "signed-ok"})
	req.Header.Set("Authorization", "ApiKey "+testAPIKey)
	rec := tm.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.TxResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "abc", result.Hash)

	req = jsonRequest(t, http.MethodPost, "/api/v1/transactions/submit", dto.SubmitTransactionRequest{XDR: "signed-stale"})
	req.Header.Set("Authorization", "ApiKey "+testAPIKey)
	rec = tm.do(req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, apierrors.ErrCodeSubmissionFailed, apiErr.Code)
	assert.Contains(t, apiErr.Details, "tx_bad_seq")

	req = jsonRequest(t, http.MethodPost, "/api/v1/transactions/submit", map[string]string{})
	req.Header.Set("Authorization", "ApiKey "+testAPIKey)
	rec = tm.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "art.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metadata", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "ApiKey "+testAPIKey)
	return req
}

func TestPublishMetadata(t *testing.T) {
	image := []byte("\x89PNG\r\n\x1a\nimage")

	t.Run("success", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		tm.writer.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req market.MintRequest) (string, error) {
				assert.Equal(t, "Piece", req.Name)
				assert.Equal(t, "A piece", req.Description)
				assert.Equal(t, "art.png", req.ImageName)
				assert.Equal(t, image, req.Image)
				require.Len(t, req.Attributes, 1)
				assert.Equal(t, "edition", req.Attributes[0].TraitType)
				return "QmMetadata", nil
			})

		rec := tm.do(multipartRequest(t, map[string]string{
			"name":        "Piece",
			"description": "A piece",
			"attributes":  `[{"trait_type":"edition","value":1}]`,
		}, image))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp dto.PublishMetadataResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "QmMetadata", resp.CID)
		assert.Equal(t, domain.TokenID("QmMetadata"), resp.TokenID)
	})

	tests := []struct {
		name   string
		fields map[string]string
		image  []byte
	}{
		{name: "missing name", fields: map[string]string{}, image: image},
		{name: "missing image", fields: map[string]string{"name": "Piece"}},
		{name: "image too large", fields: map[string]string{"name": "Piece"}, image: []byte(strings.Repeat("x", 2048))},
		{name: "bad attributes", fields: map[string]string{"name": "Piece", "attributes": "{"}, image: image},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestServer(t)
			defer tm.ctrl.Finish()

			rec := tm.do(multipartRequest(t, tt.fields, tt.image))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, apierrors.ErrCodeValidationFailed, decodeError(t, rec).Code)
		})
	}

	t.Run("rejected file type", func(t *testing.T) {
		tm := setupTestServer(t)
		defer tm.ctrl.Finish()

		tm.writer.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			Return("", domain.NewValidationError("file", "mime type text/plain is not allowed"))

		rec := tm.do(multipartRequest(t, map[string]string{"name": "Piece"}, []byte("plain text")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
