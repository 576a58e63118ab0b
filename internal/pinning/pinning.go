package pinning

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/metadata"
	"github.com/feral-file/ff-stellar-market/internal/ratelimit"
)

const DEFAULT_PINATA_API_URL = "https://api.pinata.cloud/pinning"

// DefaultAllowedMIMETypes lists the image types accepted for upload
var DefaultAllowedMIMETypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

// Config holds the pinning service configuration
type Config struct {
	APIURL           string   `mapstructure:"api_url"`
	JWT              string   `mapstructure:"jwt"`
	APIKey           string   `mapstructure:"api_key"`
	APISecret        string   `mapstructure:"api_secret"`
	MaxUploadBytes   int64    `mapstructure:"max_upload_bytes"`
	AllowedMIMETypes []string `mapstructure:"allowed_mime_types"`
}

// Client uploads content to content-addressed storage
//
//go:generate mockgen -source=pinning.go -destination=../mocks/pinning.go -package=mocks -mock_names=Client=MockPinningClient
type Client interface {
	// PinFile uploads a file after checking its type and size, returning its CID
	PinFile(ctx context.Context, name string, data []byte) (string, error)

	// PinJSON uploads a JSON document and returns its CID
	PinJSON(ctx context.Context, name string, document []byte) (string, error)
}

type pinataResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataClient struct {
	cfg        Config
	httpClient adapter.HTTPClient
	json       adapter.JSON
	limiter    ratelimit.Limiter
	allowed    map[string]bool
}

// NewPinataClient creates a client for the Pinata pinning API
func NewPinataClient(cfg Config, httpClient adapter.HTTPClient, json adapter.JSON, limiter ratelimit.Limiter) Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DEFAULT_PINATA_API_URL
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = domain.DEFAULT_MAX_UPLOAD_BYTES
	}
	if len(cfg.AllowedMIMETypes) == 0 {
		cfg.AllowedMIMETypes = DefaultAllowedMIMETypes
	}

	allowed := make(map[string]bool, len(cfg.AllowedMIMETypes))
	for _, m := range cfg.AllowedMIMETypes {
		allowed[strings.ToLower(m)] = true
	}

	return &pinataClient{
		cfg:        cfg,
		httpClient: httpClient,
		json:       json,
		limiter:    limiter,
		allowed:    allowed,
	}
}

// CheckFile returns the detected MIME type of data when it is an allowed upload
func CheckFile(data []byte, maxBytes int64, allowed map[string]bool) (string, error) {
	if len(data) == 0 {
		return "", domain.NewValidationError("file", "must not be empty")
	}
	if int64(len(data)) > maxBytes {
		return "", domain.NewValidationError("file", "%d bytes exceeds the %d byte limit", len(data), maxBytes)
	}

	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		base := strings.ToLower(strings.SplitN(m.String(), ";", 2)[0])
		if allowed[base] {
			return base, nil
		}
	}
	return "", domain.NewValidationError("file", "mime type %s is not allowed", mtype.String())
}

func (c *pinataClient) PinFile(ctx context.Context, name string, data []byte) (string, error) {
	mime, err := CheckFile(data, c.cfg.MaxUploadBytes, c.allowed)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", mime)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write multipart file: %w", err)
	}

	meta, err := c.json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin metadata: %w", err)
	}
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("failed to write pin metadata: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	headers := c.authHeaders()
	headers["Content-Type"] = writer.FormDataContentType()

	return c.pin(ctx, c.cfg.APIURL+"/pinFileToIPFS", headers, body.Bytes())
}

func (c *pinataClient) PinJSON(ctx context.Context, name string, document []byte) (string, error) {
	if len(document) == 0 {
		return "", domain.NewValidationError("metadata", "must not be empty")
	}

	payload, err := c.json.Marshal(map[string]interface{}{
		"pinataContent":  rawJSON(document),
		"pinataMetadata": map[string]string{"name": name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin request: %w", err)
	}

	headers := c.authHeaders()
	headers["Content-Type"] = "application/json"

	return c.pin(ctx, c.cfg.APIURL+"/pinJSONToIPFS", headers, payload)
}

func (c *pinataClient) pin(ctx context.Context, url string, headers map[string]string, body []byte) (string, error) {
	respBody, err := ratelimit.Do(ctx, c.limiter, ratelimit.ProviderPinata, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.PostWithHeaders(ctx, url, headers, body)
	})
	if err != nil {
		return "", fmt.Errorf("failed to pin content: %w", err)
	}

	var resp pinataResponse
	if err := c.json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse pin response: %w", err)
	}
	if !metadata.IsCID(resp.IpfsHash) {
		return "", fmt.Errorf("pin response carries no valid cid: %q", resp.IpfsHash)
	}

	logger.DebugCtx(ctx, "pinned content", zap.String("cid", resp.IpfsHash), zap.Int64("size", resp.PinSize))
	return resp.IpfsHash, nil
}

// authHeaders prefers the JWT over the key pair
func (c *pinataClient) authHeaders() map[string]string {
	if c.cfg.JWT != "" {
		return map[string]string{"Authorization": "Bearer " + c.cfg.JWT}
	}
	return map[string]string{
		"pinata_api_key":        c.cfg.APIKey,
		"pinata_secret_api_key": c.cfg.APISecret,
	}
}

// rawJSON embeds an already encoded document in a request body
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	return r, nil
}
