package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
)

// Config holds the gateway list used for resolution
type Config struct {
	// Gateways are tried in order, each as {gateway}/{cid}
	Gateways []string
	// CanonicalGateway is used to rewrite content addressed images, defaults to the first gateway
	CanonicalGateway string
}

// Resolver defines the interface for resolving metadata from a content identifier
//
//go:generate mockgen -source=resolver.go -destination=../mocks/metadata_resolver.go -package=mocks -mock_names=Resolver=MockMetadataResolver
type Resolver interface {
	Resolve(ctx context.Context, cid string) (*domain.MetadataRecord, error)
}

type resolver struct {
	gateways         []string
	canonicalGateway string
	httpClient       adapter.HTTPClient
	json             adapter.JSON
	base64           adapter.Base64
}

// NewResolver creates a gateway backed resolver
func NewResolver(cfg Config, httpClient adapter.HTTPClient, json adapter.JSON, base64 adapter.Base64) Resolver {
	gateways := make([]string, 0, len(cfg.Gateways))
	for _, gw := range cfg.Gateways {
		gw = strings.TrimRight(strings.TrimSpace(gw), "/")
		if gw != "" {
			gateways = append(gateways, gw)
		}
	}
	if len(gateways) == 0 {
		gateways = []string{domain.DEFAULT_IPFS_GATEWAY}
	}

	canonical := strings.TrimRight(strings.TrimSpace(cfg.CanonicalGateway), "/")
	if canonical == "" {
		canonical = gateways[0]
	}

	return &resolver{
		gateways:         gateways,
		canonicalGateway: canonical,
		httpClient:       httpClient,
		json:             json,
		base64:           base64,
	}
}

// Resolve fetches the metadata document from the first gateway returning a JSON object
func (r *resolver) Resolve(ctx context.Context, raw string) (*domain.MetadataRecord, error) {
	cid, err := NormalizeCID(raw, r.base64)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, gw := range r.gateways {
		url := fmt.Sprintf("%s/%s", gw, cid)

		body, err := r.httpClient.GetNoRetry(ctx, url)
		if err != nil {
			lastErr = err
			logger.DebugCtx(ctx, "gateway fetch failed", zap.String("url", url), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		record, err := r.parse(body)
		if err != nil {
			lastErr = err
			logger.DebugCtx(ctx, "gateway returned unusable metadata", zap.String("url", url), zap.Error(err))
			continue
		}

		return record, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no gateway configured")
	}
	return nil, &domain.ResolutionError{CID: cid, Cause: lastErr}
}

// parse decodes a metadata document, only JSON objects are accepted
func (r *resolver) parse(body []byte) (*domain.MetadataRecord, error) {
	var doc map[string]interface{}
	if err := r.json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid metadata JSON: %w", err)
	}
	if doc == nil {
		return nil, errors.New("metadata is not a JSON object")
	}

	record := &domain.MetadataRecord{
		Raw: append([]byte(nil), body...),
	}
	if name, ok := doc["name"].(string); ok {
		record.Name = name
	}
	if desc, ok := doc["description"].(string); ok {
		record.Description = desc
	}
	if image, ok := doc["image"].(string); ok {
		record.Image = r.normalizeImage(image)
	}
	record.Attributes = parseAttributes(doc["attributes"])

	return record, nil
}

// normalizeImage rewrites content addressed image references to the canonical gateway
func (r *resolver) normalizeImage(image string) string {
	image = strings.TrimSpace(image)
	switch {
	case image == "":
		return ""
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"), strings.HasPrefix(image, "data:"):
		return image
	}

	stripped := stripContentPrefix(image)
	if stripped != image || IsCID(stripped) {
		return fmt.Sprintf("%s/%s", r.canonicalGateway, stripped)
	}

	return image
}

func parseAttributes(v interface{}) []domain.Attribute {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	attrs := make([]domain.Attribute, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		traitType, _ := m["trait_type"].(string)
		attrs = append(attrs, domain.Attribute{TraitType: traitType, Value: m["value"]})
	}
	return attrs
}
