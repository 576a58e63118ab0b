package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

const (
	MAX_PAGE_SIZE              = 200
	DEFAULT_MARKETPLACE_LIMIT  = 50
	DEFAULT_MULTIPART_MEMORY   = 8 << 20
	MULTIPART_IMAGE_FIELD      = "image"
	MULTIPART_ATTRIBUTES_FIELD = "attributes"
)

// MarketplaceQueryParams holds query parameters for GET /marketplace
type MarketplaceQueryParams struct {
	Limit int `form:"limit,default=50"`
}

// ParseMarketplaceQuery parses query parameters for GET /marketplace
func ParseMarketplaceQuery(c *gin.Context) (*MarketplaceQueryParams, error) {
	var params MarketplaceQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1")
	}
	// Cap limits
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}

	return &params, nil
}
