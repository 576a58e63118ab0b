package storage

import (
	"strconv"
	"strings"

	"github.com/stellar/go/amount"

	"github.com/feral-file/ff-stellar-market/internal/domain"
)

// ParsePrice converts a display decimal into minor units (1 unit = 10^7 stroops)
func ParsePrice(display string) (int64, error) {
	display = strings.TrimSpace(display)
	stroops, err := amount.ParseInt64(display)
	if err != nil {
		return 0, domain.NewValidationError("price", "invalid price %q", display)
	}
	if stroops <= 0 {
		return 0, domain.NewValidationError("price", "must be positive, got %q", display)
	}
	return stroops, nil
}

// FormatPrice converts minor units into a display decimal without trailing zeros
func FormatPrice(stroops int64) string {
	s := amount.StringFromInt64(stroops)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// DecodePrice converts a stored minor-unit integer string into a display decimal
func DecodePrice(stored string) (string, error) {
	stroops, err := strconv.ParseInt(strings.TrimSpace(stored), 10, 64)
	if err != nil || stroops <= 0 {
		return "", domain.NewValidationError("price", "invalid stored price %q", stored)
	}
	return FormatPrice(stroops), nil
}

// SamePrice reports whether two display decimals denote the same amount
func SamePrice(a, b string) bool {
	x, err := amount.ParseInt64(strings.TrimSpace(a))
	if err != nil {
		return false
	}
	y, err := amount.ParseInt64(strings.TrimSpace(b))
	if err != nil {
		return false
	}
	return x == y
}
