package adapter

import (
	"encoding/base64"
	"strings"
)

// Base64 encodes account data entry values, which Horizon returns base64 encoded.
//
//go:generate mockgen -source=encoding.go -destination=../mocks/encoding.go -package=mocks -mock_names=Base64=MockBase64
type Base64 interface {
	Encode(data []byte) string
	// Decode accepts padded and unpadded input
	Decode(data string) ([]byte, error)
}

type stdBase64 struct{}

func NewBase64() Base64 {
	return stdBase64{}
}

func (stdBase64) Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func (stdBase64) Decode(data string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
}
