package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// TokenID is the opaque identifier of one NFT, usually the metadata CID written at mint time
type TokenID string

// String returns the string representation of the TokenID
func (t TokenID) String() string {
	return string(t)
}

// Valid reports whether the token id is non-empty after trimming
func (t TokenID) Valid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Field is the record field encoded in a storage key
type Field string

const (
	FieldPrice    Field = "price"
	FieldOwner    Field = "owner"
	FieldTransfer Field = "transfer"
)

// IsValidField checks if a field is one of the storage key fields
func IsValidField(f Field) bool {
	return f == FieldPrice || f == FieldOwner || f == FieldTransfer
}

// EventType represents the type of a classified ledger operation
type EventType string

const (
	EventTypeMint             EventType = "mint"
	EventTypeList             EventType = "list"
	EventTypeDelist           EventType = "delist"
	EventTypeTransferSent     EventType = "transfer_sent"
	EventTypeTransferReceived EventType = "transfer_received"
	EventTypeClaim            EventType = "claim"
	EventTypeUnknown          EventType = "unknown"
)

// LedgerEvent is a marketplace event derived from one ledger operation.
// It is recomputed for every query and never stored.
type LedgerEvent struct {
	Type            EventType `json:"type"`
	TokenID         TokenID   `json:"tokenId,omitempty"`
	Slot            string    `json:"slot,omitempty"`
	CID             string    `json:"cid,omitempty"`
	Price           string    `json:"price,omitempty"`
	Counterparty    string    `json:"counterparty,omitempty"`
	Account         string    `json:"account"`
	Key             string    `json:"key,omitempty"`
	OperationID     string    `json:"operationId"`
	TransactionHash string    `json:"transactionHash"`
	Timestamp       time.Time `json:"timestamp"`
}

// Attribute is one trait of a metadata document
type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// MetadataRecord is the resolved metadata document of a token
type MetadataRecord struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Attributes  []Attribute     `json:"attributes"`
	Raw         json.RawMessage `json:"-"`
}

// ListingRecord is a live listing on a seller account
type ListingRecord struct {
	TokenID  TokenID         `json:"tokenId"`
	Slot     string          `json:"slot"`
	Price    string          `json:"price"`
	Seller   string          `json:"seller"`
	Metadata *MetadataRecord `json:"metadata,omitempty"`
}

// NFTRecord is the derived view of one token from an account's perspective
type NFTRecord struct {
	TokenID         TokenID         `json:"tokenId"`
	Slot            string          `json:"slot"`
	Metadata        *MetadataRecord `json:"metadata,omitempty"`
	Creator         string          `json:"creator,omitempty"`
	Owner           string          `json:"owner,omitempty"`
	Sender          string          `json:"sender,omitempty"`
	Listed          bool            `json:"listed"`
	Price           string          `json:"price,omitempty"`
	TransactionHash string          `json:"transactionHash"`
	Timestamp       time.Time       `json:"timestamp"`
}

// TxResult is the uniform result of a mutation
type TxResult struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MarketEvent is a ledger event as published to the message broker
type MarketEvent struct {
	// ID is a sortable unique identifier assigned at publish time
	ID string `json:"id"`
	LedgerEvent
}
