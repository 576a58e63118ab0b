package registry

import (
	"fmt"
	"strings"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
)

// Blocklist defines the interface for moderation lookups
//
//go:generate mockgen -source=blocklist.go -destination=../mocks/blocklist.go -package=mocks -mock_names=Blocklist=MockBlocklist,BlocklistLoader=MockBlocklistLoader
type Blocklist interface {
	// IsBlockedAccount checks if a seller or creator account is blocked
	IsBlockedAccount(account string) bool

	// IsBlockedToken checks if a token is blocked
	IsBlockedToken(tokenID domain.TokenID) bool
}

// BlocklistData represents the structure of the blocklist.json file
type BlocklistData struct {
	Accounts []string `json:"accounts"`
	Tokens   []string `json:"tokens"`
}

type blocklist struct {
	accounts map[string]bool
	tokens   map[domain.TokenID]bool
}

// BlocklistLoader defines the interface for loading blocklists from files
type BlocklistLoader interface {
	// Load loads the blocklist from a JSON file
	Load(filePath string) (Blocklist, error)
}

type blocklistLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewBlocklistLoader creates a new BlocklistLoader with injected dependencies
func NewBlocklistLoader(fs adapter.FileSystem, json adapter.JSON) BlocklistLoader {
	return &blocklistLoader{
		fs:   fs,
		json: json,
	}
}

// Load loads the blocklist from a JSON file
func (l *blocklistLoader) Load(filePath string) (Blocklist, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocklist file: %w", err)
	}

	var blocklistData BlocklistData
	if err := l.json.Unmarshal(data, &blocklistData); err != nil {
		return nil, fmt.Errorf("failed to parse blocklist JSON: %w", err)
	}

	return NewBlocklist(blocklistData), nil
}

// NewBlocklist builds the lookup maps of a blocklist.
// Account ids are compared case-insensitively, token ids exactly.
func NewBlocklist(data BlocklistData) Blocklist {
	bl := &blocklist{
		accounts: make(map[string]bool, len(data.Accounts)),
		tokens:   make(map[domain.TokenID]bool, len(data.Tokens)),
	}
	for _, account := range data.Accounts {
		bl.accounts[strings.ToUpper(strings.TrimSpace(account))] = true
	}
	for _, token := range data.Tokens {
		bl.tokens[domain.TokenID(strings.TrimSpace(token))] = true
	}
	return bl
}

// IsBlockedAccount checks if a seller or creator account is blocked
func (b *blocklist) IsBlockedAccount(account string) bool {
	if b == nil {
		return false
	}
	return b.accounts[strings.ToUpper(account)]
}

// IsBlockedToken checks if a token is blocked
func (b *blocklist) IsBlockedToken(tokenID domain.TokenID) bool {
	if b == nil {
		return false
	}
	return b.tokens[tokenID]
}
