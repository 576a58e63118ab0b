package signer

import (
	"strings"

	"github.com/feral-file/ff-stellar-market/internal/domain"
)

// Identity is the acting account together with the capability to sign for it
type Identity struct {
	Account string
	Signer  Signer
}

// Validate returns domain.ErrIdentityRequired unless both parts are present
func (i *Identity) Validate() error {
	if i == nil || strings.TrimSpace(i.Account) == "" || i.Signer == nil {
		return domain.ErrIdentityRequired
	}
	return nil
}
