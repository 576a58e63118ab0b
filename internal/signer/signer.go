package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// ErrorKind classifies signer failures
type ErrorKind string

const (
	// KindUnavailable means no signer could be reached
	KindUnavailable ErrorKind = "unavailable"
	// KindRejected means the holder of the key declined to sign
	KindRejected ErrorKind = "rejected"
	// KindFailed means the signing call itself failed
	KindFailed ErrorKind = "failed"
)

// Error is returned for every signing failure
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("signer %s", e.Kind)
	}
	return fmt.Sprintf("signer %s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap converts any error into a signer Error, keeping an existing kind
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var sErr *Error
	if errors.As(err, &sErr) {
		return err
	}
	return &Error{Kind: KindFailed, Cause: err}
}

// Signer signs serialized transactions. Key material never leaves the implementation.
//
//go:generate mockgen -source=signer.go -destination=../mocks/signer.go -package=mocks -mock_names=Signer=MockSigner
type Signer interface {
	Sign(ctx context.Context, txXDR string, networkPassphrase string) (string, error)
}

// KeypairSigner signs with a locally held secret seed
type KeypairSigner struct {
	kp *keypair.Full
}

// NewKeypairSigner parses a secret seed
func NewKeypairSigner(seed string) (*KeypairSigner, error) {
	if seed == "" {
		return nil, &Error{Kind: KindUnavailable, Cause: errors.New("no secret seed configured")}
	}
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		// the parse error is not included, it may echo the seed
		return nil, &Error{Kind: KindUnavailable, Cause: errors.New("invalid secret seed")}
	}
	return &KeypairSigner{kp: kp}, nil
}

// NewKeypairSignerFromFull wraps an already parsed keypair
func NewKeypairSignerFromFull(kp *keypair.Full) *KeypairSigner {
	return &KeypairSigner{kp: kp}
}

// Address returns the public account id of the signer
func (s *KeypairSigner) Address() string {
	return s.kp.Address()
}

func (s *KeypairSigner) Sign(ctx context.Context, txXDR string, networkPassphrase string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Kind: KindUnavailable, Cause: err}
	}

	generic, err := txnbuild.TransactionFromXDR(txXDR)
	if err != nil {
		return "", &Error{Kind: KindFailed, Cause: fmt.Errorf("failed to decode transaction: %w", err)}
	}

	tx, ok := generic.Transaction()
	if !ok {
		return "", &Error{Kind: KindRejected, Cause: errors.New("fee bump envelopes are not signed")}
	}

	signed, err := tx.Sign(networkPassphrase, s.kp)
	if err != nil {
		return "", &Error{Kind: KindFailed, Cause: err}
	}

	envelope, err := signed.Base64()
	if err != nil {
		return "", &Error{Kind: KindFailed, Cause: err}
	}
	return envelope, nil
}
