package signer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/signer"
)

func unsignedEnvelope(t *testing.T, source string) string {
	t.Helper()
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: source, Sequence: 1},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{&txnbuild.ManageData{Name: "metadata_cid", Value: []byte("bafy")}},
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewInfiniteTimeout()},
	})
	require.NoError(t, err)
	envelope, err := tx.Base64()
	require.NoError(t, err)
	return envelope
}

func TestKeypairSigner_Sign(t *testing.T) {
	kp := keypair.MustRandom()
	s := signer.NewKeypairSignerFromFull(kp)
	assert.Equal(t, kp.Address(), s.Address())

	signedXDR, err := s.Sign(context.Background(), unsignedEnvelope(t, kp.Address()), network.TestNetworkPassphrase)
	require.NoError(t, err)

	generic, err := txnbuild.TransactionFromXDR(signedXDR)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	require.Len(t, tx.Signatures(), 1)

	hash, err := tx.Hash(network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.NoError(t, kp.Verify(hash[:], tx.Signatures()[0].Signature))
}

func TestKeypairSigner_Errors(t *testing.T) {
	_, err := signer.NewKeypairSigner("")
	var sErr *signer.Error
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, signer.KindUnavailable, sErr.Kind)

	_, err = signer.NewKeypairSigner("SNOTASEED")
	require.True(t, errors.As(err, &sErr))
	assert.NotContains(t, err.Error(), "SNOTASEED")

	s := signer.NewKeypairSignerFromFull(keypair.MustRandom())
	_, err = s.Sign(context.Background(), "garbage", network.TestNetworkPassphrase)
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, signer.KindFailed, sErr.Kind)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Sign(ctx, "garbage", network.TestNetworkPassphrase)
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, signer.KindUnavailable, sErr.Kind)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, signer.Wrap(nil))

	wrapped := signer.Wrap(errors.New("wallet closed"))
	var sErr *signer.Error
	require.True(t, errors.As(wrapped, &sErr))
	assert.Equal(t, signer.KindFailed, sErr.Kind)

	rejected := &signer.Error{Kind: signer.KindRejected}
	assert.Same(t, rejected, signer.Wrap(rejected))
	assert.Equal(t, "signer rejected", rejected.Error())
}

func TestIdentity_Validate(t *testing.T) {
	var nilIdentity *signer.Identity
	assert.ErrorIs(t, nilIdentity.Validate(), domain.ErrIdentityRequired)
	assert.ErrorIs(t, (&signer.Identity{Account: "GA"}).Validate(), domain.ErrIdentityRequired)

	s := signer.NewKeypairSignerFromFull(keypair.MustRandom())
	assert.ErrorIs(t, (&signer.Identity{Signer: s}).Validate(), domain.ErrIdentityRequired)
	assert.NoError(t, (&signer.Identity{Account: s.Address(), Signer: s}).Validate())
}
