package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/api/middleware"
)

func signSession(t *testing.T, key *rsa.PrivateKey, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuthenticator_Authenticate(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	publicPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	account := keypair.MustRandom().Address()
	hour := jwt.NewNumericDate(time.Now().Add(time.Hour))

	authenticator := middleware.NewAuthenticator(middleware.AuthConfig{
		JWTPublicKey: publicPEM,
		APIKeys:      []string{"service-key", ""},
	})

	tests := []struct {
		name        string
		header      string
		wantType    string
		wantAccount string
		wantErr     string
	}{
		{
			name:        "wallet session",
			header:      "Bearer " + signSession(t, privateKey, jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: account, ExpiresAt: hour}),
			wantType:    middleware.AUTH_TYPE_WALLET,
			wantAccount: account,
		},
		{
			name:     "api key, scheme is case insensitive",
			header:   "apikey service-key",
			wantType: middleware.AUTH_TYPE_APIKEY,
		},
		{
			name:    "missing header",
			header:  "",
			wantErr: "missing Authorization header",
		},
		{
			name:    "no credentials",
			header:  "Bearer",
			wantErr: "invalid Authorization header format",
		},
		{
			name:    "unknown scheme",
			header:  "Basic dXNlcjpwYXNz",
			wantErr: "unsupported authorization type",
		},
		{
			name:    "wrong api key",
			header:  "ApiKey other",
			wantErr: "invalid API key",
		},
		{
			name:    "subject is not an account",
			header:  "Bearer " + signSession(t, privateKey, jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: "user-42", ExpiresAt: hour}),
			wantErr: "is not a Stellar account",
		},
		{
			name:    "expired session",
			header:  "Bearer " + signSession(t, privateKey, jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: account, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}),
			wantErr: "invalid session token",
		},
		{
			name:    "session without expiry",
			header:  "Bearer " + signSession(t, privateKey, jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: account}),
			wantErr: "invalid session token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller, err := authenticator.Authenticate(tt.header)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, caller.Type)
			assert.Equal(t, tt.wantAccount, caller.Account)
		})
	}
}

func TestAuthenticator_Unconfigured(t *testing.T) {
	authenticator := middleware.NewAuthenticator(middleware.AuthConfig{})

	_, err := authenticator.Authenticate("Bearer token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet sessions are not enabled")

	_, err = authenticator.Authenticate("ApiKey anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API keys configured")
}
