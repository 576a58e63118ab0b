package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stellar/go/strkey"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-stellar-market/internal/api/shared/errors"
	"github.com/feral-file/ff-stellar-market/internal/logger"
)

const (
	AUTH_TYPE_KEY    = "auth_type"
	AUTH_SUBJECT_KEY = "auth_subject"
	JWT_CLAIMS_KEY   = "jwt_claims"

	AUTH_TYPE_WALLET = "wallet"
	AUTH_TYPE_APIKEY = "apikey"

	// clockSkew tolerated on exp and nbf of wallet sessions
	clockSkew = 30 * time.Second
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format, signs wallet sessions
	APIKeys      []string
}

// Caller is an authenticated request origin. Wallet sessions carry the Stellar
// account they were issued for; API key callers are trusted services without one.
type Caller struct {
	Type    string
	Account string
	Claims  *jwt.RegisteredClaims
}

// Authenticator checks Authorization headers against the configured credentials
type Authenticator struct {
	publicKey *rsa.PublicKey
	// keyErr is reported to wallet callers when the public key is missing or malformed
	keyErr  error
	apiKeys map[string]struct{}
	parser  *jwt.Parser
}

// NewAuthenticator parses the configured credentials once
func NewAuthenticator(cfg AuthConfig) *Authenticator {
	a := &Authenticator{
		apiKeys: make(map[string]struct{}, len(cfg.APIKeys)),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
			jwt.WithLeeway(clockSkew),
			jwt.WithExpirationRequired(),
		),
	}
	for _, key := range cfg.APIKeys {
		if key != "" {
			a.apiKeys[key] = struct{}{}
		}
	}

	if cfg.JWTPublicKey == "" {
		a.keyErr = errors.New("wallet sessions are not enabled")
	} else if a.publicKey, a.keyErr = parseRSAPublicKey(cfg.JWTPublicKey); a.keyErr != nil {
		logger.Warn("Wallet sessions disabled, invalid JWT public key", zap.Error(a.keyErr))
	}

	return a
}

// Authenticate resolves the caller of an Authorization header
func (a *Authenticator) Authenticate(authHeader string) (*Caller, error) {
	if authHeader == "" {
		return nil, errors.New("missing Authorization header")
	}

	scheme, credentials, ok := strings.Cut(authHeader, " ")
	if !ok || credentials == "" {
		return nil, errors.New("invalid Authorization header format")
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		return a.walletSession(credentials)
	case "apikey":
		if len(a.apiKeys) == 0 {
			return nil, errors.New("no API keys configured")
		}
		if _, ok := a.apiKeys[credentials]; !ok {
			return nil, errors.New("invalid API key")
		}
		return &Caller{Type: AUTH_TYPE_APIKEY}, nil
	default:
		return nil, fmt.Errorf("unsupported authorization type: %s", scheme)
	}
}

// walletSession validates a session token whose subject is the wallet's account id
func (a *Authenticator) walletSession(token string) (*Caller, error) {
	if a.keyErr != nil {
		return nil, a.keyErr
	}

	claims := &jwt.RegisteredClaims{}
	_, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	if !strkey.IsValidEd25519PublicKey(claims.Subject) {
		return nil, fmt.Errorf("session subject %q is not a Stellar account", claims.Subject)
	}

	return &Caller{Type: AUTH_TYPE_WALLET, Account: claims.Subject, Claims: claims}, nil
}

// Auth returns a gin middleware accepting wallet sessions (Bearer) and API keys (ApiKey)
func Auth(cfg AuthConfig) gin.HandlerFunc {
	authenticator := NewAuthenticator(cfg)

	return func(c *gin.Context) {
		caller, err := authenticator.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Authentication failed", err.Error()))
			return
		}

		c.Set(AUTH_TYPE_KEY, caller.Type)
		if caller.Account != "" {
			c.Set(AUTH_SUBJECT_KEY, caller.Account)
			c.Set(JWT_CLAIMS_KEY, caller.Claims)
		}
		logger.DebugCtx(c.Request.Context(), "Authenticated",
			zap.String("type", caller.Type),
			logger.Account(caller.Account),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

// SubjectAccount returns the account of a wallet session, empty for API key callers
func SubjectAccount(c *gin.Context) string {
	if c.GetString(AUTH_TYPE_KEY) != AUTH_TYPE_WALLET {
		return ""
	}
	return c.GetString(AUTH_SUBJECT_KEY)
}

func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}
