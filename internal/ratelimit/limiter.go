package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-stellar-market/internal/logger"
)

// Provider names used by the outbound clients
const (
	ProviderHorizon = "horizon"
	ProviderPinata  = "pinata"
)

// ProviderConfig is the token bucket of one provider
type ProviderConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Limiter throttles outbound requests per provider
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit_limiter.go -package=mocks -mock_names=Limiter=MockRateLimiter
type Limiter interface {
	// Wait blocks until the provider allows one more request or ctx is done
	Wait(ctx context.Context, provider string) error
}

type limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	fallback ProviderConfig
}

// New creates a limiter. Providers without a configuration use the fallback bucket;
// a non-positive rate disables throttling for that provider.
func New(providers map[string]ProviderConfig, fallback ProviderConfig) Limiter {
	l := &limiter{
		limiters: make(map[string]*rate.Limiter, len(providers)),
		fallback: fallback,
	}
	for name, cfg := range providers {
		l.limiters[name] = newRateLimiter(cfg)
	}

	logger.Info("Rate limiter initialized",
		zap.Int("providers", len(providers)),
		zap.Float64("fallback_rps", fallback.RequestsPerSecond),
	)
	return l
}

func newRateLimiter(cfg ProviderConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

func (l *limiter) get(provider string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	rl, ok := l.limiters[provider]
	if !ok {
		rl = newRateLimiter(l.fallback)
		l.limiters[provider] = rl
	}
	return rl
}

func (l *limiter) Wait(ctx context.Context, provider string) error {
	if err := l.get(provider).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", provider, err)
	}
	return nil
}

// Do waits for the provider's limiter and then runs fn
func Do[T any](ctx context.Context, l Limiter, provider string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if l != nil {
		if err := l.Wait(ctx, provider); err != nil {
			return zero, err
		}
	}
	return fn(ctx)
}
