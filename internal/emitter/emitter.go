package emitter

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/messaging"
	"github.com/feral-file/ff-stellar-market/internal/metrics"
)

// Config holds the configuration for the event emitter
type Config struct {
	// PublishTimeout bounds a single publish
	PublishTimeout time.Duration
}

// Emitter defines the interface for the event emitter
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Run starts the event emitter
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

// emitter follows marketplace events on the ledger and publishes them to NATS
type emitter struct {
	subscriber messaging.Subscriber
	publisher  messaging.Publisher
	config     Config
	clock      adapter.Clock
}

// NewEmitter creates a new event emitter
func NewEmitter(
	sub messaging.Subscriber,
	pub messaging.Publisher,
	cfg Config,
	clock adapter.Clock,
) Emitter {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 10 * time.Second
	}
	return &emitter{
		subscriber: sub,
		publisher:  pub,
		config:     cfg,
		clock:      clock,
	}
}

// Run starts the event emitter
func (e *emitter) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.InfoCtx(ctx, "Starting event subscription")

		handler := func(events []domain.LedgerEvent) error {
			return e.publish(ctx, events)
		}

		if err := e.subscriber.SubscribeEvents(ctx, handler); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish publishes the events of one poll in delivery order, oldest first, and stops at
// the first failure. The rest of the batch is left to the next delivery.
func (e *emitter) publish(ctx context.Context, events []domain.LedgerEvent) error {
	for i, event := range events {
		marketEvent := &domain.MarketEvent{
			ID:          ulid.MustNewDefault(e.clock.Now()).String(),
			LedgerEvent: event,
		}
		if err := e.publishOne(ctx, marketEvent); err != nil {
			logger.WarnCtx(ctx, "Stopped publishing batch", zap.Int("published", i), zap.Int("count", len(events)))
			return err
		}
	}

	logger.InfoCtx(ctx, "Published events", zap.Int("count", len(events)))
	return nil
}

func (e *emitter) publishOne(ctx context.Context, event *domain.MarketEvent) error {
	ctx, cancel := context.WithTimeout(ctx, e.config.PublishTimeout)
	defer cancel()

	if err := e.publisher.PublishEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.OperationID, err)
	}
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
	return nil
}

// Close closes the emitter and cleans up resources
func (e *emitter) Close() {
	e.subscriber.Close()
	e.publisher.Close()
}
