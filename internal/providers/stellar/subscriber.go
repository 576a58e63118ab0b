package stellar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/messaging"
)

const defaultPollInterval = 30 * time.Second

// Config holds the configuration for following the network history
type Config struct {
	PollInterval time.Duration
	// SkipBacklog drops the events already in the history window at startup
	SkipBacklog bool
}

// EventSource returns the classified events of the network history window, newest first
//
//go:generate mockgen -source=subscriber.go -destination=../../mocks/event_source.go -package=mocks -mock_names=EventSource=MockEventSource
type EventSource interface {
	ScanNetworkEvents(ctx context.Context) ([]domain.LedgerEvent, error)
}

type stellarSubscriber struct {
	source EventSource
	cfg    Config
	clock  adapter.Clock
	// seen holds the operation ids of the last polled window
	seen map[string]bool
}

// NewSubscriber creates a subscriber polling the network history window
func NewSubscriber(cfg Config, source EventSource, clock adapter.Clock) messaging.Subscriber {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &stellarSubscriber{
		source: source,
		cfg:    cfg,
		clock:  clock,
		seen:   make(map[string]bool),
	}
}

// SubscribeEvents polls the history window and hands new marketplace events to handler.
// A failed poll is retried on the next tick, a failed handler ends the subscription.
func (s *stellarSubscriber) SubscribeEvents(ctx context.Context, handler messaging.EventHandler) error {
	first := true
	for {
		events, err := s.source.ScanNetworkEvents(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			logger.WarnCtx(ctx, "failed to poll network events", zap.Error(err))
		default:
			fresh := s.fresh(events)
			if first && s.cfg.SkipBacklog {
				logger.InfoCtx(ctx, "skipping backlog", zap.Int("events", len(fresh)))
			} else if len(fresh) > 0 {
				if err := handler(fresh); err != nil {
					return err
				}
			}
			first = false
			s.remember(events)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.cfg.PollInterval):
		}
	}
}

// fresh returns the unseen events that are not unknown, oldest first
func (s *stellarSubscriber) fresh(events []domain.LedgerEvent) []domain.LedgerEvent {
	var fresh []domain.LedgerEvent
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Type == domain.EventTypeUnknown || s.seen[e.OperationID] {
			continue
		}
		fresh = append(fresh, e)
	}
	return fresh
}

func (s *stellarSubscriber) remember(events []domain.LedgerEvent) {
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		seen[e.OperationID] = true
	}
	s.seen = seen
}

// Close is a no-op, the subscriber holds no connection of its own
func (s *stellarSubscriber) Close() {}
