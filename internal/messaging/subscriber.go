package messaging

import (
	"context"

	"github.com/feral-file/ff-stellar-market/internal/domain"
)

// EventHandler is called with the events of one poll, oldest first
type EventHandler func(events []domain.LedgerEvent) error

// Subscriber defines the interface for following marketplace events on the ledger
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeEvents delivers new events to handler until ctx is done or handler fails
	SubscribeEvents(ctx context.Context, handler EventHandler) error

	// Close releases the resources of the subscriber
	Close()
}
