package stellar_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/mocks"
	"github.com/feral-file/ff-stellar-market/internal/providers/stellar"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func event(id string, eventType domain.EventType) domain.LedgerEvent {
	return domain.LedgerEvent{Type: eventType, OperationID: id}
}

func readyTick(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func TestSubscriber_DeliversNewEventsOldestFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().After(time.Minute).DoAndReturn(readyTick).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gomock.InOrder(
		source.EXPECT().ScanNetworkEvents(gomock.Any()).Return([]domain.LedgerEvent{
			event("b", domain.EventTypeList),
			event("x", domain.EventTypeUnknown),
			event("a", domain.EventTypeMint),
		}, nil),
		source.EXPECT().ScanNetworkEvents(gomock.Any()).Return(nil, errors.New("horizon timeout")),
		source.EXPECT().ScanNetworkEvents(gomock.Any()).Return([]domain.LedgerEvent{
			event("c", domain.EventTypeDelist),
			event("b", domain.EventTypeList),
			event("a", domain.EventTypeMint),
		}, nil),
	)
	source.EXPECT().ScanNetworkEvents(gomock.Any()).Return(nil, context.Canceled).AnyTimes()

	var batches [][]string
	sub := stellar.NewSubscriber(stellar.Config{PollInterval: time.Minute}, source, clock)
	err := sub.SubscribeEvents(ctx, func(events []domain.LedgerEvent) error {
		var ids []string
		for _, e := range events {
			ids = append(ids, e.OperationID)
		}
		batches = append(batches, ids)
		if len(batches) == 2 {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"a", "b"}, batches[0])
	assert.Equal(t, []string{"c"}, batches[1])
}

func TestSubscriber_SkipBacklog(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().After(gomock.Any()).DoAndReturn(readyTick).AnyTimes()

	gomock.InOrder(
		source.EXPECT().ScanNetworkEvents(gomock.Any()).Return([]domain.LedgerEvent{
			event("a", domain.EventTypeMint),
		}, nil),
		source.EXPECT().ScanNetworkEvents(gomock.Any()).Return([]domain.LedgerEvent{
			event("b", domain.EventTypeList),
			event("a", domain.EventTypeMint),
		}, nil),
	)

	handlerErr := errors.New("stop")
	var delivered []domain.LedgerEvent
	sub := stellar.NewSubscriber(stellar.Config{SkipBacklog: true}, source, clock)
	err := sub.SubscribeEvents(context.Background(), func(events []domain.LedgerEvent) error {
		delivered = events
		return handlerErr
	})

	assert.ErrorIs(t, err, handlerErr)
	require.Len(t, delivered, 1)
	assert.Equal(t, "b", delivered[0].OperationID)
}
