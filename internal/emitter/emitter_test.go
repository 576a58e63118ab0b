package emitter_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/emitter"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/messaging"
	"github.com/feral-file/ff-stellar-market/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testEmitterMocks contains all the mocks needed for testing the emitter
type testEmitterMocks struct {
	ctrl       *gomock.Controller
	subscriber *mocks.MockSubscriber
	publisher  *mocks.MockPublisher
	clock      *mocks.MockClock
	emitter    emitter.Emitter
}

// setupTestEmitter creates all the mocks and emitter for testing
func setupTestEmitter(t *testing.T) *testEmitterMocks {
	ctrl := gomock.NewController(t)

	tm := &testEmitterMocks{
		ctrl:       ctrl,
		subscriber: mocks.NewMockSubscriber(ctrl),
		publisher:  mocks.NewMockPublisher(ctrl),
		clock:      mocks.NewMockClock(ctrl),
	}
	tm.clock.EXPECT().Now().Return(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()

	tm.emitter = emitter.NewEmitter(
		tm.subscriber,
		tm.publisher,
		emitter.Config{PublishTimeout: time.Second},
		tm.clock,
	)

	return tm
}

func testEvents() []domain.LedgerEvent {
	return []domain.LedgerEvent{
		{Type: domain.EventTypeMint, TokenID: "QmToken", OperationID: "abc-0", TransactionHash: "abc"},
		{Type: domain.EventTypeList, TokenID: "QmToken", Price: "12.5", OperationID: "def-0", TransactionHash: "def"},
	}
}

func TestEmitter_Run_PublishesEvents(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tm.ctrl.Finish()

	stopped := errors.New("subscription stopped")
	var handlerErr error
	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, handler messaging.EventHandler) error {
			handlerErr = handler(testEvents())
			return stopped
		})

	var published []*domain.MarketEvent
	tm.publisher.
		EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *domain.MarketEvent) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			published = append(published, event)
			return nil
		}).
		Times(2)

	err := tm.emitter.Run(context.Background())
	assert.ErrorIs(t, err, stopped)
	require.NoError(t, handlerErr)

	// delivery order is kept
	require.Len(t, published, 2)
	assert.Equal(t, "abc-0", published[0].OperationID)
	list := published[1]
	assert.Equal(t, "def-0", list.OperationID)
	assert.Equal(t, domain.EventTypeList, list.Type)
	assert.Equal(t, "12.5", list.Price)
	_, err = ulid.Parse(list.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, published[0].ID, list.ID)
}

func TestEmitter_Run_PublishFailure(t *testing.T) {
	tests := []struct {
		name      string
		failOn    string
		published []string
	}{
		{name: "last event fails", failOn: "def-0", published: []string{"abc-0", "def-0"}},
		{name: "first event fails and stops the batch", failOn: "abc-0", published: []string{"abc-0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestEmitter(t)
			defer tm.ctrl.Finish()

			tm.subscriber.
				EXPECT().
				SubscribeEvents(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, handler messaging.EventHandler) error {
					return handler(testEvents())
				})

			var attempted []string
			tm.publisher.
				EXPECT().
				PublishEvent(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, event *domain.MarketEvent) error {
					attempted = append(attempted, event.OperationID)
					if event.OperationID == tt.failOn {
						return errors.New("nats unavailable")
					}
					return nil
				}).
				Times(len(tt.published))

			err := tm.emitter.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to publish event "+tt.failOn)
			assert.Equal(t, tt.published, attempted)
		})
	}
}

func TestEmitter_Run_ContextCancelled(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tm.ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, handler messaging.EventHandler) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		AnyTimes()

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := tm.emitter.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmitter_Close(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tm.ctrl.Finish()

	tm.subscriber.EXPECT().Close()
	tm.publisher.EXPECT().Close()

	tm.emitter.Close()
}
