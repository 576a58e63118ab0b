package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/mocks"
	"github.com/feral-file/ff-stellar-market/internal/providers/jetstream"
)

func testConfig() jetstream.Config {
	return jetstream.Config{
		URL:             "nats://localhost:4222",
		StreamName:      "MARKET",
		MaxReconnects:   3,
		ReconnectWait:   time.Second,
		ConnectionName:  "event-emitter",
		DuplicateWindow: 24 * time.Hour,
	}
}

func TestNewPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.
		EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		DoAndReturn(func(url string, opts ...nats.Option) (adapter.NatsConn, adapter.JetStream, error) {
			assert.NotEmpty(t, opts)
			return conn, js, nil
		})
	js.
		EXPECT().
		EnsureStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cfg natsjs.StreamConfig) error {
			assert.Equal(t, "MARKET", cfg.Name)
			assert.Equal(t, []string{"market.events.>"}, cfg.Subjects)
			assert.Equal(t, 24*time.Hour, cfg.Duplicates)
			return nil
		})

	pub, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)
	require.NotNil(t, pub)

	conn.EXPECT().Drain().Return(nil)
	pub.Close()
}

func TestNewPublisher_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("connection refused"))
	_, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to NATS")

	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(conn, js, nil)
	js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).Return(errors.New("not authorized"))
	conn.EXPECT().Close()
	_, err = jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure stream MARKET")
}

func TestPublisher_PublishEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(conn, js, nil)
	js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).Return(nil)

	pub, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)

	event := &domain.MarketEvent{
		ID: "01HKQ3Z0000000000000000000",
		LedgerEvent: domain.LedgerEvent{
			Type:        domain.EventTypeTransferSent,
			TokenID:     "QmToken",
			OperationID: "abc-1",
		},
	}

	js.
		EXPECT().
		Publish(gomock.Any(), "market.events.transfer_sent", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, subject string, data []byte, opts ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			assert.Len(t, opts, 2)
			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, "01HKQ3Z0000000000000000000", decoded["id"])
			assert.Equal(t, "abc-1", decoded["operationId"])
			return &natsjs.PubAck{Stream: "MARKET", Sequence: 1}, nil
		})
	require.NoError(t, pub.PublishEvent(context.Background(), event))

	js.
		EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("timeout"))
	err = pub.PublishEvent(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event to market.events.transfer_sent")
}

func TestPublisher_CloseFallsBackWhenDrainFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(conn, js, nil)
	js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).Return(nil)

	pub, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)

	gomock.InOrder(
		conn.EXPECT().Drain().Return(errors.New("connection closed")),
		conn.EXPECT().Close(),
	)
	pub.Close()
}

func TestBuildSubject(t *testing.T) {
	assert.Equal(t, "market.events.mint", jetstream.BuildSubject(domain.EventTypeMint))
}
