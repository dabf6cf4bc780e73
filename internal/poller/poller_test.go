package poller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReader struct {
	messages chan kafka.Message
	errs     chan error
	closed   bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{messages: make(chan kafka.Message, 16), errs: make(chan error, 4)}
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case err := <-f.errs:
		return kafka.Message{}, err
	case m := <-f.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

type mockClearer struct {
	m       sync.Mutex
	cleared []string
	err     error
}

func (m *mockClearer) Clear(_ context.Context, userID string) ([]domain.CartLine, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.cleared = append(m.cleared, userID)
	if m.err != nil {
		return nil, m.err
	}
	return []domain.CartLine{}, nil
}

func (m *mockClearer) clearedUsers() []string {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]string(nil), m.cleared...)
}

func eventMessage(t *testing.T, event domain.OrderPlacedEvent) kafka.Message {
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.UserID), Value: data}
}

func newTestPoller(carts CartClearer, logger *zap.Logger) (*Poller, *fakeReader) {
	r := newFakeReader()
	return &Poller{carts: carts, reader: r, logger: logger, retryBackoff: time.Millisecond}, r
}

func TestPoller_ClearsCartOnOrderPlaced(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	carts := &mockClearer{}
	p, r := newTestPoller(carts, zap.NewNop())

	r.messages <- kafka.Message{Value: []byte("not json")}
	r.messages <- eventMessage(t, domain.OrderPlacedEvent{Type: "order.shipped", UserID: "ignored"})
	r.messages <- eventMessage(t, domain.OrderPlacedEvent{Type: domain.EventTypeOrderPlaced})
	r.messages <- eventMessage(t, domain.OrderPlacedEvent{Type: domain.EventTypeOrderPlaced, UserID: "u1", OrderID: "o1"})

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(carts.clearedUsers()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"u1"}, carts.clearedUsers())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPoller_MissingCartIsNotAnError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	carts := &mockClearer{err: repository.ErrCartNotFound}
	p, r := newTestPoller(carts, zap.New(core))

	r.messages <- eventMessage(t, domain.OrderPlacedEvent{Type: domain.EventTypeOrderPlaced, UserID: "u1"})
	require.NoError(t, p.handleNext(context.Background()))
	assert.Equal(t, 0, logs.Len())
}

func TestPoller_ClearFailureIsLoggedAndSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	carts := &mockClearer{err: errors.New("mongo timeout")}
	p, r := newTestPoller(carts, zap.New(core))

	r.messages <- eventMessage(t, domain.OrderPlacedEvent{Type: domain.EventTypeOrderPlaced, UserID: "u1"})
	require.NoError(t, p.handleNext(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("clear cart after order failed").Len())
}

func TestPoller_ReadErrorsAreRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	carts := &mockClearer{}
	p, r := newTestPoller(carts, zap.NewNop())
	r.errs <- errors.New("broker unreachable")
	r.messages <- eventMessage(t, domain.OrderPlacedEvent{Type: domain.EventTypeOrderPlaced, UserID: "u2"})

	go p.Run(ctx)
	require.Eventually(t, func() bool {
		return len(carts.clearedUsers()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPoller_Close(t *testing.T) {
	p, r := newTestPoller(&mockClearer{}, zap.NewNop())
	p.Close()
	assert.True(t, r.closed)
}
