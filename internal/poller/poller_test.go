package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"github.com/devxankit/mv-store-cart/internal/mirror"
	"github.com/devxankit/mv-store-cart/internal/store"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCartAPI struct{}

func (fakeCartAPI) FetchCart(context.Context) ([]domain.CartLineItem, error) {
	return nil, nil
}

func (fakeCartAPI) AddToCart(context.Context, string, int) ([]domain.CartLineItem, error) {
	return nil, nil
}

func (fakeCartAPI) RemoveFromCart(context.Context, string) ([]domain.CartLineItem, error) {
	return nil, nil
}

func (fakeCartAPI) UpdateQuantity(context.Context, string, int) ([]domain.CartLineItem, error) {
	return nil, nil
}

type fakeReader struct {
	messages []kafka.Message
	next     int
	closed   bool
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if ctx.Err() != nil {
		return kafka.Message{}, ctx.Err()
	}
	if f.next >= len(f.messages) {
		return kafka.Message{}, errors.New("no more messages")
	}
	m := f.messages[f.next]
	f.next++
	return m, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func loadedStore(t *testing.T) (*store.Store, mirror.Mirror) {
	t.Helper()
	st := store.New(fakeCartAPI{})
	st.Load(domain.CartSnapshot{
		Items: []domain.CartLineItem{
			{Product: domain.ProductRef{ID: "p1", Price: decimal.NewFromInt(100), Stock: 5}, Quantity: 2},
		},
		Total:     decimal.NewFromInt(200),
		ItemCount: 2,
	})

	m := mirror.NewMemoryMirror()
	require.NoError(t, m.Save(context.Background(), st.Snapshot()))
	return st, m
}

func TestReadAndClear_EmptiesCartAndMirror(t *testing.T) {
	st, m := loadedStore(t)
	reader := &fakeReader{
		messages: []kafka.Message{
			{Value: []byte(`{"user_id":"u1","order_id":"order-42"}`)},
		},
	}
	sut := &Poller{store: st, mirror: m, reader: reader}

	sut.readAndClear(context.Background())

	snap := st.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0, snap.ItemCount)

	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, mirror.ErrMirrorMiss)
}

func TestReadAndClear_BadPayloadLeavesCartAlone(t *testing.T) {
	st, m := loadedStore(t)
	reader := &fakeReader{
		messages: []kafka.Message{
			{Value: []byte(`not json`)},
		},
	}
	sut := &Poller{store: st, mirror: m, reader: reader}

	sut.readAndClear(context.Background())

	assert.Equal(t, 2, st.Snapshot().ItemCount)
	_, err := m.Load(context.Background())
	assert.NoError(t, err)
}

func TestReadAndClear_ReaderError(t *testing.T) {
	st, m := loadedStore(t)
	sut := &Poller{store: st, mirror: m, reader: &fakeReader{}}

	sut.readAndClear(context.Background())

	assert.Equal(t, 2, st.Snapshot().ItemCount)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	st, m := loadedStore(t)
	sut := &Poller{store: st, mirror: m, reader: &fakeReader{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		sut.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestClose_ClosesReader(t *testing.T) {
	reader := &fakeReader{}
	sut := &Poller{reader: reader}

	sut.Close()

	assert.True(t, reader.closed)
}
