// Package poller consumes checkout-completed events and clears the local
// cart, the external trigger for emptying the snapshot after an order goes
// through.
package poller

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/devxankit/mv-store-cart/internal/mirror"
	"github.com/devxankit/mv-store-cart/internal/store"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Poller struct {
	store  *store.Store
	mirror mirror.Mirror
	reader messageReader
}

func New(st *store.Store, m mirror.Mirror, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  "cart-agent-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{store: st, mirror: m, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.readAndClear(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing reader: %v", err)
	}
}

func (p *Poller) readAndClear(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("error reading message: %v", err)
		}
		return
	}

	var payload map[string]interface{}
	if errUnmarshal := json.Unmarshal(m.Value, &payload); errUnmarshal != nil {
		log.Printf("error parsing message: %v", errUnmarshal)
		return
	}
	orderID, _ := payload["order_id"].(string)

	p.store.Clear()

	deleteCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if errDelete := p.mirror.Delete(deleteCtx); errDelete != nil {
		log.Printf("mirror delete error: %v", errDelete)
	}

	log.Printf("cart cleared after checkout (order %s)", orderID)
}
