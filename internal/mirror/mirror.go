// Package mirror persists a best-effort copy of the cart snapshot across
// restarts. The mirror is a cache with no independent truth: it pre-seeds
// the store before the first remote fetch resolves and is overwritten by
// the server's answer as soon as one arrives.
package mirror

import (
	"context"
	"errors"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"github.com/shopspring/decimal"
)

type Mirror interface {
	Load(ctx context.Context) (domain.CartSnapshot, error)
	Save(ctx context.Context, snap domain.CartSnapshot) error
	Delete(ctx context.Context) error
}

var ErrMirrorMiss = errors.New("mirror miss")

// persistedState is the stored shape: items plus the derived fields as they
// were at write time. Loading/error flags are transient and never persisted.
type persistedState struct {
	Items     []domain.CartLineItem `json:"items"`
	Total     decimal.Decimal       `json:"total"`
	ItemCount int                   `json:"itemCount"`
}

func toPersisted(snap domain.CartSnapshot) persistedState {
	return persistedState{Items: snap.Items, Total: snap.Total, ItemCount: snap.ItemCount}
}

func (p persistedState) snapshot() domain.CartSnapshot {
	return domain.CartSnapshot{Items: p.Items, Total: p.Total, ItemCount: p.ItemCount}
}
