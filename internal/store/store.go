// Package store holds the client-side cart state and mediates every
// mutation through the remote cart service. The server stays authoritative:
// each fulfilled operation replaces the line items wholesale and the derived
// fields are recomputed from them, never patched.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"github.com/devxankit/mv-store-cart/internal/remote"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidQuantity is returned before any request is issued when a caller
// asks for a quantity below one. Zero and negative quantities never reach
// the network layer.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Generic fallbacks when the server error payload carries no message.
const (
	msgFetchFailed  = "Failed to fetch cart"
	msgAddFailed    = "Failed to add to cart"
	msgRemoveFailed = "Failed to remove from cart"
	msgUpdateFailed = "Failed to update cart quantity"
)

// Store is the single authoritative source of cart state for the UI.
//
// Each network operation has three observable phases: pending (loading set,
// error cleared), fulfilled (items replaced, totals recomputed) and rejected
// (error set, items untouched). All operations share one snapshot, so when
// two are in flight the last completion wins; there is no sequencing to
// discard stale responses and a slow earlier response can overwrite a later
// one. Known trade-off, kept as-is.
type Store struct {
	mu      sync.RWMutex
	snap    domain.CartSnapshot
	api     remote.CartAPI
	subs    map[int]func(domain.CartSnapshot)
	nextSub int
	sfg     singleflight.Group // collapses concurrent fetches into one request
}

func New(api remote.CartAPI) *Store {
	return &Store{
		snap: domain.EmptySnapshot(),
		api:  api,
		subs: make(map[int]func(domain.CartSnapshot)),
	}
}

// Snapshot returns a copy of the current cart state.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snap)
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe function. Subscribers get a copy and run outside the store
// lock, so they may read the store but must not assume the state they were
// handed is still current.
func (s *Store) Subscribe(fn func(domain.CartSnapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Fetch requests the current server-side cart. Concurrent fetches share one
// request via singleflight.
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()
	v, err, _ := s.sfg.Do("fetch", func() (interface{}, error) {
		return s.api.FetchCart(ctx)
	})
	if err != nil {
		s.reject(remote.ErrorMessage(err, msgFetchFailed))
		return err
	}
	s.fulfill(v.([]domain.CartLineItem))
	return nil
}

// AddItem requests a server-side addition or increment of the product.
func (s *Store) AddItem(ctx context.Context, product domain.ProductRef, quantity int) error {
	s.begin()
	items, err := s.api.AddToCart(ctx, product.ID, quantity)
	if err != nil {
		s.reject(remote.ErrorMessage(err, msgAddFailed))
		return err
	}
	s.fulfill(items)
	return nil
}

// RemoveItem requests removal of the product's line item.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.begin()
	items, err := s.api.RemoveFromCart(ctx, productID)
	if err != nil {
		s.reject(remote.ErrorMessage(err, msgRemoveFailed))
		return err
	}
	s.fulfill(items)
	return nil
}

// UpdateQuantity requests a quantity change for the product's line item.
// Quantities below one are rejected here, before the request is issued, and
// leave the snapshot unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.begin()
	items, err := s.api.UpdateQuantity(ctx, productID, quantity)
	if err != nil {
		s.reject(remote.ErrorMessage(err, msgUpdateFailed))
		return err
	}
	s.fulfill(items)
	return nil
}

// Clear resets the cart locally without contacting the server. Used on
// logout and when a checkout-completed event arrives.
func (s *Store) Clear() {
	s.mu.Lock()
	s.snap.Items = []domain.CartLineItem{}
	s.snap.Total = decimal.Zero
	s.snap.ItemCount = 0
	snap, subs := s.changed()
	s.mu.Unlock()
	notify(snap, subs)
}

// Load overwrites items and the derived fields from a trusted seed, without
// recomputation and without contacting the server. This is the mirror
// seeding path only; a later successful Fetch always overwrites it.
func (s *Store) Load(seed domain.CartSnapshot) {
	s.mu.Lock()
	s.snap.Items = seed.Items
	if s.snap.Items == nil {
		s.snap.Items = []domain.CartLineItem{}
	}
	s.snap.Total = seed.Total
	s.snap.ItemCount = seed.ItemCount
	snap, subs := s.changed()
	s.mu.Unlock()
	notify(snap, subs)
}

func (s *Store) begin() {
	s.mu.Lock()
	s.snap.Loading = true
	s.snap.Error = ""
	snap, subs := s.changed()
	s.mu.Unlock()
	notify(snap, subs)
}

func (s *Store) fulfill(items []domain.CartLineItem) {
	s.mu.Lock()
	if items == nil {
		items = []domain.CartLineItem{}
	}
	s.snap.Loading = false
	s.snap.Items = items
	s.snap.Total, s.snap.ItemCount = domain.Recompute(items)
	snap, subs := s.changed()
	s.mu.Unlock()
	notify(snap, subs)
}

func (s *Store) reject(message string) {
	s.mu.Lock()
	s.snap.Loading = false
	s.snap.Error = message
	snap, subs := s.changed()
	s.mu.Unlock()
	notify(snap, subs)
}

// changed is called with the lock held and captures what notify needs.
func (s *Store) changed() (domain.CartSnapshot, []func(domain.CartSnapshot)) {
	subs := make([]func(domain.CartSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return cloneSnapshot(s.snap), subs
}

func notify(snap domain.CartSnapshot, subs []func(domain.CartSnapshot)) {
	for _, fn := range subs {
		fn(snap)
	}
}

func cloneSnapshot(snap domain.CartSnapshot) domain.CartSnapshot {
	items := make([]domain.CartLineItem, len(snap.Items))
	copy(items, snap.Items)
	snap.Items = items
	return snap
}
