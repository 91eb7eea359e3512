package mirror

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"github.com/devxankit/mv-store-cart/internal/store"
)

// Seed reads the mirrored snapshot once and feeds it into the store before
// the first remote fetch resolves, so the UI shows a plausible cart
// immediately. Missing or corrupt data is swallowed and the store simply
// starts empty.
func Seed(ctx context.Context, m Mirror, st *store.Store) {
	snap, err := m.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrMirrorMiss) {
			log.Printf("mirror load error: %v", err)
		}
		return
	}
	st.Load(snap)
}

// Watch makes the mirror an explicit store subscriber: every state change is
// written out, best effort. Persistence failures are logged and never
// surface to the user. Returns the unsubscribe function.
func Watch(st *store.Store, m Mirror) func() {
	return st.Subscribe(func(snap domain.CartSnapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := m.Save(ctx, snap); err != nil {
			log.Printf("mirror save error: %v", err)
		}
	})
}
