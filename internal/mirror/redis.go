package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"github.com/redis/go-redis/v9"
)

// mirrorKey matches the fixed key the web client used for its local copy.
const mirrorKey = "cart"

// RedisMirror keeps the snapshot under a single fixed key with no expiry;
// the copy should survive restarts the way browser local storage survives
// page reloads.
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

func (r *RedisMirror) Load(ctx context.Context) (domain.CartSnapshot, error) {
	data, err := r.client.Get(ctx, mirrorKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CartSnapshot{}, ErrMirrorMiss
	}
	if err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var state persistedState
	if err2 := json.Unmarshal(data, &state); err2 != nil {
		return domain.CartSnapshot{}, fmt.Errorf("unmarshal cart failed: %w", err2)
	}
	return state.snapshot(), nil
}

func (r *RedisMirror) Save(ctx context.Context, snap domain.CartSnapshot) error {
	data, err := json.Marshal(toPersisted(snap))
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, mirrorKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisMirror) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, mirrorKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
