package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/devxankit/mv-store-cart/internal/domain"
)

// CartAPI is the remote cart service contract. The server owns the
// authoritative cart; every operation returns the full line-item list and
// none of the endpoints return incremental diffs.
type CartAPI interface {
	FetchCart(ctx context.Context) ([]domain.CartLineItem, error)
	AddToCart(ctx context.Context, productID string, quantity int) ([]domain.CartLineItem, error)
	RemoveFromCart(ctx context.Context, productID string) ([]domain.CartLineItem, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) ([]domain.CartLineItem, error)
}

// APIError carries the message from a server error payload.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cart api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cart api: %d", e.StatusCode)
}

// ErrorMessage extracts the server-provided message from err, falling back
// to the given generic message when the server did not send one.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type tokenKey struct{}

// ContextWithToken attaches the caller's bearer token so outgoing requests
// authenticate as the user the agent acts for.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}
