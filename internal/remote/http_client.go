package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to the remote cart endpoints over HTTP/JSON. Calls go through
// a circuit breaker so a dead backend fails fast instead of piling up
// blocked requests.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]domain.CartLineItem]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]domain.CartLineItem](gobreaker.Settings{
			Name:    "cart-api",
			Timeout: 30 * time.Second,
		}),
	}
}

type cartEnvelope struct {
	Cart []domain.CartLineItem `json:"cart"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) FetchCart(ctx context.Context) ([]domain.CartLineItem, error) {
	return c.doCart(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) ([]domain.CartLineItem, error) {
	return c.doCart(ctx, http.MethodPost, "/cart", addItemRequest{ProductID: productID, Quantity: quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) ([]domain.CartLineItem, error) {
	return c.doCart(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil)
}

func (c *Client) UpdateQuantity(ctx context.Context, productID string, quantity int) ([]domain.CartLineItem, error) {
	return c.doCart(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), updateQuantityRequest{Quantity: quantity})
}

func (c *Client) doCart(ctx context.Context, method, path string, body interface{}) ([]domain.CartLineItem, error) {
	return c.breaker.Execute(func() ([]domain.CartLineItem, error) {
		var envelope cartEnvelope
		if err := c.doJSON(ctx, method, path, body, &envelope); err != nil {
			return nil, err
		}
		return envelope.Cart, nil
	})
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload errorEnvelope
		_ = decodeBody(resp, &payload) // best effort, fall back to generic message
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
	}

	if err := decodeBody(resp, out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

func decodeBody(resp *http.Response, out interface{}) error {
	return json.NewDecoder(resp.Body).Decode(out)
}
