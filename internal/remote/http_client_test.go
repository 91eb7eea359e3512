package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartBody = `{"cart":[{"product":{"_id":"p1","name":"Widget","price":100,"stock":5},"quantity":3}]}`

func TestFetchCart_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cartBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	items, err := client.FetchCart(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 5, items[0].Product.Stock)
	assert.True(t, items[0].Product.Price.Equal(decimal.NewFromInt(100)))
}

func TestAddToCart_PostsProductAndQuantity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)

		var req addItemRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "p1", req.ProductID)
		assert.Equal(t, 2, req.Quantity)

		w.Write([]byte(cartBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	items, err := client.AddToCart(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRemoveFromCart_DeletesByPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/cart/p1", r.URL.Path)
		w.Write([]byte(`{"cart":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	items, err := client.RemoveFromCart(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateQuantity_PutsNewQuantity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/cart/p1", r.URL.Path)

		var req updateQuantityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 7, req.Quantity)

		w.Write([]byte(cartBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.UpdateQuantity(context.Background(), "p1", 7)
	require.NoError(t, err)
}

func TestErrorPayload_BecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Not enough stock"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.AddToCart(context.Background(), "p1", 99)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Not enough stock", apiErr.Message)
	assert.Equal(t, "Not enough stock", ErrorMessage(err, "Failed to add to cart"))
}

func TestErrorWithoutMessage_UsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.FetchCart(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch cart", ErrorMessage(err, "Failed to fetch cart"))
}

func TestBearerToken_AttachedFromContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"cart":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	ctx := ContextWithToken(context.Background(), "secret-token")
	_, err := client.FetchCart(ctx)
	require.NoError(t, err)
}

func TestNoToken_NoAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"cart":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.FetchCart(context.Background())
	require.NoError(t, err)
}
