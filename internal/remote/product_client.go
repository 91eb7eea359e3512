package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ProductClient is the read side of the catalog: the product and category
// endpoints the UI renders next to the cart. All list endpoints return bare
// JSON arrays, not envelopes.
type ProductClient struct {
	baseURL string
	http    *http.Client
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *ProductClient) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *ProductClient) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := c.get(ctx, "/products/"+url.PathEscape(id), nil, &product)
	return product, err
}

func (c *ProductClient) SearchProducts(ctx context.Context, term string) ([]domain.Product, error) {
	var products []domain.Product
	params := url.Values{"q": {term}}
	if err := c.get(ctx, "/products/search", params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *ProductClient) GetFeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products/featured", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *ProductClient) GetProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products/category/"+url.PathEscape(categoryID), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *ProductClient) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *ProductClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload errorEnvelope
		_ = decodeBody(resp, &payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
	}
	return decodeBody(resp, out)
}
