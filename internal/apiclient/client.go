package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var errNotFound = errors.New("apiclient: not found")

// Client talks to a storefront API server and mirrors the in-process
// backend's contract, so callers can swap one for the other.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SetToken sets the bearer used for catalogue writes.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) storedToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrOperationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", service.ErrOperationFailed, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body transport.Error
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		body = transport.Error{Code: service.CodeOperationFailed, Message: strings.TrimSpace(string(data))}
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w: %s", errNotFound, service.ErrNotFound, body.Message)
	}
	return fmt.Errorf("%w: %s", service.FromCode(body.Code), body.Message)
}

func (c *Client) ListProducts(ctx context.Context, f *query.Filter) ([]models.Product, error) {
	path := "/api/products"
	if f != nil {
		path += "?" + f.Values().Encode()
	}
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var out models.Product
	err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil, &out)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", c.storedToken(), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct treats an unknown id as a no-op, like the in-process backend.
func (c *Client) UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	var out models.Product
	err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(p.ID), c.storedToken(), p, &out)
	if errors.Is(err, errNotFound) {
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), c.storedToken(), nil, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func (c *Client) CreateOrder(ctx context.Context, draft models.OrderDraft, token string) (*models.Order, error) {
	if token == "" {
		return nil, service.ErrUnauthorized
	}
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", token, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	if token == "" {
		return nil, service.ErrUnauthorized
	}
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id, token string) (*models.Order, error) {
	if token == "" {
		return nil, service.ErrUnauthorized
	}
	var out models.Order
	err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), token, nil, &out)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, token string) (*models.Order, error) {
	if token == "" {
		return nil, service.ErrUnauthorized
	}
	var out models.Order
	err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/status", token, transport.StatusRequest{Status: status}, &out)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var out models.Session
	if err := c.do(ctx, http.MethodPost, "/api/users/login", "", transport.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask forwards a question to the server-side advisor.
func (c *Client) Ask(ctx context.Context, q string) (string, error) {
	var out transport.AdvisorResponse
	if err := c.do(ctx, http.MethodPost, "/api/advisor", "", transport.AdvisorRequest{Query: q}, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}
