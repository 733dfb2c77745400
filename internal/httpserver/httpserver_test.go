package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/advisor"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var jwtSecret = []byte("http-test-secret")

type stubGen struct{}

func (stubGen) Generate(context.Context, string, string) (string, error) {
	return "Try the watch (ID: 3).", nil
}

type testEnv struct {
	E       *echo.Echo
	Svc     *service.Backend
	ready   error
	esCalls atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repo.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	r := repo.New(db)
	t.Cleanup(func() { _ = r.Close() })

	svc, err := service.New(r, service.WithLatency(0), service.WithTokenSecret(jwtSecret))
	require.NoError(t, err)

	env := &testEnv{Svc: svc}

	esSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.esCalls.Add(1)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"3","name":"Smart Watch"}}]}}`)
	}))
	t.Cleanup(esSrv.Close)
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esSrv.URL}})
	require.NoError(t, err)

	e := echo.New()
	e.Use(middleware.RequestLogger(logging.Discard()))
	Register(e, &Deps{
		Catalog:   &CatalogHTTP{Svc: svc, ES: esClient, Index: "products"},
		Orders:    &OrderHTTP{Svc: svc},
		Auth:      &AuthHTTP{Svc: svc},
		Advisor:   &AdvisorHTTP{Svc: svc, Advisor: advisor.New(stubGen{})},
		JWTSecret: jwtSecret,
		Ready:     func(context.Context) error { return env.ready },
	})
	env.E = e
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/users/login", transport.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var s models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s.Token
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) transport.Error {
	t.Helper()
	var e transport.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", nil, "").Code)

	env.ready = errors.New("db down")
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/health/ready", nil, "").Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	assert.NotEmpty(t, env.login(t, "admin@lumina.com", "admin123"))

	rec := env.do(t, http.MethodPost, "/api/users/login", transport.LoginRequest{Email: "admin@lumina.com", Password: "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, service.CodeInvalidCredentials, decodeErr(t, rec).Code)
}

func TestGetProducts_Filters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 6)

	rec = env.do(t, http.MethodGet, "/api/products?category=Electronics&maxPrice=100", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var some []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &some))
	for _, p := range some {
		assert.Equal(t, "Electronics", p.Category)
		assert.LessOrEqual(t, p.Price, 100.0)
	}
}

func TestGetProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/products/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.CodeNotFound, decodeErr(t, rec).Code)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products/search?q=watch", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res transport.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.EqualValues(t, 1, res.Total)
	assert.EqualValues(t, 1, env.esCalls.Load())

	rec = env.do(t, http.MethodGet, "/api/products/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductAdminRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.login(t, "admin@lumina.com", "admin123")
	customer := env.login(t, "user@lumina.com", "user123")
	in := models.ProductInput{Name: "Lamp", Price: 25}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/products", in, "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/products", in, customer).Code)

	rec := env.do(t, http.MethodPost, "/api/products", in, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Sample Brand", created.Brand)
	assert.Equal(t, "Sample Category", created.Category)

	replacement := created
	replacement.ID = "ignored"
	replacement.Price = 30
	replacement.Stock = 0
	replacement.Brand = ""
	rec = env.do(t, http.MethodPut, "/api/products/"+created.ID, replacement, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID, "id comes from the path")
	assert.Equal(t, 30.0, updated.Price)
	assert.Zero(t, updated.Stock)
	assert.Empty(t, updated.Brand, "the record is replaced, not merged")

	rec = env.do(t, http.MethodPut, "/api/products/"+created.ID, models.Product{Price: 30}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a partial body is not a valid product")

	rec = env.do(t, http.MethodPost, "/api/products", models.ProductInput{Name: "Bad", Price: -1}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeValidation, decodeErr(t, rec).Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/products/ghost", models.Product{Name: "x"}, admin).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, admin).Code)
}

func TestOrders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.login(t, "admin@lumina.com", "admin123")
	customer := env.login(t, "user@lumina.com", "user123")

	draft := models.OrderDraft{
		CustomerName:  "John Doe",
		Email:         "user@lumina.com",
		Items:         []models.CartItem{{Product: models.Product{ID: "1", Price: 10}, Quantity: 2}},
		ShippingPrice: 15,
	}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/orders", draft, "").Code)

	rec := env.do(t, http.MethodPost, "/api/orders", draft, customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var o models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, 35.0, o.Total)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.WithinDuration(t, time.Now(), o.Date, time.Minute)

	rec = env.do(t, http.MethodPost, "/api/orders", models.OrderDraft{}, customer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/orders", nil, customer).Code)
	rec = env.do(t, http.MethodGet, "/api/orders", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/orders/"+o.ID, nil, customer).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/orders/ghost", nil, customer).Code)

	rec = env.do(t, http.MethodPut, "/api/orders/"+o.ID+"/status", transport.StatusRequest{Status: models.OrderStatusShipped}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, models.OrderStatusShipped, o.Status)

	rec = env.do(t, http.MethodPut, "/api/orders/"+o.ID+"/status", transport.StatusRequest{Status: "Lost"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/orders/ghost/status", transport.StatusRequest{Status: models.OrderStatusShipped}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/orders/"+o.ID+"/deliver", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
}

func TestAdvisor(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/advisor", transport.AdvisorRequest{Query: "a gift?"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res transport.AdvisorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Try the watch (ID: 3).", res.Answer)

	rec = env.do(t, http.MethodPost, "/api/advisor", transport.AdvisorRequest{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).do(t, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.CodeNotFound, decodeErr(t, rec).Code)
}
