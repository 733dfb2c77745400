package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CatalogHTTP struct {
	Svc   *service.Backend
	ES    *elasticsearch.Client
	Index string
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	f := query.FromValues(c.QueryParams())
	items, err := h.Svc.ListProducts(ctx, &f)
	if err != nil {
		l.Error("get_products_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot list products")
	}

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product", "product_id", c.Param("id"))

	p, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		l.Error("get_product_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot get product")
	}
	if p == nil {
		l.Warn("get_product_failed", "status", 404, "reason", "product not found")
		return apiError(http.StatusNotFound, service.CodeNotFound, "Product not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_failed", "status", 400, "reason", "empty query")
		return apiError(http.StatusBadRequest, service.CodeValidation, "query is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), es.DefaultPageSize)

	res, err := es.Search(ctx, h.ES, h.Index, q, query.FromValues(c.QueryParams()), page, size)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return apiError(http.StatusInternalServerError, service.CodeOperationFailed, "search unavailable")
	}

	l.Info("search_success", "total", res.Total)
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: res.Total, Products: res.Products})
}

func applyProductDefaults(in *models.ProductInput) {
	if in.Image == "" {
		in.Image = "/images/sample.jpg"
	}
	if in.Brand == "" {
		in.Brand = "Sample Brand"
	}
	if in.Category == "" {
		in.Category = "Sample Category"
	}
	if in.Description == "" {
		in.Description = "Sample description"
	}
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var in models.ProductInput
	if err := c.Bind(&in); err != nil {
		l.Warn("product_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return apiError(http.StatusBadRequest, service.CodeValidation, "invalid body")
	}
	applyProductDefaults(&in)

	p, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		l.Warn("product_create_failed", "status", statusOf(err), "error", err)
		return fromService(err, err.Error())
	}

	l.Info("product_create_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	l := logging.FromContext(ctx).With("handler", "product.update", "product_id", id)

	var req models.Product
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_failed", "status", 400, "reason", "invalid body", "error", err)
		return apiError(http.StatusBadRequest, service.CodeValidation, "invalid body")
	}

	cur, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		l.Error("product_update_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot load product")
	}
	if cur == nil {
		l.Warn("product_update_failed", "status", 404, "reason", "product not found")
		return apiError(http.StatusNotFound, service.CodeNotFound, "Product not found")
	}

	// the body is the whole record; the path names it
	req.ID = id
	p, err := h.Svc.UpdateProduct(ctx, req)
	if err != nil {
		l.Warn("product_update_failed", "status", statusOf(err), "error", err)
		return fromService(err, err.Error())
	}

	l.Info("product_update_success")
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	l := logging.FromContext(ctx).With("handler", "product.delete", "product_id", id)

	cur, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		l.Error("product_delete_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot load product")
	}
	if cur == nil {
		l.Warn("product_delete_failed", "status", 404, "reason", "product not found")
		return apiError(http.StatusNotFound, service.CodeNotFound, "Product not found")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Error("product_delete_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot delete product")
	}

	l.Info("product_delete_success")
	return c.JSON(http.StatusOK, map[string]string{"message": "Product removed"})
}
