package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware"
)

type Deps struct {
	Catalog   *CatalogHTTP
	Orders    *OrderHTTP
	Auth      *AuthHTTP
	Advisor   *AdvisorHTTP
	JWTSecret []byte
	Ready     func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAuth(d.JWTSecret)

	products := e.Group("/api/products")
	if d.Catalog.ES != nil {
		products.GET("/search", d.Catalog.SearchProducts)
	}
	products.GET("", d.Catalog.GetProducts)
	products.GET("/:id", d.Catalog.GetProduct)

	adminProducts := products.Group("", authMW.RequireAdmin)
	adminProducts.POST("", d.Catalog.CreateProduct)
	adminProducts.PUT("/:id", d.Catalog.UpdateProduct)
	adminProducts.DELETE("/:id", d.Catalog.DeleteProduct)

	orders := e.Group("/api/orders")
	orders.POST("", d.Orders.CreateOrder, authMW.RequireAuth)
	orders.GET("/:id", d.Orders.GetOrder, authMW.RequireAuth)
	orders.GET("", d.Orders.GetOrders, authMW.RequireAdmin)
	orders.PUT("/:id/status", d.Orders.UpdateStatus, authMW.RequireAdmin)
	orders.PUT("/:id/deliver", d.Orders.MarkDelivered, authMW.RequireAdmin)

	e.POST("/api/users/login", d.Auth.Login)

	if d.Advisor != nil {
		e.POST("/api/advisor", d.Advisor.Ask)
	}
}
