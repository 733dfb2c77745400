package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderHTTP struct {
	Svc *service.Backend
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create", "user_id", middleware.UserID(c))

	var draft models.OrderDraft
	if err := c.Bind(&draft); err != nil {
		l.Warn("order_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return apiError(http.StatusBadRequest, service.CodeValidation, "invalid body")
	}

	o, err := h.Svc.CreateOrder(ctx, draft, middleware.Token(c))
	if err != nil {
		l.Warn("order_create_failed", "status", statusOf(err), "error", err)
		return fromService(err, err.Error())
	}

	l.Info("order_create_success", "order_id", o.ID)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Svc.ListOrders(ctx, middleware.Token(c))
	if err != nil {
		l.Error("get_orders_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get", "order_id", c.Param("id"))

	o, err := h.Svc.GetOrder(ctx, c.Param("id"), middleware.Token(c))
	if err != nil {
		l.Error("get_order_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot get order")
	}
	if o == nil {
		l.Warn("get_order_failed", "status", 404, "reason", "order not found")
		return apiError(http.StatusNotFound, service.CodeNotFound, "Order not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) setStatus(c echo.Context, status models.OrderStatus) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status", "order_id", c.Param("id"))

	o, err := h.Svc.UpdateOrderStatus(ctx, c.Param("id"), status, middleware.Token(c))
	if err != nil {
		l.Warn("order_status_failed", "status", statusOf(err), "error", err)
		return fromService(err, err.Error())
	}
	if o == nil {
		l.Warn("order_status_failed", "status", 404, "reason", "order not found")
		return apiError(http.StatusNotFound, service.CodeNotFound, "Order not found")
	}

	l.Info("order_status_success", "order_status", o.Status)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, service.CodeValidation, "invalid body")
	}
	return h.setStatus(c, req.Status)
}

func (h *OrderHTTP) MarkDelivered(c echo.Context) error {
	return h.setStatus(c, models.OrderStatusDelivered)
}
