package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/advisor"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AdvisorHTTP struct {
	Svc     *service.Backend
	Advisor *advisor.Advisor
}

func (h *AdvisorHTTP) Ask(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "advisor.ask")

	var req transport.AdvisorRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		l.Warn("advise_failed", "status", 400, "reason", "empty query")
		return apiError(http.StatusBadRequest, service.CodeValidation, "query is required")
	}

	products, err := h.Svc.ListProducts(ctx, nil)
	if err != nil {
		l.Error("advise_failed", "status", statusOf(err), "error", err)
		return fromService(err, "cannot load inventory")
	}

	return c.JSON(http.StatusOK, transport.AdvisorResponse{Answer: h.Advisor.Advise(ctx, req.Query, products)})
}
