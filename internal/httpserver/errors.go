package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var statusByCode = map[string]int{
	service.CodeUnauthorized:       http.StatusUnauthorized,
	service.CodeInvalidCredentials: http.StatusUnauthorized,
	service.CodeForbidden:          http.StatusForbidden,
	service.CodeNotFound:           http.StatusNotFound,
	service.CodeValidation:         http.StatusBadRequest,
	service.CodeOperationFailed:    http.StatusInternalServerError,
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return service.CodeValidation
	case http.StatusUnauthorized:
		return service.CodeUnauthorized
	case http.StatusForbidden:
		return service.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return service.CodeNotFound
	default:
		return service.CodeOperationFailed
	}
}

func apiError(status int, code, msg string) *echo.HTTPError {
	return echo.NewHTTPError(status, transport.Error{Code: code, Message: msg})
}

// fromService maps a facade error onto its status and wire code.
func fromService(err error, msg string) *echo.HTTPError {
	code := service.Classify(err)
	return apiError(statusByCode[code], code, msg)
}

func statusOf(err error) int {
	return statusByCode[service.Classify(err)]
}

// ErrorHandler renders every error as a transport.Error body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	body, ok := he.Message.(transport.Error)
	if !ok {
		body = transport.Error{Code: codeForStatus(he.Code), Message: fmt.Sprint(he.Message)}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
