package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	ctxToken  = "token"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type Auth struct {
	JWTSecret []byte
}

func NewAuth(secret []byte) *Auth {
	return &Auth{JWTSecret: secret}
}

// RequireAuth accepts any request carrying a valid bearer token.
func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return a.jwt()(next)
}

// RequireAdmin additionally demands the admin role.
func (a *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.jwt()(func(c echo.Context) error {
		if Role(c) != models.RoleAdmin {
			logging.FromContext(c.Request().Context()).Warn("admin_required", "status", 403, "user_id", c.Get(ctxUserID))
			return echo.NewHTTPError(http.StatusForbidden, transport.Error{Code: service.CodeForbidden, Message: "admin access required"})
		}
		return next(c)
	})
}

func (a *Auth) jwt() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		KeyFunc:     tokens.KeyFunc(a.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(tokens.Claims)
		},
		SuccessHandler: func(c echo.Context) {
			tok, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			c.Set(ctxToken, tok.Raw)
			if claims, ok := tok.Claims.(*tokens.Claims); ok {
				c.Set(ctxUserID, claims.Subject)
				c.Set(ctxRole, claims.Role)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, transport.Error{Code: service.CodeUnauthorized, Message: "missing or invalid token"})
		},
	})
}

// Token returns the raw bearer token accepted for this request.
func Token(c echo.Context) string {
	s, _ := c.Get(ctxToken).(string)
	return s
}

func Role(c echo.Context) models.Role {
	s, _ := c.Get(ctxRole).(string)
	return models.Role(s)
}

func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}
