package jwtmiddleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/learnhub/internal/models"
	"github.com/learnhub/learnhub/internal/service"
)

const userContextKey = "user"

// Require rejects requests without a valid access token. Verification
// includes the live-account check, so tokens of deactivated accounts
// stop working immediately.
func Require(tokens *service.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			_, user, err := tokens.VerifyAccess(c.Request().Context(), raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// Optional resolves the user when a token is present but lets anonymous
// requests through. Used on listings whose visibility depends on the caller.
func Optional(tokens *service.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw != "" {
				if _, user, err := tokens.VerifyAccess(c.Request().Context(), raw); err == nil {
					c.Set(userContextKey, user)
				}
			}
			return next(c)
		}
	}
}

func UserFromContext(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
