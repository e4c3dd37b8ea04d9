package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const userClaimsKey = "userClaims"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Middleware guards routes behind JWT bearer auth.
type Middleware struct {
	validator TokenValidator
}

// NewMiddleware creates new auth middleware.
func NewMiddleware(validator TokenValidator) *Middleware {
	return &Middleware{validator: validator}
}

// Require rejects requests without a valid bearer token.
func (m *Middleware) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization token")
			}

			claims, err := m.validator.ValidateToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(userClaimsKey, claims)
			return next(c)
		}
	}
}

// GetClaims returns the authenticated user's claims, or nil.
func GetClaims(c echo.Context) *Claims {
	claims, ok := c.Get(userClaimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID returns the authenticated user's ID, or "".
func GetUserID(c echo.Context) string {
	claims := GetClaims(c)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return parts[1]
}
