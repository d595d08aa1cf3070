package middleware

import (
	"net/http"
	"strings"

	"loanvault-backend/pkg/auth"

	"github.com/labstack/echo/v4"
)

// ActorKey is where the authenticated actor lands in the echo context.
const ActorKey = "actor"

// JWTAuth validates a bearer token and seeds the request context with the
// caller's actor identity and role set.
func JWTAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get("Authorization"))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing credentials"})
			}
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			actor, err := auth.Parse(secret, token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			c.Set(ActorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom extracts the authenticated actor seeded by JWTAuth.
func ActorFrom(c echo.Context) (auth.Actor, bool) {
	a, ok := c.Get(ActorKey).(auth.Actor)
	return a, ok
}
