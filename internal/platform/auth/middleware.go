package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const actorKey contextKey = "actor"

// Actor is the authenticated principal attached to a request.
type Actor struct {
	UserID   int64
	Username string
	Role     string
	DoctorID *int64
}

// ActorFromContext returns the request actor, or nil for unauthenticated
// requests.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey).(*Actor)
	return a
}

// WithActor places an actor in the context. Exposed for tests.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// JWTMiddleware authenticates requests by bearer token.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
			}

			claims, err := ParseToken(secret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			userID, _ := strconv.ParseInt(claims.Subject, 10, 64)
			actor := &Actor{
				UserID:   userID,
				Username: claims.Username,
				Role:     claims.Role,
				DoctorID: claims.DoctorID,
			}

			ctx := WithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("actor", actor)
			return next(c)
		}
	}
}

// DevAuthMiddleware grants every request an admin actor. Development only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := &Actor{UserID: 0, Username: "dev", Role: "admin"}
			ctx := WithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("actor", actor)
			return next(c)
		}
	}
}
