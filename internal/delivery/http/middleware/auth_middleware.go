// Package middleware holds the echo middleware of the public HTTP API.
package middleware

import (
	"strings"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/delivery/http/response"
	"mlm/internal/domain/entity"
	"mlm/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
}

// AuthMiddleware turns a bearer token into the entity.Actor handlers pass to the usecases.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: params.TokenService}
}

// Authenticate validates the access token and stores the actor built from its
// "sub" and "role" claims.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "UNAUTHENTICATED", "Authorization header is missing")
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			return response.Unauthorized(c, "UNAUTHENTICATED", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			return response.Unauthorized(c, "UNAUTHENTICATED", "Invalid or expired token")
		}

		actor := entity.NewActor(claims.UserID, claims.Role)
		deliverycontext.SetActor(c, actor)

		return next(c)
	}
}

// RequireRole rejects actors without the given role. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := deliverycontext.GetActor(c)
			if !ok {
				return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
			}

			if actor.Role != role {
				return response.Forbidden(c, "UNAUTHORIZED", "Permission denied: require '"+role.String()+"' role")
			}

			return next(c)
		}
	}
}
