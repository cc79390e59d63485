package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campusgrid/campus-api/utils/auth"
	"github.com/campusgrid/campus-api/utils/response"
)

// AuthMiddleware guards mutating routes with a bearer token check.
// There is no user table behind it; the token's claims alone decide.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// RequireAdmin is middleware that requires a valid token carrying the
// admin role.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		if claims.Role != "admin" {
			return response.Forbidden(c, "Administrator access required")
		}

		c.Locals("role", claims.Role)
		c.Locals("subject", claims.Subject)

		return c.Next()
	}
}
