package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type AdminJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // use cookie admin_token when no Bearer header
}

// AdminJWT guards the /api/a group. Tokens are issued by the admin login
// endpoint and must carry role=admin.
func AdminJWT(o AdminJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("admin_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		if role, _ := claims["role"].(string); role != "admin" {
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}

		c.Locals("jwt_claims", claims)
		if sub, _ := claims["sub"].(string); sub != "" {
			c.Locals("admin_user", sub)
		}
		return c.Next()
	}
}
