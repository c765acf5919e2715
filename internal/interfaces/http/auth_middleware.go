package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
)

// LocalSession key de c.Locals donde queda la sesión resuelta.
const LocalSession = "session"

// SessionResolver resuelve el bearer token en una sesión. Lo implementa *identity.Resolver.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Session, error)
}

// AuthMiddleware valida el Bearer Token, busca al usuario y deja la sesión en c.Locals.
func AuthMiddleware(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		sess, err := resolver.Resolve(c.Context(), tokenString)
		if err != nil || sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalSession, sess)
		return c.Next()
	}
}

// RequireRole permite el paso solo a sesiones con alguno de los roles indicados.
// Debe ir después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := GetSession(c)
		if sess == nil || sess.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión sin rol"})
		}
		for _, r := range roles {
			if sess.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no tiene permisos para esta operación"})
	}
}

// GetSession devuelve la sesión del contexto (después del middleware de auth).
func GetSession(c *fiber.Ctx) *identity.Session {
	sess, _ := c.Locals(LocalSession).(*identity.Session)
	return sess
}

// GetRole devuelve el rol de la sesión o "" si no hay sesión.
func GetRole(c *fiber.Ctx) string {
	if sess := GetSession(c); sess != nil {
		return sess.Role
	}
	return ""
}

// GetBranchID devuelve la sucursal de la sesión.
func GetBranchID(c *fiber.Ctx) string {
	if sess := GetSession(c); sess != nil {
		return sess.BranchID
	}
	return ""
}

func userIDOf(c *fiber.Ctx) string {
	if sess := GetSession(c); sess != nil {
		return sess.UserID
	}
	return ""
}
