package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/pkg/jwt"
)

// Locals keys para la identidad del actor en Fiber.
const (
	LocalUserID       = "user_id"
	LocalEnterpriseID = "enterprise_id"
	LocalHierarchy    = "hierarchy"
)

// AuthMiddleware valida el Bearer Token JWT y extrae la identidad del actor a
// c.Locals. El token solo transporta identidad: permisos y alcance se resuelven
// siempre contra el directorio, nunca contra claims del token.
func AuthMiddleware(jwtSecret string) fiber.Handler {
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
		userID, enterpriseID, hierarchy, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalEnterpriseID, enterpriseID)
		c.Locals(LocalHierarchy, hierarchy)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetEnterpriseID devuelve el EnterpriseID del contexto.
func GetEnterpriseID(c *fiber.Ctx) string {
	v := c.Locals(LocalEnterpriseID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetHierarchy devuelve la jerarquía del contexto. Es solo informativa: toda
// decisión de autorización relee al actor desde el directorio.
func GetHierarchy(c *fiber.Ctx) string {
	v := c.Locals(LocalHierarchy)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
