package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
)

// authorizer es el contrato mínimo que necesita el middleware; lo implementa
// *engine.Engine. La interfaz evita acoplar el paquete http al motor completo.
type authorizer interface {
	Authorize(ctx context.Context, actorID, module string, action authz.Action, targetUnitID string) error
}

// RequirePermission devuelve un middleware Fiber que consulta el motor de
// autorización con el actor del token. Debe usarse DESPUÉS de AuthMiddleware.
// Las denegaciones salen con el código de la regla concreta que falló; un
// fallo del directorio responde 503, nunca deja pasar.
func RequirePermission(module string, action authz.Action, eng authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID := GetUserID(c)
		if actorID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}
		if err := eng.Authorize(c.Context(), actorID, module, action, c.Query("unit_id")); err != nil {
			return respondError(c, err)
		}
		return c.Next()
	}
}
