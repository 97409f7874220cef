package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
)

// NavigationHandler expone la navegación visible: los módulos sobre los que el
// actor tiene al menos read, en el orden fijo de la tabla de navegación.
type NavigationHandler struct {
	eng *engine.Engine
}

// NewNavigationHandler construye el handler.
func NewNavigationHandler(eng *engine.Engine) *NavigationHandler {
	return &NavigationHandler{eng: eng}
}

// Visible godoc
// @Summary      Módulos de navegación visibles para el actor
// @Tags         navegacion
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  authz.NavigationItem
// @Router       /api/navegacion [get]
func (h *NavigationHandler) Visible(c *fiber.Ctx) error {
	items, err := h.eng.VisibleNavigation(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
