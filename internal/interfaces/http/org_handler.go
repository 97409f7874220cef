package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/application/usecase"
)

// OrgHandler maneja las peticiones HTTP del árbol organizacional.
type OrgHandler struct {
	uc *usecase.OrgUseCase
}

// NewOrgHandler construye el handler.
func NewOrgHandler(uc *usecase.OrgUseCase) *OrgHandler {
	return &OrgHandler{uc: uc}
}

// Tree godoc
// @Summary      Subárbol organizacional visible para el actor
// @Tags         empresas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrgTreeResponse
// @Router       /api/organizacion/arbol [get]
func (h *OrgHandler) Tree(c *fiber.Ctx) error {
	out, err := h.uc.VisibleTree(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateUnit godoc
// @Summary      Crear unidad organizacional
// @Tags         empresas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrgUnitRequest  true  "Unidad a crear"
// @Success      201   {object}  dto.OrgUnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/organizacion/unidades [post]
func (h *OrgHandler) CreateUnit(c *fiber.Ctx) error {
	var in dto.CreateOrgUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateUnit(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetUnit godoc
// @Summary      Obtener unidad organizacional
// @Tags         empresas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.OrgUnitResponse
// @Router       /api/organizacion/unidades/{id} [get]
func (h *OrgHandler) GetUnit(c *fiber.Ctx) error {
	out, err := h.uc.GetUnit(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RenameUnit godoc
// @Summary      Renombrar unidad organizacional
// @Tags         empresas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la unidad"
// @Param        body  body  object{name=string}  true  "Nuevo nombre"
// @Success      200   {object}  dto.OrgUnitResponse
// @Router       /api/organizacion/unidades/{id} [put]
func (h *OrgHandler) RenameUnit(c *fiber.Ctx) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.RenameUnit(c.Context(), GetUserID(c), c.Params("id"), in.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
