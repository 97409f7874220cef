package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/application/usecase"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
type InvoiceHandler struct {
	uc *usecase.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *usecase.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create godoc
// @Summary      Crear borrador de factura
// @Tags         facturacion
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Datos de la factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/facturas [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura por ID
// @Tags         facturacion
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar facturas dentro del alcance del actor
// @Tags         facturacion
// @Security     Bearer
// @Produce      json
// @Param        enterprise_id  query  string  false  "Empresa (solo plataforma; vacío = todas)"
// @Param        clinic_id      query  string  false  "Filtrar por clínica"
// @Param        limit      query  int     false  "Límite"   default(20)
// @Param        offset     query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/facturas [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	filter := repository.ScopeFilter{
		EnterpriseID: c.Query("enterprise_id"),
		DepartmentID: c.Query("department_id"),
		ClinicID:     c.Query("clinic_id"),
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.Context(), GetUserID(c), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Issue godoc
// @Summary      Emitir una factura en borrador
// @Tags         facturacion
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/emitir [post]
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	out, err := h.uc.Issue(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
