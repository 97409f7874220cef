package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/application/usecase"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

// PatientHandler maneja las peticiones HTTP de fichas de pacientes.
type PatientHandler struct {
	uc *usecase.PatientUseCase
}

// NewPatientHandler construye el handler.
func NewPatientHandler(uc *usecase.PatientUseCase) *PatientHandler {
	return &PatientHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ficha de paciente
// @Tags         pacientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePatientRequest  true  "Datos de la ficha"
// @Success      201   {object}  dto.PatientResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/pacientes [post]
func (h *PatientHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePatientRequest
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
// @Summary      Obtener ficha por ID
// @Tags         pacientes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la ficha"
// @Success      200  {object}  dto.PatientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pacientes/{id} [get]
func (h *PatientHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Ficha propia del actor
// @Tags         pacientes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PatientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pacientes/me [get]
func (h *PatientHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar fichas dentro del alcance del actor
// @Tags         pacientes
// @Security     Bearer
// @Produce      json
// @Param        enterprise_id  query  string  false  "Empresa (solo plataforma; vacío = todas)"
// @Param        department_id  query  string  false  "Filtrar por departamento"
// @Param        clinic_id      query  string  false  "Filtrar por clínica"
// @Param        limit          query  int     false  "Límite"   default(20)
// @Param        offset         query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.PatientListResponse
// @Router       /api/pacientes [get]
func (h *PatientHandler) List(c *fiber.Ctx) error {
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

// Export godoc
// @Summary      Exportar fichas (requiere permiso export)
// @Tags         pacientes
// @Security     Bearer
// @Produce      json
// @Param        enterprise_id  query  string  false  "Empresa (solo plataforma; vacío = todas)"
// @Param        department_id  query  string  false  "Filtrar por departamento"
// @Param        clinic_id      query  string  false  "Filtrar por clínica"
// @Success      200  {array}  dto.PatientResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/pacientes/export [get]
func (h *PatientHandler) Export(c *fiber.Ctx) error {
	filter := repository.ScopeFilter{
		EnterpriseID: c.Query("enterprise_id"),
		DepartmentID: c.Query("department_id"),
		ClinicID:     c.Query("clinic_id"),
	}
	out, err := h.uc.Export(c.Context(), GetUserID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
