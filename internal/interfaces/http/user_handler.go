package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
	"github.com/medintegra/salud-ocupacional-api/internal/application/usecase"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

// UserHandler maneja las peticiones HTTP del directorio de usuarios. Las
// mutaciones protegidas (estado, jerarquía, jefe, borrado) van directo al
// motor, que revalida las guardas sobre estado fresco dentro de la transacción.
type UserHandler struct {
	uc  *usecase.UserUseCase
	eng *engine.Engine
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, eng *engine.Engine) *UserHandler {
	return &UserHandler{uc: uc, eng: eng}
}

// Create godoc
// @Summary      Crear usuario
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/usuarios [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
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
// @Summary      Obtener usuario por ID
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.Context(), GetUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: "usuario no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar usuarios visibles para el actor
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Param        enterprise_id  query  string  false  "Empresa (solo plataforma; vacío = todas)"
// @Param        department_id  query  string  false  "Filtrar por departamento"
// @Param        clinic_id      query  string  false  "Filtrar por clínica"
// @Param        limit          query  int     false  "Límite"   default(20)
// @Param        offset         query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.UserListResponse
// @Router       /api/usuarios [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
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

// Update godoc
// @Summary      Actualizar datos básicos de un usuario
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PatchGuarded godoc
// @Summary      Cambiar estado o jerarquía (mutación protegida)
// @Description  Aplica las guardas de auto-bloqueo, escalada y tenant sobre estado fresco, con control de versión optimista.
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario objetivo"
// @Param        body  body  dto.GuardedPatchRequest  true  "Cambio de estado o jerarquía con versión"
// @Success      200   {object}  dto.UserResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id}/estado [patch]
func (h *UserHandler) PatchGuarded(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.GuardedPatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.eng.GuardedMutation(c.Context(), GetUserID(c), id, engine.Patch{
		Status:    in.Status,
		Hierarchy: in.Hierarchy,
		Version:   in.Version,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserJSON(out))
}

// AssignManager godoc
// @Summary      Asignar o retirar el jefe directo
// @Description  El jefe debe ser de la misma empresa y de jerarquía estrictamente superior; se rechazan ciclos. manager_id nulo retira el jefe.
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario subordinado"
// @Param        body  body  dto.AssignManagerRequest  true  "Jefe directo con versión"
// @Success      200   {object}  dto.UserResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id}/jefe [put]
func (h *UserHandler) AssignManager(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.AssignManagerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.eng.AssignManager(c.Context(), GetUserID(c), id, in.ManagerID, in.Version)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserJSON(out))
}

// Delete godoc
// @Summary      Eliminar usuario
// @Tags         usuarios
// @Security     Bearer
// @Param        id  path  string  true  "ID del usuario"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.eng.DeleteUser(c.Context(), GetUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toUserJSON(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		EnterpriseID: u.EnterpriseID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Hierarchy:    u.Hierarchy,
		Status:       u.Status,
		DepartmentID: u.DepartmentID,
		ClinicID:     u.ClinicID,
		ReportsTo:    u.ReportsTo,
		Version:      u.Version,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
