package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/application/usecase"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

// AuditHandler expone el registro de auditoría de decisiones de autorización.
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Listar auditoría de la empresa del actor
// @Tags         configuracion
// @Security     Bearer
// @Produce      json
// @Param        enterprise_id  query  string  false  "Empresa (solo plataforma; vacío = todas)"
// @Param        actor_id       query  string  false  "Filtrar por actor"
// @Param        module    query  string  false  "Filtrar por módulo"
// @Param        allowed   query  bool    false  "Filtrar por resultado"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.AuditListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/auditoria [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter := repository.AuditFilter{
		EnterpriseID: c.Query("enterprise_id"),
		ActorID:      c.Query("actor_id"),
		Module:       c.Query("module"),
	}
	if v := c.Query("allowed"); v != "" {
		allowed := v == "true"
		filter.Allowed = &allowed
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.Context(), GetUserID(c), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
