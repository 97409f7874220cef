package usecase

import (
	"context"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

// AuditUseCase expone el registro de auditoría de decisiones de autorización.
// Leerlo requiere read sobre configuracion, así que en la práctica queda
// reservado a administradores.
type AuditUseCase struct {
	repo repository.AuditRepository
	eng  *engine.Engine
}

func NewAuditUseCase(repo repository.AuditRepository, eng *engine.Engine) *AuditUseCase {
	return &AuditUseCase{repo: repo, eng: eng}
}

// List devuelve las entradas de auditoría de la empresa del actor; los
// actores de plataforma pueden pedir cualquier empresa o todas.
func (uc *AuditUseCase) List(ctx context.Context, actorID string, filter repository.AuditFilter, page dto.PageRequest) (*dto.AuditListResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleConfiguracion, authz.ActionRead, ""); err != nil {
		return nil, err
	}
	actor, scope, _, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()

	enterpriseID, foreign := engine.ResolveListEnterprise(actor, scope, filter.EnterpriseID)
	if foreign {
		return &dto.AuditListResponse{Items: []dto.AuditEntryResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
	}
	entries, err := uc.repo.ListByEnterprise(ctx, enterpriseID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toAuditResponse(e))
	}
	return &dto.AuditListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}}, nil
}

func toAuditResponse(e *entity.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:        e.ID,
		ActorID:   e.ActorID,
		Action:    e.Action,
		Module:    e.Module,
		TargetID:  e.TargetID,
		Allowed:   e.Allowed,
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}
