package repository

import (
	"context"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

// AuditFilter filtros opcionales para listar auditoría. EnterpriseID solo
// tiene efecto para actores de plataforma (vacío = todas las empresas).
type AuditFilter struct {
	EnterpriseID string
	ActorID      string
	Module       string
	Allowed      *bool
}

// AuditRepository define el puerto de persistencia del registro de auditoría.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	ListByEnterprise(ctx context.Context, enterpriseID string, filter AuditFilter, limit, offset int) ([]*entity.AuditEntry, error)
}
