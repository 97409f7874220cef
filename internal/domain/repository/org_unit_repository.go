package repository

import (
	"context"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

// OrgUnitRepository define el puerto de persistencia del árbol organizacional.
type OrgUnitRepository interface {
	GetByID(ctx context.Context, id string) (*entity.OrgUnit, error)
	Create(ctx context.Context, unit *entity.OrgUnit) error
	Update(ctx context.Context, unit *entity.OrgUnit) error
	Delete(ctx context.Context, id string) error
	// Snapshot devuelve las unidades de una empresa (o todas si enterpriseID
	// es vacío) para construir authz.OrgTree.
	Snapshot(ctx context.Context, enterpriseID string) ([]entity.OrgUnit, error)
}
