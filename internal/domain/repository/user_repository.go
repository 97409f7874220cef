package repository

import (
	"context"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

// ScopeFilter restringe un listado a una unidad organizacional.
// Campos vacíos = sin restricción adicional. EnterpriseID solo tiene efecto
// para actores de plataforma, que son los únicos que cruzan empresas; vacío
// significa todas las empresas para ellos.
type ScopeFilter struct {
	EnterpriseID string
	DepartmentID string
	ClinicID     string
}

// UserRepository define el puerto de persistencia para User (servicio de
// directorio). Los adaptadores mapean fallos de infraestructura a
// domain.ErrDirectoryUnavailable; el motor los propaga como denegación,
// nunca como permiso implícito.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByEnterprise(ctx context.Context, enterpriseID string, filter ScopeFilter, limit, offset int) ([]*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	// Update aplica la mutación solo si la versión almacenada coincide con
	// expectedVersion; si no, devuelve domain.ErrConflict.
	Update(ctx context.Context, user *entity.User, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
	// ReportingEdges devuelve la adyacencia id → id de jefe de la empresa,
	// para la detección de ciclos al asignar jefes.
	ReportingEdges(ctx context.Context, enterpriseID string) (map[string]string, error)
}
