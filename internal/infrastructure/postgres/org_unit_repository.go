package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

var _ repository.OrgUnitRepository = (*OrgUnitRepo)(nil)

const orgUnitColumns = `id, enterprise_id, parent_id, kind, name, created_at, updated_at`

// OrgUnitRepo implementación de OrgUnitRepository sobre PostgreSQL.
type OrgUnitRepo struct {
	q Querier
}

// NewOrgUnitRepository construye el adaptador del árbol organizacional.
func NewOrgUnitRepository(q Querier) *OrgUnitRepo {
	return &OrgUnitRepo{q: q}
}

// GetByID obtiene una unidad por ID; nil sin error si no existe.
func (r *OrgUnitRepo) GetByID(ctx context.Context, id string) (*entity.OrgUnit, error) {
	query := `SELECT ` + orgUnitColumns + ` FROM org_units WHERE id = $1`
	var u entity.OrgUnit
	err := r.q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.EnterpriseID, &u.ParentID, &u.Kind, &u.Name, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, directoryErr("get org unit", err)
	}
	return &u, nil
}

// Create persiste una nueva unidad.
func (r *OrgUnitRepo) Create(ctx context.Context, unit *entity.OrgUnit) error {
	query := `
		INSERT INTO org_units (id, enterprise_id, parent_id, kind, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		unit.ID, unit.EnterpriseID, unit.ParentID, unit.Kind, unit.Name, unit.CreatedAt, unit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: unidad duplicada", domain.ErrValidation)
		}
		return directoryErr("insert org unit", err)
	}
	return nil
}

// Update actualiza una unidad.
func (r *OrgUnitRepo) Update(ctx context.Context, unit *entity.OrgUnit) error {
	query := `UPDATE org_units SET name = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, unit.ID, unit.Name, unit.UpdatedAt)
	if err != nil {
		return directoryErr("update org unit", err)
	}
	return nil
}

// Delete elimina una unidad por ID.
func (r *OrgUnitRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM org_units WHERE id = $1`, id); err != nil {
		return directoryErr("delete org unit", err)
	}
	return nil
}

// Snapshot devuelve las unidades de una empresa, o todas si enterpriseID es
// vacío (jerarquía de plataforma).
func (r *OrgUnitRepo) Snapshot(ctx context.Context, enterpriseID string) ([]entity.OrgUnit, error) {
	query := `SELECT ` + orgUnitColumns + ` FROM org_units`
	args := []any{}
	if enterpriseID != "" {
		query += ` WHERE enterprise_id = $1`
		args = append(args, enterpriseID)
	}
	query += ` ORDER BY created_at`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, directoryErr("snapshot org units", err)
	}
	defer rows.Close()
	var units []entity.OrgUnit
	for rows.Next() {
		var u entity.OrgUnit
		if err := rows.Scan(&u.ID, &u.EnterpriseID, &u.ParentID, &u.Kind, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan org unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
