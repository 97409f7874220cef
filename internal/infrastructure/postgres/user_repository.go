package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, enterprise_id, email, name, phone, hierarchy, status,
	department_id, clinic_id, reports_to, version, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// Funciona atado al pool o a una transacción (Querier).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de directorio de usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.EnterpriseID, &u.Email, &u.Name, &u.Phone, &u.Hierarchy, &u.Status,
		&u.DepartmentID, &u.ClinicID, &u.ReportsTo, &u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID obtiene un usuario por ID; nil sin error si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, directoryErr("get user by id", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email; nil sin error si no existe.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	u, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, directoryErr("get user by email", err)
	}
	return u, nil
}

// ListByEnterprise lista usuarios de una empresa aplicando el filtro de unidad
// ya intersectado con el alcance del actor. enterpriseID vacío lista todas las
// empresas (alcance de plataforma), igual que Snapshot en org_units.
func (r *UserRepo) ListByEnterprise(ctx context.Context, enterpriseID string, filter repository.ScopeFilter, limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var conds []string
	var args []any
	if enterpriseID != "" {
		args = append(args, enterpriseID)
		conds = append(conds, fmt.Sprintf("enterprise_id = $%d", len(args)))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conds = append(conds, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.ClinicID != "" {
		args = append(args, filter.ClinicID)
		conds = append(conds, fmt.Sprintf("clinic_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, directoryErr("list users", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, enterprise_id, email, name, phone, hierarchy, status,
			department_id, clinic_id, reports_to, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.EnterpriseID, user.Email, user.Name, user.Phone, user.Hierarchy, user.Status,
		user.DepartmentID, user.ClinicID, user.ReportsTo, user.Version, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el email ya está registrado", domain.ErrValidation)
		}
		return directoryErr("insert user", err)
	}
	return nil
}

// Update aplica la mutación solo si la versión almacenada coincide con
// expectedVersion; si ninguna fila coincide devuelve domain.ErrConflict.
func (r *UserRepo) Update(ctx context.Context, user *entity.User, expectedVersion int64) error {
	query := `
		UPDATE users SET email = $3, name = $4, phone = $5, hierarchy = $6, status = $7,
			department_id = $8, clinic_id = $9, reports_to = $10,
			version = version + 1, updated_at = $11
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		user.ID, expectedVersion,
		user.Email, user.Name, user.Phone, user.Hierarchy, user.Status,
		user.DepartmentID, user.ClinicID, user.ReportsTo, user.UpdatedAt,
	)
	if err != nil {
		return directoryErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usuario %s, versión esperada %d", domain.ErrConflict, user.ID, expectedVersion)
	}
	return nil
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return directoryErr("delete user", err)
	}
	return nil
}

// ReportingEdges devuelve la adyacencia id → jefe de una empresa.
func (r *UserRepo) ReportingEdges(ctx context.Context, enterpriseID string) (map[string]string, error) {
	query := `SELECT id, reports_to FROM users WHERE enterprise_id = $1 AND reports_to IS NOT NULL`
	rows, err := r.q.Query(ctx, query, enterpriseID)
	if err != nil {
		return nil, directoryErr("reporting edges", err)
	}
	defer rows.Close()
	edges := make(map[string]string)
	for rows.Next() {
		var id, manager string
		if err := rows.Scan(&id, &manager); err != nil {
			return nil, fmt.Errorf("scan reporting edge: %w", err)
		}
		edges[id] = manager
	}
	return edges, rows.Err()
}
