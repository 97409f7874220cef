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

var _ repository.PatientRepository = (*PatientRepo)(nil)

const patientColumns = `id, enterprise_id, department_id, clinic_id, user_id,
	document, name, birth_date, created_at, updated_at`

// PatientRepo implementación de PatientRepository sobre PostgreSQL.
type PatientRepo struct {
	q Querier
}

// NewPatientRepository construye el adaptador de fichas de pacientes.
func NewPatientRepository(q Querier) *PatientRepo {
	return &PatientRepo{q: q}
}

func scanPatient(row pgx.Row) (*entity.Patient, error) {
	var p entity.Patient
	err := row.Scan(
		&p.ID, &p.EnterpriseID, &p.DepartmentID, &p.ClinicID, &p.UserID,
		&p.Document, &p.Name, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene una ficha por ID; nil sin error si no existe.
func (r *PatientRepo) GetByID(ctx context.Context, id string) (*entity.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	p, err := scanPatient(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

// GetByUserID obtiene la ficha ligada a una cuenta de usuario.
func (r *PatientRepo) GetByUserID(ctx context.Context, userID string) (*entity.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE user_id = $1`
	p, err := scanPatient(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient by user: %w", err)
	}
	return p, nil
}

// ListByEnterprise lista fichas de una empresa con el filtro de unidad ya
// intersectado con el alcance del actor. enterpriseID vacío lista todas las
// empresas (alcance de plataforma).
func (r *PatientRepo) ListByEnterprise(ctx context.Context, enterpriseID string, filter repository.ScopeFilter, limit, offset int) ([]*entity.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
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
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Create persiste una nueva ficha.
func (r *PatientRepo) Create(ctx context.Context, patient *entity.Patient) error {
	query := `
		INSERT INTO patients (id, enterprise_id, department_id, clinic_id, user_id,
			document, name, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		patient.ID, patient.EnterpriseID, patient.DepartmentID, patient.ClinicID, patient.UserID,
		patient.Document, patient.Name, patient.BirthDate, patient.CreatedAt, patient.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya existe una ficha con ese documento", domain.ErrValidation)
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

// Update actualiza una ficha.
func (r *PatientRepo) Update(ctx context.Context, patient *entity.Patient) error {
	query := `
		UPDATE patients SET department_id = $2, clinic_id = $3, user_id = $4,
			document = $5, name = $6, birth_date = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		patient.ID, patient.DepartmentID, patient.ClinicID, patient.UserID,
		patient.Document, patient.Name, patient.BirthDate, patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}
