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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, enterprise_id, clinic_id, patient_id, number, total,
	status, issued_at, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL. El total se
// mapea NUMERIC ↔ decimal.Decimal con el codec registrado en el pool.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador de facturación.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.EnterpriseID, &inv.ClinicID, &inv.PatientID, &inv.Number, &inv.Total,
		&inv.Status, &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByID obtiene una factura por ID; nil sin error si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListByEnterprise lista facturas por empresa; ScopeFilter.ClinicID acota a
// una clínica. enterpriseID vacío lista todas las empresas (plataforma).
func (r *InvoiceRepo) ListByEnterprise(ctx context.Context, enterpriseID string, filter repository.ScopeFilter, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var conds []string
	var args []any
	if enterpriseID != "" {
		args = append(args, enterpriseID)
		conds = append(conds, fmt.Sprintf("enterprise_id = $%d", len(args)))
	}
	if filter.ClinicID != "" {
		args = append(args, filter.ClinicID)
		conds = append(conds, fmt.Sprintf("clinic_id = $%d", len(args)))
	} else if filter.DepartmentID != "" {
		// Las facturas cuelgan de clínicas; un alcance de departamento cubre
		// las clínicas contenidas.
		args = append(args, filter.DepartmentID)
		conds = append(conds, fmt.Sprintf("clinic_id IN (SELECT id FROM org_units WHERE parent_id = $%d)", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Create persiste una nueva factura.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, enterprise_id, clinic_id, patient_id, number, total,
			status, issued_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.EnterpriseID, invoice.ClinicID, invoice.PatientID, invoice.Number,
		invoice.Total, invoice.Status, invoice.IssuedAt, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura duplicado", domain.ErrValidation)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update actualiza estado y fecha de emisión de una factura.
func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices SET total = $2, status = $3, issued_at = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Total, invoice.Status, invoice.IssuedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}
