package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación de AuditRepository sobre PostgreSQL. Es solo-append:
// las entradas nunca se modifican ni se borran.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador del registro de auditoría.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Append persiste una entrada de auditoría.
func (r *AuditRepo) Append(ctx context.Context, entry *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, enterprise_id, actor_id, action, module, target_id, allowed, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.EnterpriseID, entry.ActorID, entry.Action, entry.Module,
		entry.TargetID, entry.Allowed, entry.Reason, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByEnterprise lista entradas de una empresa, más recientes primero.
// enterpriseID vacío lista todas las empresas (alcance de plataforma).
func (r *AuditRepo) ListByEnterprise(ctx context.Context, enterpriseID string, filter repository.AuditFilter, limit, offset int) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, enterprise_id, actor_id, action, module, target_id, allowed, reason, created_at
		FROM audit_log`
	var conds []string
	var args []any
	if enterpriseID != "" {
		args = append(args, enterpriseID)
		conds = append(conds, fmt.Sprintf("enterprise_id = $%d", len(args)))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		conds = append(conds, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if filter.Module != "" {
		args = append(args, filter.Module)
		conds = append(conds, fmt.Sprintf("module = $%d", len(args)))
	}
	if filter.Allowed != nil {
		args = append(args, *filter.Allowed)
		conds = append(conds, fmt.Sprintf("allowed = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.EnterpriseID, &e.ActorID, &e.Action, &e.Module, &e.TargetID, &e.Allowed, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
