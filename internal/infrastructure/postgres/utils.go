package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
)

// Querier abstrae pool y transacción: los adaptadores funcionan igual atados
// a un *pgxpool.Pool o a una pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// directoryErr clasifica un fallo del adaptador. Un error SQL (consulta mal
// formada, constraint) se envuelve tal cual; un fallo de conexión o timeout se
// marca como domain.ErrDirectoryUnavailable para que el motor lo propague como
// denegación con causa y nunca como permiso implícito.
func directoryErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrDirectoryUnavailable, op, err)
}
