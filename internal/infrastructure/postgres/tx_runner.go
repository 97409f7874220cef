package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

var _ engine.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta las mutaciones protegidas dentro de una transacción
// PostgreSQL: las guardas se revalidan sobre estado fresco y el chequeo de
// versión, la escritura y la entrada de auditoría comiten juntos.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(users repository.UserRepository, audit repository.AuditRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return directoryErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewUserRepository(tx), NewAuditRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
