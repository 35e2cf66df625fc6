package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartup/onec-supply-sync/internal/application/sync"
	"github.com/smartup/onec-supply-sync/internal/domain/repository"
)

// Ensure TxRunner implements sync.TxRunner.
var _ sync.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside a PostgreSQL transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner with the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSync starts a transaction, runs fn with repos bound to the tx and
// commits, or rolls back when fn returns an error.
func (r *TxRunner) RunSync(ctx context.Context, fn func(
	nomRepo repository.NomenclatureRepository,
	agentRepo repository.ContrAgentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	nomRepo := NewNomenclatureRepository(tx)
	agentRepo := NewContrAgentRepository(tx)

	if err := fn(nomRepo, agentRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
