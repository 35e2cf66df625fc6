package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/smartup/onec-supply-sync/internal/domain/entity"
	"github.com/smartup/onec-supply-sync/internal/domain/repository"
)

var _ repository.ContrAgentRepository = (*ContrAgentRepo)(nil)

// ContrAgentRepo implements ContrAgentRepository (usable with pool or tx).
type ContrAgentRepo struct {
	q Querier
}

// NewContrAgentRepository builds the adapter. Pass pool or tx (Querier).
func NewContrAgentRepository(q Querier) *ContrAgentRepo {
	return &ContrAgentRepo{q: q}
}

// UpsertByTIN inserts the agent or updates its name only. TIN is the global
// business key and never changes.
func (r *ContrAgentRepo) UpsertByTIN(ctx context.Context, name, tin string) (*entity.ContrAgent, bool, error) {
	query := `
		INSERT INTO contr_agents (id, name, tin, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (tin) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = now()
		RETURNING id, name, tin, created_at, updated_at, (xmax = 0) AS created`

	var agent entity.ContrAgent
	var created bool
	err := r.q.QueryRow(ctx, query, uuid.New().String(), name, tin).Scan(
		&agent.ID, &agent.Name, &agent.TIN, &agent.CreatedAt, &agent.UpdatedAt, &created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert contr agent: %w", err)
	}
	return &agent, created, nil
}

// GetByTIN fetches an agent by its tax id.
func (r *ContrAgentRepo) GetByTIN(ctx context.Context, tin string) (*entity.ContrAgent, error) {
	query := `SELECT id, name, tin, created_at, updated_at FROM contr_agents WHERE tin = $1`
	var agent entity.ContrAgent
	err := r.q.QueryRow(ctx, query, tin).Scan(
		&agent.ID, &agent.Name, &agent.TIN, &agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contr agent: %w", err)
	}
	return &agent, nil
}

// UpsertBalance creates or replaces the single balance row of an agent.
func (r *ContrAgentRepo) UpsertBalance(ctx context.Context, agentID string, prepayment, debt decimal.Decimal, syncAt time.Time) error {
	query := `
		INSERT INTO contr_agent_balances (id, contr_agent_id, prepayment, debt, updated_at, last_sync_at)
		VALUES ($1, $2, $3, $4, now(), $5)
		ON CONFLICT (contr_agent_id) DO UPDATE SET
			prepayment = EXCLUDED.prepayment,
			debt = EXCLUDED.debt,
			updated_at = now(),
			last_sync_at = EXCLUDED.last_sync_at`
	_, err := r.q.Exec(ctx, query, uuid.New().String(), agentID, prepayment, debt, syncAt)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// GetBalance fetches the balance row of an agent.
func (r *ContrAgentRepo) GetBalance(ctx context.Context, agentID string) (*entity.ContrAgentBalance, error) {
	query := `
		SELECT id, contr_agent_id, prepayment, debt, updated_at, last_sync_at
		FROM contr_agent_balances WHERE contr_agent_id = $1`
	var b entity.ContrAgentBalance
	err := r.q.QueryRow(ctx, query, agentID).Scan(
		&b.ID, &b.ContrAgentID, &b.Prepayment, &b.Debt, &b.UpdatedAt, &b.LastSyncAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}
