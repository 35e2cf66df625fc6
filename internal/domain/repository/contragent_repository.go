package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartup/onec-supply-sync/internal/domain/entity"
)

// ContrAgentRepository defines the persistence port for counterparties and
// their balances. All upserts are keyed by TIN.
type ContrAgentRepository interface {
	// UpsertByTIN creates the agent or updates its name only. Returns the
	// stored agent and whether it was newly created.
	UpsertByTIN(ctx context.Context, name, tin string) (*entity.ContrAgent, bool, error)

	GetByTIN(ctx context.Context, tin string) (*entity.ContrAgent, error)

	// UpsertBalance creates or replaces the single balance row of an agent.
	UpsertBalance(ctx context.Context, agentID string, prepayment, debt decimal.Decimal, syncAt time.Time) error

	GetBalance(ctx context.Context, agentID string) (*entity.ContrAgentBalance, error)
}
