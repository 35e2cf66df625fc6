package sync

import (
	"context"

	"github.com/smartup/onec-supply-sync/internal/domain/repository"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/supply"
)

// TxRunner runs a callback inside one PostgreSQL transaction with
// repositories bound to that transaction. The ingestion upsert (header +
// product replacement) must be all-or-nothing.
type TxRunner interface {
	RunSync(ctx context.Context, fn func(
		nomRepo repository.NomenclatureRepository,
		agentRepo repository.ContrAgentRepository,
	) error) error
}

// OrderSender is the outbound port to the Supply order API. Implementations
// never fail past their boundary: every failure mode comes back inside the
// Outcome so the caller can persist it.
type OrderSender interface {
	Send(ctx context.Context, payload supply.OrderPayload, maxRetries int) (bool, supply.Outcome)
}
