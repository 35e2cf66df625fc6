package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/smartup/onec-supply-sync/internal/application/dto"
	"github.com/smartup/onec-supply-sync/internal/domain"
	"github.com/smartup/onec-supply-sync/internal/domain/repository"
)

// ContrAgentUseCase handles counterparty and balance pushes from 1C.
// Entries missing required fields are skipped, not failed: 1C resends the
// full list on every sync and a single bad entry must not block the rest.
type ContrAgentUseCase struct {
	tx  TxRunner
	log zerolog.Logger
}

// NewContrAgentUseCase wires the use case.
func NewContrAgentUseCase(tx TxRunner, log zerolog.Logger) *ContrAgentUseCase {
	return &ContrAgentUseCase{tx: tx, log: log}
}

// UpdateAgents upserts the pushed counterparties by TIN (name-only update).
func (uc *ContrAgentUseCase) UpdateAgents(ctx context.Context, in dto.ContrAgentsUpdateRequest) (*dto.TimestampResponse, error) {
	if _, err := uc.validate(in); err != nil {
		return nil, err
	}

	err := uc.tx.RunSync(ctx, func(_ repository.NomenclatureRepository, agentRepo repository.ContrAgentRepository) error {
		for _, a := range in.ContrAgents {
			if a.Name == "" || a.TIN == "" {
				uc.log.Warn().Str("name", a.Name).Str("tin", a.TIN).Msg("skipping contr agent with missing fields")
				continue
			}
			agent, created, err := agentRepo.UpsertByTIN(ctx, a.Name, a.TIN)
			if err != nil {
				return err
			}
			if created {
				uc.log.Info().Str("tin", agent.TIN).Str("name", agent.Name).Msg("created contr agent")
			} else {
				uc.log.Info().Str("tin", agent.TIN).Str("name", agent.Name).Msg("updated contr agent")
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist contr agents: %w", err)
	}

	return &dto.TimestampResponse{Success: true, Timestamp: in.Timestamp}, nil
}

// UpdateBalances upserts counterparties and their single balance row.
// Entries without prepayment or debt are skipped.
func (uc *ContrAgentUseCase) UpdateBalances(ctx context.Context, in dto.ContrAgentsUpdateRequest) (*dto.TimestampResponse, error) {
	syncAt, err := uc.validate(in)
	if err != nil {
		return nil, err
	}

	err = uc.tx.RunSync(ctx, func(_ repository.NomenclatureRepository, agentRepo repository.ContrAgentRepository) error {
		for _, a := range in.ContrAgents {
			prepayment, pok := parseAmount(a.Prepayment)
			debt, dok := parseAmount(a.Debt)
			if a.Name == "" || a.TIN == "" || !pok || !dok {
				uc.log.Warn().Str("name", a.Name).Str("tin", a.TIN).Msg("skipping balance entry with missing or malformed fields")
				continue
			}
			agent, created, err := agentRepo.UpsertByTIN(ctx, a.Name, a.TIN)
			if err != nil {
				return err
			}
			if created {
				uc.log.Info().Str("tin", agent.TIN).Msg("created contr agent from balance push")
			}
			if err := agentRepo.UpsertBalance(ctx, agent.ID, prepayment, debt, syncAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist contr agent balances: %w", err)
	}

	return &dto.TimestampResponse{Success: true, Timestamp: in.Timestamp}, nil
}

// validate checks the envelope shared by both push kinds and parses the
// timestamp (ISO 8601; 1C sends both offset and offset-less local time).
func (uc *ContrAgentUseCase) validate(in dto.ContrAgentsUpdateRequest) (time.Time, error) {
	if in.Timestamp == "" || in.ContrAgents == nil {
		return time.Time{}, fmt.Errorf("%w: timestamp and contr_agents list are required", domain.ErrBadRequest)
	}
	ts, err := time.Parse(time.RFC3339, in.Timestamp)
	if err != nil {
		ts, err = time.Parse("2006-01-02T15:04:05", in.Timestamp)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp format, use ISO 8601", domain.ErrBadRequest)
	}
	return ts, nil
}

// parseAmount decodes one inbound amount (number or numeric string).
// Missing, null or malformed values report not-ok so the entry is skipped.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, false
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
