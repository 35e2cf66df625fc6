package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartup/onec-supply-sync/internal/application/dto"
	"github.com/smartup/onec-supply-sync/internal/application/sync"
	"github.com/smartup/onec-supply-sync/internal/domain"
)

// SyncHandler receives the master-data pushes from the 1C service.
type SyncHandler struct {
	nomUC   *sync.NomenclatureUseCase
	agentUC *sync.ContrAgentUseCase
}

// NewSyncHandler builds the handler.
func NewSyncHandler(nomUC *sync.NomenclatureUseCase, agentUC *sync.ContrAgentUseCase) *SyncHandler {
	return &SyncHandler{nomUC: nomUC, agentUC: agentUC}
}

// NomenclatureUpdate POST /api/integrations/nomenclature/update
func (h *SyncHandler) NomenclatureUpdate(c *fiber.Ctx) error {
	var in dto.NomenclatureUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.PushErrorResponse{Error: "invalid JSON format"})
	}
	resp, err := h.nomUC.Ingest(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.PushErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.PushErrorResponse{Error: "server error while processing request"})
	}
	return c.JSON(resp)
}

// ContrAgentsUpdate POST /api/integrations/contr_agents/update
func (h *SyncHandler) ContrAgentsUpdate(c *fiber.Ctx) error {
	return h.handleAgents(c, h.agentUC.UpdateAgents)
}

// ContrAgentBalances POST /api/integrations/contr_agents/balances
func (h *SyncHandler) ContrAgentBalances(c *fiber.Ctx) error {
	return h.handleAgents(c, h.agentUC.UpdateBalances)
}

// handleAgents shares the decode/respond plumbing of both counterparty pushes.
func (h *SyncHandler) handleAgents(
	c *fiber.Ctx,
	process func(ctx context.Context, in dto.ContrAgentsUpdateRequest) (*dto.TimestampResponse, error),
) error {
	var in dto.ContrAgentsUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.PushErrorResponse{Error: "invalid JSON format"})
	}
	resp, err := process(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.PushErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.PushErrorResponse{Error: "server error while processing request"})
	}
	return c.JSON(resp)
}
