package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/smartup/onec-supply-sync/internal/application/dto"
	"github.com/smartup/onec-supply-sync/internal/application/sync"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/supply"
)

// AdminHandler exposes the operator console: record listing, manual re-drive
// and the Supply reference lookups.
type AdminHandler struct {
	nomUC  *sync.NomenclatureUseCase
	supply *supply.Client
}

// NewAdminHandler builds the handler.
func NewAdminHandler(nomUC *sync.NomenclatureUseCase, supplyClient *supply.Client) *AdminHandler {
	return &AdminHandler{nomUC: nomUC, supply: supplyClient}
}

// ListNomenclatures GET /api/admin/nomenclatures?sent=false&limit=20&offset=0
func (h *AdminHandler) ListNomenclatures(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var sent *bool
	if q := c.Query("sent"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sent must be true or false"})
		}
		sent = &v
	}

	list, err := h.nomUC.List(c.UserContext(), sent, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}

// Redrive POST /api/admin/nomenclatures/redrive
func (h *AdminHandler) Redrive(c *fiber.Ctx) error {
	var in dto.RedriveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid JSON format"})
	}
	succeeded, failed, err := h.nomUC.ProcessPending(c.UserContext(), in.MaxCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.RedriveResponse{
		Processed: succeeded + failed,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

// Branches GET /api/admin/supply/branches
func (h *AdminHandler) Branches(c *fiber.Ctx) error {
	branches, err := h.supply.Branches(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SUPPLY", Message: err.Error()})
	}
	return c.JSON(branches)
}

// Warehouses GET /api/admin/supply/warehouses
func (h *AdminHandler) Warehouses(c *fiber.Ctx) error {
	warehouses, err := h.supply.Warehouses(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SUPPLY", Message: err.Error()})
	}
	return c.JSON(warehouses)
}
