package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smartup/onec-supply-sync/internal/application/dto"
	"github.com/smartup/onec-supply-sync/internal/domain"
	"github.com/smartup/onec-supply-sync/internal/domain/entity"
	"github.com/smartup/onec-supply-sync/internal/domain/repository"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/supply"
)

// NomenclatureUseCase handles a 1C nomenclature push end to end:
// structural validation, the transactional replace-upsert, the Supply
// delivery and the outcome write-back.
//
// Storage success and delivery success are decoupled on purpose: a record
// that persisted but failed to deliver answers 200 to 1C and stays queued
// for re-drive. Only a persistence failure aborts the request.
type NomenclatureUseCase struct {
	tx         TxRunner
	nomRepo    repository.NomenclatureRepository
	sender     OrderSender
	branchID   string
	maxRetries int
	log        zerolog.Logger
}

// NewNomenclatureUseCase wires the use case.
func NewNomenclatureUseCase(
	tx TxRunner,
	nomRepo repository.NomenclatureRepository,
	sender OrderSender,
	branchID string,
	maxRetries int,
	log zerolog.Logger,
) *NomenclatureUseCase {
	return &NomenclatureUseCase{
		tx:         tx,
		nomRepo:    nomRepo,
		sender:     sender,
		branchID:   branchID,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Ingest processes one inbound nomenclature payload.
func (uc *NomenclatureUseCase) Ingest(ctx context.Context, in dto.NomenclatureUpdateRequest) (*dto.NomenclatureUpdateResponse, error) {
	if in.ClientID == "" || in.Nomenclature.ID == "" {
		return nil, fmt.Errorf("%w: client_id and nomenclature.id are required", domain.ErrBadRequest)
	}

	// An unparseable date is tolerated: the record still persists and the
	// missing date surfaces later as a delivery validation failure.
	var date *time.Time
	if in.Date != "" {
		if d, err := time.Parse("2006-01-02", in.Date); err == nil {
			date = &d
		} else {
			uc.log.Warn().Str("date", in.Date).Str("nomenclature", in.Nomenclature.ID).Msg("invalid date format, storing without date")
		}
	}

	header := &entity.Nomenclature{
		ID:          uuid.New().String(),
		ExternalID:  in.Nomenclature.ID,
		ClientID:    in.ClientID,
		ClientName:  in.ClientName,
		CustomerTIN: in.CustomerTIN,
		Contract:    contractText(in.Contract),
		Date:        date,
	}

	var (
		stored   *entity.Nomenclature
		products []*entity.Product
	)
	err := uc.tx.RunSync(ctx, func(nomRepo repository.NomenclatureRepository, _ repository.ContrAgentRepository) error {
		var created bool
		var err error
		stored, created, err = nomRepo.Upsert(ctx, header)
		if err != nil {
			return err
		}
		if created {
			uc.log.Info().Str("external_id", stored.ExternalID).Msg("created nomenclature")
		} else {
			uc.log.Info().Str("external_id", stored.ExternalID).Msg("updated nomenclature, replacing products")
			if err := nomRepo.DeleteProducts(ctx, stored.ID); err != nil {
				return err
			}
		}

		products = make([]*entity.Product, 0, len(in.Nomenclature.Products))
		for _, p := range in.Nomenclature.Products {
			products = append(products, &entity.Product{
				ID:             uuid.New().String(),
				NomenclatureID: stored.ID,
				Code:           p.Code,
				CatalogCode:    p.CatalogCode,
				Barcode:        p.Barcode,
				PackageCode:    p.PackageCode,
				Code1C:         p.Code1C,
				Name:           p.Name,
				Count:          p.Count,
				Summa:          p.Summa,
				DeliverySum:    p.DeliverySum,
			})
		}
		if len(products) > 0 {
			if err := nomRepo.BulkInsertProducts(ctx, products); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist nomenclature %s: %w", in.Nomenclature.ID, err)
	}

	// Delivery happens after the ingest transaction committed. Its outcome
	// lands on the record in a separate atomic update and never fails the
	// request.
	uc.Deliver(ctx, stored, products)

	return &dto.NomenclatureUpdateResponse{
		Success:        true,
		NomenclatureID: stored.ExternalID,
		ClientID:       stored.ClientID,
		ProductsCount:  len(products),
	}, nil
}

// Deliver transforms the record, sends it to Supply and records the outcome
// on the nomenclature row. Returns whether delivery succeeded.
func (uc *NomenclatureUseCase) Deliver(ctx context.Context, n *entity.Nomenclature, products []*entity.Product) bool {
	var (
		ok      bool
		outcome supply.Outcome
	)

	payload, err := BuildOrder(uc.branchID, n, products)
	if err != nil {
		// The record is unfit for the Supply schema; it was never sent.
		outcome = supply.Outcome{Class: supply.ClassValidation, Error: err.Error()}
		uc.log.Warn().Str("external_id", n.ExternalID).Err(err).Msg("nomenclature failed supply validation")
	} else {
		ok, outcome = uc.sender.Send(ctx, payload, uc.maxRetries)
	}

	raw, merr := json.Marshal(outcome)
	if merr != nil {
		raw = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, merr.Error()))
	}
	if err := uc.nomRepo.UpdateSendStatus(ctx, n.ID, time.Now(), string(raw), ok); err != nil {
		uc.log.Error().Str("external_id", n.ExternalID).Err(err).Msg("failed to record send status")
	}
	return ok
}

// List returns stored records for the operator console.
func (uc *NomenclatureUseCase) List(ctx context.Context, sent *bool, limit, offset int) ([]*dto.NomenclatureView, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	records, err := uc.nomRepo.List(ctx, sent, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.NomenclatureView, 0, len(records))
	for _, n := range records {
		out = append(out, &dto.NomenclatureView{
			ID:               n.ID,
			ExternalID:       n.ExternalID,
			ClientID:         n.ClientID,
			ClientName:       n.ClientName,
			CustomerTIN:      n.CustomerTIN,
			Date:             n.Date,
			CreatedAt:        n.CreatedAt,
			SentOn:           n.SentOn,
			Response:         n.Response,
			SentSuccessfully: n.SentSuccessfully,
		})
	}
	return out, nil
}

// contractText normalizes the inbound contract blob to stored text. A JSON
// string arrives pre-serialized by 1C and is unwrapped; anything else is
// stored as raw JSON.
func contractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
