package repository

import (
	"context"
	"time"

	"github.com/smartup/onec-supply-sync/internal/domain/entity"
)

// NomenclatureRepository defines the persistence port for Nomenclature and
// its owned products.
type NomenclatureRepository interface {
	// Upsert creates the nomenclature or, when ExternalID already exists,
	// overwrites its header fields in place. Returns the stored record and
	// whether it was newly created.
	Upsert(ctx context.Context, n *entity.Nomenclature) (*entity.Nomenclature, bool, error)

	GetByExternalID(ctx context.Context, externalID string) (*entity.Nomenclature, error)

	// DeleteProducts removes every product owned by the nomenclature.
	// Used for the replace-semantics of a repeated push.
	DeleteProducts(ctx context.Context, nomenclatureID string) error

	// BulkInsertProducts inserts the full product set of a nomenclature.
	BulkInsertProducts(ctx context.Context, products []*entity.Product) error

	GetProducts(ctx context.Context, nomenclatureID string) ([]*entity.Product, error)

	// UpdateSendStatus records the outcome of a Supply delivery attempt.
	// This is the only mutation the pipeline performs after ingestion.
	UpdateSendStatus(ctx context.Context, nomenclatureID string, sentOn time.Time, response string, ok bool) error

	// ListUnsent returns up to limit records with sent_successfully = false,
	// oldest created first.
	ListUnsent(ctx context.Context, limit int) ([]*entity.Nomenclature, error)

	// List returns records for the operator console, newest first, optionally
	// filtered by delivery status.
	List(ctx context.Context, sent *bool, limit, offset int) ([]*entity.Nomenclature, error)
}
