package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/smartup/onec-supply-sync/internal/domain/entity"
	"github.com/smartup/onec-supply-sync/internal/domain/repository"
)

var _ repository.NomenclatureRepository = (*NomenclatureRepo)(nil)

// NomenclatureRepo implements NomenclatureRepository (usable with pool or tx).
type NomenclatureRepo struct {
	q Querier
}

// NewNomenclatureRepository builds the adapter. Pass pool or tx (Querier).
func NewNomenclatureRepository(q Querier) *NomenclatureRepo {
	return &NomenclatureRepo{q: q}
}

const nomenclatureColumns = `id, external_id, client_id, client_name, customer_tin, contract,
	date, created_at, sent_on, response, sent_successfully`

// Upsert inserts the nomenclature or overwrites its header fields when the
// external_id already exists. The row id and the send-status columns survive
// an update; only the sender's write-back touches those.
func (r *NomenclatureRepo) Upsert(ctx context.Context, n *entity.Nomenclature) (*entity.Nomenclature, bool, error) {
	query := `
		INSERT INTO nomenclatures (id, external_id, client_id, client_name, customer_tin, contract, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (external_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_name = EXCLUDED.client_name,
			customer_tin = EXCLUDED.customer_tin,
			contract = EXCLUDED.contract,
			date = EXCLUDED.date
		RETURNING ` + nomenclatureColumns + `, (xmax = 0) AS created`

	var stored entity.Nomenclature
	var created bool
	err := r.q.QueryRow(ctx, query,
		n.ID, n.ExternalID, n.ClientID, n.ClientName, n.CustomerTIN, n.Contract, n.Date,
	).Scan(
		&stored.ID, &stored.ExternalID, &stored.ClientID, &stored.ClientName, &stored.CustomerTIN,
		&stored.Contract, &stored.Date, &stored.CreatedAt, &stored.SentOn, &stored.Response,
		&stored.SentSuccessfully, &created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert nomenclature: %w", err)
	}
	return &stored, created, nil
}

// GetByExternalID fetches a nomenclature by its 1C business key.
func (r *NomenclatureRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Nomenclature, error) {
	query := `SELECT ` + nomenclatureColumns + ` FROM nomenclatures WHERE external_id = $1`
	var n entity.Nomenclature
	err := r.q.QueryRow(ctx, query, externalID).Scan(
		&n.ID, &n.ExternalID, &n.ClientID, &n.ClientName, &n.CustomerTIN,
		&n.Contract, &n.Date, &n.CreatedAt, &n.SentOn, &n.Response, &n.SentSuccessfully,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get nomenclature: %w", err)
	}
	return &n, nil
}

// DeleteProducts removes the full product set of a nomenclature.
func (r *NomenclatureRepo) DeleteProducts(ctx context.Context, nomenclatureID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE nomenclature_id = $1`, nomenclatureID)
	if err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

// BulkInsertProducts inserts the product set in one batch.
func (r *NomenclatureRepo) BulkInsertProducts(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{
			p.ID, p.NomenclatureID, p.Code, p.CatalogCode, p.Barcode,
			p.PackageCode, p.Code1C, p.Name, p.Count, p.Summa, p.DeliverySum,
		})
	}
	_, err := r.q.CopyFrom(ctx, pgx.Identifier{"products"},
		[]string{"id", "nomenclature_id", "code", "catalog_code", "barcode",
			"package_code", "code_1c", "name", "count", "summa", "delivery_sum"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("bulk insert products: %w", err)
	}
	return nil
}

// GetProducts lists the products owned by a nomenclature.
func (r *NomenclatureRepo) GetProducts(ctx context.Context, nomenclatureID string) ([]*entity.Product, error) {
	query := `
		SELECT id, nomenclature_id, code, catalog_code, barcode, package_code, code_1c, name, count, summa, delivery_sum
		FROM products WHERE nomenclature_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, nomenclatureID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.NomenclatureID, &p.Code, &p.CatalogCode, &p.Barcode,
			&p.PackageCode, &p.Code1C, &p.Name, &p.Count, &p.Summa, &p.DeliverySum); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// UpdateSendStatus records the outcome of a delivery attempt sequence.
func (r *NomenclatureRepo) UpdateSendStatus(ctx context.Context, nomenclatureID string, sentOn time.Time, response string, ok bool) error {
	query := `UPDATE nomenclatures SET sent_on = $2, response = $3, sent_successfully = $4 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, nomenclatureID, sentOn, response, ok)
	if err != nil {
		return fmt.Errorf("update send status: %w", err)
	}
	return nil
}

// ListUnsent returns up to limit undelivered records, oldest created first,
// which fixes the re-drive order.
func (r *NomenclatureRepo) ListUnsent(ctx context.Context, limit int) ([]*entity.Nomenclature, error) {
	query := `SELECT ` + nomenclatureColumns + `
		FROM nomenclatures WHERE sent_successfully = false
		ORDER BY created_at ASC LIMIT $1`
	return r.queryList(ctx, query, limit)
}

// List returns records for the operator console, newest first.
func (r *NomenclatureRepo) List(ctx context.Context, sent *bool, limit, offset int) ([]*entity.Nomenclature, error) {
	if sent != nil {
		query := `SELECT ` + nomenclatureColumns + `
			FROM nomenclatures WHERE sent_successfully = $3
			ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		return r.queryList(ctx, query, limit, offset, *sent)
	}
	query := `SELECT ` + nomenclatureColumns + `
		FROM nomenclatures ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.queryList(ctx, query, limit, offset)
}

func (r *NomenclatureRepo) queryList(ctx context.Context, query string, args ...any) ([]*entity.Nomenclature, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list nomenclatures: %w", err)
	}
	defer rows.Close()
	var list []*entity.Nomenclature
	for rows.Next() {
		var n entity.Nomenclature
		if err := rows.Scan(&n.ID, &n.ExternalID, &n.ClientID, &n.ClientName, &n.CustomerTIN,
			&n.Contract, &n.Date, &n.CreatedAt, &n.SentOn, &n.Response, &n.SentSuccessfully); err != nil {
			return nil, fmt.Errorf("scan nomenclature: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
