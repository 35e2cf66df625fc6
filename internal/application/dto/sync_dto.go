package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// NomenclatureUpdateRequest is the 1C push body for POST /nomenclature/update.
// Contract arrives either as a JSON object or as a pre-serialized string;
// it is kept raw and stored as text.
type NomenclatureUpdateRequest struct {
	ClientID     string              `json:"client_id"`
	ClientName   string              `json:"client_name"`
	CustomerTIN  string              `json:"customer_tin"`
	Contract     json.RawMessage     `json:"contract"`
	Date         string              `json:"date"` // YYYY-MM-DD
	Nomenclature NomenclaturePayload `json:"nomenclature"`
}

// NomenclaturePayload is the nested document with its product lines.
type NomenclaturePayload struct {
	ID       string           `json:"id"`
	Products []ProductPayload `json:"products"`
}

// ProductPayload is one inbound product line. Note the 1C casing of code1C.
type ProductPayload struct {
	Code        string          `json:"code"`
	CatalogCode string          `json:"catalog_code"`
	Barcode     string          `json:"barcode"`
	PackageCode string          `json:"package_code"`
	Code1C      string          `json:"code1C"`
	Name        string          `json:"name"`
	Count       decimal.Decimal `json:"count"`
	Summa       decimal.Decimal `json:"summa"`
	DeliverySum decimal.Decimal `json:"delivery_sum"`
}

// NomenclatureUpdateResponse confirms the ingestion. Success refers to
// storage only; delivery to Supply is recorded on the record itself.
type NomenclatureUpdateResponse struct {
	Success        bool   `json:"success"`
	NomenclatureID string `json:"nomenclature_id"`
	ClientID       string `json:"client_id"`
	ProductsCount  int    `json:"products_count"`
}

// ContrAgentsUpdateRequest is the 1C push body for POST /contr_agents/update
// and /contr_agents/balances.
type ContrAgentsUpdateRequest struct {
	Timestamp   string              `json:"timestamp"`
	ContrAgents []ContrAgentPayload `json:"contr_agents"`
}

// ContrAgentPayload is one counterparty entry. Amounts stay raw JSON so a
// missing or malformed number skips its own entry during processing instead
// of failing the whole push at decode time.
type ContrAgentPayload struct {
	Name       string          `json:"name"`
	TIN        string          `json:"tin"`
	Prepayment json.RawMessage `json:"prepayment,omitempty"`
	Debt       json.RawMessage `json:"debt,omitempty"`
}

// TimestampResponse is the aggregate reply to a counterparty push.
type TimestampResponse struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}

// RedriveRequest triggers a re-delivery sweep over unsent records.
type RedriveRequest struct {
	MaxCount int `json:"max_count"`
}

// RedriveResponse reports per-sweep counters.
type RedriveResponse struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// NomenclatureView is the operator-console projection of a stored record.
type NomenclatureView struct {
	ID               string     `json:"id"`
	ExternalID       string     `json:"external_id"`
	ClientID         string     `json:"client_id"`
	ClientName       string     `json:"client_name"`
	CustomerTIN      string     `json:"customer_tin"`
	Date             *time.Time `json:"date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	SentOn           *time.Time `json:"sent_on,omitempty"`
	Response         string     `json:"response,omitempty"`
	SentSuccessfully bool       `json:"sent_successfully"`
}

// TokenRequest exchanges integration-user credentials for a bearer token.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ErrorResponse HTTP error body of the admin and auth surfaces.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PushErrorResponse is the error body of the 1C push endpoints. The 1C side
// is coded against {success:false, error}, so those routes never answer the
// admin-style body.
type PushErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
