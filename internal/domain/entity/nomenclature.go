package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Nomenclature is one catalog/order document pushed by the 1C service.
// ExternalID is the natural business key: a second push with the same
// ExternalID replaces the record and all of its products.
type Nomenclature struct {
	ID               string
	ExternalID       string
	ClientID         string
	ClientName       string
	CustomerTIN      string
	Contract         string // raw JSON text, parsed on demand via ContractData()
	Date             *time.Time
	CreatedAt        time.Time
	SentOn           *time.Time
	Response         string // last raw Supply response, for audit
	SentSuccessfully bool
}

// Contract is the contract blob carried inside a nomenclature push.
type Contract struct {
	Number string `json:"number"`
	Date   string `json:"date"`
}

// ContractData parses the stored contract text. Returns nil when the field
// is empty or not valid JSON.
func (n *Nomenclature) ContractData() *Contract {
	if n.Contract == "" {
		return nil
	}
	var c Contract
	if err := json.Unmarshal([]byte(n.Contract), &c); err != nil {
		return nil
	}
	return &c
}

// Product is one line item owned by a Nomenclature. Products are created in
// bulk with their parent and deleted in bulk when the parent is replaced.
type Product struct {
	ID             string
	NomenclatureID string
	Code           string
	CatalogCode    string
	Barcode        string
	PackageCode    string
	Code1C         string
	Name           string
	Count          decimal.Decimal
	Summa          decimal.Decimal
	DeliverySum    decimal.Decimal
}
