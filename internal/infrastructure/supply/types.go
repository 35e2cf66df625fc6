package supply

import "github.com/shopspring/decimal"

// OrderPayload is the wire shape of POST /api/cabinet/v1/orders/1c.
type OrderPayload struct {
	BranchID      string         `json:"branchId"`
	CustomerTIN   string         `json:"customerTin"`
	Contract      OrderContract  `json:"contract"`
	OrderNumber   string         `json:"orderNumber"`
	OrderDate     string         `json:"orderDate"`
	CreateStockIn bool           `json:"createStockIn"`
	Products      []OrderProduct `json:"products"`
}

// OrderContract is the contract sub-object required by Supply.
type OrderContract struct {
	Number string `json:"number"`
	Date   string `json:"date"`
}

// OrderProduct is one order line in the Supply schema. Serial and BaseSumma
// mirror Code and Summa, and ProfitRate is always zero: those fields are not
// tracked on the 1C side and Supply accepts the duplicated values.
type OrderProduct struct {
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Serial      string          `json:"serial"`
	Barcode     string          `json:"barcode"`
	Count       decimal.Decimal `json:"count"`
	BaseSumma   decimal.Decimal `json:"baseSumma"`
	CatalogCode string          `json:"catalogCode"`
	PackageCode string          `json:"packageCode"`
	ProfitRate  decimal.Decimal `json:"profitRate"`
	Summa       decimal.Decimal `json:"summa"`
	DeliverySum decimal.Decimal `json:"deliverySum"`
}

// FailureClass classifies a delivery failure for diagnosis and replay.
type FailureClass string

const (
	ClassNone       FailureClass = ""           // delivered
	ClassAuth       FailureClass = "auth"       // credential exchange failed or Supply rejected the token
	ClassAPI        FailureClass = "api"        // non-2xx from Supply
	ClassTransport  FailureClass = "transport"  // network error reaching Supply
	ClassValidation FailureClass = "validation" // record unfit for the Supply schema, never sent
)

// Outcome is the structured result of a delivery attempt sequence. It is
// serialized as-is into the nomenclature response column, so every exit path
// of the sender stays observable by an operator.
type Outcome struct {
	Success    bool         `json:"success"`
	StatusCode int          `json:"status_code,omitempty"`
	Body       string       `json:"body,omitempty"`
	Error      string       `json:"error,omitempty"`
	Attempts   int          `json:"attempts"`
	Class      FailureClass `json:"class,omitempty"`
}

// Branch is one entry of the branches lookup.
type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Warehouse is one entry of the warehouses lookup.
type Warehouse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	BranchID int64  `json:"branchId"`
}
