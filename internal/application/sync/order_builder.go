package sync

import (
	"fmt"

	"github.com/smartup/onec-supply-sync/internal/domain"
	"github.com/smartup/onec-supply-sync/internal/domain/entity"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/supply"
)

// BuildOrder maps a stored nomenclature and its products into the Supply
// order payload. Pure, no I/O.
//
// Fields the 1C side does not track are defaulted the way Supply expects:
// serial repeats the product code, baseSumma repeats summa and profitRate is
// zero. createStockIn is always true so Supply opens the matching stock-in.
func BuildOrder(branchID string, n *entity.Nomenclature, products []*entity.Product) (supply.OrderPayload, error) {
	if len(products) == 0 {
		return supply.OrderPayload{}, fmt.Errorf("%w: nomenclature %s has no products", domain.ErrValidation, n.ExternalID)
	}
	if n.CustomerTIN == "" {
		return supply.OrderPayload{}, fmt.Errorf("%w: nomenclature %s has no customer tin", domain.ErrValidation, n.ExternalID)
	}
	if n.Date == nil {
		return supply.OrderPayload{}, fmt.Errorf("%w: nomenclature %s has no order date", domain.ErrValidation, n.ExternalID)
	}
	contract := n.ContractData()
	if contract == nil || contract.Number == "" {
		return supply.OrderPayload{}, fmt.Errorf("%w: nomenclature %s has no contract number", domain.ErrValidation, n.ExternalID)
	}

	orderProducts := make([]supply.OrderProduct, 0, len(products))
	for _, p := range products {
		orderProducts = append(orderProducts, supply.OrderProduct{
			Name:        p.Name,
			Code:        p.Code,
			Serial:      p.Code,
			Barcode:     p.Barcode,
			Count:       p.Count,
			BaseSumma:   p.Summa,
			CatalogCode: p.CatalogCode,
			PackageCode: p.PackageCode,
			Summa:       p.Summa,
			DeliverySum: p.DeliverySum,
		})
	}

	return supply.OrderPayload{
		BranchID:      branchID,
		CustomerTIN:   n.CustomerTIN,
		Contract:      supply.OrderContract{Number: contract.Number, Date: contract.Date},
		OrderNumber:   n.ExternalID,
		OrderDate:     n.Date.Format("2006-01-02"),
		CreateStockIn: true,
		Products:      orderProducts,
	}, nil
}
