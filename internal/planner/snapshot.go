package planner

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/herobront95-prog/limit-planner/internal/models"
)

// DefaultWarehouseReserve is how many units must remain in the warehouse
// column before a product is offered to a store from a snapshot.
const DefaultWarehouseReserve = 2

// SnapshotItems extracts one store's stock line items from a multi-store
// snapshot. When warehouseColumn is set, products whose warehouse stock
// minus the reserve is not positive are skipped: there is nothing left to
// ship, so ordering them would only produce noise. Products are returned
// in sorted name order.
func SnapshotItems(snapshot *models.GlobalStockSnapshot, storeColumn, warehouseColumn string, reserve int) []models.StockLineItem {
	if snapshot == nil {
		return nil
	}

	products := make([]string, 0, len(snapshot.Data))
	for product := range snapshot.Data {
		products = append(products, product)
	}
	sort.Strings(products)

	reserveDec := decimal.NewFromInt(int64(reserve))

	items := make([]models.StockLineItem, 0, len(products))
	for _, product := range products {
		columns := snapshot.Data[product]

		if warehouseColumn != "" {
			warehouse := decimal.NewFromFloat(columns[warehouseColumn])
			if !warehouse.Sub(reserveDec).IsPositive() {
				continue
			}
		}

		items = append(items, models.StockLineItem{
			Name:     product,
			Quantity: decimal.NewFromFloat(columns[storeColumn]),
		})
	}

	return items
}
