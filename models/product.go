package models

import (
	"github.com/shopspring/decimal"
)

// Product is read by the low-stock watcher; product CRUD itself goes
// through the PocketBase record API.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	MinStock   int             `json:"min_stock"`
	SupplierID string          `json:"supplier_id"`
	CreatedBy  string          `json:"created_by"`
}

// LowStock reports whether the product is at or below its restock floor.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}
