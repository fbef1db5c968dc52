package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         int
	Code       string
	Name       string
	Price      decimal.Decimal
	Stock      int
	StockMin   int
	Status     bool
	BrandID    int
	CategoryID int
	UnitID     int
	SupplierID int
	// Display names joined from the reference tables; empty when the query
	// did not ask for them.
	BrandName    string
	CategoryName string
	UnitName     string
	SupplierName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sellable reports whether the product can appear in the checkout cart:
// active and with at least one unit on hand.
func (p Product) Sellable() bool {
	return p.Status && p.Stock > 0
}

// BelowMinimum reports whether stock has fallen under the advisory
// threshold. Not enforced at sale time.
func (p Product) BelowMinimum() bool {
	return p.Stock < p.StockMin
}

// ProductPatch is a partial update: nil fields are left untouched. The
// repository builds the SET clause from the non-nil fields only.
type ProductPatch struct {
	Code       *string
	Name       *string
	Price      *decimal.Decimal
	Stock      *int
	StockMin   *int
	Status     *bool
	BrandID    *int
	CategoryID *int
	UnitID     *int
	SupplierID *int
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Code == nil && p.Name == nil && p.Price == nil &&
		p.Stock == nil && p.StockMin == nil && p.Status == nil &&
		p.BrandID == nil && p.CategoryID == nil && p.UnitID == nil &&
		p.SupplierID == nil
}
