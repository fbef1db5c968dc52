package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID              int
	EmployeeID      int
	PaymentMethodID int
	Date            time.Time
	Time            string
	TotalAmount     decimal.Decimal
	Lines           []SaleLine
	Employee        *Employee
	PaymentMethod   *PaymentMethod
	CreatedAt       time.Time
}

// LinesTotal sums the line subtotals. For a persisted sale this must equal
// TotalAmount.
func (s Sale) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

type SaleLine struct {
	ID        int
	SaleID    int
	ProductID int
	Quantity  int
	// UnitPrice is a snapshot of the price at sale time. Later price changes
	// must not alter historical sales.
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Product   *Product
}

// ComputedSubtotal is quantity × unit price. The coordinator persists the
// caller-supplied subtotal instead; this exists for reconciliation.
func (l SaleLine) ComputedSubtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
