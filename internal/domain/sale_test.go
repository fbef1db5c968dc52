package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSale_LinesTotal(t *testing.T) {
	sale := Sale{
		Lines: []SaleLine{
			{Subtotal: decimal.NewFromFloat(750.00)},
			{Subtotal: decimal.NewFromFloat(120.50)},
			{Subtotal: decimal.NewFromFloat(29.50)},
		},
	}

	assert.True(t, sale.LinesTotal().Equal(decimal.NewFromFloat(900.00)),
		"expected 900.00, got %s", sale.LinesTotal())
}

func TestSale_LinesTotal_Empty(t *testing.T) {
	sale := Sale{}
	assert.True(t, sale.LinesTotal().Equal(decimal.Zero))
}

func TestSaleLine_ComputedSubtotal(t *testing.T) {
	line := SaleLine{
		Quantity:  5,
		UnitPrice: decimal.NewFromFloat(150.00),
	}

	assert.True(t, line.ComputedSubtotal().Equal(decimal.NewFromFloat(750.00)))
}

func TestSale_TotalMatchesLines(t *testing.T) {
	// The invariant every committed sale satisfies.
	sale := Sale{
		TotalAmount: decimal.NewFromFloat(750.00),
		Lines: []SaleLine{
			{Quantity: 5, UnitPrice: decimal.NewFromFloat(150.00), Subtotal: decimal.NewFromFloat(750.00)},
		},
	}

	assert.True(t, sale.TotalAmount.Equal(sale.LinesTotal()))
}
