package dto

import (
	"github.com/shopspring/decimal"
)

// CreateSaleRequest mirrors the wire format the frontend has always sent:
// Spanish field names, one entry per cart line.
type CreateSaleRequest struct {
	EmployeeID      int               `json:"idEmpleado"`
	PaymentMethodID int               `json:"idFormaPago"`
	Products        []CartLineRequest `json:"productos"`
}

type CartLineRequest struct {
	ProductID int             `json:"idProducto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartLine is the validated internal form handed to the coordinator.
type CartLine struct {
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type SaleDTO struct {
	ID              int               `json:"id"`
	EmployeeID      int               `json:"idEmpleado"`
	PaymentMethodID int               `json:"idFormaPago"`
	Date            string            `json:"fecha"`
	Time            string            `json:"hora"`
	TotalAmount     decimal.Decimal   `json:"montoTotal"`
	Lines           []SaleLineDTO     `json:"detalles"`
	Employee        *EmployeeDTO      `json:"empleado,omitempty"`
	PaymentMethod   *PaymentMethodDTO `json:"formaPago,omitempty"`
}

type SaleLineDTO struct {
	ID        int                `json:"id"`
	ProductID int                `json:"idProducto"`
	Quantity  int                `json:"cantidad"`
	UnitPrice decimal.Decimal    `json:"precioUnitario"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Product   *ProductSummaryDTO `json:"producto,omitempty"`
}

type ProductSummaryDTO struct {
	ID   int    `json:"id"`
	Code string `json:"codigo"`
	Name string `json:"nombre"`
}

type EmployeeDTO struct {
	ID        int    `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
}

type PaymentMethodDTO struct {
	ID          int    `json:"id"`
	Description string `json:"descripcion"`
}
