package dto

import "github.com/shopspring/decimal"

type ProductDTO struct {
	ID           int             `json:"id"`
	Code         string          `json:"codigo"`
	Name         string          `json:"nombre"`
	Price        decimal.Decimal `json:"precio"`
	Stock        int             `json:"stock"`
	StockMin     int             `json:"stockMin"`
	Status       bool            `json:"estado"`
	BrandID      int             `json:"idMarca"`
	CategoryID   int             `json:"idCategoria"`
	UnitID       int             `json:"idUnidad"`
	SupplierID   int             `json:"idProveedor"`
	BrandName    string          `json:"marca,omitempty"`
	CategoryName string          `json:"categoria,omitempty"`
	UnitName     string          `json:"unidad,omitempty"`
	SupplierName string          `json:"proveedor,omitempty"`
	BelowMinimum bool            `json:"bajoStockMin"`
}

type CreateProductRequest struct {
	Code       string          `json:"codigo"`
	Name       string          `json:"nombre"`
	Price      decimal.Decimal `json:"precio"`
	Stock      int             `json:"stock"`
	StockMin   int             `json:"stockMin"`
	BrandID    int             `json:"idMarca"`
	CategoryID int             `json:"idCategoria"`
	UnitID     int             `json:"idUnidad"`
	SupplierID int             `json:"idProveedor"`
}

// UpdateProductRequest carries only the fields present in the request body;
// absent fields stay nil and are not written.
type UpdateProductRequest struct {
	Code       *string          `json:"codigo"`
	Name       *string          `json:"nombre"`
	Price      *decimal.Decimal `json:"precio"`
	Stock      *int             `json:"stock"`
	StockMin   *int             `json:"stockMin"`
	Status     *bool            `json:"estado"`
	BrandID    *int             `json:"idMarca"`
	CategoryID *int             `json:"idCategoria"`
	UnitID     *int             `json:"idUnidad"`
	SupplierID *int             `json:"idProveedor"`
}

type ReferenceDTO struct {
	ID          int    `json:"id"`
	Description string `json:"descripcion"`
}

type SupplierDTO struct {
	ID      int    `json:"id"`
	Name    string `json:"nombre"`
	Phone   string `json:"telefono,omitempty"`
	Address string `json:"direccion,omitempty"`
}
