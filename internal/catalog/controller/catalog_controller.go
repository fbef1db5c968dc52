package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ferreteria/internal/domain"
	"ferreteria/internal/dto"
	apperrors "ferreteria/internal/errors"
)

type CatalogService interface {
	ListProducts(ctx context.Context, search string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id int) error
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListUnits(ctx context.Context) ([]domain.Unit, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
}

type CatalogController struct {
	service CatalogService
	logger  *zap.Logger
}

func NewCatalogController(service CatalogService, logger *zap.Logger) *CatalogController {
	return &CatalogController{
		service: service,
		logger:  logger,
	}
}

func (c *CatalogController) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	products, err := c.service.ListProducts(r.Context(), search)
	if err != nil {
		c.handleError(w, err)
		return
	}

	data := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		data = append(data, toProductDTO(p))
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Productos", data))
}

func (c *CatalogController) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := c.parseID(w, r)
	if !ok {
		return
	}

	product, err := c.service.GetProduct(r.Context(), id)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Producto encontrado", toProductDTO(*product)))
}

func (c *CatalogController) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, dto.Fail("Cuerpo de la petición inválido"))
		return
	}

	product, err := c.service.CreateProduct(r.Context(), domain.Product{
		Code:       req.Code,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		StockMin:   req.StockMin,
		BrandID:    req.BrandID,
		CategoryID: req.CategoryID,
		UnitID:     req.UnitID,
		SupplierID: req.SupplierID,
	})
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.OK("Producto registrado", toProductDTO(*product)))
}

func (c *CatalogController) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := c.parseID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, dto.Fail("Cuerpo de la petición inválido"))
		return
	}

	product, err := c.service.UpdateProduct(r.Context(), id, domain.ProductPatch{
		Code:       req.Code,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		StockMin:   req.StockMin,
		Status:     req.Status,
		BrandID:    req.BrandID,
		CategoryID: req.CategoryID,
		UnitID:     req.UnitID,
		SupplierID: req.SupplierID,
	})
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Producto actualizado", toProductDTO(*product)))
}

func (c *CatalogController) HandleDeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := c.parseID(w, r)
	if !ok {
		return
	}

	if err := c.service.DeactivateProduct(r.Context(), id); err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Producto desactivado", nil))
}

func (c *CatalogController) HandleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := c.service.ListEmployees(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	type employeeDTO struct {
		ID        int    `json:"id"`
		FirstName string `json:"nombre"`
		LastName  string `json:"apellido"`
		Document  string `json:"dni"`
		Phone     string `json:"telefono"`
		Status    bool   `json:"estado"`
	}

	data := make([]employeeDTO, 0, len(employees))
	for _, e := range employees {
		data = append(data, employeeDTO{
			ID:        e.ID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Document:  e.Document,
			Phone:     e.Phone,
			Status:    e.Status,
		})
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Empleados", data))
}

func (c *CatalogController) HandleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := c.service.ListPaymentMethods(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	data := make([]dto.ReferenceDTO, 0, len(methods))
	for _, m := range methods {
		data = append(data, dto.ReferenceDTO{ID: m.ID, Description: m.Description})
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Formas de pago", data))
}

func (c *CatalogController) HandleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := c.service.ListBrands(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	data := make([]dto.ReferenceDTO, 0, len(brands))
	for _, b := range brands {
		data = append(data, dto.ReferenceDTO{ID: b.ID, Description: b.Description})
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Marcas", data))
}

func (c *CatalogController) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.service.ListCategories(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	data := make([]dto.ReferenceDTO, 0, len(categories))
	for _, cat := range categories {
		data = append(data, dto.ReferenceDTO{ID: cat.ID, Description: cat.Description})
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Categorías", data))
}

func (c *CatalogController) HandleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := c.service.ListUnits(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	data := make([]dto.ReferenceDTO, 0, len(units))
	for _, u := range units {
		data = append(data, dto.ReferenceDTO{ID: u.ID, Description: u.Description})
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Unidades", data))
}

func (c *CatalogController) HandleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := c.service.ListSuppliers(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	data := make([]dto.SupplierDTO, 0, len(suppliers))
	for _, s := range suppliers {
		data = append(data, dto.SupplierDTO{ID: s.ID, Name: s.Name, Phone: s.Phone, Address: s.Address})
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Proveedores", data))
}

func (c *CatalogController) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		c.writeJSON(w, http.StatusBadRequest, dto.Fail("Id inválido",
			apperrors.ValidationDetail{Field: "id", Message: "id must be a positive integer"}))
		return 0, false
	}
	return id, true
}

func (c *CatalogController) handleError(w http.ResponseWriter, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeJSON(w, http.StatusBadRequest, dto.Fail(ve.Message, ve.Details...))
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, dto.Fail(nfe.Message))
		return
	}

	c.logger.Error("catalog request failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, dto.Fail("Ocurrió un error inesperado"))
}

func toProductDTO(p domain.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Price:        p.Price,
		Stock:        p.Stock,
		StockMin:     p.StockMin,
		Status:       p.Status,
		BrandID:      p.BrandID,
		CategoryID:   p.CategoryID,
		UnitID:       p.UnitID,
		SupplierID:   p.SupplierID,
		BrandName:    p.BrandName,
		CategoryName: p.CategoryName,
		UnitName:     p.UnitName,
		SupplierName: p.SupplierName,
		BelowMinimum: p.BelowMinimum(),
	}
}

func (c *CatalogController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
