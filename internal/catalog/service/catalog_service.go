package service

import (
	"context"

	"ferreteria/internal/domain"
	apperrors "ferreteria/internal/errors"
)

type ProductRepository interface {
	ListAvailable(ctx context.Context, search string) ([]domain.Product, error)
	List(ctx context.Context, search string) ([]domain.Product, error)
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (int, error)
	Update(ctx context.Context, id int, patch domain.ProductPatch) error
	Deactivate(ctx context.Context, id int) error
}

type ReferenceRepository interface {
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListUnits(ctx context.Context) ([]domain.Unit, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
}

type CatalogService struct {
	productRepo   ProductRepository
	referenceRepo ReferenceRepository
}

func NewCatalogService(productRepo ProductRepository, referenceRepo ReferenceRepository) *CatalogService {
	return &CatalogService{
		productRepo:   productRepo,
		referenceRepo: referenceRepo,
	}
}

// ListAvailable answers "which products can currently be sold". Advisory
// only: the checkout transaction re-validates stock under lock.
func (s *CatalogService) ListAvailable(ctx context.Context, search string) ([]domain.Product, error) {
	products, err := s.productRepo.ListAvailable(ctx, search)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch available products", err)
	}
	return products, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx, search)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch products", err)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("Id de producto inválido")
	}
	return s.productRepo.FindByID(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Code == "" || p.Name == "" {
		return nil, apperrors.NewValidationError("Código y nombre son obligatorios")
	}
	if p.Price.IsNegative() {
		return nil, apperrors.NewValidationError("El precio no puede ser negativo")
	}
	if p.Stock < 0 || p.StockMin < 0 {
		return nil, apperrors.NewValidationError("El stock no puede ser negativo")
	}

	id, err := s.productRepo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("Id de producto inválido")
	}
	if patch.Empty() {
		return nil, apperrors.NewValidationError("No hay campos para actualizar")
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, apperrors.NewValidationError("El precio no puede ser negativo")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, apperrors.NewValidationError("El stock no puede ser negativo")
	}

	if err := s.productRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, id)
}

func (s *CatalogService) DeactivateProduct(ctx context.Context, id int) error {
	if id <= 0 {
		return apperrors.NewValidationError("Id de producto inválido")
	}
	return s.productRepo.Deactivate(ctx, id)
}

func (s *CatalogService) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.referenceRepo.ListEmployees(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch employees", err)
	}
	return employees, nil
}

func (s *CatalogService) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	methods, err := s.referenceRepo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch payment methods", err)
	}
	return methods, nil
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	brands, err := s.referenceRepo.ListBrands(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch brands", err)
	}
	return brands, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.referenceRepo.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch categories", err)
	}
	return categories, nil
}

func (s *CatalogService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	units, err := s.referenceRepo.ListUnits(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch units", err)
	}
	return units, nil
}

func (s *CatalogService) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.referenceRepo.ListSuppliers(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch suppliers", err)
	}
	return suppliers, nil
}
