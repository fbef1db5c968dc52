package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ferreteria/internal/domain"
	"ferreteria/internal/dto"
	apperrors "ferreteria/internal/errors"
)

type CreateSaleUseCase interface {
	CreateSale(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error)
	GetSale(ctx context.Context, id int) (*domain.Sale, error)
}

type AvailabilityReader interface {
	ListAvailable(ctx context.Context, search string) ([]domain.Product, error)
}

// SaleController owns the /carritoventa surface: cart candidates, checkout,
// and sale redisplay.
type SaleController struct {
	useCase      CreateSaleUseCase
	availability AvailabilityReader
	logger       *zap.Logger
}

func NewSaleController(useCase CreateSaleUseCase, availability AvailabilityReader, logger *zap.Logger) *SaleController {
	return &SaleController{
		useCase:      useCase,
		availability: availability,
		logger:       logger,
	}
}

func (c *SaleController) HandleListAvailable(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	products, err := c.availability.ListAvailable(r.Context(), search)
	if err != nil {
		c.logger.Error("list available products failed", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError,
			dto.Fail("Error al obtener los productos disponibles"))
		return
	}

	// The documented contract: an empty cart candidate list is a 404.
	if len(products) == 0 {
		c.writeJSON(w, http.StatusNotFound, dto.Fail("No hay productos disponibles"))
		return
	}

	data := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		data = append(data, toProductDTO(p))
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Productos disponibles", data))
}

func (c *SaleController) HandleCreateSale(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeJSON(w, http.StatusBadRequest, dto.Fail("Cuerpo de la petición inválido",
			apperrors.ValidationDetail{Field: "body", Message: "request body must be valid JSON"}))
		return
	}

	if validationErr := c.validateCreateSaleRequest(req); validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeJSON(w, http.StatusBadRequest, dto.Fail(ve.Message, ve.Details...))
		return
	}

	lines := make([]dto.CartLine, len(req.Products))
	for i, p := range req.Products {
		lines[i] = dto.CartLine{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			Subtotal:  p.Subtotal,
		}
	}

	sale, err := c.useCase.CreateSale(r.Context(), req.EmployeeID, req.PaymentMethodID, lines)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	if sale == nil {
		c.writeJSON(w, http.StatusNotFound, dto.Fail("Venta no encontrada"))
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.OK("Venta registrada", toSaleDTO(sale)))
}

func (c *SaleController) HandleGetSale(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.writeJSON(w, http.StatusBadRequest, dto.Fail("Id de venta inválido",
			apperrors.ValidationDetail{Field: "id", Message: "id must be a positive integer"}))
		return
	}

	sale, err := c.useCase.GetSale(r.Context(), id)
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OK("Venta encontrada", toSaleDTO(sale)))
}

// validateCreateSaleRequest is defense in depth: the upstream validation
// layer should have rejected these already.
func (c *SaleController) validateCreateSaleRequest(req dto.CreateSaleRequest) error {
	var details []apperrors.ValidationDetail

	if req.EmployeeID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "idEmpleado",
			Message: "idEmpleado must be a positive integer",
		})
	}

	if req.PaymentMethodID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "idFormaPago",
			Message: "idFormaPago must be a positive integer",
		})
	}

	if len(req.Products) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productos",
			Message: "productos must not be empty",
		})
	}

	for idx, p := range req.Products {
		if p.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "productos[" + strconv.Itoa(idx) + "].idProducto",
				Message: "idProducto must be a positive integer",
			})
		}
		if p.Quantity <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "productos[" + strconv.Itoa(idx) + "].cantidad",
				Message: "cantidad must be a positive integer",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("Datos de venta inválidos", details...)
	}

	return nil
}

func (c *SaleController) handleError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeJSON(w, http.StatusBadRequest, dto.Fail(ve.Message, ve.Details...))
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, dto.Fail(nfe.Message))
		return
	}

	logger.Error("unexpected checkout error", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, dto.Fail("Ocurrió un error inesperado"))
}

func toSaleDTO(sale *domain.Sale) dto.SaleDTO {
	out := dto.SaleDTO{
		ID:              sale.ID,
		EmployeeID:      sale.EmployeeID,
		PaymentMethodID: sale.PaymentMethodID,
		Date:            sale.Date.Format("2006-01-02"),
		Time:            sale.Time,
		TotalAmount:     sale.TotalAmount,
		Lines:           make([]dto.SaleLineDTO, 0, len(sale.Lines)),
	}

	if sale.Employee != nil {
		out.Employee = &dto.EmployeeDTO{
			ID:        sale.Employee.ID,
			FirstName: sale.Employee.FirstName,
			LastName:  sale.Employee.LastName,
		}
	}
	if sale.PaymentMethod != nil {
		out.PaymentMethod = &dto.PaymentMethodDTO{
			ID:          sale.PaymentMethod.ID,
			Description: sale.PaymentMethod.Description,
		}
	}

	for _, line := range sale.Lines {
		lineDTO := dto.SaleLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		}
		if line.Product != nil {
			lineDTO.Product = &dto.ProductSummaryDTO{
				ID:   line.Product.ID,
				Code: line.Product.Code,
				Name: line.Product.Name,
			}
		}
		out.Lines = append(out.Lines, lineDTO)
	}

	return out
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
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		BelowMinimum: p.BelowMinimum(),
	}
}

func (c *SaleController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
