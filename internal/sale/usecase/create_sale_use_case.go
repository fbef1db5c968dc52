package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"ferreteria/internal/domain"
	"ferreteria/internal/dto"
	apperrors "ferreteria/internal/errors"
	"ferreteria/internal/infrastructure/metrics"
)

type CheckoutService interface {
	CreateSale(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error)
}

type SaleReader interface {
	GetByID(ctx context.Context, id int) (*domain.Sale, error)
}

type CreateSaleUseCase struct {
	checkoutSvc      CheckoutService
	saleReader       SaleReader
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewCreateSaleUseCase(
	checkoutSvc CheckoutService,
	saleReader SaleReader,
	logger *zap.Logger,
	maxRetryAttempts int,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		checkoutSvc:      checkoutSvc,
		saleReader:       saleReader,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// CreateSale validates the cart cheaply before any transaction is opened,
// then runs the checkout with a deadlock retry loop.
func (uc *CreateSaleUseCase) CreateSale(
	ctx context.Context,
	employeeID int,
	paymentMethodID int,
	lines []dto.CartLine,
) (*domain.Sale, error) {
	uc.logger.Info("checkout started",
		zap.Int("employeeId", employeeID),
		zap.Int("paymentMethodId", paymentMethodID),
		zap.Int("lineCount", len(lines)),
	)

	if len(lines) == 0 {
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonInvalidInput).Inc()
		return nil, apperrors.NewValidationError("La venta debe incluir al menos un producto")
	}

	for _, line := range lines {
		if line.ProductID <= 0 || line.Quantity <= 0 ||
			line.UnitPrice.IsNegative() || line.Subtotal.IsNegative() {
			metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonInvalidInput).Inc()
			return nil, apperrors.NewValidationError("Datos de producto inválidos en la venta")
		}
	}

	// Lock acquisition order: productId ASC, same for every checkout.
	sorted := make([]dto.CartLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	return uc.createSaleWithRetry(ctx, employeeID, paymentMethodID, sorted)
}

func (uc *CreateSaleUseCase) createSaleWithRetry(
	ctx context.Context,
	employeeID int,
	paymentMethodID int,
	lines []dto.CartLine,
) (*domain.Sale, error) {
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		sale, err := uc.checkoutSvc.CreateSale(ctx, employeeID, paymentMethodID, lines)
		if err == nil {
			return sale, nil
		}

		if !isDeadlockError(err) {
			return nil, err
		}

		if attempt < uc.maxRetryAttempts {
			metrics.CheckoutRetriesTotal.Inc()
			base := backoffs[min(attempt, len(backoffs))-1]
			jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
			uc.logger.Warn("deadlock detected, retrying checkout",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", uc.maxRetryAttempts),
			)
			time.Sleep(jitter)
			continue
		}
	}

	metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDeadlock).Inc()
	return nil, apperrors.NewDeadlockError("max checkout retries exceeded")
}

// GetSale retrieves a committed sale with lines, employee, and payment
// method. Pure read.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id int) (*domain.Sale, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("Id de venta inválido")
	}
	return uc.saleReader.GetByID(ctx, id)
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
