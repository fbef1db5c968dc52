package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ferreteria/internal/domain"
	"ferreteria/internal/dto"
	apperrors "ferreteria/internal/errors"
	"ferreteria/internal/infrastructure/metrics"
	salerepo "ferreteria/internal/sale/repository"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int) ([]domain.Product, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, decrements map[int]int) (int64, error)
}

type SaleRepository interface {
	EmployeeExists(ctx context.Context, tx *sql.Tx, id int) (bool, error)
	PaymentMethodExists(ctx context.Context, tx *sql.Tx, id int) (bool, error)
	InsertSale(ctx context.Context, tx *sql.Tx, sale domain.Sale) (int, error)
	InsertLine(ctx context.Context, tx *sql.Tx, line domain.SaleLine) (int, error)
	FindByID(ctx context.Context, q salerepo.Querier, id int) (*domain.Sale, error)
}

// CheckoutService owns the sale transaction: everything between BeginTx and
// Commit. All writes (stock decrements, sale header, sale lines) land
// together or not at all.
type CheckoutService struct {
	db          TransactionManager
	productRepo ProductRepository
	saleRepo    SaleRepository
	logger      *zap.Logger
	txTimeout   time.Duration
}

func NewCheckoutService(
	db TransactionManager,
	productRepo ProductRepository,
	saleRepo SaleRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		db:          db,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		logger:      logger,
		txTimeout:   txTimeout,
	}
}

func (s *CheckoutService) CreateSale(
	ctx context.Context,
	employeeID int,
	paymentMethodID int,
	lines []dto.CartLine,
) (*domain.Sale, error) {
	start := time.Now()
	defer func() {
		metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	}()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}
	// Rollback on every exit path; MySQL ignores it after a commit.
	defer tx.Rollback()

	// Distinct ids, input order preserved. Duplicate cart lines are NOT
	// merged: existence compares distinct counts, stock sufficiency is
	// checked per line, and only the decrement sums per product.
	distinctIDs := make([]int, 0, len(lines))
	seen := make(map[int]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; !ok {
			seen[line.ProductID] = struct{}{}
			distinctIDs = append(distinctIDs, line.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDsForUpdate(txCtx, tx, distinctIDs)
	if err != nil {
		s.logger.Error("failed to lock products", zap.Error(err))
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}

	if len(products) != len(distinctIDs) {
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonMissingProduct).Inc()
		return nil, apperrors.NewValidationError("Uno o más productos no existen")
	}

	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, line := range lines {
		p := byID[line.ProductID]
		if p.Stock < line.Quantity {
			metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonInsufficientStock).Inc()
			return nil, apperrors.NewValidationError("Stock insuficiente para el producto: " + p.Name)
		}
	}

	employeeOK, err := s.saleRepo.EmployeeExists(txCtx, tx, employeeID)
	if err != nil {
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}
	paymentMethodOK, err := s.saleRepo.PaymentMethodExists(txCtx, tx, paymentMethodID)
	if err != nil {
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}
	if !employeeOK || !paymentMethodOK {
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonBadReference).Inc()
		return nil, apperrors.NewValidationError("Empleado o forma de pago inválido")
	}

	decrements := make(map[int]int, len(distinctIDs))
	for _, line := range lines {
		decrements[line.ProductID] += line.Quantity
	}

	affected, err := s.productRepo.DecrementStock(txCtx, tx, decrements)
	if err != nil {
		s.logger.Error("failed to decrement stock", zap.Error(err))
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}
	if affected != int64(len(decrements)) {
		// A product passed the per-line check but the summed decrement
		// exceeds its stock (duplicate lines). Name the offender.
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonInsufficientStock).Inc()
		for id, qty := range decrements {
			if p := byID[id]; p.Stock < qty {
				return nil, apperrors.NewValidationError("Stock insuficiente para el producto: " + p.Name)
			}
		}
		return nil, apperrors.NewValidationError("Stock insuficiente para el producto")
	}

	// Total is the sum of caller-supplied subtotals, not recomputed from
	// the current price. Historical behavior the frontend depends on.
	totalAmount := decimal.Zero
	for _, line := range lines {
		totalAmount = totalAmount.Add(line.Subtotal)
	}

	now := time.Now()
	saleID, err := s.saleRepo.InsertSale(txCtx, tx, domain.Sale{
		EmployeeID:      employeeID,
		PaymentMethodID: paymentMethodID,
		Date:            now,
		Time:            now.Format("15:04:05"),
		TotalAmount:     totalAmount,
	})
	if err != nil {
		s.logger.Error("failed to insert sale", zap.Error(err))
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}

	for _, line := range lines {
		_, err := s.saleRepo.InsertLine(txCtx, tx, domain.SaleLine{
			SaleID:    saleID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
		if err != nil {
			s.logger.Error("failed to insert sale line", zap.Int("productId", line.ProductID), zap.Error(err))
			metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
			return nil, err
		}
	}

	// Reload inside the transaction so the response reflects exactly what
	// was committed.
	sale, err := s.saleRepo.FindByID(txCtx, tx, saleID)
	if err != nil {
		s.logger.Error("failed to reload created sale", zap.Int("saleId", saleID), zap.Error(err))
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit checkout", zap.Int("saleId", saleID), zap.Error(err))
		metrics.SalesFailedTotal.WithLabelValues(metrics.ReasonDBError).Inc()
		return nil, err
	}

	metrics.SalesCreatedTotal.Inc()
	s.logger.Info("sale committed",
		zap.Int("saleId", saleID),
		zap.Int("employeeId", employeeID),
		zap.Int("lineCount", len(lines)),
		zap.String("totalAmount", totalAmount.String()),
	)

	return sale, nil
}
