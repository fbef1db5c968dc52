package sale

import (
	"database/sql"

	"go.uber.org/zap"

	catalogrepo "ferreteria/internal/catalog/repository"
	salecontroller "ferreteria/internal/sale/controller"
	salerepo "ferreteria/internal/sale/repository"
	"ferreteria/internal/sale/service"
	"ferreteria/internal/sale/usecase"

	"ferreteria/internal/config"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	productRepo *catalogrepo.MySQLProductRepository,
	availability salecontroller.AvailabilityReader,
	logger *zap.Logger,
) *salecontroller.SaleController {
	saleRepo := salerepo.NewMySQLSaleRepository(db)

	checkoutSvc := service.NewCheckoutService(
		db,
		productRepo,
		saleRepo,
		logger,
		cfg.Checkout.TxTimeout,
	)

	uc := usecase.NewCreateSaleUseCase(
		checkoutSvc,
		saleRepo,
		logger,
		cfg.Checkout.MaxRetryAttempts,
	)

	return salecontroller.NewSaleController(uc, availability, logger)
}
