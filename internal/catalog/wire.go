package catalog

import (
	"database/sql"

	"go.uber.org/zap"

	"ferreteria/internal/catalog/controller"
	"ferreteria/internal/catalog/repository"
	"ferreteria/internal/catalog/service"
)

type Module struct {
	Controller *controller.CatalogController
	Service    *service.CatalogService
	// ProductRepo is shared with the sale module, which needs the locked
	// fetch and decrement operations inside its transaction.
	ProductRepo *repository.MySQLProductRepository
}

func NewModule(db *sql.DB, logger *zap.Logger) *Module {
	productRepo := repository.NewMySQLProductRepository(db)
	referenceRepo := repository.NewMySQLReferenceRepository(db)
	svc := service.NewCatalogService(productRepo, referenceRepo)
	ctrl := controller.NewCatalogController(svc, logger)

	return &Module{
		Controller:  ctrl,
		Service:     svc,
		ProductRepo: productRepo,
	}
}
