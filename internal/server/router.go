package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	catalogcontroller "ferreteria/internal/catalog/controller"
	"ferreteria/internal/infrastructure/metrics"
	salecontroller "ferreteria/internal/sale/controller"
)

func NewRouter(
	catalogCtrl *catalogcontroller.CatalogController,
	saleCtrl *salecontroller.SaleController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/carritoventa", func(r chi.Router) {
			r.Get("/", saleCtrl.HandleListAvailable)
			r.Post("/", saleCtrl.HandleCreateSale)
			r.Get("/{id}", saleCtrl.HandleGetSale)
		})

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", catalogCtrl.HandleListProducts)
			r.Post("/", catalogCtrl.HandleCreateProduct)
			r.Get("/{id}", catalogCtrl.HandleGetProduct)
			r.Patch("/{id}", catalogCtrl.HandleUpdateProduct)
			r.Delete("/{id}", catalogCtrl.HandleDeactivateProduct)
		})

		r.Get("/empleados", catalogCtrl.HandleListEmployees)
		r.Get("/formapago", catalogCtrl.HandleListPaymentMethods)
		r.Get("/marcas", catalogCtrl.HandleListBrands)
		r.Get("/categorias", catalogCtrl.HandleListCategories)
		r.Get("/unidades", catalogCtrl.HandleListUnits)
		r.Get("/proveedores", catalogCtrl.HandleListSuppliers)
	})

	logger.Info("router configured")
	return r
}
