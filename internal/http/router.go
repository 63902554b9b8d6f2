package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"backoffice/internal/logger"
	"backoffice/internal/metrics"
)

func NewRouter(handler *Handler, log *logger.Logger, httpMetrics *metrics.HTTPMetrics, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID(log))
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	r.Use(httpMetrics.Middleware)
	r.Use(Timeout)
	r.Use(CORS(allowedOrigins))

	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)

		r.Route("/batches", func(r chi.Router) {
			r.Get("/", handler.ListBatches)
			r.Post("/", handler.CreateBatch)
			r.Get("/summary", handler.PortfolioSummary)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.GetBatch)
				r.Put("/", handler.UpdateBatch)
				r.Delete("/", handler.DeleteBatch)
				r.Get("/metrics", handler.BatchMetrics)
				r.Patch("/status", handler.UpdateBatchStatus)

				r.Post("/items", handler.AddItems)
				r.Delete("/items", handler.RemoveItems)
				r.Post("/items/import", handler.ImportItems)
				r.Patch("/items/{itemID}", handler.UpdateItemQuantity)
				r.Post("/items/{itemID}/move", handler.MoveItem)
				r.Post("/items/{itemID}/draws", handler.RecordDraw)
			})
		})

		r.Get("/financial/summary", handler.FinancialSummary)
		r.Get("/financial/monthly", handler.MonthlySummary)
		r.Get("/financial/monthly/export", handler.ExportMonthlySummary)

		r.Get("/expenses", handler.ListExpenses)
		r.Post("/expenses", handler.CreateExpense)
		r.Get("/interest-payments", handler.ListInterests)
		r.Post("/interest-payments", handler.CreateInterest)
		r.Get("/losses", handler.ListLosses)
		r.Post("/losses", handler.CreateLoss)
	})

	return r
}
