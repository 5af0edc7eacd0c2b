// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(app.recoverPanic)
	router.Use(app.rateLimit)
	router.Use(middleware.RequestID)

	router.Get("/healthz", app.handleHealthcheck)

	router.Post("/books", app.catalog.HandleAddBook)
	router.Get("/books", app.catalog.HandleCatalog)
	router.Get("/books/search", app.catalog.HandleSearch)

	router.Post("/loans", app.circulation.HandleBorrow)
	router.Post("/returns", app.circulation.HandleReturn)

	router.Get("/patrons/{patronID}/report", app.reporting.HandleStatusReport)

	router.Post("/payments", app.payments.HandlePayLateFees)
	router.Post("/refunds", app.payments.HandleRefund)
	router.Get("/payments/{transactionID}", app.payments.HandleVerify)

	return router
}

func (app *application) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"available","environment":"` + app.config.env + `"}`))
}
