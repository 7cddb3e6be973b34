package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/invoice-admin/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware административной панели счетов.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/admin/invoices", func(r chi.Router) {
		r.Get("/", h.ListInvoices)
		r.Post("/", h.CreateInvoice)

		r.Get("/{id}", h.GetInvoice)
		r.Post("/{id}", h.UpdateInvoice)
		r.Post("/{id}/delete", h.DeleteInvoice)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
