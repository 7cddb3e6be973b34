// Package handler содержит HTTP-обработчики действий административной панели счетов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/invoice-admin/internal/model"
	"github.com/mmeshcher/invoice-admin/internal/repository"
	"github.com/mmeshcher/invoice-admin/internal/validation"
)

// Путь списка счетов: кешируемое представление и цель редиректа после записи.
const invoiceListPath = "/admin/invoices"

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CreateInvoice(ctx context.Context, fields *validation.InvoiceFields) (uuid.UUID, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, fields *validation.InvoiceFields) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListInvoices(ctx context.Context) ([]model.Invoice, error)
}

// ViewCache определяет контракт кеша представлений с инвалидацией по пути.
type ViewCache interface {
	Get(path string) ([]byte, bool)
	Set(path string, body []byte)
	Invalidate(path string)
}

// Handler реализует HTTP-обработчики административной панели счетов.
type Handler struct {
	service Service
	logger  *zap.Logger
	views   ViewCache
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, views ViewCache) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
		views:   views,
	}
}

type errorResponse struct {
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Message string                 `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// CreateInvoice принимает форму нового счёта: валидация, запись,
// инвалидация списка, редирект на список.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, errorResponse{Message: "malformed form data"})
		return
	}

	fields, fieldErrs := validation.ValidateInvoiceForm(
		r.PostFormValue("customerId"),
		r.PostFormValue("amount"),
		r.PostFormValue("status"),
	)
	if fieldErrs != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, errorResponse{
			Errors:  fieldErrs,
			Message: "missing or invalid fields, failed to create invoice",
		})
		return
	}

	if _, err := h.service.CreateInvoice(r.Context(), fields); err != nil {
		h.logger.Error("create invoice error", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, errorResponse{
			Message: "database error, failed to create invoice",
		})
		return
	}

	h.views.Invalidate(invoiceListPath)
	http.Redirect(w, r, invoiceListPath, http.StatusSeeOther)
}

// UpdateInvoice принимает форму изменения счёта. Дата выставления и
// идентификатор не меняются.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errorResponse{Message: "invalid invoice id"})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, errorResponse{Message: "malformed form data"})
		return
	}

	fields, fieldErrs := validation.ValidateInvoiceForm(
		r.PostFormValue("customerId"),
		r.PostFormValue("amount"),
		r.PostFormValue("status"),
	)
	if fieldErrs != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, errorResponse{
			Errors:  fieldErrs,
			Message: "missing or invalid fields, failed to update invoice",
		})
		return
	}

	if err := h.service.UpdateInvoice(r.Context(), id, fields); err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			writeJSONError(w, http.StatusNotFound, errorResponse{Message: "invoice not found"})
			return
		}
		h.logger.Error("update invoice error", zap.Error(err), zap.String("invoiceID", id.String()))
		writeJSONError(w, http.StatusInternalServerError, errorResponse{
			Message: "database error, failed to update invoice",
		})
		return
	}

	h.views.Invalidate(invoiceListPath)
	http.Redirect(w, r, invoiceListPath, http.StatusSeeOther)
}

// DeleteInvoice удаляет счёт. Удаление несуществующего счёта завершается успешно.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errorResponse{Message: "invalid invoice id"})
		return
	}

	if err := h.service.DeleteInvoice(r.Context(), id); err != nil {
		h.logger.Error("delete invoice error", zap.Error(err), zap.String("invoiceID", id.String()))
		writeJSONError(w, http.StatusInternalServerError, errorResponse{
			Message: "database error, failed to delete invoice",
		})
		return
	}

	h.views.Invalidate(invoiceListPath)
	http.Redirect(w, r, invoiceListPath, http.StatusSeeOther)
}

type invoiceResponse struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	Date       string  `json:"date"`
}

func toInvoiceResponse(inv model.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:         inv.ID.String(),
		CustomerID: inv.CustomerID,
		Amount:     float64(inv.AmountCents) / 100,
		Status:     string(inv.Status),
		Date:       inv.Date.Format(time.DateOnly),
	}
}

// ListInvoices возвращает список счетов. Ответ кешируется по пути маршрута
// до первой записи или истечения TTL.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	if body, ok := h.views.Get(invoiceListPath); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
		return
	}

	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		h.logger.Error("list invoices error", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, errorResponse{
			Message: "database error, failed to list invoices",
		})
		return
	}

	resp := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, toInvoiceResponse(inv))
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, errorResponse{Message: "failed to encode invoices"})
		return
	}

	h.views.Set(invoiceListPath, body)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// GetInvoice возвращает один счёт для формы редактирования.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errorResponse{Message: "invalid invoice id"})
		return
	}

	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			writeJSONError(w, http.StatusNotFound, errorResponse{Message: "invoice not found"})
			return
		}
		h.logger.Error("get invoice error", zap.Error(err), zap.String("invoiceID", id.String()))
		writeJSONError(w, http.StatusInternalServerError, errorResponse{
			Message: "database error, failed to get invoice",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toInvoiceResponse(*inv)); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}
