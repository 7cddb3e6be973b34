// Package service реализует бизнес-логику сервиса управления счетами.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/invoice-admin/internal/model"
	"github.com/mmeshcher/invoice-admin/internal/validation"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateInvoice(ctx context.Context, customerID string, amountCents int64, status model.InvoiceStatus) (uuid.UUID, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, customerID string, amountCents int64, status model.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListInvoices(ctx context.Context) ([]model.Invoice, error)
}

// Service содержит бизнес-логику сервиса управления счетами.
type Service struct {
	repo Repository
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Хранимая сумма — проверенная десятичная сумма, умноженная на 100
// и усечённая до целого.
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// CreateInvoice создаёт новый счёт из проверенных полей формы и возвращает его идентификатор.
func (s *Service) CreateInvoice(ctx context.Context, fields *validation.InvoiceFields) (uuid.UUID, error) {
	return s.repo.CreateInvoice(ctx, fields.CustomerID, toCents(fields.Amount), fields.Status)
}

// UpdateInvoice меняет клиента, сумму и статус существующего счёта.
func (s *Service) UpdateInvoice(ctx context.Context, id uuid.UUID, fields *validation.InvoiceFields) error {
	return s.repo.UpdateInvoice(ctx, id, fields.CustomerID, toCents(fields.Amount), fields.Status)
}

// DeleteInvoice удаляет счёт по идентификатору.
func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteInvoice(ctx, id)
}

// GetInvoice возвращает счёт по идентификатору.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// ListInvoices возвращает все счета.
func (s *Service) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	return s.repo.ListInvoices(ctx)
}
