// Package model содержит доменные сущности сервиса управления счетами.
package model

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus описывает статус оплаты счёта.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice представляет счёт клиента в административной панели.
// Сумма хранится в минорных единицах (центах), чтобы избежать
// ошибок округления чисел с плавающей точкой.
type Invoice struct {
	ID          uuid.UUID
	CustomerID  string
	AmountCents int64
	Status      InvoiceStatus
	Date        time.Time
}
