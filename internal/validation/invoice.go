// Package validation содержит валидацию полей формы счёта.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/invoice-admin/internal/model"
)

// Имена полей формы, под которыми ошибки возвращаются клиенту.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

// FieldErrors сопоставляет имени поля формы список сообщений об ошибках.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// InvoiceFields содержит проверенные и типизированные значения полей формы счёта.
type InvoiceFields struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     model.InvoiceStatus
}

type invoiceForm struct {
	CustomerID string `validate:"required"`
	Status     string `validate:"required,oneof=pending paid"`
}

var validate = validator.New()

// ValidateInvoiceForm проверяет сырые строковые поля формы и возвращает либо
// типизированный набор значений, либо ошибки, сгруппированные по полям.
// Ошибки всех полей собираются за один вызов, паник и исключений нет;
// один и тот же контракт используется и для создания, и для обновления счёта.
func ValidateInvoiceForm(customerID, amount, status string) (*InvoiceFields, FieldErrors) {
	fieldErrs := FieldErrors{}

	form := invoiceForm{
		CustomerID: strings.TrimSpace(customerID),
		Status:     strings.TrimSpace(status),
	}

	if err := validate.Struct(form); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, fe := range vErrs {
				switch fe.StructField() {
				case "CustomerID":
					fieldErrs.add(FieldCustomerID, "customer is required")
				case "Status":
					fieldErrs.add(FieldStatus, "status must be either pending or paid")
				}
			}
		} else {
			fieldErrs.add(FieldCustomerID, "invalid form fields")
		}
	}

	amt, err := decimal.NewFromString(strings.TrimSpace(amount))
	switch {
	case err != nil:
		fieldErrs.add(FieldAmount, "amount must be a number")
	case !amt.IsPositive():
		fieldErrs.add(FieldAmount, "amount must be greater than 0")
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	return &InvoiceFields{
		CustomerID: form.CustomerID,
		Amount:     amt,
		Status:     model.InvoiceStatus(form.Status),
	}, nil
}
