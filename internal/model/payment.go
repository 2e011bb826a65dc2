package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enum constants
const (
	PaymentMethodCheque      = "CHEQUE"
	PaymentMethodTransfer    = "TRANSFER"
	PaymentMethodMobileMoney = "MOBILE_MONEY"
	PaymentMethodCash        = "CASH"
)

// PaymentStatus enum constants
const (
	PaymentDraft     = "DRAFT"
	PaymentProcessed = "PROCESSED"
	PaymentCleared   = "CLEARED"
	PaymentCancelled = "CANCELLED"
	PaymentFailed    = "FAILED"
)

// ValidPaymentMethod reports whether method is a known payment method.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCheque, PaymentMethodTransfer, PaymentMethodMobileMoney, PaymentMethodCash:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether status is a known payment status.
func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentDraft, PaymentProcessed, PaymentCleared, PaymentCancelled, PaymentFailed:
		return true
	}
	return false
}

// TotalPaid sums the amounts of all payments excluding CANCELLED ones.
// Invariant: this sum must never exceed the owning invoice's net amount.
func TotalPaid(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status != PaymentCancelled {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Payment records money received against an invoice.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PaymentNo   string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"payment_no"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Invoice     *Invoice        `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	Method      string          `gorm:"type:varchar(20);not null" json:"method"`
	Reference   string          `gorm:"type:varchar(100)" json:"reference"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PROCESSED';index" json:"status"`
	CreatedByID *uuid.UUID      `gorm:"type:uuid" json:"created_by_id"`
	CreatedBy   *User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
