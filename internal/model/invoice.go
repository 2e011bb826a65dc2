package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants. PARTIALLY_PAID and PAID are derived from the
// payment set; the rest are set by explicit finance-officer action.
const (
	InvoiceDraft              = "DRAFT"
	InvoiceSubmitted          = "SUBMITTED"
	InvoiceVerified           = "VERIFIED"
	InvoiceApprovedForPayment = "APPROVED_FOR_PAYMENT"
	InvoiceDisputed           = "DISPUTED"
	InvoicePartiallyPaid      = "PARTIALLY_PAID"
	InvoicePaid               = "PAID"
	InvoiceClosed             = "CLOSED"
)

// ValidInvoiceStatus reports whether status is one of the eight invoice statuses.
func ValidInvoiceStatus(status string) bool {
	switch status {
	case InvoiceDraft, InvoiceSubmitted, InvoiceVerified, InvoiceApprovedForPayment,
		InvoiceDisputed, InvoicePartiallyPaid, InvoicePaid, InvoiceClosed:
		return true
	}
	return false
}

// InvoicePayable reports whether payments may be recorded against an invoice
// in the given status.
func InvoicePayable(status string) bool {
	switch status {
	case InvoiceSubmitted, InvoiceVerified, InvoiceApprovedForPayment, InvoicePartiallyPaid:
		return true
	}
	return false
}

// RecomputeInvoiceStatus derives the invoice status from the sum of
// non-cancelled payment amounts versus the net amount:
//
//	totalPaid >= net       -> PAID
//	0 < totalPaid < net    -> PARTIALLY_PAID
//	totalPaid == 0         -> revert to APPROVED_FOR_PAYMENT if the current
//	                          status was payment-derived, otherwise unchanged
func RecomputeInvoiceStatus(current string, totalPaid, net decimal.Decimal) string {
	if totalPaid.GreaterThanOrEqual(net) && totalPaid.IsPositive() {
		return InvoicePaid
	}
	if totalPaid.IsPositive() {
		return InvoicePartiallyPaid
	}
	if current == InvoicePaid || current == InvoicePartiallyPaid {
		return InvoiceApprovedForPayment
	}
	return current
}

// Invoice is a billable document derived from an approved service request.
// One request may carry several invoices; each invoice exclusively owns its
// payments.
type Invoice struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo   string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	RequestID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	Request     *ServiceRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	InvoiceDate time.Time       `gorm:"not null" json:"invoice_date"`
	DueDate     time.Time       `json:"due_date"`
	GrossAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"gross_amount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"net_amount"`
	Status      string          `gorm:"type:varchar(30);not null;default:'SUBMITTED';index" json:"status"`
	CreatedByID *uuid.UUID      `gorm:"type:uuid" json:"created_by_id"`
	CreatedBy   *User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Payments    []Payment       `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
