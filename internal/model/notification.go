package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enum constants, mirroring workflow events.
const (
	NotifyRequestCreated     = "REQUEST_CREATED"
	NotifyRequestApproved    = "REQUEST_APPROVED"
	NotifyRequestRejected    = "REQUEST_REJECTED"
	NotifyRequestRevision    = "REQUEST_REVISION"
	NotifyRequestResubmitted = "REQUEST_RESUBMITTED"
	NotifyInvoiceCreated     = "INVOICE_CREATED"
	NotifyPaymentRecorded    = "PAYMENT_RECORDED"
	NotifyFinanceAction      = "FINANCE_ACTION_REQUIRED"
)

// Notification is an in-app message created by the dispatcher as a side
// effect of a workflow transition. The matching email is best-effort; the
// EmailSent flag records whether it went out.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"-"`
	Type        string     `gorm:"type:varchar(40);not null;index" json:"type"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	RequestID   *uuid.UUID `gorm:"type:uuid;index" json:"request_id"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid" json:"invoice_id"`
	PaymentID   *uuid.UUID `gorm:"type:uuid" json:"payment_id"`
	IsRead      bool       `gorm:"not null;default:false;index" json:"is_read"`
	EmailSent   bool       `gorm:"not null;default:false" json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}
