package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit action constants
const (
	ActionCreateRequest   = "CREATE_REQUEST"
	ActionUpdateRequest   = "UPDATE_REQUEST"
	ActionApproveRequest  = "APPROVE_REQUEST"
	ActionRejectRequest   = "REJECT_REQUEST"
	ActionRequestRevision = "REQUEST_REVISION"
	ActionResubmitRequest = "RESUBMIT_REQUEST"
	ActionFulfillRequest  = "FULFILL_REQUEST"
	ActionDeleteRequest   = "DELETE_REQUEST"
	ActionCreateInvoice   = "CREATE_INVOICE"
	ActionUpdateInvoice   = "UPDATE_INVOICE"
	ActionApproveInvoice  = "APPROVE_INVOICE_FOR_PAYMENT"
	ActionCreatePayment   = "CREATE_PAYMENT"
	ActionUpdatePayment   = "UPDATE_PAYMENT"
	ActionDeletePayment   = "DELETE_PAYMENT"
)

// Audit entity type constants
const (
	EntityRequest = "SERVICE_REQUEST"
	EntityInvoice = "INVOICE"
	EntityPayment = "PAYMENT"
)

// AuditLog tracks who did what and when. Entries are append-only; the only
// way they disappear is the cascade when their parent request is deleted,
// keyed on RequestID.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string     `gorm:"type:varchar(30);not null" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	RequestID  *uuid.UUID `gorm:"type:uuid;index" json:"request_id"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
