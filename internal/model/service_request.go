package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus enum constants
const (
	RequestDraft         = "DRAFT"
	RequestSubmitted     = "SUBMITTED"
	RequestApproved      = "APPROVED"
	RequestNeedsRevision = "NEEDS_REVISION"
	RequestRejected      = "REJECTED"
	RequestFulfilled     = "FULFILLED"
	RequestClosed        = "CLOSED"
)

// Workflow action constants
const (
	RequestActionApprove         = "approve"
	RequestActionReject          = "reject"
	RequestActionRequestRevision = "request-revision"
	RequestActionResubmit        = "resubmit"
	RequestActionFulfill         = "fulfill"
)

// requestTransitions maps each workflow action to the set of statuses it may
// be applied from. Requests are created directly in SUBMITTED; REJECTED and
// FULFILLED are terminal apart from the delete path.
var requestTransitions = map[string]struct {
	from []string
	to   string
}{
	RequestActionApprove:         {from: []string{RequestSubmitted, RequestNeedsRevision}, to: RequestApproved},
	RequestActionReject:          {from: []string{RequestSubmitted, RequestNeedsRevision}, to: RequestRejected},
	RequestActionRequestRevision: {from: []string{RequestSubmitted}, to: RequestNeedsRevision},
	RequestActionResubmit:        {from: []string{RequestNeedsRevision}, to: RequestSubmitted},
	RequestActionFulfill:         {from: []string{RequestApproved}, to: RequestFulfilled},
}

// NextRequestStatus resolves the target status for applying action to a
// request currently in status. It returns an error when the action is unknown
// or the current status is not a valid source for it.
func NextRequestStatus(status, action string) (string, error) {
	t, ok := requestTransitions[action]
	if !ok {
		return "", fmt.Errorf("unknown workflow action %q", action)
	}
	for _, s := range t.from {
		if s == status {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("cannot %s a request in status %s", action, status)
}

// RequestEditable reports whether field edits are still allowed. Edits are
// restricted to pre-approval statuses; approved and terminal requests are
// immutable outside the workflow actions.
func RequestEditable(status string) bool {
	return status == RequestSubmitted || status == RequestNeedsRevision
}

// ServiceRequest is an event-service request moving through the approval
// workflow. The requester is fixed at creation; everything after SUBMITTED
// changes only through workflow transitions.
type ServiceRequest struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestNo         string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"request_no"`
	EventName         string          `gorm:"type:varchar(255);not null" json:"event_name"`
	EventDate         time.Time       `gorm:"not null" json:"event_date"`
	Venue             string          `gorm:"type:varchar(255);not null" json:"venue"`
	ExpectedAttendees int             `gorm:"not null" json:"expected_attendees"`
	EstimatedAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_amount"`
	ServiceType       string          `gorm:"type:varchar(100)" json:"service_type"`
	Description       string          `gorm:"type:text" json:"description"`
	FundingSource     string          `gorm:"type:varchar(255);not null" json:"funding_source"`
	ContactPhone      string          `gorm:"type:varchar(20)" json:"contact_phone"`
	RequesterID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester         *User           `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	DepartmentID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"department_id"`
	Department        *Department     `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Status            string          `gorm:"type:varchar(20);not null;default:'SUBMITTED';index" json:"status"`
	ApproverID        *uuid.UUID      `gorm:"type:uuid" json:"approver_id"`
	Approver          *User           `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovalDate      *time.Time      `json:"approval_date"`
	RejectionReason   string          `gorm:"type:text" json:"rejection_reason"`
	RevisionComments  string          `gorm:"type:text" json:"revision_comments"`
	Invoices          []Invoice       `gorm:"foreignKey:RequestID" json:"invoices,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
