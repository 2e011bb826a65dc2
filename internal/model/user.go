package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants. Accounts are provisioned from the identity provider's
// token claims, so there is no local credential storage.
const (
	RoleRequester      = "REQUESTER"
	RoleApprover       = "APPROVER"
	RoleFinanceOfficer = "FINANCE_OFFICER"
	RoleAdmin          = "ADMIN"
)

// User represents an account synced from the external identity provider.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Subject      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"` // identity provider subject claim
	Username     string         `gorm:"type:varchar(255);not null" json:"username"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`
	Role         string         `gorm:"type:varchar(50);not null;default:'REQUESTER'" json:"role"`
	DepartmentID *uuid.UUID     `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidRole reports whether role is one of the known role constants.
func ValidRole(role string) bool {
	switch role {
	case RoleRequester, RoleApprover, RoleFinanceOfficer, RoleAdmin:
		return true
	}
	return false
}
