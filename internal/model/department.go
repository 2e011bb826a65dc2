package model

import (
	"time"

	"github.com/google/uuid"
)

// Department is static reference data: every service request is assigned to
// exactly one department. Departments can be auto-created when a request
// names one that does not exist yet.
type Department struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Code              string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	DefaultApproverID *uuid.UUID `gorm:"type:uuid" json:"default_approver_id"`
	DefaultApprover   *User      `gorm:"foreignKey:DefaultApproverID" json:"default_approver,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
