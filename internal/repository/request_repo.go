package repository

import (
	"context"

	"catering-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestListFilter narrows request listings. RequesterID limits the result
// to one requester's own records.
type RequestListFilter struct {
	RequesterID  *uuid.UUID
	DepartmentID *uuid.UUID
	Status       string
	Page         int
	Limit        int
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.ServiceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	List(ctx context.Context, filter RequestListFilter) ([]model.ServiceRequest, int64, error)
	Update(ctx context.Context, req *model.ServiceRequest) error
	Delete(ctx context.Context, req *model.ServiceRequest) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	CountInvoices(ctx context.Context, requestID uuid.UUID) (int64, error)
	AcquirePrefixLock(ctx context.Context, prefix string) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.ServiceRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate locks the request row for the duration of the enclosing
// transaction so concurrent workflow transitions serialize.
func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Approver").
		Preload("Department").
		Preload("Invoices").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestListFilter) ([]model.ServiceRequest, int64, error) {
	db := GetDB(ctx, r.db)

	applyFilter := func(q *gorm.DB) *gorm.DB {
		if filter.RequesterID != nil {
			q = q.Where("requester_id = ?", *filter.RequesterID)
		}
		if filter.DepartmentID != nil {
			q = q.Where("department_id = ?", *filter.DepartmentID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := applyFilter(db.Model(&model.ServiceRequest{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var requests []model.ServiceRequest
	if err := applyFilter(db.Preload("Requester").Preload("Department").Preload("Approver")).
		Order("created_at desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.ServiceRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

// Delete removes the request row together with the notifications and audit
// rows linked to it. Callers are responsible for the REJECTED/no-invoices
// guard and for running this inside a transaction.
func (r *requestRepository) Delete(ctx context.Context, req *model.ServiceRequest) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", req.ID).Delete(&model.Notification{}).Error; err != nil {
		return err
	}
	if err := db.Where("request_id = ?", req.ID).Delete(&model.AuditLog{}).Error; err != nil {
		return err
	}
	return db.Delete(req).Error
}

func (r *requestRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.ServiceRequest{}).Where("request_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *requestRepository) CountInvoices(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("request_id = ?", requestID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AcquirePrefixLock serializes sequence-number generation for a prefix within
// the current transaction via a pg advisory lock.
func (r *requestRepository) AcquirePrefixLock(ctx context.Context, prefix string) error {
	return GetDB(ctx, r.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error
}
