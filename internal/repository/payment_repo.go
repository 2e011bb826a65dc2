package repository

import (
	"context"
	"time"

	"catering-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentListFilter narrows payment listings for the reporting query surface.
type PaymentListFilter struct {
	InvoiceID *uuid.UUID
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, filter PaymentListFilter) ([]model.Payment, int64, error)
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, payment *model.Payment) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	AcquirePrefixLock(ctx context.Context, prefix string) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Order("payment_date asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentListFilter) ([]model.Payment, int64, error) {
	db := GetDB(ctx, r.db)

	applyFilter := func(q *gorm.DB) *gorm.DB {
		if filter.InvoiceID != nil {
			q = q.Where("invoice_id = ?", *filter.InvoiceID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.DateFrom != nil {
			q = q.Where("payment_date >= ?", *filter.DateFrom)
		}
		if filter.DateTo != nil {
			q = q.Where("payment_date <= ?", *filter.DateTo)
		}
		return q
	}

	var total int64
	if err := applyFilter(db.Model(&model.Payment{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var payments []model.Payment
	if err := applyFilter(db.Preload("Invoice")).
		Order("created_at desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Delete(payment).Error
}

func (r *paymentRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Payment{}).Where("payment_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *paymentRepository) AcquirePrefixLock(ctx context.Context, prefix string) error {
	return GetDB(ctx, r.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error
}
