package service

import (
	"context"
	"time"

	"catering-backend/internal/model"
	"catering-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// stubTxManager runs the callback directly; services under test never touch a
// real database.
type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// captureNotifier records enqueued events for assertions.
type captureNotifier struct {
	events []Event
}

func (n *captureNotifier) Enqueue(event Event)                        { n.events = append(n.events, event) }
func (n *captureNotifier) Dispatch(ctx context.Context, event Event)  {}
func (n *captureNotifier) Run()                                       {}
func (n *captureNotifier) Stop()                                      {}
func (n *captureNotifier) ListForUser(ctx context.Context, userID string, page, limit int) ([]NotificationResponse, int64, error) {
	return nil, 0, nil
}
func (n *captureNotifier) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (n *captureNotifier) MarkRead(ctx context.Context, id, userID string) error    { return nil }
func (n *captureNotifier) MarkAllRead(ctx context.Context, userID string) error     { return nil }
func (n *captureNotifier) Delete(ctx context.Context, id, userID string) error      { return nil }
func (n *captureNotifier) CleanupRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

// --- repository mocks ---

type mockRequestRepo struct{ mock.Mock }

func (m *mockRequestRepo) Create(ctx context.Context, req *model.ServiceRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if req, ok := args.Get(0).(*model.ServiceRequest); ok {
		return req, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if req, ok := args.Get(0).(*model.ServiceRequest); ok {
		return req, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRequestRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if req, ok := args.Get(0).(*model.ServiceRequest); ok {
		return req, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRequestRepo) List(ctx context.Context, filter repository.RequestListFilter) ([]model.ServiceRequest, int64, error) {
	args := m.Called(ctx, filter)
	var requests []model.ServiceRequest
	if v, ok := args.Get(0).([]model.ServiceRequest); ok {
		requests = v
	}
	return requests, args.Get(1).(int64), args.Error(2)
}
func (m *mockRequestRepo) Update(ctx context.Context, req *model.ServiceRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockRequestRepo) Delete(ctx context.Context, req *model.ServiceRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockRequestRepo) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRequestRepo) CountInvoices(ctx context.Context, requestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRequestRepo) AcquirePrefixLock(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	args := m.Called(ctx, subject)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	var users []model.User
	if v, ok := args.Get(0).([]model.User); ok {
		users = v
	}
	return users, args.Get(1).(int64), args.Error(2)
}
func (m *mockUserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	args := m.Called(ctx, role)
	var users []model.User
	if v, ok := args.Get(0).([]model.User); ok {
		users = v
	}
	return users, args.Error(1)
}
func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

type mockInvoiceRepo struct{ mock.Mock }

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}
func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if invoice, ok := args.Get(0).(*model.Invoice); ok {
		return invoice, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvoiceRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if invoice, ok := args.Get(0).(*model.Invoice); ok {
		return invoice, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvoiceRepo) FindByIDWithPayments(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if invoice, ok := args.Get(0).(*model.Invoice); ok {
		return invoice, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvoiceRepo) List(ctx context.Context, filter repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	var invoices []model.Invoice
	if v, ok := args.Get(0).([]model.Invoice); ok {
		invoices = v
	}
	return invoices, args.Get(1).(int64), args.Error(2)
}
func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}
func (m *mockInvoiceRepo) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockInvoiceRepo) AcquirePrefixLock(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}
func (m *mockPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if payment, ok := args.Get(0).(*model.Payment); ok {
		return payment, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, invoiceID)
	var payments []model.Payment
	if v, ok := args.Get(0).([]model.Payment); ok {
		payments = v
	}
	return payments, args.Error(1)
}
func (m *mockPaymentRepo) List(ctx context.Context, filter repository.PaymentListFilter) ([]model.Payment, int64, error) {
	args := m.Called(ctx, filter)
	var payments []model.Payment
	if v, ok := args.Get(0).([]model.Payment); ok {
		payments = v
	}
	return payments, args.Get(1).(int64), args.Error(2)
}
func (m *mockPaymentRepo) Update(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}
func (m *mockPaymentRepo) Delete(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}
func (m *mockPaymentRepo) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockPaymentRepo) AcquirePrefixLock(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}
func (m *mockAuditRepo) List(ctx context.Context, filter repository.AuditListFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	var logs []model.AuditLog
	if v, ok := args.Get(0).([]model.AuditLog); ok {
		logs = v
	}
	return logs, args.Get(1).(int64), args.Error(2)
}

type mockDeptService struct{ mock.Mock }

func (m *mockDeptService) ListDepartments(ctx context.Context) ([]DepartmentResponse, error) {
	args := m.Called(ctx)
	var depts []DepartmentResponse
	if v, ok := args.Get(0).([]DepartmentResponse); ok {
		depts = v
	}
	return depts, args.Error(1)
}
func (m *mockDeptService) GetDepartment(ctx context.Context, id string) (*DepartmentResponse, error) {
	args := m.Called(ctx, id)
	if dept, ok := args.Get(0).(*DepartmentResponse); ok {
		return dept, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeptService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*DepartmentResponse, error) {
	args := m.Called(ctx, req)
	if dept, ok := args.Get(0).(*DepartmentResponse); ok {
		return dept, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeptService) ResolveOrCreate(ctx context.Context, id, name string) (*model.Department, error) {
	args := m.Called(ctx, id, name)
	if dept, ok := args.Get(0).(*model.Department); ok {
		return dept, args.Error(1)
	}
	return nil, args.Error(1)
}
