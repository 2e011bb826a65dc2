package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catering-backend/internal/model"
	"catering-backend/internal/repository"
	"catering-backend/pkg/apperror"
	"catering-backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreatePaymentDTO struct {
	InvoiceID   string `json:"invoice_id" binding:"required"`
	Method      string `json:"method" binding:"required"`
	Reference   string `json:"reference"`
	PaymentDate string `json:"payment_date" binding:"required"` // YYYY-MM-DD
	Amount      string `json:"amount" binding:"required"`
}

type UpdatePaymentDTO struct {
	Method      *string `json:"method"`
	Reference   *string `json:"reference"`
	PaymentDate *string `json:"payment_date"`
	Amount      *string `json:"amount"`
	Status      *string `json:"status"`
}

type PaymentFilter struct {
	InvoiceID string
	Status    string
	DateRange pagination.DateRange
	Page      int
	Limit     int
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	PaymentNo     string  `json:"payment_no"`
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNo     string  `json:"invoice_no,omitempty"`
	InvoiceStatus string  `json:"invoice_status,omitempty"`
	Method        string  `json:"method"`
	Reference     string  `json:"reference"`
	PaymentDate   string  `json:"payment_date"`
	Amount        string  `json:"amount"`
	Status        string  `json:"status"`
	CreatedByID   *string `json:"created_by_id"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

// PaymentService is the payment ledger. Every mutation locks the owning
// invoice row, re-checks the running total against the net amount and
// recomputes the invoice's derived status inside the same transaction, so
// concurrent payments can never overshoot the invoice.
type PaymentService interface {
	CreatePayment(ctx context.Context, actor Actor, req CreatePaymentDTO) (PaymentResponse, error)
	GetPayment(ctx context.Context, actor Actor, id string) (PaymentResponse, error)
	ListPayments(ctx context.Context, actor Actor, filter PaymentFilter) ([]PaymentResponse, int64, error)
	UpdatePayment(ctx context.Context, actor Actor, id string, req UpdatePaymentDTO) (PaymentResponse, error)
	DeletePayment(ctx context.Context, actor Actor, id string) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// --- Implementation ---

func (s *paymentService) CreatePayment(ctx context.Context, actor Actor, req CreatePaymentDTO) (PaymentResponse, error) {
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return PaymentResponse{}, apperror.Validation("invalid invoice id", apperror.FieldIssue{Field: "invoice_id", Message: "must be a uuid"})
	}
	if !model.ValidPaymentMethod(req.Method) {
		return PaymentResponse{}, apperror.Validation("invalid payment method", apperror.FieldIssue{Field: "method", Message: "unknown method"})
	}
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return PaymentResponse{}, apperror.Validation("invalid payment date", apperror.FieldIssue{Field: "payment_date", Message: "expected YYYY-MM-DD"})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return PaymentResponse{}, apperror.Validation("invalid amount", apperror.FieldIssue{Field: "amount", Message: "must be a positive number"})
	}

	actorID := actor.ID
	payment := model.Payment{
		InvoiceID:   invoiceID,
		Method:      req.Method,
		Reference:   req.Reference,
		PaymentDate: paymentDate,
		Amount:      amount,
		Status:      model.PaymentProcessed,
		CreatedByID: &actorID,
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByIDForUpdate(txCtx, invoiceID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("invoice not found", findErr)
			}
			return fmt.Errorf("failed to fetch invoice: %w", findErr)
		}
		if !model.InvoicePayable(invoice.Status) {
			return apperror.Conflict(fmt.Sprintf("invoice in status %s does not accept payments", invoice.Status))
		}

		existing, listErr := s.paymentRepo.ListByInvoice(txCtx, invoice.ID)
		if listErr != nil {
			return fmt.Errorf("failed to load payments: %w", listErr)
		}
		newTotal := model.TotalPaid(existing).Add(amount)
		if newTotal.GreaterThan(invoice.NetAmount) {
			balance := invoice.NetAmount.Sub(model.TotalPaid(existing))
			return apperror.Validation("payment exceeds the invoice balance",
				apperror.FieldIssue{Field: "amount", Message: fmt.Sprintf("remaining balance is %s", balance.StringFixed(2))})
		}

		paymentNo, genErr := s.generatePaymentNo(txCtx)
		if genErr != nil {
			return fmt.Errorf("failed to generate payment number: %w", genErr)
		}
		payment.PaymentNo = paymentNo

		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to create payment: %w", createErr)
		}

		invoice.Status = model.RecomputeInvoiceStatus(invoice.Status, newTotal, invoice.NetAmount)
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionCreatePayment, &payment, invoice, map[string]interface{}{
			"payment_no":     payment.PaymentNo,
			"invoice_no":     invoice.InvoiceNo,
			"amount":         amount.StringFixed(2),
			"invoice_status": invoice.Status,
		})
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	s.notifyRequester(ctx, invoice, &payment, amount)

	return s.reload(ctx, payment.ID)
}

func (s *paymentService) GetPayment(ctx context.Context, actor Actor, id string) (PaymentResponse, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return PaymentResponse{}, apperror.NotFound("payment not found", err)
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentResponse{}, apperror.NotFound("payment not found", err)
		}
		return PaymentResponse{}, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return toPaymentResponse(payment), nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor Actor, filter PaymentFilter) ([]PaymentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !model.ValidPaymentStatus(filter.Status) {
		return nil, 0, apperror.Validation("invalid status filter", apperror.FieldIssue{Field: "status", Message: "unknown payment status"})
	}

	repoFilter := repository.PaymentListFilter{
		Status:   filter.Status,
		DateFrom: filter.DateRange.From,
		DateTo:   filter.DateRange.To,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if filter.InvoiceID != "" {
		invoiceID, err := uuid.Parse(filter.InvoiceID)
		if err != nil {
			return nil, 0, apperror.Validation("invalid invoice id filter", apperror.FieldIssue{Field: "invoice_id", Message: "must be a uuid"})
		}
		repoFilter.InvoiceID = &invoiceID
	}

	payments, total, err := s.paymentRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, toPaymentResponse(&payments[i]))
	}
	return result, total, nil
}

// UpdatePayment edits a payment's fields or status. Amount and status changes
// re-run the balance check (cancelled payments drop out of the sum) and
// recompute the invoice status, including reverting a fully-paid invoice when
// its payments no longer cover it.
func (s *paymentService) UpdatePayment(ctx context.Context, actor Actor, id string, req UpdatePaymentDTO) (PaymentResponse, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return PaymentResponse{}, apperror.NotFound("payment not found", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payment, findErr := s.paymentRepo.FindByID(txCtx, paymentID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("payment not found", findErr)
			}
			return fmt.Errorf("failed to fetch payment: %w", findErr)
		}

		invoice, invErr := s.invoiceRepo.FindByIDForUpdate(txCtx, payment.InvoiceID)
		if invErr != nil {
			return fmt.Errorf("failed to fetch invoice: %w", invErr)
		}

		if applyErr := applyPaymentEdits(payment, req); applyErr != nil {
			return applyErr
		}

		if updateErr := s.paymentRepo.Update(txCtx, payment); updateErr != nil {
			return fmt.Errorf("failed to update payment: %w", updateErr)
		}

		payments, listErr := s.paymentRepo.ListByInvoice(txCtx, invoice.ID)
		if listErr != nil {
			return fmt.Errorf("failed to load payments: %w", listErr)
		}
		total := model.TotalPaid(payments)
		if total.GreaterThan(invoice.NetAmount) {
			return apperror.Validation("payment total would exceed the invoice net amount",
				apperror.FieldIssue{Field: "amount", Message: fmt.Sprintf("net amount is %s", invoice.NetAmount.StringFixed(2))})
		}

		invoice.Status = model.RecomputeInvoiceStatus(invoice.Status, total, invoice.NetAmount)
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionUpdatePayment, payment, invoice, map[string]interface{}{
			"payment_no":     payment.PaymentNo,
			"status":         payment.Status,
			"invoice_status": invoice.Status,
		})
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	return s.reload(ctx, paymentID)
}

// DeletePayment removes a payment record. Only CANCELLED payments can be
// deleted; active ones must be cancelled first so the invoice total is
// reconciled through the normal update path.
func (s *paymentService) DeletePayment(ctx context.Context, actor Actor, id string) error {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return apperror.NotFound("payment not found", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payment, findErr := s.paymentRepo.FindByID(txCtx, paymentID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("payment not found", findErr)
			}
			return fmt.Errorf("failed to fetch payment: %w", findErr)
		}
		if payment.Status != model.PaymentCancelled {
			return apperror.Validation("only cancelled payments can be deleted",
				apperror.FieldIssue{Field: "status", Message: fmt.Sprintf("payment is %s", payment.Status)})
		}

		invoice, invErr := s.invoiceRepo.FindByIDForUpdate(txCtx, payment.InvoiceID)
		if invErr != nil {
			return fmt.Errorf("failed to fetch invoice: %w", invErr)
		}

		if delErr := s.paymentRepo.Delete(txCtx, payment); delErr != nil {
			return fmt.Errorf("failed to delete payment: %w", delErr)
		}

		payments, listErr := s.paymentRepo.ListByInvoice(txCtx, invoice.ID)
		if listErr != nil {
			return fmt.Errorf("failed to load payments: %w", listErr)
		}
		invoice.Status = model.RecomputeInvoiceStatus(invoice.Status, model.TotalPaid(payments), invoice.NetAmount)
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionDeletePayment, payment, invoice, map[string]interface{}{
			"payment_no": payment.PaymentNo,
			"invoice_no": invoice.InvoiceNo,
		})
	})
}

// --- internals ---

// generatePaymentNo produces PAY-YYYYMMDD-NNNNN from a per-day counter.
func (s *paymentService) generatePaymentNo(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PAY-%s-", time.Now().Format("20060102"))

	if err := s.paymentRepo.AcquirePrefixLock(ctx, prefix); err != nil {
		return "", err
	}
	count, err := s.paymentRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *paymentService) writeAudit(ctx context.Context, actorID uuid.UUID, action string, payment *model.Payment, invoice *model.Invoice, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	uid := actorID
	rid := invoice.RequestID
	entry := model.AuditLog{
		UserID:     &uid,
		Action:     action,
		EntityType: model.EntityPayment,
		EntityID:   payment.ID.String(),
		RequestID:  &rid,
		Details:    string(payload),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// notifyRequester tells the request owner a payment landed on their invoice.
func (s *paymentService) notifyRequester(ctx context.Context, invoice *model.Invoice, payment *model.Payment, amount decimal.Decimal) {
	request, err := s.requestRepo.FindByID(ctx, invoice.RequestID)
	if err != nil {
		return
	}
	requester, err := s.userRepo.GetByID(ctx, request.RequesterID)
	if err != nil {
		return
	}
	s.notifier.Enqueue(Event{
		Type:       model.NotifyPaymentRecorded,
		Recipients: []model.User{*requester},
		RequestID:  &request.ID,
		InvoiceID:  &invoice.ID,
		PaymentID:  &payment.ID,
		Data: map[string]interface{}{
			"InvoiceNo":     invoice.InvoiceNo,
			"Amount":        amount.StringFixed(2),
			"InvoiceStatus": invoice.Status,
		},
	})
}

func (s *paymentService) reload(ctx context.Context, id uuid.UUID) (PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("failed to reload payment: %w", err)
	}
	if invoice, invErr := s.invoiceRepo.FindByID(ctx, payment.InvoiceID); invErr == nil {
		payment.Invoice = invoice
	}
	return toPaymentResponse(payment), nil
}

func applyPaymentEdits(payment *model.Payment, req UpdatePaymentDTO) error {
	if req.Method != nil {
		if !model.ValidPaymentMethod(*req.Method) {
			return apperror.Validation("invalid payment method", apperror.FieldIssue{Field: "method", Message: "unknown method"})
		}
		payment.Method = *req.Method
	}
	if req.Reference != nil {
		payment.Reference = *req.Reference
	}
	if req.PaymentDate != nil {
		paymentDate, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return apperror.Validation("invalid payment date", apperror.FieldIssue{Field: "payment_date", Message: "expected YYYY-MM-DD"})
		}
		payment.PaymentDate = paymentDate
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil || !amount.IsPositive() {
			return apperror.Validation("invalid amount", apperror.FieldIssue{Field: "amount", Message: "must be a positive number"})
		}
		payment.Amount = amount
	}
	if req.Status != nil {
		if !model.ValidPaymentStatus(*req.Status) {
			return apperror.Validation("invalid status", apperror.FieldIssue{Field: "status", Message: "unknown payment status"})
		}
		payment.Status = *req.Status
	}
	return nil
}

// --- Mapping ---

func toPaymentResponse(p *model.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID.String(),
		PaymentNo:   p.PaymentNo,
		InvoiceID:   p.InvoiceID.String(),
		Method:      p.Method,
		Reference:   p.Reference,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Amount:      p.Amount.StringFixed(2),
		Status:      p.Status,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.Invoice != nil {
		resp.InvoiceNo = p.Invoice.InvoiceNo
		resp.InvoiceStatus = p.Invoice.Status
	}
	if p.CreatedByID != nil {
		s := p.CreatedByID.String()
		resp.CreatedByID = &s
	}
	return resp
}
