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

type CreateInvoiceDTO struct {
	RequestID   string `json:"request_id" binding:"required"`
	InvoiceDate string `json:"invoice_date" binding:"required"` // YYYY-MM-DD
	DueDate     string `json:"due_date"`
	GrossAmount string `json:"gross_amount" binding:"required"`
	TaxAmount   string `json:"tax_amount"`
}

type UpdateInvoiceDTO struct {
	InvoiceDate *string `json:"invoice_date"`
	DueDate     *string `json:"due_date"`
	GrossAmount *string `json:"gross_amount"`
	TaxAmount   *string `json:"tax_amount"`
	Status      *string `json:"status"`
}

type InvoiceFilter struct {
	Status    string
	RequestID string
	DateRange pagination.DateRange
	Page      int
	Limit     int
}

type InvoiceResponse struct {
	ID            string  `json:"id"`
	InvoiceNo     string  `json:"invoice_no"`
	RequestID     string  `json:"request_id"`
	RequestNo     string  `json:"request_no,omitempty"`
	InvoiceDate   string  `json:"invoice_date"`
	DueDate       *string `json:"due_date"`
	GrossAmount   string  `json:"gross_amount"`
	TaxAmount     string  `json:"tax_amount"`
	NetAmount     string  `json:"net_amount"`
	TotalPaid     string  `json:"total_paid"`
	Balance       string  `json:"balance"`
	Status        string  `json:"status"`
	CreatedByID   *string `json:"created_by_id"`
	PaymentCount  int     `json:"payment_count"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

// InvoiceService is the invoice ledger: finance officers raise invoices
// against approved requests and manage their lifecycle. PARTIALLY_PAID and
// PAID are derived by the payment service and never set here directly.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, actor Actor, req CreateInvoiceDTO) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, actor Actor, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, actor Actor, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	UpdateInvoice(ctx context.Context, actor Actor, id string, req UpdateInvoiceDTO) (InvoiceResponse, error)
	ApproveForPayment(ctx context.Context, actor Actor, id string) (InvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// --- Implementation ---

// CreateInvoice raises an invoice against an APPROVED service request.
// net = gross + tax; all three must come out positive (tax may be zero).
func (s *invoiceService) CreateInvoice(ctx context.Context, actor Actor, req CreateInvoiceDTO) (InvoiceResponse, error) {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return InvoiceResponse{}, apperror.Validation("invalid request id", apperror.FieldIssue{Field: "request_id", Message: "must be a uuid"})
	}

	invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		return InvoiceResponse{}, apperror.Validation("invalid invoice date", apperror.FieldIssue{Field: "invoice_date", Message: "expected YYYY-MM-DD"})
	}
	var dueDate time.Time
	if req.DueDate != "" {
		dueDate, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return InvoiceResponse{}, apperror.Validation("invalid due date", apperror.FieldIssue{Field: "due_date", Message: "expected YYYY-MM-DD"})
		}
	}

	gross, err := decimal.NewFromString(req.GrossAmount)
	if err != nil || !gross.IsPositive() {
		return InvoiceResponse{}, apperror.Validation("invalid gross amount", apperror.FieldIssue{Field: "gross_amount", Message: "must be a positive number"})
	}
	tax := decimal.Zero
	if req.TaxAmount != "" {
		tax, err = decimal.NewFromString(req.TaxAmount)
		if err != nil || tax.IsNegative() {
			return InvoiceResponse{}, apperror.Validation("invalid tax amount", apperror.FieldIssue{Field: "tax_amount", Message: "must be a non-negative number"})
		}
	}
	net := gross.Add(tax)

	actorID := actor.ID
	invoice := model.Invoice{
		RequestID:   requestID,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		GrossAmount: gross,
		TaxAmount:   tax,
		NetAmount:   net,
		Status:      model.InvoiceSubmitted,
		CreatedByID: &actorID,
	}

	var request *model.ServiceRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		request, findErr = s.requestRepo.FindByID(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request not found", findErr)
			}
			return fmt.Errorf("failed to fetch request: %w", findErr)
		}
		if request.Status != model.RequestApproved {
			return apperror.Conflict(fmt.Sprintf("invoices can only be raised against approved requests (status is %s)", request.Status))
		}

		invoiceNo, genErr := s.generateInvoiceNo(txCtx)
		if genErr != nil {
			return fmt.Errorf("failed to generate invoice number: %w", genErr)
		}
		invoice.InvoiceNo = invoiceNo

		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionCreateInvoice, &invoice, map[string]interface{}{
			"invoice_no": invoice.InvoiceNo,
			"request_no": request.RequestNo,
			"net_amount": net.StringFixed(2),
		})
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	if requester, lookupErr := s.userRepo.GetByID(ctx, request.RequesterID); lookupErr == nil {
		s.notifier.Enqueue(Event{
			Type:       model.NotifyInvoiceCreated,
			Recipients: []model.User{*requester},
			RequestID:  &request.ID,
			InvoiceID:  &invoice.ID,
			Data: map[string]interface{}{
				"InvoiceNo": invoice.InvoiceNo,
				"RequestNo": request.RequestNo,
				"NetAmount": net.StringFixed(2),
			},
		})
	}

	return s.reload(ctx, invoice.ID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, actor Actor, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, apperror.NotFound("invoice not found", err)
	}
	invoice, err := s.invoiceRepo.FindByIDWithPayments(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, apperror.NotFound("invoice not found", err)
		}
		return InvoiceResponse{}, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	// Requesters may only view invoices on their own requests.
	if actor.Role == model.RoleRequester && (invoice.Request == nil || invoice.Request.RequesterID != actor.ID) {
		return InvoiceResponse{}, apperror.Forbidden("not your invoice")
	}
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, actor Actor, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !model.ValidInvoiceStatus(filter.Status) {
		return nil, 0, apperror.Validation("invalid status filter", apperror.FieldIssue{Field: "status", Message: "unknown invoice status"})
	}

	repoFilter := repository.InvoiceListFilter{
		Status:   filter.Status,
		DateFrom: filter.DateRange.From,
		DateTo:   filter.DateRange.To,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if filter.RequestID != "" {
		requestID, err := uuid.Parse(filter.RequestID)
		if err != nil {
			return nil, 0, apperror.Validation("invalid request id filter", apperror.FieldIssue{Field: "request_id", Message: "must be a uuid"})
		}
		repoFilter.RequestID = &requestID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		result = append(result, toInvoiceResponse(&invoices[i]))
	}
	return result, total, nil
}

// UpdateInvoice applies field edits and manual status overrides. Manual
// overrides cannot target the payment-derived statuses; those are owned by
// the payment recomputation.
func (s *invoiceService) UpdateInvoice(ctx context.Context, actor Actor, id string, req UpdateInvoiceDTO) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, apperror.NotFound("invoice not found", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.invoiceRepo.FindByIDForUpdate(txCtx, invoiceID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("invoice not found", findErr)
			}
			return fmt.Errorf("failed to fetch invoice: %w", findErr)
		}

		if applyErr := applyInvoiceEdits(invoice, req); applyErr != nil {
			return applyErr
		}

		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionUpdateInvoice, invoice, map[string]interface{}{
			"invoice_no": invoice.InvoiceNo,
			"status":     invoice.Status,
		})
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return s.reload(ctx, invoiceID)
}

// ApproveForPayment moves an invoice to APPROVED_FOR_PAYMENT. Only freshly
// submitted or verified invoices qualify.
func (s *invoiceService) ApproveForPayment(ctx context.Context, actor Actor, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, apperror.NotFound("invoice not found", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.invoiceRepo.FindByIDForUpdate(txCtx, invoiceID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("invoice not found", findErr)
			}
			return fmt.Errorf("failed to fetch invoice: %w", findErr)
		}

		if invoice.Status != model.InvoiceSubmitted && invoice.Status != model.InvoiceVerified {
			return apperror.Conflict(fmt.Sprintf("only submitted or verified invoices can be approved for payment (status is %s)", invoice.Status))
		}
		invoice.Status = model.InvoiceApprovedForPayment

		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionApproveInvoice, invoice, map[string]interface{}{
			"invoice_no": invoice.InvoiceNo,
		})
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return s.reload(ctx, invoiceID)
}

// --- internals ---

// generateInvoiceNo produces INV-YYYYMMDD-NNNNN from a per-day counter under
// the same advisory-lock scheme as request numbers.
func (s *invoiceService) generateInvoiceNo(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("INV-%s-", time.Now().Format("20060102"))

	if err := s.invoiceRepo.AcquirePrefixLock(ctx, prefix); err != nil {
		return "", err
	}
	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *invoiceService) writeAudit(ctx context.Context, actorID uuid.UUID, action string, invoice *model.Invoice, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	uid := actorID
	rid := invoice.RequestID
	entry := model.AuditLog{
		UserID:     &uid,
		Action:     action,
		EntityType: model.EntityInvoice,
		EntityID:   invoice.ID.String(),
		RequestID:  &rid,
		Details:    string(payload),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *invoiceService) reload(ctx context.Context, id uuid.UUID) (InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDWithPayments(ctx, id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}
	return toInvoiceResponse(invoice), nil
}

func applyInvoiceEdits(invoice *model.Invoice, req UpdateInvoiceDTO) error {
	amountsChanged := false

	if req.InvoiceDate != nil {
		invoiceDate, err := time.Parse("2006-01-02", *req.InvoiceDate)
		if err != nil {
			return apperror.Validation("invalid invoice date", apperror.FieldIssue{Field: "invoice_date", Message: "expected YYYY-MM-DD"})
		}
		invoice.InvoiceDate = invoiceDate
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return apperror.Validation("invalid due date", apperror.FieldIssue{Field: "due_date", Message: "expected YYYY-MM-DD"})
		}
		invoice.DueDate = dueDate
	}
	if req.GrossAmount != nil {
		gross, err := decimal.NewFromString(*req.GrossAmount)
		if err != nil || !gross.IsPositive() {
			return apperror.Validation("invalid gross amount", apperror.FieldIssue{Field: "gross_amount", Message: "must be a positive number"})
		}
		invoice.GrossAmount = gross
		amountsChanged = true
	}
	if req.TaxAmount != nil {
		tax, err := decimal.NewFromString(*req.TaxAmount)
		if err != nil || tax.IsNegative() {
			return apperror.Validation("invalid tax amount", apperror.FieldIssue{Field: "tax_amount", Message: "must be a non-negative number"})
		}
		invoice.TaxAmount = tax
		amountsChanged = true
	}
	if amountsChanged {
		invoice.NetAmount = invoice.GrossAmount.Add(invoice.TaxAmount)
	}
	if req.Status != nil {
		if !model.ValidInvoiceStatus(*req.Status) {
			return apperror.Validation("invalid status", apperror.FieldIssue{Field: "status", Message: "unknown invoice status"})
		}
		if *req.Status == model.InvoicePaid || *req.Status == model.InvoicePartiallyPaid {
			return apperror.Validation("payment-derived statuses cannot be set manually", apperror.FieldIssue{Field: "status", Message: "derived from payments"})
		}
		invoice.Status = *req.Status
	}
	return nil
}

// --- Mapping ---

func toInvoiceResponse(inv *model.Invoice) InvoiceResponse {
	totalPaid := model.TotalPaid(inv.Payments)
	resp := InvoiceResponse{
		ID:           inv.ID.String(),
		InvoiceNo:    inv.InvoiceNo,
		RequestID:    inv.RequestID.String(),
		InvoiceDate:  inv.InvoiceDate.Format("2006-01-02"),
		GrossAmount:  inv.GrossAmount.StringFixed(2),
		TaxAmount:    inv.TaxAmount.StringFixed(2),
		NetAmount:    inv.NetAmount.StringFixed(2),
		TotalPaid:    totalPaid.StringFixed(2),
		Balance:      inv.NetAmount.Sub(totalPaid).StringFixed(2),
		Status:       inv.Status,
		PaymentCount: len(inv.Payments),
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
	}
	if !inv.DueDate.IsZero() {
		s := inv.DueDate.Format("2006-01-02")
		resp.DueDate = &s
	}
	if inv.Request != nil {
		resp.RequestNo = inv.Request.RequestNo
	}
	if inv.CreatedByID != nil {
		s := inv.CreatedByID.String()
		resp.CreatedByID = &s
	}
	return resp
}
