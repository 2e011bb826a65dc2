package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catering-backend/internal/model"
	"catering-backend/internal/policy"
	"catering-backend/internal/repository"
	"catering-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor identifies the authenticated principal performing a service call.
type Actor struct {
	ID       uuid.UUID
	Role     string
	Username string
}

// ActorFromStrings builds an Actor from the context values set by the auth
// middleware.
func ActorFromStrings(id, role, username string) (Actor, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Actor{}, apperror.Unauthorized("invalid principal")
	}
	return Actor{ID: uid, Role: role, Username: username}, nil
}

// --- DTOs ---

type CreateRequestDTO struct {
	EventName         string `json:"event_name" binding:"required"`
	EventDate         string `json:"event_date" binding:"required"` // YYYY-MM-DD
	Venue             string `json:"venue" binding:"required"`
	ExpectedAttendees int    `json:"expected_attendees" binding:"required,min=1"`
	EstimatedAmount   string `json:"estimated_amount"`
	ServiceType       string `json:"service_type"`
	Description       string `json:"description"`
	FundingSource     string `json:"funding_source" binding:"required"`
	DepartmentID      string `json:"department_id"`
	DepartmentName    string `json:"department_name"`
	ContactPhone      string `json:"contact_phone"`
}

type UpdateRequestDTO struct {
	EventName         *string `json:"event_name"`
	EventDate         *string `json:"event_date"`
	Venue             *string `json:"venue"`
	ExpectedAttendees *int    `json:"expected_attendees"`
	EstimatedAmount   *string `json:"estimated_amount"`
	ServiceType       *string `json:"service_type"`
	Description       *string `json:"description"`
	FundingSource     *string `json:"funding_source"`
	ContactPhone      *string `json:"contact_phone"`
}

type RequestFilter struct {
	Status string
	Page   int
	Limit  int
}

type RequestResponse struct {
	ID                string  `json:"id"`
	RequestNo         string  `json:"request_no"`
	EventName         string  `json:"event_name"`
	EventDate         string  `json:"event_date"`
	Venue             string  `json:"venue"`
	ExpectedAttendees int     `json:"expected_attendees"`
	EstimatedAmount   string  `json:"estimated_amount"`
	ServiceType       string  `json:"service_type"`
	Description       string  `json:"description"`
	FundingSource     string  `json:"funding_source"`
	ContactPhone      string  `json:"contact_phone"`
	RequesterID       string  `json:"requester_id"`
	RequesterName     string  `json:"requester_name"`
	DepartmentID      string  `json:"department_id"`
	DepartmentName    string  `json:"department_name"`
	Status            string  `json:"status"`
	ApproverID        *string `json:"approver_id"`
	ApproverName      string  `json:"approver_name"`
	ApprovalDate      *string `json:"approval_date"`
	RejectionReason   string  `json:"rejection_reason"`
	RevisionComments  string  `json:"revision_comments"`
	InvoiceCount      int     `json:"invoice_count"`
	CreatedAt         string  `json:"created_at"`
}

// --- Interface ---

// RequestService is the service-request workflow: creation, the role-gated
// state machine, field edits and the guarded delete path. Every transition
// persists atomically with its audit entry; notifications go out after the
// transaction commits.
type RequestService interface {
	CreateRequest(ctx context.Context, actor Actor, req CreateRequestDTO) (RequestResponse, error)
	ListRequests(ctx context.Context, actor Actor, filter RequestFilter) ([]RequestResponse, int64, error)
	GetRequest(ctx context.Context, actor Actor, id string) (RequestResponse, error)
	UpdateRequest(ctx context.Context, actor Actor, id string, req UpdateRequestDTO) (RequestResponse, error)
	ApproveRequest(ctx context.Context, actor Actor, id, comment string) (RequestResponse, error)
	RejectRequest(ctx context.Context, actor Actor, id, reason string) (RequestResponse, error)
	RequestRevision(ctx context.Context, actor Actor, id, comments string) (RequestResponse, error)
	ResubmitRequest(ctx context.Context, actor Actor, id string) (RequestResponse, error)
	FulfillRequest(ctx context.Context, actor Actor, id string) (RequestResponse, error)
	DeleteRequest(ctx context.Context, actor Actor, id string) error
}

type requestService struct {
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	deptService DepartmentService
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	deptService DepartmentService,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		deptService: deptService,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// --- Implementation ---

func (s *requestService) CreateRequest(ctx context.Context, actor Actor, req CreateRequestDTO) (RequestResponse, error) {
	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return RequestResponse{}, apperror.Validation("invalid event date", apperror.FieldIssue{Field: "event_date", Message: "expected YYYY-MM-DD"})
	}

	estimated := decimal.Zero
	if req.EstimatedAmount != "" {
		estimated, err = decimal.NewFromString(req.EstimatedAmount)
		if err != nil || estimated.IsNegative() {
			return RequestResponse{}, apperror.Validation("invalid estimated amount", apperror.FieldIssue{Field: "estimated_amount", Message: "must be a non-negative number"})
		}
	}

	requester, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return RequestResponse{}, apperror.Unauthorized("requester account not found")
	}

	// Contact phone comes from the user record unless supplied inline, in
	// which case it is persisted back onto the user.
	contactPhone := req.ContactPhone
	if contactPhone == "" {
		contactPhone = requester.Phone
	}
	if contactPhone == "" {
		return RequestResponse{}, apperror.Validation("contact phone is required", apperror.FieldIssue{Field: "contact_phone", Message: "no phone on file; supply one"})
	}

	dept, err := s.deptService.ResolveOrCreate(ctx, req.DepartmentID, req.DepartmentName)
	if err != nil {
		return RequestResponse{}, err
	}

	request := model.ServiceRequest{
		EventName:         req.EventName,
		EventDate:         eventDate,
		Venue:             req.Venue,
		ExpectedAttendees: req.ExpectedAttendees,
		EstimatedAmount:   estimated,
		ServiceType:       req.ServiceType,
		Description:       req.Description,
		FundingSource:     req.FundingSource,
		ContactPhone:      contactPhone,
		RequesterID:       requester.ID,
		DepartmentID:      dept.ID,
		Status:            model.RequestSubmitted,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requestNo, genErr := s.generateRequestNo(txCtx)
		if genErr != nil {
			return fmt.Errorf("failed to generate request number: %w", genErr)
		}
		request.RequestNo = requestNo

		if createErr := s.requestRepo.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}

		if req.ContactPhone != "" && req.ContactPhone != requester.Phone {
			requester.Phone = req.ContactPhone
			if userErr := s.userRepo.Update(txCtx, requester); userErr != nil {
				return fmt.Errorf("failed to persist contact phone: %w", userErr)
			}
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionCreateRequest, request.ID, map[string]interface{}{
			"request_no": request.RequestNo,
			"event_name": request.EventName,
			"department": dept.Name,
		})
	})
	if err != nil {
		return RequestResponse{}, err
	}

	// New requests are announced to the approver pool once committed.
	recipients, lookupErr := s.approvalRecipients(ctx, dept)
	if lookupErr != nil {
		// Fan-out failure must not fail the creation.
		recipients = nil
	}
	if len(recipients) > 0 {
		s.notifier.Enqueue(Event{
			Type:       model.NotifyRequestCreated,
			Recipients: recipients,
			RequestID:  &request.ID,
			Data: map[string]interface{}{
				"RequestNo":     request.RequestNo,
				"EventName":     request.EventName,
				"RequesterName": requester.Username,
			},
		})
	}

	return s.reload(ctx, request.ID)
}

func (s *requestService) ListRequests(ctx context.Context, actor Actor, filter RequestFilter) ([]RequestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.RequestListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	// Plain requesters only ever see their own records.
	if !policy.CanSeeAllRequests(actor.Role) {
		id := actor.ID
		repoFilter.RequesterID = &id
	}

	requests, total, err := s.requestRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch requests: %w", err)
	}

	result := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toRequestResponse(&requests[i]))
	}
	return result, total, nil
}

func (s *requestService) GetRequest(ctx context.Context, actor Actor, id string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.NotFound("request not found", err)
	}
	request, err := s.requestRepo.FindByIDWithRelations(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, apperror.NotFound("request not found", err)
		}
		return RequestResponse{}, fmt.Errorf("failed to fetch request: %w", err)
	}
	if !policy.CanSeeAllRequests(actor.Role) && request.RequesterID != actor.ID {
		return RequestResponse{}, apperror.Forbidden("not your request")
	}
	return toRequestResponse(request), nil
}

// UpdateRequest applies field edits. Edits are only allowed while the request
// is still in a pre-approval status, and only by the owning requester or a
// finance officer.
func (s *requestService) UpdateRequest(ctx context.Context, actor Actor, id string, req UpdateRequestDTO) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.NotFound("request not found", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request not found", findErr)
			}
			return fmt.Errorf("failed to fetch request: %w", findErr)
		}

		if request.RequesterID != actor.ID && actor.Role != model.RoleFinanceOfficer && actor.Role != model.RoleAdmin {
			return apperror.Forbidden("not your request")
		}
		if !model.RequestEditable(request.Status) {
			return apperror.Conflict(fmt.Sprintf("cannot edit a request in status %s", request.Status))
		}

		if applyErr := applyRequestEdits(request, req); applyErr != nil {
			return applyErr
		}

		if updateErr := s.requestRepo.Update(txCtx, request); updateErr != nil {
			return fmt.Errorf("failed to update request: %w", updateErr)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionUpdateRequest, request.ID, map[string]interface{}{
			"request_no": request.RequestNo,
		})
	})
	if err != nil {
		return RequestResponse{}, err
	}

	return s.reload(ctx, requestID)
}

func (s *requestService) ApproveRequest(ctx context.Context, actor Actor, id, comment string) (RequestResponse, error) {
	request, err := s.transition(ctx, actor, id, model.RequestActionApprove, model.ActionApproveRequest, func(r *model.ServiceRequest) {
		now := time.Now()
		actorID := actor.ID
		r.ApproverID = &actorID
		r.ApprovalDate = &now
	}, map[string]interface{}{"comment": comment})
	if err != nil {
		return RequestResponse{}, err
	}

	data := map[string]interface{}{
		"RequestNo":    request.RequestNo,
		"EventName":    request.EventName,
		"ApproverName": actor.Username,
	}
	if requester, lookupErr := s.userRepo.GetByID(ctx, request.RequesterID); lookupErr == nil {
		s.notifier.Enqueue(Event{
			Type:       model.NotifyRequestApproved,
			Recipients: []model.User{*requester},
			RequestID:  &request.ID,
			Data:       data,
		})
	}
	if officers, lookupErr := s.userRepo.ListByRole(ctx, model.RoleFinanceOfficer); lookupErr == nil && len(officers) > 0 {
		s.notifier.Enqueue(Event{
			Type:       model.NotifyFinanceAction,
			Recipients: officers,
			RequestID:  &request.ID,
			Data:       data,
		})
	}

	return toRequestResponse(request), nil
}

func (s *requestService) RejectRequest(ctx context.Context, actor Actor, id, reason string) (RequestResponse, error) {
	request, err := s.transition(ctx, actor, id, model.RequestActionReject, model.ActionRejectRequest, func(r *model.ServiceRequest) {
		r.RejectionReason = reason
	}, map[string]interface{}{"reason": reason})
	if err != nil {
		return RequestResponse{}, err
	}

	if requester, lookupErr := s.userRepo.GetByID(ctx, request.RequesterID); lookupErr == nil {
		s.notifier.Enqueue(Event{
			Type:       model.NotifyRequestRejected,
			Recipients: []model.User{*requester},
			RequestID:  &request.ID,
			Data: map[string]interface{}{
				"RequestNo": request.RequestNo,
				"EventName": request.EventName,
				"Reason":    reason,
			},
		})
	}

	return toRequestResponse(request), nil
}

func (s *requestService) RequestRevision(ctx context.Context, actor Actor, id, comments string) (RequestResponse, error) {
	request, err := s.transition(ctx, actor, id, model.RequestActionRequestRevision, model.ActionRequestRevision, func(r *model.ServiceRequest) {
		r.RevisionComments = comments
	}, map[string]interface{}{"comments": comments})
	if err != nil {
		return RequestResponse{}, err
	}

	if requester, lookupErr := s.userRepo.GetByID(ctx, request.RequesterID); lookupErr == nil {
		s.notifier.Enqueue(Event{
			Type:       model.NotifyRequestRevision,
			Recipients: []model.User{*requester},
			RequestID:  &request.ID,
			Data: map[string]interface{}{
				"RequestNo": request.RequestNo,
				"EventName": request.EventName,
				"Comments":  comments,
			},
		})
	}

	return toRequestResponse(request), nil
}

// ResubmitRequest closes the revision loop: the owning requester sends a
// NEEDS_REVISION request back to SUBMITTED.
func (s *requestService) ResubmitRequest(ctx context.Context, actor Actor, id string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.NotFound("request not found", err)
	}

	var request *model.ServiceRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		request, findErr = s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request not found", findErr)
			}
			return fmt.Errorf("failed to fetch request: %w", findErr)
		}
		if request.RequesterID != actor.ID && actor.Role != model.RoleAdmin {
			return apperror.Forbidden("only the requester can resubmit")
		}

		next, transErr := model.NextRequestStatus(request.Status, model.RequestActionResubmit)
		if transErr != nil {
			return apperror.Conflict(transErr.Error())
		}
		request.Status = next
		request.RevisionComments = ""

		if updateErr := s.requestRepo.Update(txCtx, request); updateErr != nil {
			return fmt.Errorf("failed to update request: %w", updateErr)
		}
		return s.writeAudit(txCtx, &actor.ID, model.ActionResubmitRequest, request.ID, map[string]interface{}{
			"request_no": request.RequestNo,
		})
	})
	if err != nil {
		return RequestResponse{}, err
	}

	if approvers, lookupErr := s.userRepo.ListByRole(ctx, model.RoleApprover); lookupErr == nil && len(approvers) > 0 {
		s.notifier.Enqueue(Event{
			Type:       model.NotifyRequestResubmitted,
			Recipients: approvers,
			RequestID:  &request.ID,
			Data: map[string]interface{}{
				"RequestNo": request.RequestNo,
				"EventName": request.EventName,
			},
		})
	}

	return s.reload(ctx, requestID)
}

func (s *requestService) FulfillRequest(ctx context.Context, actor Actor, id string) (RequestResponse, error) {
	request, err := s.transition(ctx, actor, id, model.RequestActionFulfill, model.ActionFulfillRequest, nil, nil)
	if err != nil {
		return RequestResponse{}, err
	}
	// No notification is defined for fulfillment.
	return toRequestResponse(request), nil
}

// DeleteRequest removes a rejected, invoice-free request owned by the caller,
// cascading its notifications and audit rows, then writes a final standalone
// audit entry about the deletion.
func (s *requestService) DeleteRequest(ctx context.Context, actor Actor, id string) error {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return apperror.NotFound("request not found", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request not found", findErr)
			}
			return fmt.Errorf("failed to fetch request: %w", findErr)
		}

		isOwner := request.RequesterID == actor.ID
		if !isOwner && actor.Role != model.RoleFinanceOfficer && actor.Role != model.RoleAdmin {
			return apperror.Forbidden("only the requester or a finance officer can delete a request")
		}
		if request.Status != model.RequestRejected {
			return apperror.Validation(fmt.Sprintf("only rejected requests can be deleted (status is %s)", request.Status))
		}

		invoiceCount, countErr := s.requestRepo.CountInvoices(txCtx, request.ID)
		if countErr != nil {
			return fmt.Errorf("failed to count invoices: %w", countErr)
		}
		if invoiceCount > 0 {
			return apperror.Validation("request has invoices attached and cannot be deleted")
		}

		if delErr := s.requestRepo.Delete(txCtx, request); delErr != nil {
			return fmt.Errorf("failed to delete request: %w", delErr)
		}

		// The deletion record carries no request linkage so it survives the
		// cascade it documents.
		details, _ := json.Marshal(map[string]interface{}{
			"request_no": request.RequestNo,
			"event_name": request.EventName,
		})
		actorID := actor.ID
		entry := model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionDeleteRequest,
			EntityType: model.EntityRequest,
			EntityID:   request.ID.String(),
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Create(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

// --- internals ---

// transition runs one state-machine step: lock, guard, mutate, persist,
// audit, all in one transaction. mutate may be nil.
func (s *requestService) transition(
	ctx context.Context,
	actor Actor,
	id string,
	action string,
	auditAction string,
	mutate func(*model.ServiceRequest),
	auditExtra map[string]interface{},
) (*model.ServiceRequest, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("request not found", err)
	}

	var request *model.ServiceRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		request, findErr = s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request not found", findErr)
			}
			return fmt.Errorf("failed to fetch request: %w", findErr)
		}

		next, transErr := model.NextRequestStatus(request.Status, action)
		if transErr != nil {
			return apperror.Conflict(transErr.Error())
		}
		request.Status = next
		if mutate != nil {
			mutate(request)
		}

		if updateErr := s.requestRepo.Update(txCtx, request); updateErr != nil {
			return fmt.Errorf("failed to update request: %w", updateErr)
		}

		details := map[string]interface{}{"request_no": request.RequestNo, "status": next}
		for k, v := range auditExtra {
			details[k] = v
		}
		return s.writeAudit(txCtx, &actor.ID, auditAction, request.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *requestService) writeAudit(ctx context.Context, userID *uuid.UUID, action string, requestID uuid.UUID, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	rid := requestID
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: model.EntityRequest,
		EntityID:   requestID.String(),
		RequestID:  &rid,
		Details:    string(payload),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// generateRequestNo produces REQ-<year>-NNNNN from a per-year counter. The
// advisory lock serializes concurrent generation; the unique index on
// request_no is the backstop.
func (s *requestService) generateRequestNo(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("REQ-%d-", time.Now().Year())

	if err := s.requestRepo.AcquirePrefixLock(ctx, prefix); err != nil {
		return "", err
	}
	count, err := s.requestRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// approvalRecipients returns the approver pool for a new request: every
// APPROVER plus the department's default approver, deduplicated.
func (s *requestService) approvalRecipients(ctx context.Context, dept *model.Department) ([]model.User, error) {
	approvers, err := s.userRepo.ListByRole(ctx, model.RoleApprover)
	if err != nil {
		return nil, err
	}
	if dept.DefaultApproverID != nil {
		seen := false
		for _, a := range approvers {
			if a.ID == *dept.DefaultApproverID {
				seen = true
				break
			}
		}
		if !seen {
			if defaultApprover, lookupErr := s.userRepo.GetByID(ctx, *dept.DefaultApproverID); lookupErr == nil {
				approvers = append(approvers, *defaultApprover)
			}
		}
	}
	return approvers, nil
}

func (s *requestService) reload(ctx context.Context, id uuid.UUID) (RequestResponse, error) {
	request, err := s.requestRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("failed to reload request: %w", err)
	}
	return toRequestResponse(request), nil
}

func applyRequestEdits(request *model.ServiceRequest, req UpdateRequestDTO) error {
	if req.EventName != nil {
		request.EventName = *req.EventName
	}
	if req.EventDate != nil {
		eventDate, err := time.Parse("2006-01-02", *req.EventDate)
		if err != nil {
			return apperror.Validation("invalid event date", apperror.FieldIssue{Field: "event_date", Message: "expected YYYY-MM-DD"})
		}
		request.EventDate = eventDate
	}
	if req.Venue != nil {
		request.Venue = *req.Venue
	}
	if req.ExpectedAttendees != nil {
		if *req.ExpectedAttendees < 1 {
			return apperror.Validation("invalid attendee count", apperror.FieldIssue{Field: "expected_attendees", Message: "must be at least 1"})
		}
		request.ExpectedAttendees = *req.ExpectedAttendees
	}
	if req.EstimatedAmount != nil {
		estimated, err := decimal.NewFromString(*req.EstimatedAmount)
		if err != nil || estimated.IsNegative() {
			return apperror.Validation("invalid estimated amount", apperror.FieldIssue{Field: "estimated_amount", Message: "must be a non-negative number"})
		}
		request.EstimatedAmount = estimated
	}
	if req.ServiceType != nil {
		request.ServiceType = *req.ServiceType
	}
	if req.Description != nil {
		request.Description = *req.Description
	}
	if req.FundingSource != nil {
		request.FundingSource = *req.FundingSource
	}
	if req.ContactPhone != nil {
		request.ContactPhone = *req.ContactPhone
	}
	return nil
}

// --- Mapping ---

func toRequestResponse(r *model.ServiceRequest) RequestResponse {
	resp := RequestResponse{
		ID:                r.ID.String(),
		RequestNo:         r.RequestNo,
		EventName:         r.EventName,
		EventDate:         r.EventDate.Format("2006-01-02"),
		Venue:             r.Venue,
		ExpectedAttendees: r.ExpectedAttendees,
		EstimatedAmount:   r.EstimatedAmount.StringFixed(2),
		ServiceType:       r.ServiceType,
		Description:       r.Description,
		FundingSource:     r.FundingSource,
		ContactPhone:      r.ContactPhone,
		RequesterID:       r.RequesterID.String(),
		DepartmentID:      r.DepartmentID.String(),
		Status:            r.Status,
		RejectionReason:   r.RejectionReason,
		RevisionComments:  r.RevisionComments,
		InvoiceCount:      len(r.Invoices),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.Username
	}
	if r.Department != nil {
		resp.DepartmentName = r.Department.Name
	}
	if r.ApproverID != nil {
		s := r.ApproverID.String()
		resp.ApproverID = &s
	}
	if r.Approver != nil {
		resp.ApproverName = r.Approver.Username
	}
	if r.ApprovalDate != nil {
		s := r.ApprovalDate.Format(time.RFC3339)
		resp.ApprovalDate = &s
	}
	return resp
}
