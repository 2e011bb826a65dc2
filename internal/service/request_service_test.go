package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"catering-backend/internal/model"
	"catering-backend/internal/repository"
	"catering-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RequestServiceSuite struct {
	suite.Suite

	requestRepo *mockRequestRepo
	userRepo    *mockUserRepo
	deptService *mockDeptService
	auditRepo   *mockAuditRepo
	notifier    *captureNotifier
	svc         RequestService

	requester model.User
	approver  model.User
	dept      model.Department
}

func (s *RequestServiceSuite) SetupTest() {
	s.requestRepo = new(mockRequestRepo)
	s.userRepo = new(mockUserRepo)
	s.deptService = new(mockDeptService)
	s.auditRepo = new(mockAuditRepo)
	s.notifier = new(captureNotifier)
	s.svc = NewRequestService(s.requestRepo, s.userRepo, s.deptService, s.auditRepo, stubTxManager{}, s.notifier)

	s.requester = model.User{ID: uuid.New(), Subject: "req-1", Username: "Alice", Email: "alice@university.edu", Phone: "0244000001", Role: model.RoleRequester}
	s.approver = model.User{ID: uuid.New(), Subject: "app-1", Username: "Kwame", Email: "kwame@university.edu", Role: model.RoleApprover}
	s.dept = model.Department{ID: uuid.New(), Name: "Computer Science", Code: "CSC-001"}
}

func (s *RequestServiceSuite) requesterActor() Actor {
	return Actor{ID: s.requester.ID, Role: s.requester.Role, Username: s.requester.Username}
}

func (s *RequestServiceSuite) approverActor() Actor {
	return Actor{ID: s.approver.ID, Role: s.approver.Role, Username: s.approver.Username}
}

func (s *RequestServiceSuite) TestCreateRequest() {
	ctx := context.Background()

	s.userRepo.On("GetByID", mock.Anything, s.requester.ID).Return(&s.requester, nil)
	s.deptService.On("ResolveOrCreate", mock.Anything, "", "Computer Science").Return(&s.dept, nil)
	s.requestRepo.On("AcquirePrefixLock", mock.Anything, mock.Anything).Return(nil)
	s.requestRepo.On("CountByPrefix", mock.Anything, mock.Anything).Return(int64(41), nil)
	s.requestRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.ServiceRequest")).Run(func(args mock.Arguments) {
		req := args.Get(1).(*model.ServiceRequest)
		req.ID = uuid.New()
	}).Return(nil)
	s.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	s.userRepo.On("ListByRole", mock.Anything, model.RoleApprover).Return([]model.User{s.approver}, nil)
	s.requestRepo.On("FindByIDWithRelations", mock.Anything, mock.Anything).Return(&model.ServiceRequest{
		ID:          uuid.New(),
		RequestNo:   fmt.Sprintf("REQ-%d-00042", time.Now().Year()),
		EventName:   "Faculty Dinner",
		EventDate:   time.Now().AddDate(0, 1, 0),
		Status:      model.RequestSubmitted,
		RequesterID: s.requester.ID,
		Requester:   &s.requester,
		Department:  &s.dept,
	}, nil)

	resp, err := s.svc.CreateRequest(ctx, s.requesterActor(), CreateRequestDTO{
		EventName:         "Faculty Dinner",
		EventDate:         time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Venue:             "Great Hall",
		ExpectedAttendees: 120,
		EstimatedAmount:   "4500.00",
		FundingSource:     "Departmental budget",
		DepartmentName:    "Computer Science",
	})
	s.Require().NoError(err)
	s.Equal(model.RequestSubmitted, resp.Status)
	s.Equal(fmt.Sprintf("REQ-%d-00042", time.Now().Year()), resp.RequestNo)

	// Approvers are notified after the commit.
	s.Require().Len(s.notifier.events, 1)
	s.Equal(model.NotifyRequestCreated, s.notifier.events[0].Type)
	s.Equal(s.approver.ID, s.notifier.events[0].Recipients[0].ID)
}

func (s *RequestServiceSuite) TestCreateRequestRequiresPhone() {
	noPhone := s.requester
	noPhone.Phone = ""
	s.userRepo.On("GetByID", mock.Anything, s.requester.ID).Return(&noPhone, nil)

	_, err := s.svc.CreateRequest(context.Background(), s.requesterActor(), CreateRequestDTO{
		EventName:         "Faculty Dinner",
		EventDate:         "2026-10-01",
		Venue:             "Great Hall",
		ExpectedAttendees: 120,
		FundingSource:     "Departmental budget",
		DepartmentName:    "Computer Science",
	})
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindValidation, appErr.Kind)
}

func (s *RequestServiceSuite) TestCreateRequestBadDate() {
	_, err := s.svc.CreateRequest(context.Background(), s.requesterActor(), CreateRequestDTO{
		EventName:         "Faculty Dinner",
		EventDate:         "01/10/2026",
		Venue:             "Great Hall",
		ExpectedAttendees: 120,
		FundingSource:     "Departmental budget",
	})
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindValidation, appErr.Kind)
}

func (s *RequestServiceSuite) TestApproveRequest() {
	requestID := uuid.New()
	request := &model.ServiceRequest{
		ID:          requestID,
		RequestNo:   "REQ-2026-00007",
		EventName:   "Orientation",
		Status:      model.RequestSubmitted,
		RequesterID: s.requester.ID,
	}
	financeOfficer := model.User{ID: uuid.New(), Role: model.RoleFinanceOfficer, Email: "efua@university.edu"}

	s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil)
	s.requestRepo.On("Update", mock.Anything, request).Return(nil)
	s.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	s.userRepo.On("GetByID", mock.Anything, s.requester.ID).Return(&s.requester, nil)
	s.userRepo.On("ListByRole", mock.Anything, model.RoleFinanceOfficer).Return([]model.User{financeOfficer}, nil)

	resp, err := s.svc.ApproveRequest(context.Background(), s.approverActor(), requestID.String(), "looks good")
	s.Require().NoError(err)
	s.Equal(model.RequestApproved, resp.Status)
	s.Require().NotNil(request.ApproverID)
	s.Equal(s.approver.ID, *request.ApproverID)
	s.NotNil(request.ApprovalDate)

	// Requester and finance officers are both notified.
	s.Require().Len(s.notifier.events, 2)
	s.Equal(model.NotifyRequestApproved, s.notifier.events[0].Type)
	s.Equal(model.NotifyFinanceAction, s.notifier.events[1].Type)
}

func (s *RequestServiceSuite) TestApproveRejectedRequestConflicts() {
	requestID := uuid.New()
	request := &model.ServiceRequest{ID: requestID, Status: model.RequestRejected, RequesterID: s.requester.ID}
	s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil)

	_, err := s.svc.ApproveRequest(context.Background(), s.approverActor(), requestID.String(), "")
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindConflict, appErr.Kind)
	s.requestRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
	s.Empty(s.notifier.events)
}

func (s *RequestServiceSuite) TestRejectRequestRecordsReason() {
	requestID := uuid.New()
	request := &model.ServiceRequest{ID: requestID, RequestNo: "REQ-2026-00008", Status: model.RequestSubmitted, RequesterID: s.requester.ID}

	s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil)
	s.requestRepo.On("Update", mock.Anything, request).Return(nil)
	s.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	s.userRepo.On("GetByID", mock.Anything, s.requester.ID).Return(&s.requester, nil)

	resp, err := s.svc.RejectRequest(context.Background(), s.approverActor(), requestID.String(), "Budget exhausted")
	s.Require().NoError(err)
	s.Equal(model.RequestRejected, resp.Status)
	s.Equal("Budget exhausted", request.RejectionReason)

	s.Require().Len(s.notifier.events, 1)
	s.Equal(model.NotifyRequestRejected, s.notifier.events[0].Type)
	s.Equal("Budget exhausted", s.notifier.events[0].Data["Reason"])
}

func (s *RequestServiceSuite) TestResubmitOnlyByOwner() {
	requestID := uuid.New()
	request := &model.ServiceRequest{ID: requestID, Status: model.RequestNeedsRevision, RequesterID: s.requester.ID, RevisionComments: "fix budget"}
	s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil)

	_, err := s.svc.ResubmitRequest(context.Background(), s.approverActor(), requestID.String())
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindForbidden, appErr.Kind)
}

func (s *RequestServiceSuite) TestResubmitClearsRevisionComments() {
	requestID := uuid.New()
	request := &model.ServiceRequest{ID: requestID, RequestNo: "REQ-2026-00009", Status: model.RequestNeedsRevision, RequesterID: s.requester.ID, RevisionComments: "fix budget"}

	s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil)
	s.requestRepo.On("Update", mock.Anything, request).Return(nil)
	s.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	s.userRepo.On("ListByRole", mock.Anything, model.RoleApprover).Return([]model.User{s.approver}, nil)
	s.requestRepo.On("FindByIDWithRelations", mock.Anything, requestID).Return(request, nil)

	resp, err := s.svc.ResubmitRequest(context.Background(), s.requesterActor(), requestID.String())
	s.Require().NoError(err)
	s.Equal(model.RequestSubmitted, resp.Status)
	s.Empty(request.RevisionComments)

	s.Require().Len(s.notifier.events, 1)
	s.Equal(model.NotifyRequestResubmitted, s.notifier.events[0].Type)
}

func (s *RequestServiceSuite) TestUpdateApprovedRequestConflicts() {
	requestID := uuid.New()
	request := &model.ServiceRequest{ID: requestID, Status: model.RequestApproved, RequesterID: s.requester.ID}
	s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil)

	venue := "New Venue"
	_, err := s.svc.UpdateRequest(context.Background(), s.requesterActor(), requestID.String(), UpdateRequestDTO{Venue: &venue})
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindConflict, appErr.Kind)
}

func (s *RequestServiceSuite) TestDeleteRequestGuards() {
	requestID := uuid.New()

	s.Run("wrong status", func() {
		request := &model.ServiceRequest{ID: requestID, Status: model.RequestSubmitted, RequesterID: s.requester.ID}
		s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil).Once()

		err := s.svc.DeleteRequest(context.Background(), s.requesterActor(), requestID.String())
		s.Require().Error(err)
		appErr, ok := apperror.As(err)
		s.Require().True(ok)
		s.Equal(apperror.KindValidation, appErr.Kind)
	})

	s.Run("has invoices", func() {
		request := &model.ServiceRequest{ID: requestID, Status: model.RequestRejected, RequesterID: s.requester.ID}
		s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil).Once()
		s.requestRepo.On("CountInvoices", mock.Anything, requestID).Return(int64(2), nil).Once()

		err := s.svc.DeleteRequest(context.Background(), s.requesterActor(), requestID.String())
		s.Require().Error(err)
	})

	s.Run("not the owner", func() {
		request := &model.ServiceRequest{ID: requestID, Status: model.RequestRejected, RequesterID: uuid.New()}
		s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil).Once()

		err := s.svc.DeleteRequest(context.Background(), s.requesterActor(), requestID.String())
		s.Require().Error(err)
		appErr, ok := apperror.As(err)
		s.Require().True(ok)
		s.Equal(apperror.KindForbidden, appErr.Kind)
	})

	s.Run("happy path writes a final audit entry", func() {
		request := &model.ServiceRequest{ID: requestID, RequestNo: "REQ-2026-00010", Status: model.RequestRejected, RequesterID: s.requester.ID}
		s.requestRepo.On("FindByIDForUpdate", mock.Anything, requestID).Return(request, nil).Once()
		s.requestRepo.On("CountInvoices", mock.Anything, requestID).Return(int64(0), nil).Once()
		s.requestRepo.On("Delete", mock.Anything, request).Return(nil).Once()
		s.auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(entry *model.AuditLog) bool {
			// The deletion entry must not be linked to the request, or the
			// cascade it documents would erase it.
			return entry.Action == model.ActionDeleteRequest && entry.RequestID == nil
		})).Return(nil).Once()

		err := s.svc.DeleteRequest(context.Background(), s.requesterActor(), requestID.String())
		s.Require().NoError(err)
		s.auditRepo.AssertExpectations(s.T())
	})
}

func (s *RequestServiceSuite) TestListRequestsScopesRequesters() {
	s.requestRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.RequestListFilter) bool {
		return f.RequesterID != nil && *f.RequesterID == s.requester.ID
	})).Return([]model.ServiceRequest{}, int64(0), nil).Once()

	_, _, err := s.svc.ListRequests(context.Background(), s.requesterActor(), RequestFilter{})
	s.Require().NoError(err)

	// Approvers see everything: no requester scoping.
	s.requestRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.RequestListFilter) bool {
		return f.RequesterID == nil
	})).Return([]model.ServiceRequest{}, int64(0), nil).Once()

	_, _, err = s.svc.ListRequests(context.Background(), s.approverActor(), RequestFilter{})
	s.Require().NoError(err)
	s.requestRepo.AssertExpectations(s.T())
}

func TestRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func TestActorFromStrings(t *testing.T) {
	id := uuid.New()
	actor, err := ActorFromStrings(id.String(), model.RoleApprover, "Kwame")
	require.NoError(t, err)
	assert.Equal(t, id, actor.ID)
	assert.Equal(t, model.RoleApprover, actor.Role)

	_, err = ActorFromStrings("not-a-uuid", model.RoleApprover, "Kwame")
	assert.Error(t, err)
}
