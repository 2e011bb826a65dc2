package service

import (
	"context"
	"testing"

	"catering-backend/internal/model"
	"catering-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	suite.Suite

	invoiceRepo *mockInvoiceRepo
	requestRepo *mockRequestRepo
	userRepo    *mockUserRepo
	auditRepo   *mockAuditRepo
	notifier    *captureNotifier
	svc         InvoiceService

	finance   model.User
	requester model.User
	request   *model.ServiceRequest
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.invoiceRepo = new(mockInvoiceRepo)
	s.requestRepo = new(mockRequestRepo)
	s.userRepo = new(mockUserRepo)
	s.auditRepo = new(mockAuditRepo)
	s.notifier = new(captureNotifier)
	s.svc = NewInvoiceService(s.invoiceRepo, s.requestRepo, s.userRepo, s.auditRepo, stubTxManager{}, s.notifier)

	s.finance = model.User{ID: uuid.New(), Role: model.RoleFinanceOfficer, Username: "Efua"}
	s.requester = model.User{ID: uuid.New(), Role: model.RoleRequester, Email: "alice@university.edu"}
	s.request = &model.ServiceRequest{
		ID:          uuid.New(),
		RequestNo:   "REQ-2026-00042",
		Status:      model.RequestApproved,
		RequesterID: s.requester.ID,
	}
}

func (s *InvoiceServiceSuite) financeActor() Actor {
	return Actor{ID: s.finance.ID, Role: s.finance.Role, Username: s.finance.Username}
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	s.requestRepo.On("FindByID", mock.Anything, s.request.ID).Return(s.request, nil)
	s.invoiceRepo.On("AcquirePrefixLock", mock.Anything, mock.Anything).Return(nil)
	s.invoiceRepo.On("CountByPrefix", mock.Anything, mock.Anything).Return(int64(2), nil)
	s.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *model.Invoice) bool {
		// net = gross + tax
		return inv.NetAmount.Equal(decimal.RequireFromString("1150.00")) &&
			inv.Status == model.InvoiceSubmitted
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Invoice).ID = uuid.New()
	}).Return(nil)
	s.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	s.userRepo.On("GetByID", mock.Anything, s.requester.ID).Return(&s.requester, nil)
	s.invoiceRepo.On("FindByIDWithPayments", mock.Anything, mock.Anything).Return(&model.Invoice{
		ID:          uuid.New(),
		InvoiceNo:   "INV-20260830-00003",
		RequestID:   s.request.ID,
		GrossAmount: decimal.RequireFromString("1000.00"),
		TaxAmount:   decimal.RequireFromString("150.00"),
		NetAmount:   decimal.RequireFromString("1150.00"),
		Status:      model.InvoiceSubmitted,
	}, nil)

	resp, err := s.svc.CreateInvoice(context.Background(), s.financeActor(), CreateInvoiceDTO{
		RequestID:   s.request.ID.String(),
		InvoiceDate: "2026-08-30",
		GrossAmount: "1000.00",
		TaxAmount:   "150.00",
	})
	s.Require().NoError(err)
	s.Equal("1150.00", resp.NetAmount)

	s.Require().Len(s.notifier.events, 1)
	s.Equal(model.NotifyInvoiceCreated, s.notifier.events[0].Type)
	s.Equal(s.requester.ID, s.notifier.events[0].Recipients[0].ID)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRequiresApprovedRequest() {
	s.request.Status = model.RequestSubmitted
	s.requestRepo.On("FindByID", mock.Anything, s.request.ID).Return(s.request, nil)

	_, err := s.svc.CreateInvoice(context.Background(), s.financeActor(), CreateInvoiceDTO{
		RequestID:   s.request.ID.String(),
		InvoiceDate: "2026-08-30",
		GrossAmount: "1000.00",
	})
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindConflict, appErr.Kind)
	s.invoiceRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceValidation() {
	s.Run("zero gross", func() {
		_, err := s.svc.CreateInvoice(context.Background(), s.financeActor(), CreateInvoiceDTO{
			RequestID:   s.request.ID.String(),
			InvoiceDate: "2026-08-30",
			GrossAmount: "0",
		})
		s.Require().Error(err)
	})

	s.Run("negative tax", func() {
		_, err := s.svc.CreateInvoice(context.Background(), s.financeActor(), CreateInvoiceDTO{
			RequestID:   s.request.ID.String(),
			InvoiceDate: "2026-08-30",
			GrossAmount: "100.00",
			TaxAmount:   "-5.00",
		})
		s.Require().Error(err)
	})
}

func (s *InvoiceServiceSuite) TestApproveForPayment() {
	invoice := &model.Invoice{ID: uuid.New(), InvoiceNo: "INV-20260830-00004", RequestID: s.request.ID, Status: model.InvoiceVerified}

	s.invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	s.invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)
	s.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	s.invoiceRepo.On("FindByIDWithPayments", mock.Anything, invoice.ID).Return(invoice, nil)

	resp, err := s.svc.ApproveForPayment(context.Background(), s.financeActor(), invoice.ID.String())
	s.Require().NoError(err)
	s.Equal(model.InvoiceApprovedForPayment, resp.Status)
}

func (s *InvoiceServiceSuite) TestApproveForPaymentRejectsWrongStatus() {
	invoice := &model.Invoice{ID: uuid.New(), RequestID: s.request.ID, Status: model.InvoicePartiallyPaid}
	s.invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := s.svc.ApproveForPayment(context.Background(), s.financeActor(), invoice.ID.String())
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindConflict, appErr.Kind)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceRejectsDerivedStatuses() {
	invoice := &model.Invoice{
		ID:          uuid.New(),
		RequestID:   s.request.ID,
		GrossAmount: decimal.RequireFromString("100.00"),
		NetAmount:   decimal.RequireFromString("100.00"),
		Status:      model.InvoiceVerified,
	}
	s.invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)

	paid := model.InvoicePaid
	_, err := s.svc.UpdateInvoice(context.Background(), s.financeActor(), invoice.ID.String(), UpdateInvoiceDTO{Status: &paid})
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindValidation, appErr.Kind)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceRecomputesNet() {
	invoice := &model.Invoice{
		ID:          uuid.New(),
		RequestID:   s.request.ID,
		GrossAmount: decimal.RequireFromString("100.00"),
		TaxAmount:   decimal.RequireFromString("10.00"),
		NetAmount:   decimal.RequireFromString("110.00"),
		Status:      model.InvoiceSubmitted,
	}
	s.invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	s.invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)
	s.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	s.invoiceRepo.On("FindByIDWithPayments", mock.Anything, invoice.ID).Return(invoice, nil)

	gross := "200.00"
	_, err := s.svc.UpdateInvoice(context.Background(), s.financeActor(), invoice.ID.String(), UpdateInvoiceDTO{GrossAmount: &gross})
	s.Require().NoError(err)
	s.True(invoice.NetAmount.Equal(decimal.RequireFromString("210.00")))
}

func TestInvoiceServiceSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}
