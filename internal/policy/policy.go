package policy

import "catering-backend/internal/model"

// Action identifies an operation subject to role-based authorization.
type Action string

const (
	ActionCreateRequest    Action = "request.create"
	ActionListRequests     Action = "request.list"
	ActionViewRequest      Action = "request.view"
	ActionUpdateRequest    Action = "request.update"
	ActionApproveRequest   Action = "request.approve"
	ActionRejectRequest    Action = "request.reject"
	ActionRequestRevision  Action = "request.request-revision"
	ActionResubmitRequest  Action = "request.resubmit"
	ActionFulfillRequest   Action = "request.fulfill"
	ActionDeleteRequest    Action = "request.delete"
	ActionCreateInvoice    Action = "invoice.create"
	ActionUpdateInvoice    Action = "invoice.update"
	ActionApproveInvoice   Action = "invoice.approve-for-payment"
	ActionListInvoices     Action = "invoice.list"
	ActionCreatePayment    Action = "payment.create"
	ActionUpdatePayment    Action = "payment.update"
	ActionDeletePayment    Action = "payment.delete"
	ActionListPayments     Action = "payment.list"
	ActionListAuditLogs    Action = "audit.list"
	ActionManageUsers      Action = "user.manage"
	ActionManageDepartment Action = "department.manage"
)

var anyAuthenticated = []string{model.RoleRequester, model.RoleApprover, model.RoleFinanceOfficer, model.RoleAdmin}
var approverRoles = []string{model.RoleApprover, model.RoleFinanceOfficer}
var financeRoles = []string{model.RoleFinanceOfficer}
var adminRoles = []string{model.RoleAdmin}

// rules is the single source of truth mapping each action to the roles that
// may perform it. Handlers and services consult this table instead of
// repeating role-list checks inline.
var rules = map[Action][]string{
	ActionCreateRequest:    anyAuthenticated,
	ActionListRequests:     anyAuthenticated,
	ActionViewRequest:      anyAuthenticated,
	ActionUpdateRequest:    anyAuthenticated,
	ActionApproveRequest:   approverRoles,
	ActionRejectRequest:    approverRoles,
	ActionRequestRevision:  approverRoles,
	ActionResubmitRequest:  anyAuthenticated,
	ActionFulfillRequest:   financeRoles,
	ActionDeleteRequest:    anyAuthenticated, // ownership checked by the service
	ActionCreateInvoice:    financeRoles,
	ActionUpdateInvoice:    financeRoles,
	ActionApproveInvoice:   financeRoles,
	ActionListInvoices:     anyAuthenticated,
	ActionCreatePayment:    financeRoles,
	ActionUpdatePayment:    financeRoles,
	ActionDeletePayment:    financeRoles,
	ActionListPayments:     anyAuthenticated,
	ActionListAuditLogs:    []string{model.RoleFinanceOfficer, model.RoleAdmin},
	ActionManageUsers:      adminRoles,
	ActionManageDepartment: adminRoles,
}

// Allow reports whether the given role may perform the action. ADMIN passes
// every check.
func Allow(role string, action Action) bool {
	if role == model.RoleAdmin {
		return true
	}
	allowed, ok := rules[action]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Roles returns the roles allowed for an action, primarily for route wiring.
func Roles(action Action) []string {
	if allowed, ok := rules[action]; ok {
		out := make([]string, len(allowed))
		copy(out, allowed)
		return out
	}
	return nil
}

// CanSeeAllRequests reports whether the role sees every request in listings;
// plain requesters are limited to their own.
func CanSeeAllRequests(role string) bool {
	return role == model.RoleApprover || role == model.RoleFinanceOfficer || role == model.RoleAdmin
}
