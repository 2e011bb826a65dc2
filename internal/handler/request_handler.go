package handler

import (
	"net/http"

	"catering-backend/internal/middleware"
	"catering-backend/internal/policy"
	"catering-backend/internal/service"
	"catering-backend/pkg/pagination"
	"catering-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.Require(policy.ActionCreateRequest), h.CreateRequest)
		requests.GET("", middleware.Require(policy.ActionListRequests), h.ListRequests)
		requests.GET("/:id", middleware.Require(policy.ActionViewRequest), h.GetRequest)
		requests.PUT("/:id", middleware.Require(policy.ActionUpdateRequest), h.UpdateRequest)
		requests.DELETE("/:id", middleware.Require(policy.ActionDeleteRequest), h.DeleteRequest)
		requests.PUT("/:id/approve", middleware.Require(policy.ActionApproveRequest), h.ApproveRequest)
		requests.PUT("/:id/reject", middleware.Require(policy.ActionRejectRequest), h.RejectRequest)
		requests.PUT("/:id/request-revision", middleware.Require(policy.ActionRequestRevision), h.RequestRevision)
		requests.PUT("/:id/resubmit", middleware.Require(policy.ActionResubmitRequest), h.ResubmitRequest)
		requests.PUT("/:id/fulfill", middleware.Require(policy.ActionFulfillRequest), h.FulfillRequest)
	}
}

type decisionPayload struct {
	Comment string `json:"comment"`
	Reason  string `json:"reason"`
}

// CreateRequest submits a new catering service request
// @Summary      Create service request
// @Description  Submits a new catering service request for approval
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRequestDTO  true  "Create Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// ListRequests returns a paginated list of service requests
// @Summary      List service requests
// @Description  Retrieves service requests; requesters see only their own
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by workflow status"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	filter := service.RequestFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	requests, total, err := h.requestService.ListRequests(c.Request.Context(), actor, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, listEnvelope("requests", requests, total, params.Page, params.Limit)))
}

// GetRequest returns one service request with its relations
// @Summary      Get service request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	request, err := h.requestService.GetRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// UpdateRequest edits a request that has not yet been approved
// @Summary      Update service request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Request ID"
// @Param        payload  body      service.UpdateRequestDTO  true  "Update Request Payload"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id} [put]
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req service.UpdateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.requestService.UpdateRequest(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// DeleteRequest removes a rejected, invoice-free request
// @Summary      Delete service request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	if err := h.requestService.DeleteRequest(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ApproveRequest approves a submitted request
// @Summary      Approve service request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string           true   "Request ID"
// @Param        payload  body      decisionPayload  false  "Optional approval comment"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/approve [put]
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var payload decisionPayload
	_ = c.ShouldBindJSON(&payload)

	request, err := h.requestService.ApproveRequest(c.Request.Context(), actor, c.Param("id"), payload.Comment)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// RejectRequest rejects a submitted request with a reason
// @Summary      Reject service request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "Request ID"
// @Param        payload  body      decisionPayload  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/reject [put]
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Reason == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "A rejection reason is required"))
		return
	}

	request, err := h.requestService.RejectRequest(c.Request.Context(), actor, c.Param("id"), payload.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// RequestRevision sends a submitted request back for revision
// @Summary      Request revision
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "Request ID"
// @Param        payload  body      decisionPayload  true  "Revision comments"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/request-revision [put]
func (h *RequestHandler) RequestRevision(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Comment == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Revision comments are required"))
		return
	}

	request, err := h.requestService.RequestRevision(c.Request.Context(), actor, c.Param("id"), payload.Comment)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// ResubmitRequest resubmits a revised request for approval
// @Summary      Resubmit service request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/resubmit [put]
func (h *RequestHandler) ResubmitRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	request, err := h.requestService.ResubmitRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// FulfillRequest marks an approved request as fulfilled
// @Summary      Fulfill service request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/fulfill [put]
func (h *RequestHandler) FulfillRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	request, err := h.requestService.FulfillRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}
