package handler

import (
	"net/http"

	"catering-backend/internal/middleware"
	"catering-backend/internal/policy"
	"catering-backend/internal/service"
	"catering-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DepartmentHandler struct {
	deptService service.DepartmentService
}

func NewDepartmentHandler(deptService service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptService: deptService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	departments := router.Group("/api/departments")
	{
		departments.GET("", middleware.RequireAuth(), h.ListDepartments)
		departments.GET("/:id", middleware.RequireAuth(), h.GetDepartment)
		departments.POST("", middleware.Require(policy.ActionManageDepartment), h.CreateDepartment)
	}
}

// ListDepartments returns all departments
// @Summary      List departments
// @Tags         departments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.DepartmentResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/departments [get]
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	departments, err := h.deptService.ListDepartments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, departments))
}

// GetDepartment returns one department by id
// @Summary      Get department
// @Tags         departments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Department ID"
// @Success      200  {object}  response.Response{data=service.DepartmentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/departments/{id} [get]
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	department, err := h.deptService.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, department))
}

// CreateDepartment registers a department explicitly (they are otherwise
// auto-created from request submissions)
// @Summary      Create department
// @Tags         departments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDepartmentRequest  true  "Create Department Payload"
// @Success      201      {object}  response.Response{data=service.DepartmentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/departments [post]
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	department, err := h.deptService.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, department))
}
