package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catering-backend/internal/model"
	"catering-backend/internal/repository"
	"catering-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateDepartmentRequest struct {
	Name              string `json:"name" binding:"required"`
	Code              string `json:"code"`
	DefaultApproverID string `json:"default_approver_id"`
}

type DepartmentResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Code              string  `json:"code"`
	DefaultApproverID *string `json:"default_approver_id"`
	CreatedAt         string  `json:"created_at"`
}

// --- Interface ---

type DepartmentService interface {
	ListDepartments(ctx context.Context) ([]DepartmentResponse, error)
	GetDepartment(ctx context.Context, id string) (*DepartmentResponse, error)
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*DepartmentResponse, error)
	// ResolveOrCreate returns the department with the given id or name,
	// creating one with a derived code when the name is new.
	ResolveOrCreate(ctx context.Context, id, name string) (*model.Department, error)
}

type departmentService struct {
	deptRepo repository.DepartmentRepository
}

func NewDepartmentService(deptRepo repository.DepartmentRepository) DepartmentService {
	return &departmentService{deptRepo: deptRepo}
}

// --- Implementation ---

func (s *departmentService) ListDepartments(ctx context.Context) ([]DepartmentResponse, error) {
	depts, err := s.deptRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch departments: %w", err)
	}
	result := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		result = append(result, toDepartmentResponse(&depts[i]))
	}
	return result, nil
}

func (s *departmentService) GetDepartment(ctx context.Context, id string) (*DepartmentResponse, error) {
	deptID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid department id")
	}
	dept, err := s.deptRepo.GetByID(ctx, deptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("department not found", err)
		}
		return nil, fmt.Errorf("failed to fetch department: %w", err)
	}
	resp := toDepartmentResponse(dept)
	return &resp, nil
}

func (s *departmentService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("department name is required", apperror.FieldIssue{Field: "name", Message: "required"})
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = deriveDepartmentCode(name)
	}

	dept := model.Department{Name: name, Code: code}
	if req.DefaultApproverID != "" {
		approverID, err := uuid.Parse(req.DefaultApproverID)
		if err != nil {
			return nil, apperror.Validation("invalid default approver id", apperror.FieldIssue{Field: "default_approver_id", Message: "must be a uuid"})
		}
		dept.DefaultApproverID = &approverID
	}

	if err := s.deptRepo.Create(ctx, &dept); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	resp := toDepartmentResponse(&dept)
	return &resp, nil
}

// ResolveOrCreate resolves the department for a new service request. An id
// takes precedence; otherwise the name is looked up and auto-created when
// unknown, with a derived pseudo-unique code (the unique index is the real
// guarantee).
func (s *departmentService) ResolveOrCreate(ctx context.Context, id, name string) (*model.Department, error) {
	if id != "" {
		deptID, err := uuid.Parse(id)
		if err != nil {
			return nil, apperror.Validation("invalid department id", apperror.FieldIssue{Field: "department_id", Message: "must be a uuid"})
		}
		dept, err := s.deptRepo.GetByID(ctx, deptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Validation("department not found", apperror.FieldIssue{Field: "department_id", Message: "unknown department"})
			}
			return nil, fmt.Errorf("failed to fetch department: %w", err)
		}
		return dept, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("department is required", apperror.FieldIssue{Field: "department", Message: "id or name required"})
	}

	dept, err := s.deptRepo.GetByName(ctx, name)
	if err == nil {
		return dept, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up department: %w", err)
	}

	created := &model.Department{Name: name, Code: deriveDepartmentCode(name)}
	if createErr := s.deptRepo.Create(ctx, created); createErr != nil {
		// A concurrent request may have created it first.
		if existing, readErr := s.deptRepo.GetByName(ctx, name); readErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create department: %w", createErr)
	}
	return created, nil
}

// deriveDepartmentCode builds a code from the first three letters of the name
// plus a timestamp suffix, e.g. "Catering Services" -> "CAT-1735561200".
func deriveDepartmentCode(name string) string {
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}
	prefix := string(letters)
	if prefix == "" {
		prefix = "DEP"
	}
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// --- Helpers ---

func toDepartmentResponse(dept *model.Department) DepartmentResponse {
	resp := DepartmentResponse{
		ID:        dept.ID.String(),
		Name:      dept.Name,
		Code:      dept.Code,
		CreatedAt: dept.CreatedAt.Format(time.RFC3339),
	}
	if dept.DefaultApproverID != nil {
		s := dept.DefaultApproverID.String()
		resp.DefaultApproverID = &s
	}
	return resp
}
