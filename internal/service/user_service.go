package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catering-backend/internal/middleware"
	"catering-backend/internal/model"
	"catering-backend/internal/repository"
	"catering-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpdateUserRequest struct {
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
}

type UserResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Role           string  `json:"role"`
	DepartmentID   *string `json:"department_id"`
	DepartmentName string  `json:"department_name,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// --- Interface ---

// UserService maintains the local copy of the identity provider's accounts.
type UserService interface {
	EnsureUser(ctx context.Context, p middleware.Principal) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ResolveSubject(subject string) (string, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	deptRepo repository.DepartmentRepository
}

func NewUserService(userRepo repository.UserRepository, deptRepo repository.DepartmentRepository) UserService {
	return &userService{userRepo: userRepo, deptRepo: deptRepo}
}

// --- Implementation ---

// EnsureUser returns the local record for an identity-provider principal,
// creating it on first sign-in. The role claim is honored only at creation;
// afterwards the local directory (managed by admins) is authoritative.
func (s *userService) EnsureUser(ctx context.Context, p middleware.Principal) (*model.User, error) {
	user, err := s.userRepo.GetBySubject(ctx, p.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	role := p.Role
	if !model.ValidRole(role) {
		role = model.RoleRequester
	}
	username := p.Username
	if username == "" {
		username = p.Email
	}

	user = &model.User{
		Subject:  p.Subject,
		Username: username,
		Email:    p.Email,
		Phone:    p.Phone,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent first sign-in may have won the race; re-read.
		if existing, readErr := s.userRepo.GetBySubject(ctx, p.Subject); readErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return user, nil
}

// ResolveSubject maps an identity-provider subject to the local user id;
// used by the websocket endpoint.
func (s *userService) ResolveSubject(subject string) (string, error) {
	user, err := s.userRepo.GetBySubject(context.Background(), subject)
	if err != nil {
		return "", err
	}
	return user.ID.String(), nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid user id")
	}
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found", err)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	return s.userRepo.ListByRole(ctx, role)
}

// UpdateUser applies admin edits (role, department) and phone changes. Role
// changes invalidate the identity cache so they take effect immediately.
func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid user id")
	}
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found", err)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, apperror.Validation("invalid role", apperror.FieldIssue{Field: "role", Message: "unknown role"})
		}
		user.Role = req.Role
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.DepartmentID != "" {
		deptID, parseErr := uuid.Parse(req.DepartmentID)
		if parseErr != nil {
			return nil, apperror.Validation("invalid department id", apperror.FieldIssue{Field: "department_id", Message: "must be a uuid"})
		}
		if _, deptErr := s.deptRepo.GetByID(ctx, deptID); deptErr != nil {
			return nil, apperror.Validation("department not found", apperror.FieldIssue{Field: "department_id", Message: "unknown department"})
		}
		user.DepartmentID = &deptID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	middleware.ClearIdentityCache(user.Subject)

	resp := toUserResponse(user)
	return &resp, nil
}

// --- Helpers ---

func toUserResponse(user *model.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.DepartmentID != nil {
		s := user.DepartmentID.String()
		resp.DepartmentID = &s
	}
	if user.Department != nil {
		resp.DepartmentName = user.Department.Name
	}
	return resp
}
