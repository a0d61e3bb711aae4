package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/password"
	"github.com/tajious/repairdesk/internal/session"
	"github.com/tajious/repairdesk/internal/storage"
)

// UserService covers the administrator side of the account lifecycle.
type UserService struct {
	storage  storage.Storage
	sessions session.Store
	logger   *slog.Logger
}

func NewUserService(store storage.Storage, sessions session.Store, logger *slog.Logger) *UserService {
	return &UserService{
		storage:  store,
		sessions: sessions,
		logger:   logger.With("component", "users"),
	}
}

// CreateUser registers an account that must change its password on first
// login.
func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	phone := strings.TrimSpace(req.Phone)

	_, err := s.storage.FindUserByPhone(ctx, phone)
	if err == nil {
		return nil, apperror.ErrDuplicate.WithMessage("Phone number is already registered")
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, internal("create user: find by phone", err)
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, internal("create user: hash", err)
	}

	user := &models.User{
		Phone:              phone,
		Password:           hash,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Status:             models.StatusActive,
		RoleID:             req.RoleID,
		DepartmentID:       req.DepartmentID,
		PositionID:         req.PositionID,
		NeedChangePassword: true,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicatePhone) {
			return nil, apperror.ErrDuplicate.WithMessage("Phone number is already registered")
		}
		return nil, internal("create user: insert", err)
	}

	s.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

func (s *UserService) checkReferences(ctx context.Context, req models.CreateUserRequest) error {
	if req.RoleID != nil {
		if _, err := s.storage.GetRole(ctx, *req.RoleID); err != nil {
			if errors.Is(err, storage.ErrRoleNotFound) {
				return apperror.ErrRecordNotFound.WithMessage("Role not found")
			}
			return internal("create user: role", err)
		}
	}
	if req.DepartmentID != nil {
		if _, err := s.storage.GetDepartment(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, storage.ErrDepartmentNotFound) {
				return apperror.ErrRecordNotFound.WithMessage("Department not found")
			}
			return internal("create user: department", err)
		}
	}
	if req.PositionID != nil {
		if _, err := s.storage.GetPosition(ctx, *req.PositionID); err != nil {
			if errors.Is(err, storage.ErrPositionNotFound) {
				return apperror.ErrRecordNotFound.WithMessage("Position not found")
			}
			return internal("create user: position", err)
		}
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, q storage.UserQuery) (*models.ListUsersResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}

	users, total, err := s.storage.ListUsers(ctx, q)
	if err != nil {
		return nil, internal("list users", err)
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		totalPages++
	}

	return &models.ListUsersResponse{
		Users:      users,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ResetPassword sets a new password chosen by an administrator, forces the
// user to change it, and ends the user's current session.
func (s *UserService) ResetPassword(ctx context.Context, userID, plain string) error {
	hash, err := password.Hash(plain)
	if err != nil {
		return internal("reset password: hash", err)
	}
	if err := s.storage.UpdateUserPassword(ctx, userID, hash, true); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperror.ErrRecordNotFound
		}
		return internal("reset password: update", err)
	}

	s.revoke(ctx, userID)
	s.logger.Info("password reset", "user_id", userID)
	return nil
}

// DeleteUser soft-deletes the account and ends its session.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.storage.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperror.ErrRecordNotFound
		}
		return internal("delete user", err)
	}

	s.revoke(ctx, userID)
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

func (s *UserService) revoke(ctx context.Context, userID string) {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.logger.Error("failed to revoke session", "user_id", userID, "error", err)
	}
}
