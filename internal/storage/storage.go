package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tajious/repairdesk/internal/config"
	"github.com/tajious/repairdesk/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrPositionNotFound   = errors.New("position not found")
	ErrDuplicatePhone     = errors.New("phone already registered")
)

// UserQuery drives ListUsers. Page and PageSize are 1-based and positive.
type UserQuery struct {
	Page     int
	PageSize int
	Search   string
	RoleID   string
	SortBy   string
	SortDir  string
}

type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	// FindUserByPhone includes soft-deleted rows so callers can tell a
	// removed account from one that never existed.
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id, hash string, needChange bool) error
	UpdateUserLastLogin(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, q UserQuery) ([]models.User, int64, error)

	CreateRole(ctx context.Context, role *models.Role) error
	GetRole(ctx context.Context, id string) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	CreateDepartment(ctx context.Context, dept *models.Department) error
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
	CreatePosition(ctx context.Context, pos *models.Position) error
	GetPosition(ctx context.Context, id string) (*models.Position, error)
}

var sortColumns = map[string]string{
	"phone":      "phone",
	"firstname":  "first_name",
	"lastname":   "last_name",
	"created_at": "created_at",
	"last_login": "last_login",
}

func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}
