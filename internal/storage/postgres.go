package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tajious/repairdesk/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresStorage struct {
	db *gorm.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Role{}, &models.Department{}, &models.Position{}, &models.User{}); err != nil {
		return nil, err
	}

	return &PostgresStorage{db: db}, nil
}

// Ping checks the underlying connection pool.
func (s *PostgresStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStorage) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePhone
		}
		return err
	}
	return nil
}

func (s *PostgresStorage) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Unscoped().First(&user, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStorage) UpdateUserPassword(ctx context.Context, id, hash string, needChange bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password":             hash,
		"need_change_password": needChange,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStorage) UpdateUserLastLogin(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", time.Now()).Error
}

func (s *PostgresStorage) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStorage) ListUsers(ctx context.Context, q UserQuery) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	if q.Search != "" {
		searchPattern := "%" + q.Search + "%"
		query = query.Where("phone LIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", searchPattern, searchPattern, searchPattern)
	}
	if q.RoleID != "" {
		query = query.Where("role_id = ?", q.RoleID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField, ok := sortColumns[q.SortBy]
	if !ok {
		sortField = "created_at"
	}
	sortDir := "desc"
	if q.SortDir == "asc" {
		sortDir = "asc"
	}

	var users []models.User
	offset := (q.Page - 1) * q.PageSize
	if err := query.Order(sortField + " " + sortDir).Offset(offset).Limit(q.PageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (s *PostgresStorage) CreateRole(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(role).Error
}

func (s *PostgresStorage) GetRole(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *PostgresStorage) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *PostgresStorage) CreateDepartment(ctx context.Context, dept *models.Department) error {
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(dept).Error
}

func (s *PostgresStorage) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	var dept models.Department
	if err := s.db.WithContext(ctx).First(&dept, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (s *PostgresStorage) CreatePosition(ctx context.Context, pos *models.Position) error {
	if pos.ID == "" {
		pos.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(pos).Error
}

func (s *PostgresStorage) GetPosition(ctx context.Context, id string) (*models.Position, error) {
	var pos models.Position
	if err := s.db.WithContext(ctx).First(&pos, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return &pos, nil
}
