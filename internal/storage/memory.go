package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tajious/repairdesk/internal/models"
	"gorm.io/gorm"
)

// InMemoryStorage mirrors PostgresStorage semantics, soft delete included.
// Values are copied in and out so callers cannot mutate stored rows.
type InMemoryStorage struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	roles       map[string]*models.Role
	departments map[string]*models.Department
	positions   map[string]*models.Position
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		users:       make(map[string]*models.User),
		roles:       make(map[string]*models.Role),
		departments: make(map[string]*models.Department),
		positions:   make(map[string]*models.Position),
	}
}

func (s *InMemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Phone == user.Phone {
			return ErrDuplicatePhone
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = models.StatusActive
	}

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *InMemoryStorage) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Phone == phone {
			found := *user
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *InMemoryStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists || user.IsDeleted() {
		return nil, ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (s *InMemoryStorage) UpdateUserPassword(ctx context.Context, id, hash string, needChange bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists || user.IsDeleted() {
		return ErrUserNotFound
	}
	user.Password = hash
	user.NeedChangePassword = needChange
	user.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStorage) UpdateUserLastLogin(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists || user.IsDeleted() {
		return ErrUserNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	return nil
}

func (s *InMemoryStorage) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists || user.IsDeleted() {
		return ErrUserNotFound
	}
	user.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (s *InMemoryStorage) ListUsers(ctx context.Context, q UserQuery) ([]models.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(q.Search)
	var matched []models.User
	for _, user := range s.users {
		if user.IsDeleted() {
			continue
		}
		if q.RoleID != "" && (user.RoleID == nil || *user.RoleID != q.RoleID) {
			continue
		}
		if search != "" &&
			!strings.Contains(user.Phone, search) &&
			!strings.Contains(strings.ToLower(user.FirstName), search) &&
			!strings.Contains(strings.ToLower(user.LastName), search) {
			continue
		}
		matched = append(matched, *user)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		less := lessUser(matched[i], matched[j], q.SortBy)
		if q.SortDir == "asc" {
			return less
		}
		return lessUser(matched[j], matched[i], q.SortBy)
	})

	total := int64(len(matched))
	offset := (q.Page - 1) * q.PageSize
	if offset >= len(matched) {
		return []models.User{}, total, nil
	}
	end := offset + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return matched[offset:end], total, nil
}

func lessUser(a, b models.User, sortBy string) bool {
	switch sortBy {
	case "phone":
		return a.Phone < b.Phone
	case "firstname":
		return a.FirstName < b.FirstName
	case "lastname":
		return a.LastName < b.LastName
	case "last_login":
		if a.LastLogin == nil || b.LastLogin == nil {
			return a.LastLogin == nil && b.LastLogin != nil
		}
		return a.LastLogin.Before(*b.LastLogin)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (s *InMemoryStorage) CreateRole(ctx context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	stored := *role
	s.roles[role.ID] = &stored
	return nil
}

func (s *InMemoryStorage) GetRole(ctx context.Context, id string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, exists := s.roles[id]
	if !exists {
		return nil, ErrRoleNotFound
	}
	found := *role
	return &found, nil
}

func (s *InMemoryStorage) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range s.roles {
		if strings.EqualFold(role.Name, name) {
			found := *role
			return &found, nil
		}
	}
	return nil, ErrRoleNotFound
}

func (s *InMemoryStorage) CreateDepartment(ctx context.Context, dept *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	stored := *dept
	s.departments[dept.ID] = &stored
	return nil
}

func (s *InMemoryStorage) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dept, exists := s.departments[id]
	if !exists {
		return nil, ErrDepartmentNotFound
	}
	found := *dept
	return &found, nil
}

func (s *InMemoryStorage) CreatePosition(ctx context.Context, pos *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos.ID == "" {
		pos.ID = uuid.NewString()
	}
	stored := *pos
	s.positions[pos.ID] = &stored
	return nil
}

func (s *InMemoryStorage) GetPosition(ctx context.Context, id string) (*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, exists := s.positions[id]
	if !exists {
		return nil, ErrPositionNotFound
	}
	found := *pos
	return &found, nil
}
