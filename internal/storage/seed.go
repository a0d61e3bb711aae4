package storage

import (
	"context"
	"errors"

	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/password"
)

// SeedAdmin makes sure the admin role exists and, when phone is unused,
// creates an active admin account with the given password. It reports
// whether a user was created.
func SeedAdmin(ctx context.Context, store Storage, phone, plain string) (bool, error) {
	if phone == "" || plain == "" {
		return false, nil
	}

	role, err := store.GetRoleByName(ctx, models.RoleAdmin)
	if errors.Is(err, ErrRoleNotFound) {
		role = &models.Role{Name: models.RoleAdmin}
		err = store.CreateRole(ctx, role)
	}
	if err != nil {
		return false, err
	}

	if _, err := store.FindUserByPhone(ctx, phone); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return false, err
	}

	roleID := role.ID
	admin := &models.User{
		Phone:     phone,
		Password:  hash,
		FirstName: "System",
		LastName:  "Administrator",
		Status:    models.StatusActive,
		RoleID:    &roleID,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
