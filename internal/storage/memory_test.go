package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tajious/repairdesk/internal/config"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/password"
)

func TestInMemoryStorage_SoftDelete(t *testing.T) {
	store := NewInMemoryStorage()
	ctx := context.Background()

	user := &models.User{Phone: "0900000001", Password: "hash"}
	require.NoError(t, store.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.Equal(t, models.StatusActive, user.Status)

	require.NoError(t, store.DeleteUser(ctx, user.ID))

	_, err := store.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	found, err := store.FindUserByPhone(ctx, "0900000001")
	require.NoError(t, err)
	assert.True(t, found.IsDeleted())

	assert.ErrorIs(t, store.DeleteUser(ctx, user.ID), ErrUserNotFound)
	assert.ErrorIs(t, store.UpdateUserPassword(ctx, user.ID, "x", false), ErrUserNotFound)

	// the phone stays taken, as the unique index would in postgres
	assert.ErrorIs(t, store.CreateUser(ctx, &models.User{Phone: "0900000001"}), ErrDuplicatePhone)
}

func TestInMemoryStorage_ReturnsCopies(t *testing.T) {
	store := NewInMemoryStorage()
	ctx := context.Background()

	user := &models.User{Phone: "0900000002", Password: "hash"}
	require.NoError(t, store.CreateUser(ctx, user))

	loaded, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	loaded.Password = "mutated"

	again, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", again.Password)
}

func TestInMemoryStorage_ListUsers(t *testing.T) {
	store := NewInMemoryStorage()
	ctx := context.Background()

	roleID := "role-tech"
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"An", "Binh", "Chi", "Dung"} {
		u := &models.User{
			Phone:     "09000000" + string(rune('1'+i)) + "0",
			FirstName: name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i%2 == 0 {
			u.RoleID = &roleID
		}
		require.NoError(t, store.CreateUser(ctx, u))
	}

	users, total, err := store.ListUsers(ctx, UserQuery{Page: 1, PageSize: 2, SortBy: "firstname", SortDir: "asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, users, 2)
	assert.Equal(t, "An", users[0].FirstName)
	assert.Equal(t, "Binh", users[1].FirstName)

	users, total, err = store.ListUsers(ctx, UserQuery{Page: 1, PageSize: 10, RoleID: roleID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	// default order is newest first
	assert.Equal(t, "Chi", users[0].FirstName)

	users, _, err = store.ListUsers(ctx, UserQuery{Page: 1, PageSize: 10, Search: "dun"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Dung", users[0].FirstName)

	users, total, err = store.ListUsers(ctx, UserQuery{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Empty(t, users)
}

func TestSeedAdmin(t *testing.T) {
	store := NewInMemoryStorage()
	ctx := context.Background()

	created, err := SeedAdmin(ctx, store, "0984235573", "Admin@123")
	require.NoError(t, err)
	assert.True(t, created)

	user, err := store.FindUserByPhone(ctx, "0984235573")
	require.NoError(t, err)
	assert.True(t, password.Verify(user.Password, "Admin@123"))
	assert.False(t, user.NeedChangePassword)
	require.NotNil(t, user.RoleID)

	role, err := store.GetRole(ctx, *user.RoleID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role.Name)

	created, err = SeedAdmin(ctx, store, "0984235573", "Other@123")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = SeedAdmin(ctx, store, "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(config.DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "repairdesk", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=repairdesk sslmode=disable", dsn)
}
