package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusDeleted  UserStatus = "deleted"
)

const RoleAdmin = "admin"

// IsAdminRole reports whether a role name grants administrator scope.
func IsAdminRole(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), RoleAdmin)
}

type User struct {
	ID                 string         `json:"id" gorm:"primaryKey"`
	Phone              string         `json:"phone" gorm:"not null;uniqueIndex"`
	Password           string         `json:"-" gorm:"not null"` // Hashed password
	FirstName          string         `json:"firstname"`
	LastName           string         `json:"lastname"`
	Status             UserStatus     `json:"status" gorm:"not null;default:active"`
	RoleID             *string        `json:"roleId,omitempty" gorm:"index"`
	DepartmentID       *string        `json:"departmentId,omitempty" gorm:"index"`
	PositionID         *string        `json:"positionId,omitempty" gorm:"index"`
	NeedChangePassword bool           `json:"needChangePassword" gorm:"not null;default:false"`
	LastLogin          *time.Time     `json:"lastLogin,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsDeleted reports whether the row has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt.Valid
}

// AccessClaims is the payload of an access token. It carries enough identity
// for authorization checks without a database round trip.
type AccessClaims struct {
	Phone      string     `json:"phone"`
	Role       string     `json:"role"`
	Status     UserStatus `json:"status"`
	PositionID string     `json:"positionId,omitempty"`
	FirstName  string     `json:"firstname"`
	LastName   string     `json:"lastname"`
	jwt.RegisteredClaims
}

// RefreshClaims only identifies the subject; its authority comes from the
// session store.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Principal is the authenticated caller, built once by the auth guard.
type Principal struct {
	UserID     string
	Phone      string
	Role       string
	Status     UserStatus
	PositionID string
	FirstName  string
	LastName   string
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken        string `json:"accessToken,omitempty"`
	RefreshToken       string `json:"refreshToken,omitempty"`
	ExpiresIn          int64  `json:"expiresIn"`
	NeedChangePassword bool   `json:"needChangePassword"`
	Role               string `json:"role"`
	FirstName          string `json:"firstname"`
	LastName           string `json:"lastname"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type LogoutResult struct {
	Success bool `json:"success"`
}

// Profile is the denormalized view returned by the "me" endpoint.
// Department and Position stay nil for administrators.
type Profile struct {
	ID                 string      `json:"id"`
	Phone              string      `json:"phone"`
	FirstName          string      `json:"firstname"`
	LastName           string      `json:"lastname"`
	Status             UserStatus  `json:"status"`
	Role               string      `json:"role,omitempty"`
	NeedChangePassword bool        `json:"needChangePassword"`
	LastLogin          *time.Time  `json:"lastLogin,omitempty"`
	Department         *RefSummary `json:"department,omitempty"`
	Position           *RefSummary `json:"position,omitempty"`
}

type RefSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
