package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/password"
	"github.com/tajious/repairdesk/internal/session"
	"github.com/tajious/repairdesk/internal/storage"
	"github.com/tajious/repairdesk/internal/tokens"
)

// AuthService owns the session lifecycle: login, refresh rotation, logout,
// password change and profile lookup. Every error it returns is an
// *apperror.Error.
type AuthService struct {
	storage  storage.Storage
	sessions session.Store
	issuer   *tokens.Issuer
	logger   *slog.Logger
}

func NewAuthService(store storage.Storage, sessions session.Store, issuer *tokens.Issuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		storage:  store,
		sessions: sessions,
		issuer:   issuer,
		logger:   logger.With("component", "auth"),
	}
}

func (s *AuthService) Login(ctx context.Context, phone, plain string) (*models.LoginResponse, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || plain == "" {
		return nil, apperror.ErrEmptyCredential
	}

	user, err := s.storage.FindUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, internal("login: find user", err)
	}
	if user.IsDeleted() {
		return nil, apperror.ErrUserNotFound
	}
	if user.Status != models.StatusActive {
		return nil, apperror.ErrUserInactive
	}
	if !password.Verify(user.Password, plain) {
		return nil, apperror.ErrWrongPassword
	}

	roleName, err := s.roleName(ctx, user)
	if err != nil {
		return nil, internal("login: resolve role", err)
	}

	pair, err := s.startSession(ctx, user, roleName)
	if err != nil {
		return nil, internal("login: start session", err)
	}

	if err := s.storage.UpdateUserLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &models.LoginResponse{
		AccessToken:        pair.AccessToken,
		RefreshToken:       pair.RefreshToken,
		ExpiresIn:          pair.ExpiresIn,
		NeedChangePassword: user.NeedChangePassword,
		Role:               roleName,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
	}, nil
}

// Refresh exchanges the user's current refresh token for a new pair. The
// presented token must equal the stored one exactly; on success both tokens
// are replaced, so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, userID, presented string) (*models.TokenPair, error) {
	if userID == "" || presented == "" {
		return nil, apperror.ErrInvalidRefreshToken
	}

	stored, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, internal("refresh: load session", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return nil, apperror.ErrInvalidRefreshToken
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.ErrRecordNotFound
		}
		return nil, internal("refresh: load user", err)
	}
	if user.Status != models.StatusActive {
		s.revoke(ctx, user.ID)
		return nil, apperror.ErrUserInactive
	}

	roleName, err := s.roleName(ctx, user)
	if err != nil {
		return nil, internal("refresh: resolve role", err)
	}

	pair, err := s.startSession(ctx, user, roleName)
	if err != nil {
		return nil, internal("refresh: rotate session", err)
	}
	return pair, nil
}

// Logout drops the user's session. It never fails; a store error is logged
// and reported as Success=false.
func (s *AuthService) Logout(ctx context.Context, userID string) models.LogoutResult {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.logger.Error("logout: delete session", "user_id", userID, "error", err)
		return models.LogoutResult{Success: false}
	}
	return models.LogoutResult{Success: true}
}

// LogoutWithRefresh ends the session identified by a refresh token, for
// clients whose access token has already expired. The session is dropped
// only when the presented token is the stored one; anything else is a no-op.
func (s *AuthService) LogoutWithRefresh(ctx context.Context, userID, presented string) models.LogoutResult {
	if userID == "" || presented == "" {
		return models.LogoutResult{Success: true}
	}

	stored, err := s.sessions.Get(ctx, userID)
	if err != nil {
		s.logger.Error("logout: load session", "user_id", userID, "error", err)
		return models.LogoutResult{Success: false}
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return models.LogoutResult{Success: true}
	}
	return s.Logout(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperror.ErrRecordNotFound
		}
		return internal("change password: load user", err)
	}

	if !password.Verify(user.Password, current) {
		return apperror.ErrWrongPassword
	}
	if password.Verify(user.Password, next) {
		return apperror.ErrSamePassword
	}

	hash, err := password.Hash(next)
	if err != nil {
		return internal("change password: hash", err)
	}
	if err := s.storage.UpdateUserPassword(ctx, user.ID, hash, false); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperror.ErrRecordNotFound
		}
		return internal("change password: update", err)
	}

	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

// GetProfile returns the caller's profile. Administrators are not scoped to
// a department or position, so those lookups are skipped for them.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, internal("profile: load user", err)
	}

	roleName, err := s.roleName(ctx, user)
	if err != nil {
		return nil, internal("profile: resolve role", err)
	}

	profile := &models.Profile{
		ID:                 user.ID,
		Phone:              user.Phone,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Status:             user.Status,
		Role:               roleName,
		NeedChangePassword: user.NeedChangePassword,
		LastLogin:          user.LastLogin,
	}
	if models.IsAdminRole(roleName) {
		return profile, nil
	}

	if user.DepartmentID != nil {
		dept, err := s.storage.GetDepartment(ctx, *user.DepartmentID)
		switch {
		case err == nil:
			profile.Department = dept.Summary()
		case !errors.Is(err, storage.ErrDepartmentNotFound):
			return nil, internal("profile: load department", err)
		}
	}
	if user.PositionID != nil {
		pos, err := s.storage.GetPosition(ctx, *user.PositionID)
		switch {
		case err == nil:
			profile.Position = pos.Summary()
		case !errors.Is(err, storage.ErrPositionNotFound):
			return nil, internal("profile: load position", err)
		}
	}

	return profile, nil
}

// startSession signs a fresh pair and stores the refresh token, replacing
// any earlier session of the same user.
func (s *AuthService) startSession(ctx context.Context, user *models.User, roleName string) (*models.TokenPair, error) {
	claims := models.AccessClaims{
		Phone:     user.Phone,
		Role:      roleName,
		Status:    user.Status,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	claims.Subject = user.ID
	if user.PositionID != nil {
		claims.PositionID = *user.PositionID
	}

	access, err := s.issuer.IssueAccess(claims)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Put(ctx, user.ID, refresh, s.issuer.RefreshTTL()); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.issuer.AccessTTL().Seconds()),
	}, nil
}

// roleName resolves the user's role. A dangling role reference yields "".
func (s *AuthService) roleName(ctx context.Context, user *models.User) (string, error) {
	if user.RoleID == nil || *user.RoleID == "" {
		return "", nil
	}
	role, err := s.storage.GetRole(ctx, *user.RoleID)
	if err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			s.logger.Warn("user references missing role", "user_id", user.ID, "role_id", *user.RoleID)
			return "", nil
		}
		return "", err
	}
	return role.Name, nil
}

func (s *AuthService) revoke(ctx context.Context, userID string) {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.logger.Error("failed to revoke session", "user_id", userID, "error", err)
	}
}

// internal hides an infrastructure failure behind InternalError. The cause
// keeps op for the request log.
func internal(op string, err error) *apperror.Error {
	return apperror.Internal(fmt.Errorf("%s: %w", op, err))
}
