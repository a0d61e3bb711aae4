package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/middleware"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/service"
	"github.com/tajious/repairdesk/internal/tokens"
	"github.com/tajious/repairdesk/internal/validation"
)

const (
	RefreshCookie     = "refresh_token"
	RefreshCookiePath = "/api/v1/auth"
)

// CookieConfig controls how session cookies are written. Lifetimes are the
// parsed token TTLs so a cookie never outlives the token it carries.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	auth    *service.AuthService
	cookies CookieConfig
	logger  *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, cookies CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
		logger:  logger.With("component", "auth_handler"),
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger)
	}

	result, err := h.auth.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		return fail(c, h.logger, err)
	}

	h.setSessionCookies(c, result.AccessToken, result.RefreshToken)

	// Tokens travel in cookies only.
	result.AccessToken = ""
	result.RefreshToken = ""
	return ok(c, result)
}

// Refresh takes the refresh token from its cookie or the JSON body. The
// subject is read without verification only to find the session; the
// stored token decides validity.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	presented := c.Cookies(RefreshCookie)
	if presented == "" {
		var req models.RefreshRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badBody(c, h.logger)
			}
		}
		presented = req.RefreshToken
	}
	if presented == "" {
		return fail(c, h.logger, apperror.ErrInvalidRefreshToken)
	}

	userID, err := tokens.SubjectOf(presented)
	if err != nil {
		h.clearSessionCookies(c)
		return fail(c, h.logger, apperror.ErrInvalidRefreshToken)
	}

	pair, err := h.auth.Refresh(c.UserContext(), userID, presented)
	if err != nil {
		if !errors.Is(err, apperror.ErrInternal) {
			h.clearSessionCookies(c)
		}
		return fail(c, h.logger, err)
	}

	h.setSessionCookies(c, pair.AccessToken, pair.RefreshToken)
	return ok(c, pair)
}

// Logout always succeeds. Without a valid access token it falls back to the
// refresh cookie, whose session is dropped only if it is still current.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if principal := middleware.PrincipalFrom(c); principal != nil {
		h.auth.Logout(c.UserContext(), principal.UserID)
	} else if presented := c.Cookies(RefreshCookie); presented != "" {
		if userID, err := tokens.SubjectOf(presented); err == nil {
			h.auth.LogoutWithRefresh(c.UserContext(), userID, presented)
		}
	}

	h.clearSessionCookies(c)
	return ok(c, models.LogoutResult{Success: true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		return fail(c, h.logger, apperror.ErrUnauthorized)
	}

	profile, err := h.auth.GetProfile(c.UserContext(), principal.UserID)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, profile)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		return fail(c, h.logger, apperror.ErrUnauthorized)
	}

	var req models.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return invalid(c, h.logger, err)
	}

	if err := h.auth.ChangePassword(c.UserContext(), principal.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, nil)
}

func (h *AuthHandler) setSessionCookies(c *fiber.Ctx, access, refresh string) {
	c.Cookie(h.cookie(middleware.AccessCookie, access, "/", h.cookies.AccessTTL))
	c.Cookie(h.cookie(RefreshCookie, refresh, RefreshCookiePath, h.cookies.RefreshTTL))
}

func (h *AuthHandler) clearSessionCookies(c *fiber.Ctx) {
	for _, ck := range []*fiber.Cookie{
		h.cookie(middleware.AccessCookie, "", "/", 0),
		h.cookie(RefreshCookie, "", RefreshCookiePath, 0),
	} {
		ck.Expires = time.Unix(0, 0)
		c.Cookie(ck)
	}
}

// SameSite=None forces Secure in fasthttp, so plain-HTTP development falls
// back to Lax.
func (h *AuthHandler) cookie(name, value, path string, ttl time.Duration) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteNoneMode
	if !h.cookies.Secure {
		sameSite = fiber.CookieSameSiteLaxMode
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl / time.Second),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: sameSite,
	}
}
