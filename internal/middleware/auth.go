package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/tokens"
)

const (
	AccessCookie = "access_token"
	principalKey = "user"
	bearerPrefix = "Bearer "
)

type AuthMiddleware struct {
	issuer *tokens.Issuer
}

func NewAuthMiddleware(issuer *tokens.Issuer) *AuthMiddleware {
	return &AuthMiddleware{
		issuer: issuer,
	}
}

// Authenticate accepts the access token from the access_token cookie or an
// Authorization bearer header and stores the caller's Principal.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := presentedTokens(c)
		if len(presented) == 0 {
			return reject(c, fiber.StatusUnauthorized, apperror.ErrUnauthorized)
		}

		principal := m.identify(presented)
		if principal == nil {
			return reject(c, fiber.StatusUnauthorized, apperror.ErrUnauthorized.WithMessage("Invalid or expired token"))
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Identify stores the Principal when a valid access token is presented and
// lets the request through either way.
func (m *AuthMiddleware) Identify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal := m.identify(presentedTokens(c)); principal != nil {
			c.Locals(principalKey, principal)
		}
		return c.Next()
	}
}

// identify returns the Principal of the first token that verifies. A stale
// cookie must not shadow a valid bearer header.
func (m *AuthMiddleware) identify(presented []string) *models.Principal {
	for _, tokenString := range presented {
		claims, err := m.issuer.ParseAccess(tokenString)
		if err != nil {
			continue
		}
		return &models.Principal{
			UserID:     claims.Subject,
			Phone:      claims.Phone,
			Role:       claims.Role,
			Status:     claims.Status,
			PositionID: claims.PositionID,
			FirstName:  claims.FirstName,
			LastName:   claims.LastName,
		}
	}
	return nil
}

func presentedTokens(c *fiber.Ctx) []string {
	var presented []string
	if cookie := c.Cookies(AccessCookie); cookie != "" {
		presented = append(presented, cookie)
	}
	if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, bearerPrefix) {
		if token := strings.TrimSpace(authHeader[len(bearerPrefix):]); token != "" {
			presented = append(presented, token)
		}
	}
	return presented
}

// RequireRole must run after Authenticate. Role names match case-insensitively.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return reject(c, fiber.StatusUnauthorized, apperror.ErrUnauthorized)
		}

		for _, role := range roles {
			if strings.EqualFold(principal.Role, role) {
				return c.Next()
			}
		}

		return reject(c, fiber.StatusForbidden, apperror.ErrForbidden)
	}
}

// PrincipalFrom returns the caller set by Authenticate, or nil.
func PrincipalFrom(c *fiber.Ctx) *models.Principal {
	principal, _ := c.Locals(principalKey).(*models.Principal)
	return principal
}

func reject(c *fiber.Ctx, status int, e *apperror.Error) error {
	return c.Status(status).JSON(models.Envelope{
		ErrCode: e.Code,
		Reason:  e.Message,
		Result:  models.ResultError,
	})
}
