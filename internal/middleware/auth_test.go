package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/tokens"
)

func newGuardedApp(issuer *tokens.Issuer, roles ...string) *fiber.App {
	m := NewAuthMiddleware(issuer)
	app := fiber.New()

	handlers := []fiber.Handler{m.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(PrincipalFrom(c))
	})

	app.Get("/", handlers...)
	return app
}

func accessToken(t *testing.T, issuer *tokens.Issuer, subject, role string) string {
	t.Helper()
	claims := models.AccessClaims{Phone: "0912345678", Role: role, Status: models.StatusActive}
	claims.Subject = subject
	token, err := issuer.IssueAccess(claims)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	issuer := tokens.NewIssuer("access-secret", time.Hour, "refresh-secret", 24*time.Hour)
	foreign := tokens.NewIssuer("other-secret", time.Hour, "refresh-secret", 24*time.Hour)
	app := newGuardedApp(issuer)

	valid := accessToken(t, issuer, "user-1", "technician")
	refresh, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "bearer", header: "Bearer " + valid, wantStatus: fiber.StatusOK},
		{name: "cookie", cookie: valid, wantStatus: fiber.StatusOK},
		{name: "cookie wins over bad header", cookie: valid, header: "Bearer junk", wantStatus: fiber.StatusOK},
		{name: "stale cookie falls back to bearer", cookie: refresh, header: "Bearer " + valid, wantStatus: fiber.StatusOK},
		{name: "stale cookie without bearer", cookie: refresh, wantStatus: fiber.StatusUnauthorized},
		{name: "missing", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: fiber.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + refresh, wantStatus: fiber.StatusUnauthorized},
		{name: "foreign secret", header: "Bearer " + accessToken(t, foreign, "user-1", "admin"), wantStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus != fiber.StatusOK {
				var env models.Envelope
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
				assert.Equal(t, "UNAUTHORIZED", env.ErrCode)
				assert.Equal(t, models.ResultError, env.Result)
				return
			}

			var principal models.Principal
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&principal))
			assert.Equal(t, "user-1", principal.UserID)
			assert.Equal(t, "technician", principal.Role)
		})
	}
}

func TestRequireRole(t *testing.T) {
	issuer := tokens.NewIssuer("access-secret", time.Hour, "refresh-secret", 24*time.Hour)
	app := newGuardedApp(issuer, models.RoleAdmin)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "admin", role: "admin", wantStatus: fiber.StatusOK},
		{name: "case-insensitive", role: "Admin", wantStatus: fiber.StatusOK},
		{name: "technician", role: "technician", wantStatus: fiber.StatusForbidden},
		{name: "no role", role: "", wantStatus: fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+accessToken(t, issuer, "user-1", tt.role))

			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestIdentify(t *testing.T) {
	issuer := tokens.NewIssuer("access-secret", time.Hour, "refresh-secret", 24*time.Hour)
	m := NewAuthMiddleware(issuer)
	app := fiber.New()
	app.Get("/", m.Identify(), func(c *fiber.Ctx) error {
		if principal := PrincipalFrom(c); principal != nil {
			return c.SendString(principal.UserID)
		}
		return c.SendString("anonymous")
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid", header: "Bearer " + accessToken(t, issuer, "user-1", "technician"), want: "user-1"},
		{name: "invalid", header: "Bearer junk", want: "anonymous"},
		{name: "missing", want: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
