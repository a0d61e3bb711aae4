package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/logger"
	"github.com/tajious/repairdesk/internal/models"
)

func TestFail(t *testing.T) {
	cause := errors.New("dial tcp 10.1.2.3:5432: connection refused")

	tests := []struct {
		name    string
		err     error
		errCode string
		logged  bool
	}{
		{name: "business error", err: apperror.ErrWrongPassword, errCode: "WRONG_PASSWORD"},
		{name: "wrapped internal", err: apperror.Internal(fmt.Errorf("login: find user: %w", cause)), errCode: "INTERNAL_ERROR", logged: true},
		{name: "untyped", err: cause, errCode: "INTERNAL_ERROR", logged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			log := logger.NewWithWriter(&logs, "production")

			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return fail(c, log, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			var env models.Envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.Equal(t, models.ResultError, env.Result)
			assert.Equal(t, tt.errCode, env.ErrCode)
			assert.NotContains(t, env.Reason, "10.1.2.3")

			if tt.logged {
				assert.Equal(t, 1, strings.Count(logs.String(), "10.1.2.3"))
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}
