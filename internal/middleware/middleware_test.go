package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/pkg/rbac"
	"github.com/guudweb/judicial-backend/internal/service/audit"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func decodeError(t *testing.T, app *fiber.App, path string) (int, ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/not-found", func(c *fiber.Ctx) error { return domain.NotFound("case file not found") })
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return fmt.Errorf("approve: %w", domain.InvalidState("case file 2026-00001 is not pending approval"))
	})
	app.Get("/validation", func(c *fiber.Ctx) error { return domain.ValidationFailed("comments are required") })
	app.Get("/conflict", func(c *fiber.Ctx) error { return domain.Conflict("modified by another request") })
	app.Get("/forbidden", func(c *fiber.Ctx) error { return domain.Forbidden("nope") })
	app.Get("/bad", func(c *fiber.Ctx) error { return BadRequest("Invalid id") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("pq: connection refused") })

	tests := []struct {
		path    string
		status  int
		code    string
		message string
	}{
		{"/not-found", fiber.StatusNotFound, "NOT_FOUND", "case file not found"},
		{"/invalid", fiber.StatusConflict, "INVALID_STATE", "case file 2026-00001 is not pending approval"},
		{"/validation", fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "comments are required"},
		{"/conflict", fiber.StatusConflict, "CONFLICT", "modified by another request"},
		{"/forbidden", fiber.StatusForbidden, "FORBIDDEN", "nope"},
		{"/bad", fiber.StatusBadRequest, "BAD_REQUEST", "Invalid id"},
		{"/boom", fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := decodeError(t, app, tt.path)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.Len(t, body.TraceID, 8)
		})
	}
}

func TestRequestInfo(t *testing.T) {
	app := newApp()
	app.Use(RequestInfo())

	var meta domain.RequestMeta
	app.Get("/", func(c *fiber.Ctx) error {
		meta, _ = audit.RequestMetaFrom(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	req.Header.Set(fiber.HeaderUserAgent, "Mozilla/5.0")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", meta.IPAddress)
	assert.Equal(t, "Mozilla/5.0", meta.UserAgent)

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.4")
	req.Header.Set(fiber.HeaderXForwardedFor, "203.0.113.9")
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.4", meta.IPAddress)
}

func TestRequirePermission(t *testing.T) {
	withRole := func(role domain.Role) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals(UserContextKey, &domain.User{ID: uuid.New(), Role: role, IsActive: true})
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	app := newApp()
	app.Get("/judge", withRole(domain.RoleJudge), RequirePermission(rbac.CaseFilesCreate), ok)
	app.Get("/press", withRole(domain.RolePressTechnician), RequirePermission(rbac.CaseFilesCreate), ok)
	app.Get("/anon", RequirePermission(rbac.CaseFilesCreate), ok)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/judge", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	status, body := decodeError(t, app, "/press")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Code)

	status, _ = decodeError(t, app, "/anon")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
