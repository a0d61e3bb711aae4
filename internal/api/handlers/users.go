package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/middleware"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/service"
	"github.com/tajious/repairdesk/internal/storage"
	"github.com/tajious/repairdesk/internal/validation"
)

type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With("component", "user_handler"),
	}
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return invalid(c, h.logger, err)
	}

	user, err := h.users.CreateUser(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, user)
}

// ListUsers handles listing users with pagination, search, filtering, and sorting
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	var req models.ListUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return fail(c, h.logger, apperror.ErrValidation.WithMessage("Invalid query parameters"))
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	if req.SortDir == "" {
		req.SortDir = "desc"
	}

	if err := validation.ValidateStruct(req); err != nil {
		return invalid(c, h.logger, err)
	}

	result, err := h.users.ListUsers(c.UserContext(), storage.UserQuery{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		RoleID:   req.RoleID,
		SortBy:   req.SortBy,
		SortDir:  req.SortDir,
	})
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, result)
}

func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return invalid(c, h.logger, err)
	}

	if err := h.users.ResetPassword(c.UserContext(), c.Params("id"), req.NewPassword); err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, nil)
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if principal := middleware.PrincipalFrom(c); principal != nil && principal.UserID == id {
		return fail(c, h.logger, apperror.ErrForbidden.WithMessage("You cannot delete your own account"))
	}

	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, nil)
}
