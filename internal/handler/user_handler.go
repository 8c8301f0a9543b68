package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/pkg/rbac"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetProfile returns the caller together with the actions its role allows,
// so clients can hide what the user cannot do.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not found")
	}
	return c.JSON(fiber.Map{
		"user":        user,
		"permissions": rbac.ActionsFor(user.Role),
	})
}
