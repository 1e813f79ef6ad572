package handlers

import (
	"flavorpal-backend/domain"
	"flavorpal-backend/internal/api/presenters"
	"flavorpal-backend/pkg/user"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		GetHealthFlags(c *fiber.Ctx) error
		UpdateHealthFlags(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
	}
}

func (h *userHandler) GetHealthFlags(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	flags, err := h.userService.GetHealthFlags(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedGetHealthFlags, err)
	}

	return presenters.SuccessResponse(c, domain.HealthFlagsResponse{Flags: flags}, fiber.StatusOK, domain.MessageSuccessGetHealthFlags)
}

func (h *userHandler) UpdateHealthFlags(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateHealthFlagsRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateHealthFlags, err)
	}

	res, err := h.userService.UpdateHealthFlags(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedUpdateHealthFlags, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateHealthFlags)
}
