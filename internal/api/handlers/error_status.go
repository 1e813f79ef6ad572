package handlers

import (
	"context"
	"errors"
	"flavorpal-backend/domain"
	"github.com/gofiber/fiber/v2"
)

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrParseUUID),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrInvalidProductID),
		errors.Is(err, domain.ErrInvalidBarcode):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrCatalogNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrProductNotRegistered),
		errors.Is(err, domain.ErrNoSimilarProduct):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrModelRefusal):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, domain.ErrTransport),
		errors.Is(err, domain.ErrSchema):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// errorMessage prefers the model's own explanation for refusals.
func errorMessage(err error, fallback string) string {
	var refusal *domain.ModelRefusalError
	if errors.As(err, &refusal) && refusal.Reason != "" {
		return refusal.Reason
	}
	return fallback
}
