package handlers

import (
	"flavorpal-backend/domain"
	"flavorpal-backend/internal/api/presenters"
	"flavorpal-backend/pkg/product"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"strconv"
)

type (
	ProductHandler interface {
		RegisterByBarcode(c *fiber.Ctx) error
		RegisterByPhoto(c *fiber.Ctx) error
		SearchByPhoto(c *fiber.Ctx) error
		GetProducts(c *fiber.Ctx) error
		GetProductDetails(c *fiber.Ctx) error
		AttachHealthSuggestion(c *fiber.Ctx) error
		ReviewProduct(c *fiber.Ctx) error
		RemoveFromHistory(c *fiber.Ctx) error
	}

	productHandler struct {
		productService product.ProductService
		validator      *validator.Validate
	}
)

func NewProductHandler(productService product.ProductService, validator *validator.Validate) ProductHandler {
	return &productHandler{
		productService: productService,
		validator:      validator,
	}
}

func (h *productHandler) RegisterByBarcode(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.RegisterBarcodeRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegisterProduct, err)
	}

	res, existed, err := h.productService.RegisterByBarcode(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), errorMessage(err, domain.MessageFailedRegisterProduct), err)
	}

	if existed {
		return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessProductExists)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegisterProduct)
}

func (h *productHandler) RegisterByPhoto(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.RegisterPhotoRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegisterProduct, domain.ErrInvalidImage)
	}

	res, err := h.productService.RegisterByPhoto(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), errorMessage(err, domain.MessageFailedRegisterProduct), err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegisterProduct)
}

func (h *productHandler) SearchByPhoto(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SearchPhotoRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSearchProduct, domain.ErrInvalidImage)
	}

	res, err := h.productService.SearchByPhoto(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), errorMessage(err, domain.MessageFailedSearchProduct), err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSearchProduct)
}

func (h *productHandler) GetProducts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	items, count, err := h.productService.GetProducts(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedGetProducts, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items": items,
		"pagination": domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      count,
			TotalPages: (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetProducts)
}

func (h *productHandler) GetProductDetails(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	productID, err := parseProductID(c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetProduct, err)
	}

	res, err := h.productService.GetProductByID(c.Context(), productID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedGetProduct, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProduct)
}

func (h *productHandler) AttachHealthSuggestion(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.HealthSuggestionRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if id := c.Params("id"); id != "" {
		productID, err := parseProductID(id)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedHealthSuggestion, err)
		}
		req.ProductID = productID
	}
	if req.ProductID == 0 {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedHealthSuggestion, domain.ErrInvalidProductID)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedHealthSuggestion, domain.ErrInvalidImage)
	}

	res, err := h.productService.AttachHealthSuggestion(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), errorMessage(err, domain.MessageFailedHealthSuggestion), err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessHealthSuggestion)
}

func (h *productHandler) ReviewProduct(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ReviewProductRequest)

	productID, err := parseProductID(c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedReviewProduct, err)
	}

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedReviewProduct, err)
	}

	res, err := h.productService.ReviewProduct(c.Context(), productID, *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedReviewProduct, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessReviewProduct)
}

func (h *productHandler) RemoveFromHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	productID, err := parseProductID(c.Params("productId"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRemoveFromHistory, err)
	}

	if err := h.productService.RemoveFromHistory(c.Context(), productID, userID); err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedRemoveFromHistory, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessRemoveFromHistory)
}

func parseProductID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidProductID
	}
	return uint(id), nil
}
