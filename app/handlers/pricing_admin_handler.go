package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/motofleet/backoffice/app/dto"
	businessflow "github.com/motofleet/backoffice/business_flow"
	"github.com/motofleet/backoffice/utils"
)

// PricingAdminHandlerInterface defines the contract for pricing administration handlers
type PricingAdminHandlerInterface interface {
	ListMarkupRules(c fiber.Ctx) error
	SaveMarkupRule(c fiber.Ctx) error
	ListDiscountRules(c fiber.Ctx) error
	SaveDiscountRule(c fiber.Ctx) error
	GetExchangeRate(c fiber.Ctx) error
	SetExchangeRate(c fiber.Ctx) error
}

// PricingAdminHandler handles pricing rule and exchange rate administration
type PricingAdminHandler struct {
	adminFlow businessflow.AdminPricingFlow
	validator *validator.Validate
}

// NewPricingAdminHandler creates a new pricing admin handler
func NewPricingAdminHandler(adminFlow businessflow.AdminPricingFlow) *PricingAdminHandler {
	return &PricingAdminHandler{
		adminFlow: adminFlow,
		validator: validator.New(),
	}
}

func (h *PricingAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PricingAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListMarkupRules returns the markup rule table
// @Summary List Markup Rules
// @Description List every markup rule in resolver evaluation order
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListMarkupRulesResponse} "Markup rules"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/markup-rules [get]
func (h *PricingAdminHandler) ListMarkupRules(c fiber.Ctx) error {
	result, err := h.adminFlow.ListMarkupRules(h.createRequestContext(c, "/api/v1/admin/markup-rules"))
	if err != nil {
		log.Println("Markup rule listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Markup rule listing failed", "RULE_LISTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Markup rules retrieved successfully", result)
}

// SaveMarkupRule creates or updates a markup rule
// @Summary Save Markup Rule
// @Description Create a markup rule, or update an existing one when an ID is given
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.SaveMarkupRuleRequest true "Rule data"
// @Success 200 {object} dto.APIResponse{data=dto.SaveRuleResponse} "Rule saved"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Rule not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/markup-rules [post]
func (h *PricingAdminHandler) SaveMarkupRule(c fiber.Ctx) error {
	var req dto.SaveMarkupRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.Actor = requestActor(c)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.adminFlow.SaveMarkupRule(h.createRequestContext(c, "/api/v1/admin/markup-rules"), &req, metadata)
	if err != nil {
		if businessflow.IsMarkupRuleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Markup rule not found", "MARKUP_RULE_NOT_FOUND", nil)
		}
		var bizErr *businessflow.BusinessError
		if errors.As(err, &bizErr) && bizErr.Code != "RULE_SAVE_FAILED" && bizErr.Code != "RULE_LOOKUP_FAILED" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, bizErr.Message, bizErr.Code, nil)
		}

		log.Println("Markup rule save failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Markup rule save failed", "RULE_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Markup rule saved successfully", result)
}

// ListDiscountRules returns the discount rule table
// @Summary List Discount Rules
// @Description List every discount rule in priority order
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListDiscountRulesResponse} "Discount rules"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/discount-rules [get]
func (h *PricingAdminHandler) ListDiscountRules(c fiber.Ctx) error {
	result, err := h.adminFlow.ListDiscountRules(h.createRequestContext(c, "/api/v1/admin/discount-rules"))
	if err != nil {
		log.Println("Discount rule listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Discount rule listing failed", "RULE_LISTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Discount rules retrieved successfully", result)
}

// SaveDiscountRule creates or updates a discount rule
// @Summary Save Discount Rule
// @Description Create a discount rule, or update an existing one when an ID is given
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.SaveDiscountRuleRequest true "Rule data"
// @Success 200 {object} dto.APIResponse{data=dto.SaveRuleResponse} "Rule saved"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Rule not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/discount-rules [post]
func (h *PricingAdminHandler) SaveDiscountRule(c fiber.Ctx) error {
	var req dto.SaveDiscountRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.Actor = requestActor(c)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.adminFlow.SaveDiscountRule(h.createRequestContext(c, "/api/v1/admin/discount-rules"), &req, metadata)
	if err != nil {
		if businessflow.IsDiscountRuleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Discount rule not found", "DISCOUNT_RULE_NOT_FOUND", nil)
		}
		var bizErr *businessflow.BusinessError
		if errors.As(err, &bizErr) && bizErr.Code != "RULE_SAVE_FAILED" && bizErr.Code != "RULE_LOOKUP_FAILED" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, bizErr.Message, bizErr.Code, nil)
		}

		log.Println("Discount rule save failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Discount rule save failed", "RULE_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Discount rule saved successfully", result)
}

// GetExchangeRate returns the reference rate in effect
// @Summary Get Exchange Rate
// @Description Get the current reference USD to ARS rate and its staleness
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.GetExchangeRateResponse} "Current rate"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/exchange-rate [get]
func (h *PricingAdminHandler) GetExchangeRate(c fiber.Ctx) error {
	result, err := h.adminFlow.GetExchangeRate(h.createRequestContext(c, "/api/v1/admin/exchange-rate"))
	if err != nil {
		log.Println("Exchange rate lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Exchange rate lookup failed", "RATE_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Exchange rate retrieved successfully", result)
}

// SetExchangeRate appends a new reference rate
// @Summary Set Exchange Rate
// @Description Persist a new reference USD to ARS rate
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.SetExchangeRateRequest true "Rate data"
// @Success 200 {object} dto.APIResponse{data=dto.SetExchangeRateResponse} "Rate saved"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/exchange-rate [post]
func (h *PricingAdminHandler) SetExchangeRate(c fiber.Ctx) error {
	var req dto.SetExchangeRateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.Actor = requestActor(c)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.adminFlow.SetExchangeRate(h.createRequestContext(c, "/api/v1/admin/exchange-rate"), &req, metadata)
	if err != nil {
		if businessflow.IsExchangeRateNotPositive(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Exchange rate must be positive", "EXCHANGE_RATE_NOT_POSITIVE", nil)
		}

		log.Println("Exchange rate save failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Exchange rate save failed", "RATE_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Exchange rate saved successfully", result)
}

func (h *PricingAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PricingAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
