package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/motofleet/backoffice/app/dto"
	businessflow "github.com/motofleet/backoffice/business_flow"
	"github.com/motofleet/backoffice/utils"
)

// RentalHandlerInterface defines the contract for rental pricing handlers
type RentalHandlerInterface interface {
	ComputeModelPrices(c fiber.Ctx) error
	SimulateRental(c fiber.Ctx) error
	OverrideModelPrice(c fiber.Ctx) error
}

// RentalHandler handles rental pricing HTTP requests
type RentalHandler struct {
	rentalFlow businessflow.RentalFlow
	validator  *validator.Validate
}

// NewRentalHandler creates a new rental handler
func NewRentalHandler(rentalFlow businessflow.RentalFlow) *RentalHandler {
	return &RentalHandler{
		rentalFlow: rentalFlow,
		validator:  validator.New(),
	}
}

func (h *RentalHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RentalHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ComputeModelPrices recomputes the plan quotes for a vehicle model
// @Summary Compute Model Prices
// @Description Recompute the rental plan quotes for a vehicle model from its landed cost
// @Tags Rental
// @Accept json
// @Produce json
// @Param uuid path string true "Vehicle model UUID"
// @Param request body dto.ComputeModelPricesRequest false "Optional target margin override"
// @Success 200 {object} dto.APIResponse{data=dto.ComputeModelPricesResponse} "Computed quotes"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Vehicle model not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rental/models/{uuid}/compute [post]
func (h *RentalHandler) ComputeModelPrices(c fiber.Ctx) error {
	modelUUID := c.Params("uuid")
	if modelUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Vehicle model UUID is required", "MISSING_MODEL_UUID", nil)
	}

	var req dto.ComputeModelPricesRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}
	req.ModelUUID = modelUUID

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.rentalFlow.ComputeModelPrices(h.createRequestContext(c, "/api/v1/rental/models/"+modelUUID+"/compute"), &req, metadata)
	if err != nil {
		if businessflow.IsVehicleModelNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Vehicle model not found", "MODEL_NOT_FOUND", nil)
		}
		if businessflow.IsNoActivePlans(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "No active rental plans", "NO_ACTIVE_PLANS", nil)
		}

		log.Println("Model price computation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Model price computation failed", "MODEL_PRICE_COMPUTATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Model prices computed successfully", result)
}

// SimulateRental computes a rental quote from explicit inputs
// @Summary Simulate Rental Quote
// @Description Compute a rental quote from explicit cost and plan parameters without persisting anything
// @Tags Rental
// @Accept json
// @Produce json
// @Param request body dto.SimulateRentalRequest true "Simulation parameters"
// @Success 200 {object} dto.APIResponse{data=dto.SimulateRentalResponse} "Simulated quote"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rental/simulate [post]
func (h *RentalHandler) SimulateRental(c fiber.Ctx) error {
	var req dto.SimulateRentalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.rentalFlow.SimulateRental(h.createRequestContext(c, "/api/v1/rental/simulate"), &req)
	if err != nil {
		log.Println("Rental simulation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rental simulation failed", "RENTAL_SIMULATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rental quote simulated successfully", result)
}

// OverrideModelPrice sets or clears a manual price for a (model, plan) pair
// @Summary Override Model Price
// @Description Set or clear the manual monthly price for a vehicle model and rental plan
// @Tags Rental
// @Accept json
// @Produce json
// @Param uuid path string true "Vehicle model UUID"
// @Param request body dto.OverrideModelPriceRequest true "Override data"
// @Success 200 {object} dto.APIResponse{data=dto.OverrideModelPriceResponse} "Override updated"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Model price not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rental/models/{uuid}/override [post]
func (h *RentalHandler) OverrideModelPrice(c fiber.Ctx) error {
	modelUUID := c.Params("uuid")
	if modelUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Vehicle model UUID is required", "MISSING_MODEL_UUID", nil)
	}

	var req dto.OverrideModelPriceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ModelUUID = modelUUID
	req.Actor = requestActor(c)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.rentalFlow.OverrideModelPrice(h.createRequestContext(c, "/api/v1/rental/models/"+modelUUID+"/override"), &req, metadata)
	if err != nil {
		if businessflow.IsVehicleModelNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Vehicle model not found", "MODEL_NOT_FOUND", nil)
		}
		if businessflow.IsModelPriceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Model price not found", "MODEL_PRICE_NOT_FOUND", nil)
		}
		if businessflow.IsOverrideNotPositive(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Override price must be positive", "OVERRIDE_NOT_POSITIVE", nil)
		}
		if businessflow.IsNoOverrideToClear(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "No override to clear", "NO_OVERRIDE_TO_CLEAR", nil)
		}
		if businessflow.IsReasonRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "A non-empty reason is required", "REASON_REQUIRED", nil)
		}

		log.Println("Model price override failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Model price override failed", "MODEL_PRICE_OVERRIDE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Model price override updated successfully", result)
}

func (h *RentalHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *RentalHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
