// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/motofleet/backoffice/app/dto"
	businessflow "github.com/motofleet/backoffice/business_flow"
	"github.com/motofleet/backoffice/utils"
)

// CostingHandlerInterface defines the contract for shipment costing handlers
type CostingHandlerInterface interface {
	SimulateCosting(c fiber.Ctx) error
	ConfirmCosting(c fiber.Ctx) error
	ExportCosting(c fiber.Ctx) error
}

// CostingHandler handles shipment costing HTTP requests
type CostingHandler struct {
	costingFlow businessflow.CostingFlow
	validator   *validator.Validate
}

// NewCostingHandler creates a new costing handler
func NewCostingHandler(costingFlow businessflow.CostingFlow) *CostingHandler {
	return &CostingHandler{
		costingFlow: costingFlow,
		validator:   validator.New(),
	}
}

func (h *CostingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CostingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SimulateCosting previews the landed cost allocation for a draft shipment
// @Summary Simulate Shipment Costing
// @Description Preview the landed cost allocation for a shipment without persisting anything
// @Tags Costing
// @Accept json
// @Produce json
// @Param uuid path string true "Shipment UUID"
// @Param request body dto.SimulateCostingRequest true "Simulation parameters"
// @Success 200 {object} dto.APIResponse{data=dto.SimulateCostingResponse} "Allocation preview"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Shipment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/costing/shipments/{uuid}/simulate [post]
func (h *CostingHandler) SimulateCosting(c fiber.Ctx) error {
	shipmentUUID := c.Params("uuid")
	if shipmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Shipment UUID is required", "MISSING_SHIPMENT_UUID", nil)
	}

	var req dto.SimulateCostingRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}
	req.ShipmentUUID = shipmentUUID

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.costingFlow.SimulateShipmentCosting(h.createRequestContext(c, "/api/v1/costing/shipments/"+shipmentUUID+"/simulate"), &req, metadata)
	if err != nil {
		if businessflow.IsShipmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Shipment not found", "SHIPMENT_NOT_FOUND", nil)
		}
		if businessflow.IsShipmentEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Shipment has no items", "SHIPMENT_EMPTY", nil)
		}
		if businessflow.IsInvalidAllocationMethod(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid allocation method", "INVALID_ALLOCATION_METHOD", nil)
		}
		if businessflow.IsExchangeRateNotSet(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "No exchange rate available", "EXCHANGE_RATE_NOT_SET", nil)
		}

		log.Println("Costing simulation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Costing simulation failed", "COSTING_SIMULATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Costing simulated successfully", result)
}

// ConfirmCosting freezes the allocation and merges cost bases
// @Summary Confirm Shipment Costing
// @Description Confirm a shipment costing, persist allocations and update weighted average costs
// @Tags Costing
// @Accept json
// @Produce json
// @Param uuid path string true "Shipment UUID"
// @Param request body dto.ConfirmCostingRequest true "Confirmation data"
// @Success 200 {object} dto.APIResponse{data=dto.ConfirmCostingResponse} "Costing confirmed"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Shipment not found"
// @Failure 409 {object} dto.APIResponse "Shipment already confirmed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/costing/shipments/{uuid}/confirm [post]
func (h *CostingHandler) ConfirmCosting(c fiber.Ctx) error {
	shipmentUUID := c.Params("uuid")
	if shipmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Shipment UUID is required", "MISSING_SHIPMENT_UUID", nil)
	}

	var req dto.ConfirmCostingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ShipmentUUID = shipmentUUID
	req.Actor = requestActor(c)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.costingFlow.ConfirmShipmentCosting(h.createRequestContext(c, "/api/v1/costing/shipments/"+shipmentUUID+"/confirm"), &req, metadata)
	if err != nil {
		if businessflow.IsShipmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Shipment not found", "SHIPMENT_NOT_FOUND", nil)
		}
		if businessflow.IsShipmentAlreadyConfirmed(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Shipment costing already confirmed", "SHIPMENT_ALREADY_CONFIRMED", nil)
		}
		if businessflow.IsShipmentNotEditable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Shipment is not editable", "SHIPMENT_NOT_EDITABLE", nil)
		}
		if businessflow.IsShipmentEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Shipment has no items", "SHIPMENT_EMPTY", nil)
		}
		if businessflow.IsConfirmationRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Confirmation flag is required", "CONFIRMATION_REQUIRED", nil)
		}
		if businessflow.IsExchangeRateNotSet(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "No exchange rate available", "EXCHANGE_RATE_NOT_SET", nil)
		}

		log.Println("Costing confirmation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Costing confirmation failed", "COSTING_CONFIRMATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Costing confirmed successfully", result)
}

// ExportCosting downloads the allocation breakdown as an Excel workbook
// @Summary Export Shipment Costing
// @Description Download the landed cost allocation breakdown of a shipment as an XLSX file
// @Tags Costing
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param uuid path string true "Shipment UUID"
// @Param method query string false "Allocation method override (by_value, by_weight, by_volume, hybrid)"
// @Param rate query number false "Exchange rate override"
// @Success 200 {file} binary "XLSX workbook"
// @Failure 400 {object} dto.APIResponse "Invalid parameters"
// @Failure 404 {object} dto.APIResponse "Shipment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/costing/shipments/{uuid}/export [get]
func (h *CostingHandler) ExportCosting(c fiber.Ctx) error {
	shipmentUUID := c.Params("uuid")
	if shipmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Shipment UUID is required", "MISSING_SHIPMENT_UUID", nil)
	}

	req := dto.SimulateCostingRequest{ShipmentUUID: shipmentUUID}
	if method := c.Query("method"); method != "" {
		req.Method = &method
	}
	if raw := c.Query("rate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid exchange rate", "INVALID_EXCHANGE_RATE", nil)
		}
		req.ExchangeRate = &rate
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	filename, data, err := h.costingFlow.ExportShipmentCosting(h.createRequestContext(c, "/api/v1/costing/shipments/"+shipmentUUID+"/export"), &req, metadata)
	if err != nil {
		if businessflow.IsShipmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Shipment not found", "SHIPMENT_NOT_FOUND", nil)
		}
		if businessflow.IsShipmentEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Shipment has no items", "SHIPMENT_EMPTY", nil)
		}
		if businessflow.IsInvalidAllocationMethod(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid allocation method", "INVALID_ALLOCATION_METHOD", nil)
		}

		log.Println("Costing export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate Excel", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *CostingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CostingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
