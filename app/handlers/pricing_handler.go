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

// PricingHandlerInterface defines the contract for parts pricing handlers
type PricingHandlerInterface interface {
	PreviewMarkup(c fiber.Ctx) error
	ProposeMarkup(c fiber.Ctx) error
	ResolvePrice(c fiber.Ctx) error
	GetBatch(c fiber.Ctx) error
	ApplyBatch(c fiber.Ctx) error
	PercentAdjustment(c fiber.Ctx) error
	ListPriceHistory(c fiber.Ctx) error
}

// PricingHandler handles parts pricing HTTP requests
type PricingHandler struct {
	markupFlow     businessflow.MarkupFlow
	bulkFlow       businessflow.BulkPriceFlow
	resolutionFlow businessflow.PriceResolutionFlow
	validator      *validator.Validate
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(
	markupFlow businessflow.MarkupFlow,
	bulkFlow businessflow.BulkPriceFlow,
	resolutionFlow businessflow.PriceResolutionFlow,
) *PricingHandler {
	return &PricingHandler{
		markupFlow:     markupFlow,
		bulkFlow:       bulkFlow,
		resolutionFlow: resolutionFlow,
		validator:      validator.New(),
	}
}

func (h *PricingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PricingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// PreviewMarkup resolves markup candidates for a filtered part set
// @Summary Preview Markup
// @Description Resolve the banded markup rules against a part set without persisting anything
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.MarkupPreviewRequest true "Part filter"
// @Success 200 {object} dto.APIResponse{data=dto.MarkupPreviewResponse} "Markup candidates"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Price list not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/markup/preview [post]
func (h *PricingHandler) PreviewMarkup(c fiber.Ctx) error {
	var req dto.MarkupPreviewRequest
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

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.markupFlow.PreviewMarkup(h.createRequestContext(c, "/api/v1/pricing/markup/preview"), &req, metadata)
	if err != nil {
		if businessflow.IsPriceListNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Price list not found", "PRICE_LIST_NOT_FOUND", nil)
		}
		if businessflow.IsPriceListInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Price list is inactive", "PRICE_LIST_INACTIVE", nil)
		}
		if businessflow.IsPartsRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No parts match the filter", "PARTS_REQUIRED", nil)
		}

		log.Println("Markup preview failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Markup preview failed", "MARKUP_PREVIEW_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Markup preview generated successfully", result)
}

// ProposeMarkup persists the markup candidates as a draft batch
// @Summary Propose Markup Batch
// @Description Persist the resolved markup candidates as a draft price change batch
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.MarkupProposeRequest true "Part filter and reason"
// @Success 201 {object} dto.APIResponse{data=dto.MarkupProposeResponse} "Draft batch created"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Price list not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/markup/propose [post]
func (h *PricingHandler) ProposeMarkup(c fiber.Ctx) error {
	var req dto.MarkupProposeRequest
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

	result, err := h.markupFlow.ProposeMarkup(h.createRequestContext(c, "/api/v1/pricing/markup/propose"), &req, metadata)
	if err != nil {
		if businessflow.IsPriceListNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Price list not found", "PRICE_LIST_NOT_FOUND", nil)
		}
		if businessflow.IsPriceListInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Price list is inactive", "PRICE_LIST_INACTIVE", nil)
		}
		if businessflow.IsBatchEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No price changes to propose", "BATCH_EMPTY", nil)
		}

		log.Println("Markup proposal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Markup proposal failed", "MARKUP_PROPOSE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Markup batch proposed successfully", result)
}

// ResolvePrice computes the final channel price for a part
// @Summary Resolve Price
// @Description Resolve the final price for a part on a price list, stacking applicable discounts
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.ResolvePriceRequest true "Resolution context"
// @Success 200 {object} dto.APIResponse{data=dto.ResolvePriceResponse} "Resolved price"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Part or price list not found"
// @Failure 422 {object} dto.APIResponse "Price not resolvable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/resolve [post]
func (h *PricingHandler) ResolvePrice(c fiber.Ctx) error {
	var req dto.ResolvePriceRequest
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

	result, err := h.resolutionFlow.ResolvePrice(h.createRequestContext(c, "/api/v1/pricing/resolve"), &req)
	if err != nil {
		if businessflow.IsPartNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Part not found", "PART_NOT_FOUND", nil)
		}
		if businessflow.IsPartInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Part is inactive", "PART_INACTIVE", nil)
		}
		if businessflow.IsPriceListNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Price list not found", "PRICE_LIST_NOT_FOUND", nil)
		}
		if businessflow.IsPriceListInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Price list is inactive", "PRICE_LIST_INACTIVE", nil)
		}
		if businessflow.IsPriceNotResolvable(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Part has no list price and no cost basis", "PRICE_NOT_RESOLVABLE", nil)
		}

		log.Println("Price resolution failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Price resolution failed", "PRICE_RESOLUTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Price resolved successfully", result)
}

// GetBatch returns a price change batch with its entries
// @Summary Get Price Change Batch
// @Description Inspect a price change batch and its proposed entries
// @Tags Pricing
// @Produce json
// @Param uuid path string true "Batch UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetBatchResponse} "Batch detail"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/batches/{uuid} [get]
func (h *PricingHandler) GetBatch(c fiber.Ctx) error {
	batchUUID := c.Params("uuid")
	if batchUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Batch UUID is required", "MISSING_BATCH_UUID", nil)
	}

	req := dto.GetBatchRequest{BatchUUID: batchUUID}

	result, err := h.bulkFlow.GetBatch(h.createRequestContext(c, "/api/v1/pricing/batches/"+batchUUID), &req)
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}

		log.Println("Batch lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Batch lookup failed", "BATCH_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch retrieved successfully", result)
}

// ApplyBatch applies a draft price change batch
// @Summary Apply Price Change Batch
// @Description Apply a draft batch, closing the open price entries and writing history
// @Tags Pricing
// @Accept json
// @Produce json
// @Param uuid path string true "Batch UUID"
// @Param request body dto.ApplyBatchRequest true "Confirmation data"
// @Success 200 {object} dto.APIResponse{data=dto.ApplyBatchResponse} "Batch applied"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 409 {object} dto.APIResponse "Batch already applied or discarded"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/batches/{uuid}/apply [post]
func (h *PricingHandler) ApplyBatch(c fiber.Ctx) error {
	batchUUID := c.Params("uuid")
	if batchUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Batch UUID is required", "MISSING_BATCH_UUID", nil)
	}

	var req dto.ApplyBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.BatchUUID = batchUUID
	req.Actor = requestActor(c)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.bulkFlow.ApplyBatch(h.createRequestContext(c, "/api/v1/pricing/batches/"+batchUUID+"/apply"), &req, metadata)
	if err != nil {
		if businessflow.IsBatchNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsBatchAlreadyApplied(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Batch already applied", "BATCH_ALREADY_APPLIED", nil)
		}
		if businessflow.IsBatchDiscarded(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Batch is discarded", "BATCH_DISCARDED", nil)
		}
		if businessflow.IsBatchEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Batch has no entries", "BATCH_EMPTY", nil)
		}
		if businessflow.IsConfirmationRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Confirmation flag is required", "CONFIRMATION_REQUIRED", nil)
		}
		if businessflow.IsReasonRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "A non-empty reason is required", "REASON_REQUIRED", nil)
		}

		log.Println("Batch apply failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Batch apply failed", "BATCH_APPLY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch applied successfully", result)
}

// PercentAdjustment applies a percentage change over a filtered part set
// @Summary Percentage Price Adjustment
// @Description Create (and optionally apply) a percentage adjustment batch over a part set
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.PercentAdjustmentRequest true "Adjustment parameters"
// @Success 200 {object} dto.APIResponse{data=dto.ApplyBatchResponse} "Adjustment batch created or applied"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Price list not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/batches/percent [post]
func (h *PricingHandler) PercentAdjustment(c fiber.Ctx) error {
	var req dto.PercentAdjustmentRequest
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

	result, err := h.bulkFlow.PercentAdjustment(h.createRequestContext(c, "/api/v1/pricing/batches/percent"), &req, metadata)
	if err != nil {
		if businessflow.IsPriceListNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Price list not found", "PRICE_LIST_NOT_FOUND", nil)
		}
		if businessflow.IsPriceListInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Price list is inactive", "PRICE_LIST_INACTIVE", nil)
		}
		if businessflow.IsAdjustmentOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Adjustment percentage out of range", "ADJUSTMENT_OUT_OF_RANGE", nil)
		}
		if businessflow.IsBatchEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No prices to adjust", "BATCH_EMPTY", nil)
		}
		if businessflow.IsReasonRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "A non-empty reason is required", "REASON_REQUIRED", nil)
		}

		log.Println("Percentage adjustment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Percentage adjustment failed", "PERCENT_ADJUSTMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Percentage adjustment processed successfully", result)
}

// ListPriceHistory returns the paginated price history for a part
// @Summary List Price History
// @Description List the immutable price change records of a part on a price list
// @Tags Pricing
// @Produce json
// @Param code path string true "Price list code"
// @Param part_id path int true "Part ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListPriceHistoryResponse} "Price history"
// @Failure 400 {object} dto.APIResponse "Invalid pagination parameters"
// @Failure 404 {object} dto.APIResponse "Price list not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/lists/{code}/parts/{part_id}/history [get]
func (h *PricingHandler) ListPriceHistory(c fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Price list code is required", "MISSING_PRICE_LIST_CODE", nil)
	}
	partID, err := strconv.ParseUint(c.Params("part_id"), 10, 32)
	if err != nil || partID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid part ID", "INVALID_PART_ID", nil)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	req := dto.ListPriceHistoryRequest{
		PriceListCode: code,
		PartID:        uint(partID),
		Page:          page,
		Limit:         limit,
	}

	result, err := h.bulkFlow.ListPriceHistory(h.createRequestContext(c, "/api/v1/pricing/lists/"+code+"/parts/"+c.Params("part_id")+"/history"), &req)
	if err != nil {
		if businessflow.IsPriceListNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Price list not found", "PRICE_LIST_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Price history lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Price history lookup failed", "PRICE_HISTORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Price history retrieved successfully", result)
}

func (h *PricingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PricingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
