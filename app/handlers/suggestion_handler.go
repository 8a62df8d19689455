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

// SuggestionHandlerInterface defines the contract for suggestion handlers
type SuggestionHandlerInterface interface {
	ListSuggestions(c fiber.Ctx) error
	ExportSuggestions(c fiber.Ctx) error
}

// SuggestionHandler handles pricing suggestion HTTP requests
type SuggestionHandler struct {
	suggestionFlow businessflow.SuggestionFlow
	validator      *validator.Validate
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionFlow businessflow.SuggestionFlow) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionFlow: suggestionFlow,
		validator:      validator.New(),
	}
}

func (h *SuggestionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SuggestionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *SuggestionHandler) parseRequest(c fiber.Ctx) (*dto.ListSuggestionsRequest, error) {
	var req dto.ListSuggestionsRequest
	if severity := c.Query("severity"); severity != "" {
		req.Severity = &severity
	}
	if raw := c.Query("max_tier"); raw != "" {
		maxTier, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		req.MaxTier = &maxTier
	}
	if err := h.validator.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListSuggestions returns the prioritized pricing anomaly list
// @Summary List Pricing Suggestions
// @Description List prioritized pricing anomalies across parts, rates and rental prices
// @Tags Suggestions
// @Produce json
// @Param severity query string false "Filter by severity (critical, warning, review, info)"
// @Param max_tier query int false "Only include suggestions up to this tier"
// @Success 200 {object} dto.APIResponse{data=dto.ListSuggestionsResponse} "Suggestions"
// @Failure 400 {object} dto.APIResponse "Invalid filter parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/suggestions [get]
func (h *SuggestionHandler) ListSuggestions(c fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter parameters", "INVALID_FILTER", err.Error())
	}

	result, err := h.suggestionFlow.ListSuggestions(h.createRequestContext(c, "/api/v1/suggestions"), req)
	if err != nil {
		log.Println("Suggestion generation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Suggestion generation failed", "SUGGESTION_GENERATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Suggestions generated successfully", result)
}

// ExportSuggestions downloads the suggestion list as an Excel workbook
// @Summary Export Pricing Suggestions
// @Description Download the prioritized pricing anomaly list as an XLSX file
// @Tags Suggestions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param severity query string false "Filter by severity (critical, warning, review, info)"
// @Param max_tier query int false "Only include suggestions up to this tier"
// @Success 200 {file} binary "XLSX workbook"
// @Failure 400 {object} dto.APIResponse "Invalid filter parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/suggestions/export [get]
func (h *SuggestionHandler) ExportSuggestions(c fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter parameters", "INVALID_FILTER", err.Error())
	}

	filename, data, err := h.suggestionFlow.ExportSuggestions(h.createRequestContext(c, "/api/v1/suggestions/export"), req)
	if err != nil {
		log.Println("Suggestion export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate Excel", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *SuggestionHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *SuggestionHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
