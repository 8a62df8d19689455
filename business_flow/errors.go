// Package businessflow contains the core business logic and use cases for costing and pricing workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Part-related errors
	ErrPartNotFound  = errors.New("part not found")
	ErrPartInactive  = errors.New("part is inactive")
	ErrPartsRequired = errors.New("at least one part is required")

	// Shipment / costing errors
	ErrShipmentNotFound         = errors.New("shipment not found")
	ErrShipmentNotEditable      = errors.New("shipment is not editable")
	ErrShipmentAlreadyConfirmed = errors.New("shipment costing already confirmed")
	ErrShipmentEmpty            = errors.New("shipment has no items")
	ErrShipmentUUIDRequired     = errors.New("shipment UUID is required")
	ErrInvalidAllocationMethod  = errors.New("invalid allocation method")
	ErrExchangeRateNotSet       = errors.New("no exchange rate available")
	ErrExchangeRateNotPositive  = errors.New("exchange rate must be positive")

	// Price list errors
	ErrPriceListNotFound  = errors.New("price list not found")
	ErrPriceListInactive  = errors.New("price list is inactive")
	ErrPriceNotResolvable = errors.New("part has no list price and no cost basis")

	// Batch / bulk apply errors
	ErrBatchNotFound        = errors.New("price change batch not found")
	ErrBatchAlreadyApplied  = errors.New("price change batch already applied")
	ErrBatchDiscarded       = errors.New("price change batch is discarded")
	ErrBatchEmpty           = errors.New("price change batch has no entries")
	ErrBatchUUIDRequired    = errors.New("batch UUID is required")
	ErrConfirmationRequired = errors.New("confirmation flag is required")
	ErrReasonRequired       = errors.New("a non-empty reason is required")
	ErrAdjustmentOutOfRange = errors.New("percentage adjustment must be between -0.9 and 10")

	// Rental / model pricing errors
	ErrVehicleModelNotFound = errors.New("vehicle model not found")
	ErrModelUUIDRequired    = errors.New("vehicle model UUID is required")
	ErrRentalPlanNotFound   = errors.New("rental plan not found")
	ErrNoActivePlans        = errors.New("no active rental plans")
	ErrModelPriceNotFound   = errors.New("model price not found")
	ErrOverrideNotPositive  = errors.New("override price must be positive")
	ErrNoOverrideToClear    = errors.New("no override to clear")

	// Rule administration errors
	ErrMarkupRuleNotFound    = errors.New("markup rule not found")
	ErrDiscountRuleNotFound  = errors.New("discount rule not found")
	ErrMultiplierNotPositive = errors.New("multiplier must be positive")
	ErrBandBoundsInverted    = errors.New("band lower bound must be below upper bound")
	ErrInvalidRoundingPolicy = errors.New("invalid rounding policy")
	ErrInvalidDiscountKind   = errors.New("invalid discount kind")
	ErrDiscountValueNegative = errors.New("discount value cannot be negative")
	ErrRuleNameRequired      = errors.New("rule name is required")
	ErrCacheNotAvailable     = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsPartNotFound(err error) bool {
	return errors.Is(err, ErrPartNotFound)
}

func IsPartInactive(err error) bool {
	return errors.Is(err, ErrPartInactive)
}

func IsPartsRequired(err error) bool {
	return errors.Is(err, ErrPartsRequired)
}

func IsShipmentNotFound(err error) bool {
	return errors.Is(err, ErrShipmentNotFound)
}

func IsShipmentNotEditable(err error) bool {
	return errors.Is(err, ErrShipmentNotEditable)
}

func IsShipmentAlreadyConfirmed(err error) bool {
	return errors.Is(err, ErrShipmentAlreadyConfirmed)
}

func IsShipmentEmpty(err error) bool {
	return errors.Is(err, ErrShipmentEmpty)
}

func IsInvalidAllocationMethod(err error) bool {
	return errors.Is(err, ErrInvalidAllocationMethod)
}

func IsExchangeRateNotSet(err error) bool {
	return errors.Is(err, ErrExchangeRateNotSet)
}

func IsExchangeRateNotPositive(err error) bool {
	return errors.Is(err, ErrExchangeRateNotPositive)
}

func IsPriceListNotFound(err error) bool {
	return errors.Is(err, ErrPriceListNotFound)
}

func IsPriceNotResolvable(err error) bool {
	return errors.Is(err, ErrPriceNotResolvable)
}

func IsPriceListInactive(err error) bool {
	return errors.Is(err, ErrPriceListInactive)
}

func IsBatchNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}

func IsBatchAlreadyApplied(err error) bool {
	return errors.Is(err, ErrBatchAlreadyApplied)
}

func IsBatchDiscarded(err error) bool {
	return errors.Is(err, ErrBatchDiscarded)
}

func IsBatchEmpty(err error) bool {
	return errors.Is(err, ErrBatchEmpty)
}

func IsConfirmationRequired(err error) bool {
	return errors.Is(err, ErrConfirmationRequired)
}

func IsReasonRequired(err error) bool {
	return errors.Is(err, ErrReasonRequired)
}

func IsAdjustmentOutOfRange(err error) bool {
	return errors.Is(err, ErrAdjustmentOutOfRange)
}

func IsVehicleModelNotFound(err error) bool {
	return errors.Is(err, ErrVehicleModelNotFound)
}

func IsRentalPlanNotFound(err error) bool {
	return errors.Is(err, ErrRentalPlanNotFound)
}

func IsNoActivePlans(err error) bool {
	return errors.Is(err, ErrNoActivePlans)
}

func IsModelPriceNotFound(err error) bool {
	return errors.Is(err, ErrModelPriceNotFound)
}

func IsOverrideNotPositive(err error) bool {
	return errors.Is(err, ErrOverrideNotPositive)
}

func IsNoOverrideToClear(err error) bool {
	return errors.Is(err, ErrNoOverrideToClear)
}

func IsMarkupRuleNotFound(err error) bool {
	return errors.Is(err, ErrMarkupRuleNotFound)
}

func IsDiscountRuleNotFound(err error) bool {
	return errors.Is(err, ErrDiscountRuleNotFound)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
