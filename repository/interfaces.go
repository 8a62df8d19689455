// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// PartRepository defines operations for catalog parts
type PartRepository interface {
	Repository[models.Part, models.PartFilter]
	BySKU(ctx context.Context, sku string) (*models.Part, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Part, error)
	ByIDs(ctx context.Context, ids []uint) ([]*models.Part, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Part, error)
	UpdateCostBasis(ctx context.Context, partID uint, averageCostUSD, averageCostARS float64) error
}

// PriceListRepository defines operations for price lists
type PriceListRepository interface {
	Repository[models.PriceList, models.PriceListFilter]
	ByCode(ctx context.Context, code string) (*models.PriceList, error)
	ListActive(ctx context.Context) ([]*models.PriceList, error)
}

// PriceListItemRepository defines operations for price list entries.
// Open entries (valid_to IS NULL) carry the current price; CloseOpenEntry
// followed by Save forms the apply step of a price change.
type PriceListItemRepository interface {
	Repository[models.PriceListItem, models.PriceListItemFilter]
	OpenEntry(ctx context.Context, priceListID, partID uint, minQuantity int) (*models.PriceListItem, error)
	OpenEntriesByList(ctx context.Context, priceListID uint) ([]*models.PriceListItem, error)
	OpenEntriesByParts(ctx context.Context, priceListID uint, partIDs []uint) (map[uint]*models.PriceListItem, error)
	OpenEntriesForPart(ctx context.Context, priceListID, partID uint) ([]*models.PriceListItem, error)
	CloseOpenEntry(ctx context.Context, priceListID, partID uint, minQuantity int, at time.Time) error
	PriceAt(ctx context.Context, priceListID, partID uint, at time.Time) (*models.PriceListItem, error)
}

// MarkupRuleRepository defines operations for markup rules
type MarkupRuleRepository interface {
	Repository[models.MarkupRule, models.MarkupRuleFilter]
	ListActive(ctx context.Context) ([]*models.MarkupRule, error)
}

// DiscountRuleRepository defines operations for discount rules
type DiscountRuleRepository interface {
	Repository[models.DiscountRule, models.DiscountRuleFilter]
	ListActive(ctx context.Context) ([]*models.DiscountRule, error)
}

// ShipmentRepository defines operations for import shipments
type ShipmentRepository interface {
	Repository[models.Shipment, models.ShipmentFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Shipment, error)
	ByUUIDWithItems(ctx context.Context, uuid uuid.UUID) (*models.Shipment, error)
	ByReference(ctx context.Context, reference string) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, shipmentID uint, from, to models.ShipmentStatus, by *string, at *time.Time) (bool, error)
}

// ShipmentItemRepository defines operations for shipment lines
type ShipmentItemRepository interface {
	Repository[models.ShipmentItem, models.ShipmentItemFilter]
	ListByShipment(ctx context.Context, shipmentID uint) ([]*models.ShipmentItem, error)
	DeleteByShipment(ctx context.Context, shipmentID uint) error
}

// ShipmentCostAllocationRepository defines operations for frozen allocations
type ShipmentCostAllocationRepository interface {
	Repository[models.ShipmentCostAllocation, models.ShipmentCostAllocationFilter]
	ListByShipment(ctx context.Context, shipmentID uint) ([]*models.ShipmentCostAllocation, error)
}

// CostLedgerRepository defines operations for the cost ledger
type CostLedgerRepository interface {
	Repository[models.CostLedgerEntry, models.CostLedgerEntryFilter]
	LatestByPart(ctx context.Context, partID uint) (*models.CostLedgerEntry, error)
	ListByPart(ctx context.Context, partID uint, limit, offset int) ([]*models.CostLedgerEntry, error)
}

// PriceChangeBatchRepository defines operations for bulk price changes
type PriceChangeBatchRepository interface {
	Repository[models.PriceChangeBatch, models.PriceChangeBatchFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.PriceChangeBatch, error)
	ByUUIDWithEntries(ctx context.Context, uuid uuid.UUID) (*models.PriceChangeBatch, error)
	MarkApplied(ctx context.Context, batchID uint, by string, at time.Time) (bool, error)
	MarkDiscarded(ctx context.Context, batchID uint) (bool, error)
}

// PriceChangeEntryRepository defines operations for batch entries
type PriceChangeEntryRepository interface {
	Repository[models.PriceChangeEntry, models.PriceChangeEntryFilter]
	ListByBatch(ctx context.Context, batchID uint) ([]*models.PriceChangeEntry, error)
}

// PriceHistoryRepository defines operations for the price audit trail
type PriceHistoryRepository interface {
	Repository[models.PriceHistory, models.PriceHistoryFilter]
	ListByPart(ctx context.Context, priceListID, partID uint, limit, offset int) ([]*models.PriceHistory, error)
	ListByBatch(ctx context.Context, batchID uint) ([]*models.PriceHistory, error)
}

// VehicleModelRepository defines operations for vehicle models
type VehicleModelRepository interface {
	Repository[models.VehicleModel, models.VehicleModelFilter]
	ByName(ctx context.Context, name string) (*models.VehicleModel, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.VehicleModel, error)
	ListActive(ctx context.Context) ([]*models.VehicleModel, error)
}

// RentalPlanRepository defines operations for rental plans
type RentalPlanRepository interface {
	Repository[models.RentalPlan, models.RentalPlanFilter]
	ByName(ctx context.Context, name string) (*models.RentalPlan, error)
	ListActive(ctx context.Context) ([]*models.RentalPlan, error)
}

// ModelPriceRepository defines operations for stored model quotes
type ModelPriceRepository interface {
	Repository[models.ModelPrice, models.ModelPriceFilter]
	ByPair(ctx context.Context, vehicleModelID, rentalPlanID uint) (*models.ModelPrice, error)
	ListWithRelations(ctx context.Context) ([]*models.ModelPrice, error)
	UpsertComputed(ctx context.Context, price *models.ModelPrice) error
	SetOverride(ctx context.Context, id uint, price float64, by string, reason *string) error
	ClearOverride(ctx context.Context, id uint) error
}

// ExchangeRateRepository defines operations for reference rates
type ExchangeRateRepository interface {
	Repository[models.ExchangeRate, models.ExchangeRateFilter]
	Latest(ctx context.Context) (*models.ExchangeRate, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByActor(ctx context.Context, actor string, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
