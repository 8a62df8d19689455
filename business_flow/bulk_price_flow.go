package businessflow

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// BulkPriceFlow applies price change batches to price lists. Applying
// is all-or-nothing and a batch is applied at most once.
type BulkPriceFlow interface {
	GetBatch(ctx context.Context, req *dto.GetBatchRequest) (*dto.GetBatchResponse, error)
	ApplyBatch(ctx context.Context, req *dto.ApplyBatchRequest, metadata *ClientMetadata) (*dto.ApplyBatchResponse, error)
	PercentAdjustment(ctx context.Context, req *dto.PercentAdjustmentRequest, metadata *ClientMetadata) (*dto.ApplyBatchResponse, error)
	ListPriceHistory(ctx context.Context, req *dto.ListPriceHistoryRequest) (*dto.ListPriceHistoryResponse, error)
}

// BulkPriceFlowImpl implements the bulk price business flow
type BulkPriceFlowImpl struct {
	partRepo          repository.PartRepository
	priceListRepo     repository.PriceListRepository
	priceListItemRepo repository.PriceListItemRepository
	batchRepo         repository.PriceChangeBatchRepository
	entryRepo         repository.PriceChangeEntryRepository
	historyRepo       repository.PriceHistoryRepository
	auditRepo         repository.AuditLogRepository
	pricingCfg        config.PricingConfig
	db                *gorm.DB
}

// NewBulkPriceFlow creates a new bulk price flow instance
func NewBulkPriceFlow(
	partRepo repository.PartRepository,
	priceListRepo repository.PriceListRepository,
	priceListItemRepo repository.PriceListItemRepository,
	batchRepo repository.PriceChangeBatchRepository,
	entryRepo repository.PriceChangeEntryRepository,
	historyRepo repository.PriceHistoryRepository,
	auditRepo repository.AuditLogRepository,
	pricingCfg config.PricingConfig,
	db *gorm.DB,
) BulkPriceFlow {
	return &BulkPriceFlowImpl{
		partRepo:          partRepo,
		priceListRepo:     priceListRepo,
		priceListItemRepo: priceListItemRepo,
		batchRepo:         batchRepo,
		entryRepo:         entryRepo,
		historyRepo:       historyRepo,
		auditRepo:         auditRepo,
		pricingCfg:        pricingCfg,
		db:                db,
	}
}

// GetBatch returns a batch with its entries for inspection
func (s *BulkPriceFlowImpl) GetBatch(ctx context.Context, req *dto.GetBatchRequest) (*dto.GetBatchResponse, error) {
	batch, err := s.loadBatch(ctx, req.BatchUUID)
	if err != nil {
		return nil, err
	}

	listCode := ""
	if list, err := s.priceListRepo.ByID(ctx, batch.PriceListID); err == nil && list != nil {
		listCode = list.Code
	}

	entries := make([]dto.BatchEntryDTO, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		entries = append(entries, dto.BatchEntryDTO{
			PartID:   e.PartID,
			OldPrice: e.OldPrice,
			NewPrice: e.NewPrice,
			RuleID:   e.MarkupRuleID,
		})
	}

	reason := ""
	if batch.Reason != nil {
		reason = *batch.Reason
	}

	resp := &dto.GetBatchResponse{
		Message:   "Price change batch retrieved successfully",
		BatchUUID: batch.UUID.String(),
		PriceList: listCode,
		Status:    batch.Status.String(),
		Reason:    reason,
		CreatedBy: batch.CreatedBy,
		CreatedAt: batch.CreatedAt.Format(time.RFC3339),
		Entries:   entries,
	}
	if batch.AppliedAt != nil {
		applied := batch.AppliedAt.Format(time.RFC3339)
		resp.AppliedAt = &applied
	}
	return resp, nil
}

// ApplyBatch applies a draft batch: every affected part gets its open
// price entry closed, a new entry inserted and a history row written,
// all in one transaction
func (s *BulkPriceFlowImpl) ApplyBatch(ctx context.Context, req *dto.ApplyBatchRequest, metadata *ClientMetadata) (*dto.ApplyBatchResponse, error) {
	if !req.Confirm {
		return nil, NewBusinessError("CONFIRMATION_REQUIRED", "Applying a batch requires the confirm flag", ErrConfirmationRequired)
	}
	if req.Reason == "" {
		return nil, NewBusinessError("REASON_REQUIRED", "Applying a batch requires a reason", ErrReasonRequired)
	}

	batch, err := s.loadBatch(ctx, req.BatchUUID)
	if err != nil {
		return nil, err
	}
	if batch.Status == models.PriceChangeBatchStatusApplied {
		return nil, NewBusinessError("BATCH_ALREADY_APPLIED", "Price change batch was already applied", ErrBatchAlreadyApplied)
	}
	if batch.Status == models.PriceChangeBatchStatusDiscarded {
		return nil, NewBusinessError("BATCH_DISCARDED", "Price change batch was discarded", ErrBatchDiscarded)
	}
	if len(batch.Entries) == 0 {
		return nil, NewBusinessError("BATCH_EMPTY", "Price change batch has no entries", ErrBatchEmpty)
	}

	entries := make([]*models.PriceChangeEntry, 0, len(batch.Entries))
	for i := range batch.Entries {
		entries = append(entries, &batch.Entries[i])
	}

	actor := req.Actor
	if actor == "" {
		actor = "system"
	}
	now := utils.UTCNow()

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		ok, err := s.batchRepo.MarkApplied(txCtx, batch.ID, actor, now)
		if err != nil {
			return fmt.Errorf("failed to mark batch applied: %w", err)
		}
		if !ok {
			return ErrBatchAlreadyApplied
		}
		return s.applyEntries(txCtx, batch.ID, batch.PriceListID, entries, actor, req.Reason, now)
	})

	if err != nil {
		errMsg := err.Error()
		desc := fmt.Sprintf("Price batch %s apply failed", batch.UUID)
		_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionBatchApplied, desc, false, &errMsg, metadata)

		if IsBatchAlreadyApplied(err) {
			return nil, NewBusinessError("BATCH_ALREADY_APPLIED", "Price change batch was already applied", err)
		}
		return nil, NewBusinessError("BATCH_APPLY_FAILED", "Failed to apply price change batch", err)
	}

	desc := fmt.Sprintf("Price batch %s applied with %d entries: %s", batch.UUID, len(entries), req.Reason)
	_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionBatchApplied, desc, true, nil, metadata)

	return &dto.ApplyBatchResponse{
		Message:   "Price change batch applied successfully",
		BatchUUID: batch.UUID.String(),
		Status:    models.PriceChangeBatchStatusApplied.String(),
		Applied:   len(entries),
		AppliedAt: now.Format(time.RFC3339),
	}, nil
}

// PercentAdjustment builds a batch that moves every current price of
// the filtered parts by a percentage, and applies it in the same
// transaction when confirmed. Without the confirm flag the batch stays
// a draft for later inspection and apply.
func (s *BulkPriceFlowImpl) PercentAdjustment(ctx context.Context, req *dto.PercentAdjustmentRequest, metadata *ClientMetadata) (*dto.ApplyBatchResponse, error) {
	if req.AdjustmentPct <= -0.9 || req.AdjustmentPct > 10 {
		return nil, NewBusinessError("ADJUSTMENT_OUT_OF_RANGE", "Percentage adjustment is out of the accepted range", ErrAdjustmentOutOfRange)
	}
	if req.Reason == "" {
		return nil, NewBusinessError("REASON_REQUIRED", "A percentage adjustment requires a reason", ErrReasonRequired)
	}

	list, err := loadPriceListByCode(ctx, s.priceListRepo, req.PriceListCode)
	if err != nil {
		return nil, err
	}

	parts, err := loadPartsByFilter(ctx, s.partRepo, req.Category, req.OEM, req.PartIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ID)
	}

	open, err := s.priceListItemRepo.OpenEntriesByParts(ctx, list.ID, ids)
	if err != nil {
		return nil, NewBusinessError("PRICE_LOOKUP_FAILED", "Failed to lookup current prices", err)
	}
	if len(open) == 0 {
		return nil, NewBusinessError("BATCH_EMPTY", "No part in the filter has a current price to adjust", ErrBatchEmpty)
	}

	actor := req.Actor
	if actor == "" {
		actor = "system"
	}
	now := utils.UTCNow()

	var batch *models.PriceChangeBatch
	var entries []*models.PriceChangeEntry

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		batch = &models.PriceChangeBatch{
			PriceListID: list.ID,
			Status:      models.PriceChangeBatchStatusDraft,
			Reason:      &req.Reason,
			CreatedBy:   actor,
		}
		if err := s.batchRepo.Save(txCtx, batch); err != nil {
			return fmt.Errorf("failed to save price change batch: %w", err)
		}

		entries = make([]*models.PriceChangeEntry, 0, len(open))
		for _, p := range parts {
			current, ok := open[p.ID]
			if !ok {
				continue
			}
			newPrice := math.Round(current.Price*(1+req.AdjustmentPct)*100) / 100
			entries = append(entries, &models.PriceChangeEntry{
				BatchID:  batch.ID,
				PartID:   p.ID,
				OldPrice: &current.Price,
				NewPrice: newPrice,
			})
		}
		if err := s.entryRepo.SaveBatch(txCtx, entries); err != nil {
			return fmt.Errorf("failed to save price change entries: %w", err)
		}

		if !req.Confirm {
			return nil
		}

		ok, err := s.batchRepo.MarkApplied(txCtx, batch.ID, actor, now)
		if err != nil {
			return fmt.Errorf("failed to mark batch applied: %w", err)
		}
		if !ok {
			return ErrBatchAlreadyApplied
		}
		return s.applyEntries(txCtx, batch.ID, list.ID, entries, actor, req.Reason, now)
	})

	if err != nil {
		errMsg := err.Error()
		desc := fmt.Sprintf("Percentage adjustment on list %s failed", list.Code)
		_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionBatchApplied, desc, false, &errMsg, metadata)
		return nil, NewBusinessError("BATCH_APPLY_FAILED", "Failed to run percentage adjustment", err)
	}

	status := models.PriceChangeBatchStatusDraft
	appliedAt := ""
	action := models.AuditActionBatchProposed
	if req.Confirm {
		status = models.PriceChangeBatchStatusApplied
		appliedAt = now.Format(time.RFC3339)
		action = models.AuditActionBatchApplied
	}

	desc := fmt.Sprintf("Percentage adjustment of %+.2f%% on list %s (%d entries, %s): %s",
		req.AdjustmentPct*100, list.Code, len(entries), status, req.Reason)
	_ = saveAuditLog(ctx, s.auditRepo, actor, action, desc, true, nil, metadata)

	return &dto.ApplyBatchResponse{
		Message:   "Percentage adjustment processed successfully",
		BatchUUID: batch.UUID.String(),
		Status:    status.String(),
		Applied:   len(entries),
		AppliedAt: appliedAt,
	}, nil
}

// ListPriceHistory returns the paginated audit trail of one part on a list
func (s *BulkPriceFlowImpl) ListPriceHistory(ctx context.Context, req *dto.ListPriceHistoryRequest) (*dto.ListPriceHistoryResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	limit := req.Limit
	if limit == 0 {
		limit = 20
	}
	if limit < 1 || limit > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	list, err := loadPriceListByCode(ctx, s.priceListRepo, req.PriceListCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.historyRepo.ListByPart(ctx, list.ID, req.PartID, limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("HISTORY_LOOKUP_FAILED", "Failed to load price history", err)
	}

	total, err := s.historyRepo.Count(ctx, models.PriceHistoryFilter{
		PriceListID: &list.ID,
		PartID:      &req.PartID,
	})
	if err != nil {
		return nil, NewBusinessError("HISTORY_LOOKUP_FAILED", "Failed to count price history", err)
	}

	items := make([]dto.PriceHistoryItemDTO, 0, len(rows))
	for _, h := range rows {
		items = append(items, dto.PriceHistoryItemDTO{
			PartID:       h.PartID,
			OldPrice:     h.OldPrice,
			NewPrice:     h.NewPrice,
			CostAtTime:   h.CostAtTime,
			MarginAtTime: h.MarginAtTime,
			Source:       h.Source,
			ChangedBy:    h.ChangedBy,
			ChangedAt:    h.CreatedAt.Format(time.RFC3339),
		})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &dto.ListPriceHistoryResponse{
		Message: "Price history retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// applyEntries performs the mechanics of an apply: close the open
// entry, insert the replacement, record history. Runs inside the
// caller's transaction.
func (s *BulkPriceFlowImpl) applyEntries(ctx context.Context, batchID, priceListID uint, entries []*models.PriceChangeEntry, actor, reason string, now time.Time) error {
	partIDs := make([]uint, 0, len(entries))
	for _, e := range entries {
		partIDs = append(partIDs, e.PartID)
	}
	parts, err := s.partRepo.ByIDs(ctx, partIDs)
	if err != nil {
		return fmt.Errorf("failed to load parts for apply: %w", err)
	}
	costByPart := make(map[uint]float64, len(parts))
	for _, p := range parts {
		costByPart[p.ID] = p.AverageCostARS
	}

	history := make([]*models.PriceHistory, 0, len(entries))
	for _, e := range entries {
		// Re-read the open entry inside the transaction; the proposal's
		// old price may have drifted since.
		current, err := s.priceListItemRepo.OpenEntry(ctx, priceListID, e.PartID, 0)
		if err != nil {
			return fmt.Errorf("failed to read open price entry: %w", err)
		}

		if err := s.priceListItemRepo.CloseOpenEntry(ctx, priceListID, e.PartID, 0, now); err != nil {
			return fmt.Errorf("failed to close open price entry: %w", err)
		}

		item := &models.PriceListItem{
			PriceListID: priceListID,
			PartID:      e.PartID,
			MinQuantity: 0,
			Price:       e.NewPrice,
			ValidFrom:   now,
		}
		if err := s.priceListItemRepo.Save(ctx, item); err != nil {
			return fmt.Errorf("failed to save price entry: %w", err)
		}

		cost := costByPart[e.PartID]
		h := &models.PriceHistory{
			PriceListID:  priceListID,
			PartID:       e.PartID,
			BatchID:      &batchID,
			NewPrice:     e.NewPrice,
			CostAtTime:   cost,
			MarginAtTime: pricing.Margin(e.NewPrice, cost),
			Source:       models.PriceHistorySourceBatch,
			ChangedBy:    actor,
			Reason:       &reason,
			CreatedAt:    now,
		}
		if current != nil {
			h.OldPrice = &current.Price
		}
		history = append(history, h)
	}

	if err := s.historyRepo.SaveBatch(ctx, history); err != nil {
		return fmt.Errorf("failed to save price history: %w", err)
	}
	return nil
}

func (s *BulkPriceFlowImpl) loadBatch(ctx context.Context, rawUUID string) (*models.PriceChangeBatch, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, NewBusinessError("BATCH_UUID_REQUIRED", "A valid batch UUID is required", ErrBatchUUIDRequired)
	}

	batch, err := s.batchRepo.ByUUIDWithEntries(ctx, id)
	if err != nil {
		return nil, NewBusinessError("BATCH_LOOKUP_FAILED", "Failed to lookup price change batch", err)
	}
	if batch == nil {
		return nil, NewBusinessError("BATCH_NOT_FOUND", "Price change batch not found", ErrBatchNotFound)
	}
	return batch, nil
}
