package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/app/services"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// MarkupFlow computes rule-based candidate prices and persists them as
// draft price change batches
type MarkupFlow interface {
	PreviewMarkup(ctx context.Context, req *dto.MarkupPreviewRequest, metadata *ClientMetadata) (*dto.MarkupPreviewResponse, error)
	ProposeMarkup(ctx context.Context, req *dto.MarkupProposeRequest, metadata *ClientMetadata) (*dto.MarkupProposeResponse, error)
}

// MarkupFlowImpl implements the markup business flow
type MarkupFlowImpl struct {
	partRepo          repository.PartRepository
	priceListRepo     repository.PriceListRepository
	priceListItemRepo repository.PriceListItemRepository
	markupRuleRepo    repository.MarkupRuleRepository
	batchRepo         repository.PriceChangeBatchRepository
	entryRepo         repository.PriceChangeEntryRepository
	auditRepo         repository.AuditLogRepository
	rates             services.ExchangeRateService
	pricingCfg        config.PricingConfig
	db                *gorm.DB
}

// NewMarkupFlow creates a new markup flow instance
func NewMarkupFlow(
	partRepo repository.PartRepository,
	priceListRepo repository.PriceListRepository,
	priceListItemRepo repository.PriceListItemRepository,
	markupRuleRepo repository.MarkupRuleRepository,
	batchRepo repository.PriceChangeBatchRepository,
	entryRepo repository.PriceChangeEntryRepository,
	auditRepo repository.AuditLogRepository,
	rates services.ExchangeRateService,
	pricingCfg config.PricingConfig,
	db *gorm.DB,
) MarkupFlow {
	return &MarkupFlowImpl{
		partRepo:          partRepo,
		priceListRepo:     priceListRepo,
		priceListItemRepo: priceListItemRepo,
		markupRuleRepo:    markupRuleRepo,
		batchRepo:         batchRepo,
		entryRepo:         entryRepo,
		auditRepo:         auditRepo,
		rates:             rates,
		pricingCfg:        pricingCfg,
		db:                db,
	}
}

// markupCandidate pairs a part with its resolved markup result.
type markupCandidate struct {
	part     *models.Part
	current  *models.PriceListItem
	resolved *pricing.MarkupResult
}

// PreviewMarkup resolves the candidate price for every part matching
// the filter without persisting anything
func (s *MarkupFlowImpl) PreviewMarkup(ctx context.Context, req *dto.MarkupPreviewRequest, metadata *ClientMetadata) (*dto.MarkupPreviewResponse, error) {
	list, err := loadPriceListByCode(ctx, s.priceListRepo, req.PriceListCode)
	if err != nil {
		return nil, err
	}

	candidates, err := s.resolveCandidates(ctx, list, req.Category, req.OEM, req.PartIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MarkupCandidateDTO, 0, len(candidates))
	for _, c := range candidates {
		d := dto.MarkupCandidateDTO{
			PartID:   c.part.ID,
			SKU:      c.part.SKU,
			Category: c.part.Category,
			Cost:     c.part.AverageCostARS,
			NewPrice: c.resolved.Price,
			RuleID:   c.resolved.RuleID,
			RuleName: c.resolved.RuleName,
			Margin:   c.resolved.Margin,
		}
		if c.current != nil {
			d.CurrentPrice = &c.current.Price
			delta := c.resolved.DeltaFromCurrent
			d.DeltaPct = &delta
		}
		out = append(out, d)
	}

	return &dto.MarkupPreviewResponse{
		Message:    "Markup candidates resolved successfully",
		PriceList:  list.Code,
		Candidates: out,
	}, nil
}

// ProposeMarkup persists the resolved candidates as a draft batch. The
// draft changes nothing until it is applied.
func (s *MarkupFlowImpl) ProposeMarkup(ctx context.Context, req *dto.MarkupProposeRequest, metadata *ClientMetadata) (*dto.MarkupProposeResponse, error) {
	list, err := loadPriceListByCode(ctx, s.priceListRepo, req.PriceListCode)
	if err != nil {
		return nil, err
	}

	candidates, err := s.resolveCandidates(ctx, list, req.Category, req.OEM, req.PartIDs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, NewBusinessError("BATCH_EMPTY", "No parts produced a candidate price", ErrBatchEmpty)
	}

	actor := req.Actor
	if actor == "" {
		actor = "system"
	}

	var batch *models.PriceChangeBatch
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

		entries := make([]*models.PriceChangeEntry, 0, len(candidates))
		for _, c := range candidates {
			entry := &models.PriceChangeEntry{
				BatchID:      batch.ID,
				PartID:       c.part.ID,
				NewPrice:     c.resolved.Price,
				MarkupRuleID: c.resolved.RuleID,
			}
			if c.current != nil {
				entry.OldPrice = &c.current.Price
			}
			entries = append(entries, entry)
		}
		if err := s.entryRepo.SaveBatch(txCtx, entries); err != nil {
			return fmt.Errorf("failed to save price change entries: %w", err)
		}
		return nil
	})

	if err != nil {
		errMsg := err.Error()
		desc := fmt.Sprintf("Markup batch proposal for list %s failed", list.Code)
		_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionBatchProposed, desc, false, &errMsg, metadata)
		return nil, NewBusinessError("BATCH_PROPOSE_FAILED", "Failed to persist price change batch", err)
	}

	desc := fmt.Sprintf("Markup batch %s proposed for list %s with %d entries: %s", batch.UUID, list.Code, len(candidates), req.Reason)
	_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionBatchProposed, desc, true, nil, metadata)

	return &dto.MarkupProposeResponse{
		Message:   "Price change batch proposed successfully",
		BatchUUID: batch.UUID.String(),
		Status:    batch.Status.String(),
		Entries:   len(candidates),
		CreatedAt: batch.CreatedAt.Format(time.RFC3339),
	}, nil
}

// resolveCandidates loads the filtered parts and runs the markup
// resolver against the active rule set. Parts without a local cost
// basis are skipped; there is nothing to mark up yet.
func (s *MarkupFlowImpl) resolveCandidates(ctx context.Context, list *models.PriceList, category *string, oem *bool, partIDs []uint) ([]markupCandidate, error) {
	parts, err := loadPartsByFilter(ctx, s.partRepo, category, oem, partIDs)
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

	rules, err := s.markupRuleRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("RULE_LOOKUP_FAILED", "Failed to load markup rules", err)
	}
	engineRules := make([]pricing.MarkupRule, 0, len(rules))
	for _, r := range rules {
		engineRules = append(engineRules, r.ToEngine())
	}

	cfg := s.engineConfig(ctx)

	out := make([]markupCandidate, 0, len(parts))
	for _, p := range parts {
		if p.AverageCostARS <= 0 {
			continue
		}

		attrs := pricing.ItemAttributes{
			Category: p.Category,
			Cost:     p.AverageCostARS,
			OEM:      p.OEM,
		}
		current := open[p.ID]
		if current != nil {
			attrs.CurrentPrice = current.Price
		}

		resolved, err := pricing.ResolveMarkup(attrs, engineRules, cfg)
		if err != nil {
			return nil, NewBusinessError("MARKUP_RESOLUTION_FAILED", fmt.Sprintf("Failed to resolve markup for part %s", p.SKU), err)
		}

		out = append(out, markupCandidate{part: p, current: current, resolved: resolved})
	}

	return out, nil
}

func (s *MarkupFlowImpl) engineConfig(ctx context.Context) pricing.Config {
	var rate float64
	var rateAt *time.Time
	if latest, err := s.rates.Latest(ctx); err == nil && latest != nil {
		rate = latest.Rate
		rateAt = &latest.CreatedAt
	}
	return s.pricingCfg.Engine(rate, rateAt)
}

// loadPriceListByCode resolves an active price list or the matching
// business error.
func loadPriceListByCode(ctx context.Context, repo repository.PriceListRepository, code string) (*models.PriceList, error) {
	list, err := repo.ByCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("PRICE_LIST_LOOKUP_FAILED", "Failed to lookup price list", err)
	}
	if list == nil {
		return nil, NewBusinessError("PRICE_LIST_NOT_FOUND", "Price list not found", ErrPriceListNotFound)
	}
	if !list.Active {
		return nil, NewBusinessError("PRICE_LIST_INACTIVE", "Price list is inactive", ErrPriceListInactive)
	}
	return list, nil
}

// loadPartsByFilter loads active parts by explicit IDs or by the
// category/OEM filter. An empty result is an error; every bulk
// operation needs at least one part to act on.
func loadPartsByFilter(ctx context.Context, repo repository.PartRepository, category *string, oem *bool, partIDs []uint) ([]*models.Part, error) {
	var parts []*models.Part
	var err error

	if len(partIDs) > 0 {
		parts, err = repo.ByIDs(ctx, partIDs)
	} else {
		filter := models.PartFilter{
			Category: category,
			OEM:      oem,
			Active:   utils.ToPtr(true),
		}
		parts, err = repo.ByFilter(ctx, filter, "sku ASC", 0, 0)
	}
	if err != nil {
		return nil, NewBusinessError("PART_LOOKUP_FAILED", "Failed to lookup parts", err)
	}

	active := make([]*models.Part, 0, len(parts))
	for _, p := range parts {
		if p.Active {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, NewBusinessError("PARTS_REQUIRED", "No parts matched the filter", ErrPartsRequired)
	}
	return active, nil
}
