package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mukhma0c/cookies-manager/internal/cache"
	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
	"github.com/mukhma0c/cookies-manager/internal/util"
)

// ErrNoPriceData means an item has neither a priced purchase nor a default
// price. Callers decide whether that is fatal: previews report it, order
// snapshotting downgrades the line to zero cost.
var ErrNoPriceData = errors.New("no price data for item")

// CostingService resolves unit costs and computes snapshot line costs.
// All arithmetic is integer cents and millicents (1/1000 cent); rounding is
// half-up at every boundary.
type CostingService struct {
	store  store.Ledger
	cache  cache.Cache
	logger *zap.Logger
}

// NewCostingService creates a new costing service
func NewCostingService(store store.Ledger, cache cache.Cache) *CostingService {
	return &CostingService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// UnitCostMillicents derives the stored per-unit cost of a purchase at write
// time. Zero-cost purchases (adjustments) carry a zero unit cost.
func UnitCostMillicents(totalCostCents int64, quantity float64) int64 {
	if totalCostCents <= 0 || quantity <= 0 {
		return 0
	}
	return roundHalfUp(float64(totalCostCents) * 1000 / quantity)
}

// LineCostCents converts a unit cost in millicents and a used amount into a
// whole-cent line cost.
func LineCostCents(unitCostMillicents int64, amount float64) int64 {
	return roundHalfUp(float64(unitCostMillicents) * amount / 1000)
}

// ResolveUnitCost returns the current unit cost of an item in millicents.
// The most recent priced purchase wins (date, then insertion order); items
// without purchase history fall back to their default price. Returns
// ErrNoPriceData when neither exists, store.ErrNotFound when the item itself
// does not exist.
func (s *CostingService) ResolveUnitCost(ctx context.Context, kind models.ItemKind, itemID int64) (int64, error) {
	ctx, span := util.StartSpan(ctx, "CostingService.ResolveUnitCost")
	defer span.End()

	if millicents, ok, err := s.cache.GetUnitCost(ctx, kind, itemID); err == nil && ok {
		return millicents, nil
	} else if err != nil {
		s.logger.Warn("Unit cost cache read failed",
			zap.String("item_kind", string(kind)),
			zap.Int64("item_id", itemID),
			zap.Error(err))
	}

	item, err := s.store.GetStockItem(ctx, kind, itemID)
	if err != nil {
		return 0, err
	}

	var millicents int64
	purchase, err := s.store.LatestGenuinePurchase(ctx, kind, itemID)
	switch {
	case err == nil:
		millicents = purchase.UnitCostMillicents
	case errors.Is(err, store.ErrNotFound):
		if item.DefaultPriceCents <= 0 {
			return 0, fmt.Errorf("%s/%d: %w", kind, itemID, ErrNoPriceData)
		}
		millicents = item.DefaultPriceCents * 1000
	default:
		return 0, fmt.Errorf("failed to resolve unit cost: %w", err)
	}

	if err := s.cache.SetUnitCost(ctx, kind, itemID, millicents); err != nil {
		s.logger.Warn("Unit cost cache write failed", zap.Error(err))
	}
	return millicents, nil
}

// ComputeLineCost snapshots the cost for using an amount of an item. The
// second return value is false when the item has no price data; the line cost
// is then zero and the caller records it as such.
func (s *CostingService) ComputeLineCost(ctx context.Context, kind models.ItemKind, itemID int64, amount float64) (int64, bool, error) {
	millicents, err := s.ResolveUnitCost(ctx, kind, itemID)
	if errors.Is(err, ErrNoPriceData) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return LineCostCents(millicents, amount), true, nil
}

// PreviewIngredientLine is one planned ingredient usage in a cost preview.
type PreviewIngredientLine struct {
	ID     int64   `json:"id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// PreviewPackagingLine is one planned packaging usage in a cost preview.
type PreviewPackagingLine struct {
	ID       int64   `json:"id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// PreviewCostRequest asks what an order would cost at today's prices.
type PreviewCostRequest struct {
	Ingredients    []PreviewIngredientLine `json:"ingredients"`
	Packaging      []PreviewPackagingLine  `json:"packaging"`
	Quantity       int                     `json:"quantity"`
	SalePriceCents int64                   `json:"sale_price_cents"`
}

// lines flattens the two request arrays into kind-tagged lines, the same
// shape order creation consumes.
func (req *PreviewCostRequest) lines() []OrderLineRequest {
	lines := make([]OrderLineRequest, 0, len(req.Ingredients)+len(req.Packaging))
	for _, ing := range req.Ingredients {
		lines = append(lines, OrderLineRequest{ItemKind: models.KindIngredient, ItemID: ing.ID, Amount: ing.Amount})
	}
	for _, pkg := range req.Packaging {
		lines = append(lines, OrderLineRequest{ItemKind: models.KindPackaging, ItemID: pkg.ID, Amount: pkg.Quantity})
	}
	return lines
}

// PreviewCostResponse mirrors what snapshotting would write, plus derived
// margin figures. Lines without price data surface in UnpricedItems instead
// of failing the preview.
type PreviewCostResponse struct {
	IngredientCostCents int64    `json:"ingredient_cost_cents"`
	PackagingCostCents  int64    `json:"packaging_cost_cents"`
	TotalCostCents      int64    `json:"total_cost_cents"`
	CostPerCookieCents  int64    `json:"cost_per_cookie_cents"`
	MarginCents         int64    `json:"margin_cents"`
	MarginPercentage    float64  `json:"margin_percentage"`
	UnpricedItems       []string `json:"unpriced_items,omitempty"`
}

// PreviewOrderCost computes what the snapshot for these lines would be today.
// It uses the exact same resolution and rounding as order creation, so a
// preview followed immediately by an order yields identical numbers.
func (s *CostingService) PreviewOrderCost(ctx context.Context, req *PreviewCostRequest) (*PreviewCostResponse, error) {
	ctx, span := util.StartSpan(ctx, "CostingService.PreviewOrderCost")
	defer span.End()

	resp := &PreviewCostResponse{}
	for _, line := range req.lines() {
		costCents, priced, err := s.ComputeLineCost(ctx, line.ItemKind, line.ItemID, line.Amount)
		if err != nil {
			return nil, err
		}
		if !priced {
			resp.UnpricedItems = append(resp.UnpricedItems,
				fmt.Sprintf("%s/%d", line.ItemKind, line.ItemID))
		}
		switch line.ItemKind {
		case models.KindIngredient:
			resp.IngredientCostCents += costCents
		case models.KindPackaging:
			resp.PackagingCostCents += costCents
		}
	}
	resp.TotalCostCents = resp.IngredientCostCents + resp.PackagingCostCents

	if req.Quantity > 0 {
		resp.CostPerCookieCents = roundHalfUp(float64(resp.TotalCostCents) / float64(req.Quantity))
	}
	resp.MarginCents = req.SalePriceCents - resp.TotalCostCents
	if req.SalePriceCents > 0 {
		pct := float64(resp.MarginCents) / float64(req.SalePriceCents) * 100
		resp.MarginPercentage = math.Round(pct*100) / 100
	}

	util.CostPreviewsTotal.Inc()
	return resp, nil
}
