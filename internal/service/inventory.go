package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mukhma0c/cookies-manager/internal/broker"
	"github.com/mukhma0c/cookies-manager/internal/cache"
	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
	"github.com/mukhma0c/cookies-manager/internal/util"
)

// InventoryService manages the catalog: stock items, purchases, customers,
// recipes.
type InventoryService struct {
	store          store.Ledger
	cache          cache.Cache
	costing        *CostingService
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	store store.Ledger,
	cache cache.Cache,
	costing *CostingService,
	eventPublisher *broker.EventPublisher,
) *InventoryService {
	return &InventoryService{
		store:          store,
		cache:          cache,
		costing:        costing,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// --- Stock items ---

func (s *InventoryService) CreateStockItem(ctx context.Context, item *models.StockItem) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.CreateStockItem")
	defer span.End()

	if !item.Kind.Valid() {
		return fmt.Errorf("unknown item kind %q", item.Kind)
	}
	return s.store.CreateStockItem(ctx, item)
}

func (s *InventoryService) GetStockItem(ctx context.Context, kind models.ItemKind, id int64) (*models.StockItem, error) {
	return s.store.GetStockItem(ctx, kind, id)
}

func (s *InventoryService) ListStockItems(ctx context.Context, kind models.ItemKind) ([]models.StockItem, error) {
	return s.store.ListStockItems(ctx, kind)
}

// UpdateStockItem saves the item and drops its cached unit cost, since the
// default price may have changed.
func (s *InventoryService) UpdateStockItem(ctx context.Context, item *models.StockItem) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.UpdateStockItem")
	defer span.End()

	if err := s.store.UpdateStockItem(ctx, item); err != nil {
		return err
	}
	if err := s.cache.InvalidateItem(ctx, item.Kind, item.ID); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}
	return nil
}

func (s *InventoryService) DeleteStockItem(ctx context.Context, kind models.ItemKind, id int64) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.DeleteStockItem")
	defer span.End()

	if err := s.store.DeleteStockItem(ctx, kind, id); err != nil {
		return err
	}
	if err := s.cache.InvalidateItem(ctx, kind, id); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}
	return nil
}

// --- Purchases ---

// RecordPurchase persists a purchase with its unit cost computed once, at
// write time. A total cost of zero marks a stock adjustment and stores a zero
// unit cost.
func (s *InventoryService) RecordPurchase(ctx context.Context, purchase *models.Purchase) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.RecordPurchase")
	defer span.End()

	if !purchase.ItemKind.Valid() {
		return fmt.Errorf("unknown item kind %q", purchase.ItemKind)
	}
	if purchase.Quantity == 0 {
		return errors.New("purchase quantity must be non-zero")
	}
	if purchase.PurchaseDate.IsZero() {
		purchase.PurchaseDate = time.Now()
	}
	purchase.UnitCostMillicents = UnitCostMillicents(purchase.TotalCostCents, purchase.Quantity)

	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		return err
	}

	util.PurchasesRecordedTotal.WithLabelValues(string(purchase.ItemKind)).Inc()
	s.logger.Info("Purchase recorded",
		zap.Int64("purchase_id", purchase.ID),
		zap.String("item_kind", string(purchase.ItemKind)),
		zap.Int64("item_id", purchase.ItemID),
		zap.Int64("unit_cost_millicents", purchase.UnitCostMillicents))

	if err := s.cache.InvalidateItem(ctx, purchase.ItemKind, purchase.ItemID); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}

	if s.eventPublisher != nil && !purchase.IsAdjustment() {
		event := &models.PurchaseRecordedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePurchaseRecorded,
				Timestamp: time.Now(),
			},
			PurchaseID:         purchase.ID,
			ItemKind:           purchase.ItemKind,
			ItemID:             purchase.ItemID,
			Quantity:           purchase.Quantity,
			TotalCostCents:     purchase.TotalCostCents,
			UnitCostMillicents: purchase.UnitCostMillicents,
		}
		if err := s.eventPublisher.PublishPurchaseRecorded(ctx, event); err != nil {
			s.logger.Error("Failed to publish PurchaseRecorded event", zap.Error(err))
		}
	}
	return nil
}

func (s *InventoryService) GetPurchase(ctx context.Context, id int64) (*models.Purchase, error) {
	return s.store.GetPurchase(ctx, id)
}

func (s *InventoryService) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	return s.store.ListPurchases(ctx)
}

// UpdatePurchase rewrites a purchase, recomputing its unit cost. Existing
// order snapshots taken from the old price are untouched.
func (s *InventoryService) UpdatePurchase(ctx context.Context, purchase *models.Purchase) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.UpdatePurchase")
	defer span.End()

	if purchase.Quantity == 0 {
		return errors.New("purchase quantity must be non-zero")
	}
	purchase.UnitCostMillicents = UnitCostMillicents(purchase.TotalCostCents, purchase.Quantity)
	if err := s.store.UpdatePurchase(ctx, purchase); err != nil {
		return err
	}
	if err := s.cache.InvalidateItem(ctx, purchase.ItemKind, purchase.ItemID); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}
	return nil
}

func (s *InventoryService) DeletePurchase(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.DeletePurchase")
	defer span.End()

	purchase, err := s.store.GetPurchase(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePurchase(ctx, id); err != nil {
		return err
	}
	if err := s.cache.InvalidateItem(ctx, purchase.ItemKind, purchase.ItemID); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}
	return nil
}

// ItemCost is one row of the latest-costs view.
type ItemCost struct {
	Item               models.StockItem `json:"item"`
	UnitCostMillicents int64            `json:"unit_cost_millicents"`
	Source             string           `json:"source"`
}

// Cost sources for ItemCost.Source.
const (
	CostSourcePurchase = "purchase"
	CostSourceDefault  = "default"
	CostSourceNone     = "none"
)

// LatestCosts resolves the current unit cost of every item of a kind, tagging
// each row with where the price came from.
func (s *InventoryService) LatestCosts(ctx context.Context, kind models.ItemKind) ([]ItemCost, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.LatestCosts")
	defer span.End()

	items, err := s.store.ListStockItems(ctx, kind)
	if err != nil {
		return nil, err
	}

	costs := make([]ItemCost, 0, len(items))
	for _, item := range items {
		row := ItemCost{Item: item, Source: CostSourceNone}
		purchase, err := s.store.LatestGenuinePurchase(ctx, kind, item.ID)
		switch {
		case err == nil:
			row.UnitCostMillicents = purchase.UnitCostMillicents
			row.Source = CostSourcePurchase
		case errors.Is(err, store.ErrNotFound):
			if item.DefaultPriceCents > 0 {
				row.UnitCostMillicents = item.DefaultPriceCents * 1000
				row.Source = CostSourceDefault
			}
		default:
			return nil, err
		}
		costs = append(costs, row)
	}
	return costs, nil
}

// --- Customers ---

func (s *InventoryService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.store.CreateCustomer(ctx, customer)
}

func (s *InventoryService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *InventoryService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.store.ListCustomers(ctx)
}

func (s *InventoryService) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.store.UpdateCustomer(ctx, customer)
}

func (s *InventoryService) DeleteCustomer(ctx context.Context, id int64) error {
	return s.store.DeleteCustomer(ctx, id)
}

// --- Recipes ---

func (s *InventoryService) CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error {
	return s.store.CreateRecipe(ctx, recipe, ingredients)
}

func (s *InventoryService) GetRecipe(ctx context.Context, id int64) (*models.Recipe, []models.RecipeIngredient, error) {
	return s.store.GetRecipe(ctx, id)
}

func (s *InventoryService) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	return s.store.ListRecipes(ctx)
}

func (s *InventoryService) UpdateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error {
	return s.store.UpdateRecipe(ctx, recipe, ingredients)
}

func (s *InventoryService) DeleteRecipe(ctx context.Context, id int64) error {
	return s.store.DeleteRecipe(ctx, id)
}
