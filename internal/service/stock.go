package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mukhma0c/cookies-manager/internal/broker"
	"github.com/mukhma0c/cookies-manager/internal/cache"
	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
	"github.com/mukhma0c/cookies-manager/internal/util"
)

// Reconciliation deltas smaller than this are noise from float arithmetic and
// are not written.
const adjustmentEpsilon = 0.001

// StockService derives stock levels from the ledger. Stock is never stored:
// it is always sum of purchased quantities (adjustments included) minus sum
// of order line amounts.
type StockService struct {
	store          store.Ledger
	cache          cache.Cache
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(store store.Ledger, cache cache.Cache, eventPublisher *broker.EventPublisher) *StockService {
	return &StockService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CurrentStock computes the stock level of one item.
func (s *StockService) CurrentStock(ctx context.Context, kind models.ItemKind, itemID int64) (float64, error) {
	ctx, span := util.StartSpan(ctx, "StockService.CurrentStock")
	defer span.End()

	if quantity, ok, err := s.cache.GetStock(ctx, kind, itemID); err == nil && ok {
		return quantity, nil
	} else if err != nil {
		s.logger.Warn("Stock cache read failed", zap.Error(err))
	}

	purchased, err := s.store.PurchasedQuantity(ctx, kind, itemID)
	if err != nil {
		return 0, err
	}
	used, err := s.store.UsedQuantity(ctx, kind, itemID)
	if err != nil {
		return 0, err
	}
	quantity := purchased - used

	if err := s.cache.SetStock(ctx, kind, itemID, quantity); err != nil {
		s.logger.Warn("Stock cache write failed", zap.Error(err))
	}
	return quantity, nil
}

// StockLevel is one item with its derived stock.
type StockLevel struct {
	Item     models.StockItem `json:"item"`
	Quantity float64          `json:"quantity"`
	LowStock bool             `json:"low_stock"`
}

// StockLevels computes stock for every item of a kind. An item is low on
// stock when its threshold is positive and the level is at or below it; a
// zero threshold disables the flag.
func (s *StockService) StockLevels(ctx context.Context, kind models.ItemKind) ([]StockLevel, error) {
	ctx, span := util.StartSpan(ctx, "StockService.StockLevels")
	defer span.End()

	items, err := s.store.ListStockItems(ctx, kind)
	if err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(items))
	for _, item := range items {
		quantity, err := s.CurrentStock(ctx, kind, item.ID)
		if err != nil {
			return nil, err
		}
		levels = append(levels, StockLevel{
			Item:     item,
			Quantity: quantity,
			LowStock: item.LowStockThreshold > 0 && quantity <= item.LowStockThreshold,
		})
	}
	return levels, nil
}

// AdjustStock reconciles the derived stock of an item to a physically counted
// quantity by writing a signed zero-cost purchase for the difference. Deltas
// within epsilon of zero write nothing. The adjustment moves stock but never
// participates in cost resolution.
func (s *StockService) AdjustStock(ctx context.Context, kind models.ItemKind, itemID int64, countedQuantity float64, notes string) (float64, error) {
	ctx, span := util.StartSpan(ctx, "StockService.AdjustStock")
	defer span.End()

	item, err := s.store.GetStockItem(ctx, kind, itemID)
	if err != nil {
		return 0, err
	}

	current, err := s.CurrentStock(ctx, kind, itemID)
	if err != nil {
		return 0, err
	}
	delta := countedQuantity - current
	if math.Abs(delta) <= adjustmentEpsilon {
		s.logger.Info("Stock already matches count, no adjustment written",
			zap.String("item_kind", string(kind)),
			zap.Int64("item_id", itemID))
		return 0, nil
	}

	adjustment := &models.Purchase{
		ItemKind:     kind,
		ItemID:       itemID,
		PurchaseDate: time.Now(),
		Quantity:     delta,
		Unit:         item.DefaultUnit,
		Notes:        notes,
	}
	if err := s.store.CreatePurchase(ctx, adjustment); err != nil {
		return 0, err
	}

	util.StockAdjustmentsTotal.WithLabelValues(string(kind)).Inc()
	s.logger.Info("Stock adjusted",
		zap.String("item_kind", string(kind)),
		zap.Int64("item_id", itemID),
		zap.Float64("delta", delta))

	if err := s.cache.InvalidateItem(ctx, kind, itemID); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}

	if s.eventPublisher != nil {
		event := &models.StockAdjustedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeStockAdjusted,
				Timestamp: time.Now(),
			},
			ItemKind: kind,
			ItemID:   itemID,
			Delta:    delta,
		}
		if err := s.eventPublisher.PublishStockAdjusted(ctx, event); err != nil {
			s.logger.Error("Failed to publish StockAdjusted event", zap.Error(err))
		}
	}
	return delta, nil
}

// CheckLowStock scans both kinds for items at or below their threshold,
// updates the gauge, and publishes one alert per flagged item. Used by the
// periodic worker and exposed on the API for an on-demand check.
func (s *StockService) CheckLowStock(ctx context.Context) ([]StockLevel, error) {
	ctx, span := util.StartSpan(ctx, "StockService.CheckLowStock")
	defer span.End()

	var flagged []StockLevel
	for _, kind := range []models.ItemKind{models.KindIngredient, models.KindPackaging} {
		levels, err := s.StockLevels(ctx, kind)
		if err != nil {
			return nil, err
		}
		count := 0
		for _, level := range levels {
			if !level.LowStock {
				continue
			}
			count++
			flagged = append(flagged, level)
			s.logger.Warn("Item is low on stock",
				zap.String("item_kind", string(kind)),
				zap.Int64("item_id", level.Item.ID),
				zap.String("name", level.Item.Name),
				zap.Float64("quantity", level.Quantity),
				zap.Float64("threshold", level.Item.LowStockThreshold))

			if s.eventPublisher != nil {
				event := &models.LowStockAlertEvent{
					BaseEvent: models.BaseEvent{
						EventID:   uuid.New().String(),
						EventType: models.EventTypeLowStockAlert,
						Timestamp: time.Now(),
					},
					ItemKind:     kind,
					ItemID:       level.Item.ID,
					Name:         level.Item.Name,
					CurrentStock: level.Quantity,
					Threshold:    level.Item.LowStockThreshold,
					Unit:         level.Item.DefaultUnit,
				}
				if err := s.eventPublisher.PublishLowStockAlert(ctx, event); err != nil {
					s.logger.Error("Failed to publish LowStockAlert event", zap.Error(err))
				}
			}
		}
		util.LowStockItems.WithLabelValues(string(kind)).Set(float64(count))
	}
	return flagged, nil
}
