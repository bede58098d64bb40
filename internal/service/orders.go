package service

import (
	"context"
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

// OrderService creates orders with immutable cost snapshots
type OrderService struct {
	store          store.Ledger
	cache          cache.Cache
	costing        *CostingService
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store store.Ledger,
	cache cache.Cache,
	costing *CostingService,
	eventPublisher *broker.EventPublisher,
) *OrderService {
	return &OrderService{
		store:          store,
		cache:          cache,
		costing:        costing,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// OrderLineRequest is one material usage entry of a new order
type OrderLineRequest struct {
	ItemKind models.ItemKind `json:"item_kind" binding:"required"`
	ItemID   int64           `json:"item_id" binding:"required"`
	Amount   float64         `json:"amount" binding:"required,gt=0"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerID          *int64             `json:"customer_id"`
	RecipeID            *int64             `json:"recipe_id"`
	OrderDate           time.Time          `json:"order_date"`
	CookieSize          string             `json:"cookie_size"`
	DoughWeightG        float64            `json:"dough_weight_g"`
	QuantityOrdered     int                `json:"quantity_ordered" binding:"required,min=1"`
	QuantityBaked       int                `json:"quantity_baked"`
	QuantityKeptFamily  int                `json:"quantity_kept_family"`
	SalePriceTotalCents int64              `json:"sale_price_total_cents"`
	Notes               string             `json:"notes"`
	Lines               []OrderLineRequest `json:"lines" binding:"required,min=1"`
}

// CreateOrder snapshots the current cost of every line and commits the order
// and all lines in one transaction. Costs are frozen here: later price
// changes never touch them. An item without price data does not fail the
// order, its line is recorded at zero cost.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, []models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	lines := make([]models.OrderLine, 0, len(req.Lines))
	var totalCostCents int64
	for _, lr := range req.Lines {
		if !lr.ItemKind.Valid() {
			util.OrdersFailedTotal.WithLabelValues("invalid_kind").Inc()
			return nil, nil, fmt.Errorf("unknown item kind %q", lr.ItemKind)
		}
		costCents, priced, err := s.costing.ComputeLineCost(ctx, lr.ItemKind, lr.ItemID, lr.Amount)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("cost_resolution").Inc()
			return nil, nil, err
		}
		if !priced {
			util.ZeroCostLinesTotal.Inc()
			s.logger.Warn("Snapshotting line at zero cost, item has no price data",
				zap.String("item_kind", string(lr.ItemKind)),
				zap.Int64("item_id", lr.ItemID))
		}
		totalCostCents += costCents
		lines = append(lines, models.OrderLine{
			ItemKind:             lr.ItemKind,
			ItemID:               lr.ItemID,
			Amount:               lr.Amount,
			CostAtTimeOfUseCents: costCents,
		})
	}

	order := &models.Order{
		CustomerID:          req.CustomerID,
		RecipeID:            req.RecipeID,
		OrderDate:           orderDate,
		CookieSize:          req.CookieSize,
		DoughWeightG:        req.DoughWeightG,
		QuantityOrdered:     req.QuantityOrdered,
		QuantityBaked:       req.QuantityBaked,
		QuantityKeptFamily:  req.QuantityKeptFamily,
		SalePriceTotalCents: req.SalePriceTotalCents,
		Notes:               req.Notes,
	}

	if err := s.store.CreateOrderWithLines(ctx, order, lines); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("total_cost_cents", totalCostCents))

	// Usage changed the derived stock of every line item.
	for _, line := range lines {
		if err := s.cache.InvalidateItem(ctx, line.ItemKind, line.ItemID); err != nil {
			s.logger.Warn("Cache invalidation failed", zap.Error(err))
		}
	}

	if s.eventPublisher != nil {
		event := s.buildOrderCreatedEvent(order, lines, totalCostCents)
		if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCreated event",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
		}
	}

	return order, lines, nil
}

func (s *OrderService) buildOrderCreatedEvent(order *models.Order, lines []models.OrderLine, totalCostCents int64) *models.OrderCreatedEvent {
	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:             order.ID,
		SalePriceTotalCents: order.SalePriceTotalCents,
		TotalCostCents:      totalCostCents,
	}
	if order.CustomerID != nil {
		event.CustomerID = *order.CustomerID
	}
	for _, line := range lines {
		event.Lines = append(event.Lines, models.OrderLineData{
			ItemKind:             line.ItemKind,
			ItemID:               line.ItemID,
			Amount:               line.Amount,
			CostAtTimeOfUseCents: line.CostAtTimeOfUseCents,
		})
	}
	return event
}

// GetOrder returns an order with its snapshotted lines
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, []models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	return s.store.GetOrder(ctx, id)
}

// ListOrders returns all orders newest first, with snapshot cost sums
func (s *OrderService) ListOrders(ctx context.Context) ([]models.OrderWithCosts, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	return s.store.ListOrders(ctx)
}

// DeleteOrder removes an order and its lines, returning the used amounts to
// stock.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	_, lines, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	for _, line := range lines {
		if err := s.cache.InvalidateItem(ctx, line.ItemKind, line.ItemID); err != nil {
			s.logger.Warn("Cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("Order deleted", zap.Int64("order_id", id))
	return nil
}
