package worker

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/mukhma0c/cookies-manager/internal/broker"
	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/service"
	"github.com/mukhma0c/cookies-manager/internal/util"
)

// LowStockWorker runs the low-stock check on a fixed interval. Runs are
// independent and idempotent, an overlapping or missed run is harmless.
type LowStockWorker struct {
	stock    *service.StockService
	interval time.Duration
	logger   *zap.Logger
}

// NewLowStockWorker creates a new low stock worker
func NewLowStockWorker(stock *service.StockService, interval time.Duration) *LowStockWorker {
	return &LowStockWorker{
		stock:    stock,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start runs the periodic check until the context is cancelled. The first
// check fires immediately so a fresh deployment reports without waiting a
// full interval.
func (w *LowStockWorker) Start(ctx context.Context) error {
	log.Printf("Starting low-stock worker, interval=%s", w.interval)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Low-stock worker context cancelled, stopping...")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *LowStockWorker) runOnce(ctx context.Context) {
	flagged, err := w.stock.CheckLowStock(ctx)
	if err != nil {
		w.logger.Error("Low-stock check failed", zap.Error(err))
		return
	}
	w.logger.Info("Low-stock check completed", zap.Int("flagged", len(flagged)))
}

// AlertWorker consumes ledger events and logs low-stock alerts. This is the
// notification tail of the pipeline; swapping the log for email or chat
// delivery only touches the handler.
type AlertWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewAlertWorker creates a new alert worker
func NewAlertWorker(consumer *broker.Consumer) *AlertWorker {
	logger := util.GetLogger()
	eventHandler := broker.NewEventHandler()

	eventHandler.OnLowStockAlert(func(ctx context.Context, event *models.LowStockAlertEvent) error {
		logger.Warn("Low stock alert",
			zap.String("item_kind", string(event.ItemKind)),
			zap.Int64("item_id", event.ItemID),
			zap.String("name", event.Name),
			zap.Float64("current_stock", event.CurrentStock),
			zap.Float64("threshold", event.Threshold),
			zap.String("unit", event.Unit))
		return nil
	})

	return &AlertWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *AlertWorker) Start(ctx context.Context) error {
	log.Println("Starting alert worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AlertWorker) Stop() error {
	log.Println("Stopping alert worker...")
	return w.consumer.Close()
}
