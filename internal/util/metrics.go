package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created with cost snapshots",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	PurchasesRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_recorded_total",
		Help: "Total number of purchases recorded",
	}, []string{"item_kind"})

	StockAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of zero-cost adjustment purchases written",
	}, []string{"item_kind"})

	ZeroCostLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_lines_zero_cost_total",
		Help: "Order lines snapshotted at zero cost for lack of price data",
	})

	LowStockItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "low_stock_items",
		Help: "Number of items at or below their low-stock threshold",
	}, []string{"item_kind"})

	CostPreviewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cost_previews_total",
		Help: "Total number of order cost previews computed",
	})

	ReportExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_exports_total",
		Help: "Total number of CSV report exports",
	}, []string{"report"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
