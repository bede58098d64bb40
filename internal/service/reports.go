package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
	"github.com/mukhma0c/cookies-manager/internal/util"
)

// Report periods accepted by the aggregator.
const (
	PeriodAll         = "all"
	PeriodMonth       = "month"
	PeriodThreeMonths = "3months"
	PeriodSixMonths   = "6months"
	PeriodYear        = "year"
)

// ReportService aggregates orders and their snapshotted costs into financial
// summaries, per-order profit rows, usage totals, time-bucketed trends, and
// top-N breakdowns. All reads, no writes.
type ReportService struct {
	store    store.Ledger
	topLimit int
	logger   *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(store store.Ledger, topLimit int) *ReportService {
	return &ReportService{
		store:    store,
		topLimit: topLimit,
		logger:   util.GetLogger(),
	}
}

// PctChange returns the percent change from previous to current, rounded to
// two decimals. A zero previous saturates to 100 when current is positive and
// 0 otherwise.
func PctChange(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*100) / 100
}

// PeriodStart maps a period keyword to the start of its date window relative
// to now. A zero time means unbounded (the "all" period).
func PeriodStart(period string, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodThreeMonths:
		return today.AddDate(0, 0, -90)
	case PeriodSixMonths:
		return today.AddDate(0, 0, -180)
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// Summary is the headline financial picture for a period.
type Summary struct {
	Period              string    `json:"period"`
	From                time.Time `json:"from,omitempty"`
	RevenueCents        int64     `json:"revenue_cents"`
	IngredientCostCents int64     `json:"ingredient_cost_cents"`
	PackagingCostCents  int64     `json:"packaging_cost_cents"`
	TotalCostCents      int64     `json:"total_cost_cents"`
	ProfitCents         int64     `json:"profit_cents"`
	ProfitMargin        float64   `json:"profit_margin"`
	OrderCount          int       `json:"order_count"`
	CookiesBaked        int       `json:"cookies_baked"`
	RevenueChangePct    float64   `json:"revenue_change_pct"`
	ProfitChangePct     float64   `json:"profit_change_pct"`
}

func sumOrders(orders []models.OrderWithCosts) (revenue, ingredient, packaging int64, cookies int) {
	for i := range orders {
		revenue += orders[i].Order.SalePriceTotalCents
		ingredient += orders[i].IngredientCostCents
		packaging += orders[i].PackagingCostCents
		cookies += orders[i].Order.QuantityBaked
	}
	return revenue, ingredient, packaging, cookies
}

// Summarize aggregates the period and compares it against the previous
// window of equal length. The "all" period has no previous window, so its
// change figures follow the saturating PctChange convention against zero.
func (s *ReportService) Summarize(ctx context.Context, period string) (*Summary, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Summarize")
	defer span.End()

	now := time.Now()
	from := PeriodStart(period, now)

	orders, err := s.store.OrdersInRange(ctx, from, time.Time{})
	if err != nil {
		return nil, err
	}
	revenue, ingredient, packaging, cookies := sumOrders(orders)

	summary := &Summary{
		Period:              period,
		From:                from,
		RevenueCents:        revenue,
		IngredientCostCents: ingredient,
		PackagingCostCents:  packaging,
		TotalCostCents:      ingredient + packaging,
		OrderCount:          len(orders),
		CookiesBaked:        cookies,
	}
	summary.ProfitCents = revenue - summary.TotalCostCents
	if revenue > 0 {
		margin := float64(summary.ProfitCents) / float64(revenue) * 100
		summary.ProfitMargin = math.Round(margin*100) / 100
	}

	var prevRevenue, prevProfit int64
	if !from.IsZero() {
		prevFrom := from.Add(-now.Sub(from))
		prevOrders, err := s.store.OrdersInRange(ctx, prevFrom, from)
		if err != nil {
			return nil, err
		}
		rev, ing, pack, _ := sumOrders(prevOrders)
		prevRevenue = rev
		prevProfit = rev - ing - pack
	}
	summary.RevenueChangePct = PctChange(revenue, prevRevenue)
	summary.ProfitChangePct = PctChange(summary.ProfitCents, prevProfit)

	return summary, nil
}

// ProfitByOrder lists every order in the period with its snapshotted costs,
// newest first.
func (s *ReportService) ProfitByOrder(ctx context.Context, period string) ([]models.OrderWithCosts, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.ProfitByOrder")
	defer span.End()

	from := PeriodStart(period, time.Now())
	orders, err := s.store.OrdersInRange(ctx, from, time.Time{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Order.OrderDate.After(orders[j].Order.OrderDate)
	})
	return orders, nil
}

// InventoryUsage totals the amount and snapshotted cost consumed per item in
// the period, biggest spender first.
func (s *ReportService) InventoryUsage(ctx context.Context, kind models.ItemKind, period string) ([]models.ItemUsage, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.InventoryUsage")
	defer span.End()

	from := PeriodStart(period, time.Now())
	return s.store.UsageTotals(ctx, kind, from, time.Time{})
}

// TrendBucket is one point of a trend series.
type TrendBucket struct {
	Period              string `json:"period"`
	RevenueCents        int64  `json:"revenue_cents"`
	IngredientCostCents int64  `json:"ingredient_cost_cents"`
	PackagingCostCents  int64  `json:"packaging_cost_cents"`
	TotalCostCents      int64  `json:"total_cost_cents"`
	ProfitCents         int64  `json:"profit_cents"`
	OrderCount          int    `json:"order_count"`
	CookiesBaked        int    `json:"cookies_baked"`
}

// Bucket granularities.
const (
	granularityDay   = "day"
	granularityWeek  = "week"
	granularityMonth = "month"
)

func (s *ReportService) trendWindow(ctx context.Context, period string, now time.Time) (time.Time, string, error) {
	switch period {
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), granularityMonth, nil
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), granularityDay, nil
	case PeriodAll:
		first, err := s.store.FirstOrderDate(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), granularityMonth, nil
		}
		if err != nil {
			return time.Time{}, "", err
		}
		return first, granularityMonth, nil
	default:
		return now.AddDate(0, 0, -90), granularityWeek, nil
	}
}

func bucketKey(date time.Time, granularity string) string {
	switch granularity {
	case granularityDay:
		return date.Format("2006-01-02")
	case granularityWeek:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return date.Format("2006-01")
	}
}

// Trends buckets the period's orders by time. Bucket size follows the window
// length: a year of data by month, a month by day, everything else by week.
// Buckets are sparse: a span with no orders produces no bucket.
func (s *ReportService) Trends(ctx context.Context, period string) ([]TrendBucket, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Trends")
	defer span.End()

	now := time.Now()
	from, granularity, err := s.trendWindow(ctx, period, now)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.OrdersInRange(ctx, from, time.Time{})
	if err != nil {
		return nil, err
	}

	byKey := map[string]*TrendBucket{}
	for i := range orders {
		key := bucketKey(orders[i].Order.OrderDate, granularity)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &TrendBucket{Period: key}
			byKey[key] = bucket
		}
		bucket.RevenueCents += orders[i].Order.SalePriceTotalCents
		bucket.IngredientCostCents += orders[i].IngredientCostCents
		bucket.PackagingCostCents += orders[i].PackagingCostCents
		bucket.OrderCount++
		bucket.CookiesBaked += orders[i].Order.QuantityBaked
	}

	buckets := make([]TrendBucket, 0, len(byKey))
	for _, bucket := range byKey {
		bucket.TotalCostCents = bucket.IngredientCostCents + bucket.PackagingCostCents
		bucket.ProfitCents = bucket.RevenueCents - bucket.TotalCostCents
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Period < buckets[j].Period })
	return buckets, nil
}

// TopCustomers returns the biggest customers by revenue in the period.
func (s *ReportService) TopCustomers(ctx context.Context, period string) ([]models.CustomerRevenue, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.TopCustomers")
	defer span.End()

	from := PeriodStart(period, time.Now())
	return s.store.TopCustomersByRevenue(ctx, from, time.Time{}, s.topLimit)
}

// TopRecipes returns the most ordered recipes in the period.
func (s *ReportService) TopRecipes(ctx context.Context, period string) ([]models.RecipeCount, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.TopRecipes")
	defer span.End()

	from := PeriodStart(period, time.Now())
	return s.store.TopRecipesByOrderCount(ctx, from, time.Time{}, s.topLimit)
}
