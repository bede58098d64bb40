package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukhma0c/cookies-manager/internal/models"
)

func TestPctChange(t *testing.T) {
	assert.Equal(t, float64(50), PctChange(150, 100))
	assert.Equal(t, float64(-25), PctChange(75, 100))
	assert.Equal(t, float64(0), PctChange(100, 100))

	// Saturating convention for an empty previous period.
	assert.Equal(t, float64(100), PctChange(1, 0))
	assert.Equal(t, float64(0), PctChange(0, 0))
	assert.Equal(t, float64(0), PctChange(-5, 0))
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), PeriodStart(PeriodMonth, now))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), PeriodStart(PeriodYear, now))
	assert.Equal(t, time.Date(2024, 2, 17, 0, 0, 0, 0, time.UTC), PeriodStart(PeriodThreeMonths, now))
	assert.Equal(t, time.Date(2023, 11, 19, 0, 0, 0, 0, time.UTC), PeriodStart(PeriodSixMonths, now))
	assert.True(t, PeriodStart(PeriodAll, now).IsZero())
}

// addOrderOn creates a priced order on a given date: one flour line worth
// costCents, revenue revenueCents, baked cookies.
func addOrderOn(t *testing.T, env *testEnv, flour int64, day time.Time, revenueCents int64, amount float64, customerID, recipeID *int64) {
	t.Helper()
	_, _, err := env.orders.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID:          customerID,
		RecipeID:            recipeID,
		OrderDate:           day,
		QuantityOrdered:     12,
		QuantityBaked:       12,
		SalePriceTotalCents: revenueCents,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: amount},
		},
	})
	require.NoError(t, err)
}

func TestSummarize(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, time.Now().AddDate(0, -4, 0), 10000, 40000)

	// Two orders: 250g flour at 4c/g is 1000 cents cost each.
	addOrderOn(t, env, flour, time.Now().AddDate(0, 0, -2), 4800, 250, nil, nil)
	addOrderOn(t, env, flour, time.Now().AddDate(0, 0, -1), 5200, 250, nil, nil)

	summary, err := env.reports.Summarize(ctx, PeriodAll)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), summary.RevenueCents)
	assert.Equal(t, int64(2000), summary.TotalCostCents)
	assert.Equal(t, int64(8000), summary.ProfitCents)
	assert.Equal(t, float64(80), summary.ProfitMargin)
	assert.Equal(t, 2, summary.OrderCount)
	assert.Equal(t, 24, summary.CookiesBaked)

	// No previous window: saturates to 100 on positive figures.
	assert.Equal(t, float64(100), summary.RevenueChangePct)
	assert.Equal(t, float64(100), summary.ProfitChangePct)
}

func TestTrendsSparseAscendingBuckets(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, time.Now().AddDate(-1, 0, 0), 10000, 40000)

	// Orders four months apart: the empty months between produce no buckets.
	early := time.Now().AddDate(0, -4, 0)
	late := time.Now()
	addOrderOn(t, env, flour, early, 3000, 100, nil, nil)
	addOrderOn(t, env, flour, late, 5000, 200, nil, nil)

	buckets, err := env.reports.Trends(ctx, PeriodAll)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, early.Format("2006-01"), buckets[0].Period)
	assert.Equal(t, late.Format("2006-01"), buckets[1].Period)
	assert.Equal(t, int64(3000), buckets[0].RevenueCents)
	assert.Equal(t, int64(400), buckets[0].TotalCostCents)
	assert.Equal(t, int64(2600), buckets[0].ProfitCents)
	assert.Equal(t, int64(5000), buckets[1].RevenueCents)
	assert.Equal(t, int64(800), buckets[1].TotalCostCents)
	assert.Equal(t, 12, buckets[1].CookiesBaked)
}

func TestTrendsMonthPeriodUsesDayBuckets(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, time.Now().AddDate(0, -2, 0), 10000, 40000)

	day := time.Date(time.Now().Year(), time.Now().Month(), 1, 12, 0, 0, 0, time.Local)
	addOrderOn(t, env, flour, day, 3000, 100, nil, nil)

	buckets, err := env.reports.Trends(ctx, PeriodMonth)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, day.Format("2006-01-02"), buckets[0].Period)
}

func TestInventoryUsageTotals(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	sugar := addItem(t, env, models.KindIngredient, "sugar", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, time.Now().AddDate(0, -1, 0), 10000, 40000)
	addPurchase(t, env, models.KindIngredient, sugar, time.Now().AddDate(0, -1, 0), 10000, 70000)

	_, _, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		OrderDate:       time.Now(),
		QuantityOrdered: 12,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: 100},
			{ItemKind: models.KindIngredient, ItemID: sugar, Amount: 100},
		},
	})
	require.NoError(t, err)

	usage, err := env.reports.InventoryUsage(ctx, models.KindIngredient, PeriodAll)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	// Ordered by snapshotted cost, biggest first: sugar at 7c/g beats flour.
	assert.Equal(t, "sugar", usage[0].Name)
	assert.Equal(t, int64(700), usage[0].TotalCostCents)
	assert.Equal(t, "flour", usage[1].Name)
	assert.Equal(t, int64(400), usage[1].TotalCostCents)
}

func TestTopCustomersAndRecipes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, time.Now().AddDate(0, -1, 0), 10000, 40000)

	alice := addCustomer(t, env, "Alice")
	bob := addCustomer(t, env, "Bob")
	classic := addRecipe(t, env, "Classic")
	deluxe := addRecipe(t, env, "Deluxe")

	addOrderOn(t, env, flour, time.Now(), 3000, 10, &alice, &classic)
	addOrderOn(t, env, flour, time.Now(), 2000, 10, &bob, &classic)
	addOrderOn(t, env, flour, time.Now(), 3000, 10, &bob, &deluxe)

	customers, err := env.reports.TopCustomers(ctx, PeriodAll)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Bob", customers[0].Name)
	assert.Equal(t, int64(5000), customers[0].RevenueCents)
	assert.Equal(t, 2, customers[0].OrderCount)
	assert.Equal(t, "Alice", customers[1].Name)

	recipes, err := env.reports.TopRecipes(ctx, PeriodAll)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Classic", recipes[0].Name)
	assert.Equal(t, 2, recipes[0].OrderCount)

	// Ties break by insertion order: equal counts keep the earlier recipe first.
	extra := addRecipe(t, env, "Extra")
	addOrderOn(t, env, flour, time.Now(), 1000, 10, nil, &extra)
	recipes, err = env.reports.TopRecipes(ctx, PeriodAll)
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	assert.Equal(t, "Deluxe", recipes[1].Name)
	assert.Equal(t, "Extra", recipes[2].Name)
}
