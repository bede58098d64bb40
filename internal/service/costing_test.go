package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUnitCostMillicents(t *testing.T) {
	// 1000g of flour for $40.00 is exactly 4 cents per gram.
	assert.Equal(t, int64(4000), UnitCostMillicents(4000, 1000))

	// Uneven division rounds half up at the millicent.
	assert.Equal(t, int64(33333), UnitCostMillicents(100, 3))
	assert.Equal(t, int64(66667), UnitCostMillicents(200, 3))

	// Adjustments and nonsense quantities have no unit cost.
	assert.Equal(t, int64(0), UnitCostMillicents(0, 500))
	assert.Equal(t, int64(0), UnitCostMillicents(1000, 0))
}

func TestLineCostCents(t *testing.T) {
	// 250g at 4000 millicents/g is exactly $10.00.
	assert.Equal(t, int64(1000), LineCostCents(4000, 250))

	// Half a ribbon at 15 cents rounds 7.5 up to 8.
	assert.Equal(t, int64(8), LineCostCents(15000, 0.5))

	assert.Equal(t, int64(0), LineCostCents(4000, 0))
}

func TestResolveUnitCostLatestPurchaseWins(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	millicents, err := env.costing.ResolveUnitCost(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), millicents)

	// A later purchase at a different price takes over.
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 2, 1), 500, 3500)

	millicents, err = env.costing.ResolveUnitCost(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), millicents)
}

func TestResolveUnitCostSameDayTieBrokenByInsertion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sugar := addItem(t, env, models.KindIngredient, "sugar", "g", 0, 0)
	day := date(2024, 3, 5)
	addPurchase(t, env, models.KindIngredient, sugar, day, 1000, 5000)
	addPurchase(t, env, models.KindIngredient, sugar, day, 1000, 7000)

	millicents, err := env.costing.ResolveUnitCost(ctx, models.KindIngredient, sugar)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), millicents)
}

func TestResolveUnitCostIgnoresAdjustments(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	// A newer zero-cost adjustment moves stock but not price.
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 4, 1), -200, 0)

	millicents, err := env.costing.ResolveUnitCost(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), millicents)
}

func TestResolveUnitCostDefaultFallback(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	vanilla := addItem(t, env, models.KindIngredient, "vanilla", "ml", 12, 0)

	millicents, err := env.costing.ResolveUnitCost(ctx, models.KindIngredient, vanilla)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), millicents)
}

func TestResolveUnitCostNoPriceData(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	salt := addItem(t, env, models.KindIngredient, "salt", "g", 0, 0)

	_, err := env.costing.ResolveUnitCost(ctx, models.KindIngredient, salt)
	assert.ErrorIs(t, err, ErrNoPriceData)

	_, err = env.costing.ResolveUnitCost(ctx, models.KindIngredient, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestComputeLineCostNoPriceDataIsNotFatal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	salt := addItem(t, env, models.KindIngredient, "salt", "g", 0, 0)

	cents, priced, err := env.costing.ComputeLineCost(ctx, models.KindIngredient, salt, 100)
	require.NoError(t, err)
	assert.False(t, priced)
	assert.Equal(t, int64(0), cents)
}

func TestPreviewOrderCost(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	sugar := addItem(t, env, models.KindIngredient, "sugar", "g", 0, 0)
	box := addItem(t, env, models.KindPackaging, "box", "unit", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)
	addPurchase(t, env, models.KindIngredient, sugar, date(2024, 1, 10), 1000, 7000)
	addPurchase(t, env, models.KindPackaging, box, date(2024, 1, 10), 10, 1200)

	resp, err := env.costing.PreviewOrderCost(ctx, &PreviewCostRequest{
		Ingredients: []PreviewIngredientLine{
			{ID: flour, Amount: 250},
			{ID: sugar, Amount: 100},
		},
		Packaging:      []PreviewPackagingLine{{ID: box, Quantity: 1}},
		Quantity:       24,
		SalePriceCents: 4800,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1700), resp.IngredientCostCents)
	assert.Equal(t, int64(120), resp.PackagingCostCents)
	assert.Equal(t, int64(1820), resp.TotalCostCents)
	assert.Equal(t, int64(76), resp.CostPerCookieCents) // 1820/24 = 75.83 rounds up
	assert.Equal(t, int64(2980), resp.MarginCents)
	assert.InDelta(t, 62.08, resp.MarginPercentage, 0.001)
	assert.Empty(t, resp.UnpricedItems)
}

func TestPreviewMatchesSnapshot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	box := addItem(t, env, models.KindPackaging, "box", "unit", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 3, 100)
	addPurchase(t, env, models.KindPackaging, box, date(2024, 1, 10), 1, 15)

	preview, err := env.costing.PreviewOrderCost(ctx, &PreviewCostRequest{
		Ingredients: []PreviewIngredientLine{{ID: flour, Amount: 1.5}},
		Packaging:   []PreviewPackagingLine{{ID: box, Quantity: 0.5}},
	})
	require.NoError(t, err)

	_, created, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		QuantityOrdered: 12,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: 1.5},
			{ItemKind: models.KindPackaging, ItemID: box, Amount: 0.5},
		},
	})
	require.NoError(t, err)

	var snapshotTotal int64
	for _, line := range created {
		snapshotTotal += line.CostAtTimeOfUseCents
	}
	assert.Equal(t, preview.TotalCostCents, snapshotTotal)
}

func TestPreviewReportsUnpricedItems(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	salt := addItem(t, env, models.KindIngredient, "salt", "g", 0, 0)

	resp, err := env.costing.PreviewOrderCost(ctx, &PreviewCostRequest{
		Ingredients: []PreviewIngredientLine{{ID: salt, Amount: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.TotalCostCents)
	assert.Len(t, resp.UnpricedItems, 1)
}
