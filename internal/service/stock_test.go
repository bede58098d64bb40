package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukhma0c/cookies-manager/internal/models"
)

func TestCurrentStockIsPurchasesMinusUsage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	_, _, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		QuantityOrdered: 12,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: 350},
		},
	})
	require.NoError(t, err)

	stock, err := env.stock.CurrentStock(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, float64(650), stock)
}

func TestAdjustmentsMoveStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	// Zero-cost purchases count toward the physical total.
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 15), -100, 0)

	stock, err := env.stock.CurrentStock(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, float64(900), stock)
}

func TestAdjustStockWritesSignedZeroCostPurchase(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	delta, err := env.stock.AdjustStock(ctx, models.KindIngredient, flour, 850, "monthly count")
	require.NoError(t, err)
	assert.Equal(t, float64(-150), delta)

	stock, err := env.stock.CurrentStock(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, float64(850), stock)

	purchases, err := env.inventory.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	assert.True(t, purchases[0].IsAdjustment())
	assert.Equal(t, float64(-150), purchases[0].Quantity)
	assert.Equal(t, int64(0), purchases[0].UnitCostMillicents)
}

func TestAdjustStockNoOpWithinEpsilon(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	delta, err := env.stock.AdjustStock(ctx, models.KindIngredient, flour, 1000.0005, "count matches")
	require.NoError(t, err)
	assert.Equal(t, float64(0), delta)

	purchases, err := env.inventory.ListPurchases(ctx)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestLowStockFlagging(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Below threshold: flagged.
	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 200)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 150, 600)

	// Zero threshold: never flagged no matter how low.
	sugar := addItem(t, env, models.KindIngredient, "sugar", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, sugar, date(2024, 1, 10), 1, 7)

	// Exactly at threshold: flagged (boundary is inclusive).
	box := addItem(t, env, models.KindPackaging, "box", "unit", 0, 10)
	addPurchase(t, env, models.KindPackaging, box, date(2024, 1, 10), 10, 1200)

	flagged, err := env.stock.CheckLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 2)

	names := []string{flagged[0].Item.Name, flagged[1].Item.Name}
	assert.Contains(t, names, "flour")
	assert.Contains(t, names, "box")
}

func TestStockLevelsPerKind(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 500, 2000)
	addItem(t, env, models.KindPackaging, "box", "unit", 0, 0)

	levels, err := env.stock.StockLevels(ctx, models.KindIngredient)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, float64(500), levels[0].Quantity)
	assert.False(t, levels[0].LowStock)
}
