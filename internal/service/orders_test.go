package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

func TestCreateOrderSnapshotsAreImmutable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	order, lines, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		OrderDate:           date(2024, 2, 1),
		QuantityOrdered:     24,
		SalePriceTotalCents: 4800,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: 250},
		},
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1000), lines[0].CostAtTimeOfUseCents)

	// Flour doubles in price. The historical order must not move.
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 3, 1), 1000, 8000)

	_, stored, err := env.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stored[0].CostAtTimeOfUseCents)

	listed, err := env.orders.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(1000), listed[0].IngredientCostCents)
	assert.Equal(t, int64(3800), listed[0].ProfitCents())

	// New orders see the new price.
	_, newLines, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		QuantityOrdered: 24,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: 250},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), newLines[0].CostAtTimeOfUseCents)
}

func TestCreateOrderZeroCostLineWithoutPriceData(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	salt := addItem(t, env, models.KindIngredient, "salt", "g", 0, 0)

	_, lines, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		QuantityOrdered: 12,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: salt, Amount: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(0), lines[0].CostAtTimeOfUseCents)
}

func TestCreateOrderAtomicOnBadLine(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	_, _, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		QuantityOrdered: 12,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: 100},
			{ItemKind: models.KindIngredient, ItemID: 9999, Amount: 100},
		},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Nothing committed: no orders, no usage against flour.
	orders, err := env.orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	stock, err := env.stock.CurrentStock(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, float64(1000), stock)
}

func TestDeleteOrderReturnsUsageToStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	flour := addItem(t, env, models.KindIngredient, "flour", "g", 0, 0)
	addPurchase(t, env, models.KindIngredient, flour, date(2024, 1, 10), 1000, 4000)

	order, _, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		QuantityOrdered: 12,
		Lines: []OrderLineRequest{
			{ItemKind: models.KindIngredient, ItemID: flour, Amount: 350},
		},
	})
	require.NoError(t, err)

	stock, err := env.stock.CurrentStock(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, float64(650), stock)

	require.NoError(t, env.orders.DeleteOrder(ctx, order.ID))

	stock, err = env.stock.CurrentStock(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, float64(1000), stock)
}
