package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

func seedItem(t *testing.T, s *Store, kind models.ItemKind, name string) int64 {
	t.Helper()
	item := &models.StockItem{Kind: kind, Name: name}
	require.NoError(t, s.CreateStockItem(context.Background(), item))
	return item.ID
}

func TestDuplicateNamesConflictPerKind(t *testing.T) {
	s := New()
	ctx := context.Background()

	seedItem(t, s, models.KindIngredient, "flour")

	err := s.CreateStockItem(ctx, &models.StockItem{Kind: models.KindIngredient, Name: "flour"})
	assert.ErrorIs(t, err, store.ErrConflict)

	// Same name under the other kind is fine.
	err = s.CreateStockItem(ctx, &models.StockItem{Kind: models.KindPackaging, Name: "flour"})
	assert.NoError(t, err)
}

func TestLatestGenuinePurchaseOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()

	flour := seedItem(t, s, models.KindIngredient, "flour")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Purchase{ItemKind: models.KindIngredient, ItemID: flour,
		PurchaseDate: day.AddDate(0, 0, -10), Quantity: 1000, TotalCostCents: 4000}
	require.NoError(t, s.CreatePurchase(ctx, older))

	first := &models.Purchase{ItemKind: models.KindIngredient, ItemID: flour,
		PurchaseDate: day, Quantity: 1000, TotalCostCents: 5000}
	require.NoError(t, s.CreatePurchase(ctx, first))

	second := &models.Purchase{ItemKind: models.KindIngredient, ItemID: flour,
		PurchaseDate: day, Quantity: 1000, TotalCostCents: 6000}
	require.NoError(t, s.CreatePurchase(ctx, second))

	adjustment := &models.Purchase{ItemKind: models.KindIngredient, ItemID: flour,
		PurchaseDate: day.AddDate(0, 0, 5), Quantity: -100, TotalCostCents: 0}
	require.NoError(t, s.CreatePurchase(ctx, adjustment))

	// Latest date wins, same-day ties go to the later insertion, zero-cost
	// rows never qualify.
	latest, err := s.LatestGenuinePurchase(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestCreateOrderWithLinesValidatesBeforeWriting(t *testing.T) {
	s := New()
	ctx := context.Background()

	flour := seedItem(t, s, models.KindIngredient, "flour")

	order := &models.Order{OrderDate: time.Now(), QuantityOrdered: 12}
	err := s.CreateOrderWithLines(ctx, order, []models.OrderLine{
		{ItemKind: models.KindIngredient, ItemID: flour, Amount: 100},
		{ItemKind: models.KindPackaging, ItemID: 42, Amount: 1},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, order.ID)

	used, err := s.UsedQuantity(ctx, models.KindIngredient, flour)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestOrdersInRangeUpperBoundExclusive(t *testing.T) {
	s := New()
	ctx := context.Background()

	boundary := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, day := range []time.Time{boundary.AddDate(0, 0, -10), boundary, boundary.AddDate(0, 0, 10)} {
		require.NoError(t, s.CreateOrderWithLines(ctx,
			&models.Order{OrderDate: day, QuantityOrdered: 1}, nil))
	}

	// An order stamped exactly at the boundary belongs to the window that
	// starts there, not the one that ends there.
	previous, err := s.OrdersInRange(ctx, time.Time{}, boundary)
	require.NoError(t, err)
	assert.Len(t, previous, 1)

	current, err := s.OrdersInRange(ctx, boundary, time.Time{})
	require.NoError(t, err)
	assert.Len(t, current, 2)
}

func TestDeleteGuards(t *testing.T) {
	s := New()
	ctx := context.Background()

	flour := seedItem(t, s, models.KindIngredient, "flour")

	order := &models.Order{OrderDate: time.Now(), QuantityOrdered: 12}
	require.NoError(t, s.CreateOrderWithLines(ctx, order, []models.OrderLine{
		{ItemKind: models.KindIngredient, ItemID: flour, Amount: 100},
	}))

	// Item referenced by an order line cannot be deleted.
	err := s.DeleteStockItem(ctx, models.KindIngredient, flour)
	assert.ErrorIs(t, err, store.ErrConflict)

	customer := &models.Customer{Name: "Alice"}
	require.NoError(t, s.CreateCustomer(ctx, customer))
	withCustomer := &models.Order{CustomerID: &customer.ID, OrderDate: time.Now(), QuantityOrdered: 1}
	require.NoError(t, s.CreateOrderWithLines(ctx, withCustomer, nil))

	err = s.DeleteCustomer(ctx, customer.ID)
	assert.ErrorIs(t, err, store.ErrConflict)

	// Dropping the order unblocks both.
	require.NoError(t, s.DeleteOrder(ctx, withCustomer.ID))
	require.NoError(t, s.DeleteOrder(ctx, order.ID))
	require.NoError(t, s.DeleteStockItem(ctx, models.KindIngredient, flour))
	require.NoError(t, s.DeleteCustomer(ctx, customer.ID))
}
