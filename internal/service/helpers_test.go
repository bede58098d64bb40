package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mukhma0c/cookies-manager/internal/cache"
	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store/memory"
)

type testEnv struct {
	store     *memory.Store
	costing   *CostingService
	orders    *OrderService
	inventory *InventoryService
	stock     *StockService
	reports   *ReportService
}

func newTestEnv() *testEnv {
	st := memory.New()
	noop := cache.Noop{}
	costing := NewCostingService(st, noop)
	return &testEnv{
		store:     st,
		costing:   costing,
		orders:    NewOrderService(st, noop, costing, nil),
		inventory: NewInventoryService(st, noop, costing, nil),
		stock:     NewStockService(st, noop, nil),
		reports:   NewReportService(st, 5),
	}
}

func addItem(t *testing.T, env *testEnv, kind models.ItemKind, name, unit string, defaultPriceCents int64, threshold float64) int64 {
	t.Helper()
	item := &models.StockItem{
		Kind:              kind,
		Name:              name,
		DefaultUnit:       unit,
		DefaultPriceCents: defaultPriceCents,
		LowStockThreshold: threshold,
	}
	require.NoError(t, env.inventory.CreateStockItem(context.Background(), item))
	return item.ID
}

func addPurchase(t *testing.T, env *testEnv, kind models.ItemKind, itemID int64, date time.Time, quantity float64, totalCostCents int64) *models.Purchase {
	t.Helper()
	purchase := &models.Purchase{
		ItemKind:       kind,
		ItemID:         itemID,
		PurchaseDate:   date,
		Quantity:       quantity,
		TotalCostCents: totalCostCents,
	}
	require.NoError(t, env.inventory.RecordPurchase(context.Background(), purchase))
	return purchase
}

func addCustomer(t *testing.T, env *testEnv, name string) int64 {
	t.Helper()
	customer := &models.Customer{Name: name}
	require.NoError(t, env.inventory.CreateCustomer(context.Background(), customer))
	return customer.ID
}

func addRecipe(t *testing.T, env *testEnv, name string) int64 {
	t.Helper()
	recipe := &models.Recipe{Name: name}
	require.NoError(t, env.inventory.CreateRecipe(context.Background(), recipe, nil))
	return recipe.ID
}
