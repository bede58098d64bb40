package store

import (
	"context"
	"errors"
	"time"

	"github.com/mukhma0c/cookies-manager/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique-name collisions and on deletes of
	// records still referenced elsewhere.
	ErrConflict = errors.New("conflict")
)

// Ledger is the persistent record store the cost-accounting core runs
// against. All mutations that must be atomic (order creation with its line
// items) are single methods so implementations can wrap them in one
// transaction.
type Ledger interface {
	// Stock items
	CreateStockItem(ctx context.Context, item *models.StockItem) error
	GetStockItem(ctx context.Context, kind models.ItemKind, id int64) (*models.StockItem, error)
	ListStockItems(ctx context.Context, kind models.ItemKind) ([]models.StockItem, error)
	UpdateStockItem(ctx context.Context, item *models.StockItem) error
	// DeleteStockItem fails with ErrConflict while the item is referenced by
	// any recipe line or order line.
	DeleteStockItem(ctx context.Context, kind models.ItemKind, id int64) error

	// Purchases
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error
	GetPurchase(ctx context.Context, id int64) (*models.Purchase, error)
	ListPurchases(ctx context.Context) ([]models.Purchase, error)
	UpdatePurchase(ctx context.Context, purchase *models.Purchase) error
	DeletePurchase(ctx context.Context, id int64) error
	// LatestGenuinePurchase returns the most recent purchase with
	// total_cost_cents > 0 for the item, ordered by purchase date with ties
	// broken by insertion order (last written wins). ErrNotFound when the
	// item has no genuine purchases.
	LatestGenuinePurchase(ctx context.Context, kind models.ItemKind, id int64) (*models.Purchase, error)
	// PurchasedQuantity sums purchase quantities for the item across all
	// time, adjustments included.
	PurchasedQuantity(ctx context.Context, kind models.ItemKind, id int64) (float64, error)
	// UsedQuantity sums order-line amounts for the item across all time.
	UsedQuantity(ctx context.Context, kind models.ItemKind, id int64) (float64, error)

	// Customers
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error

	// Recipes
	CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, []models.RecipeIngredient, error)
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error
	DeleteRecipe(ctx context.Context, id int64) error

	// Orders
	// CreateOrderWithLines persists the order and every line item in a
	// single transaction: either all commit or none do.
	CreateOrderWithLines(ctx context.Context, order *models.Order, lines []models.OrderLine) error
	GetOrder(ctx context.Context, id int64) (*models.Order, []models.OrderLine, error)
	ListOrders(ctx context.Context) ([]models.OrderWithCosts, error)
	DeleteOrder(ctx context.Context, id int64) error

	// Reporting reads. Zero from/to mean unbounded on that side.
	OrdersInRange(ctx context.Context, from, to time.Time) ([]models.OrderWithCosts, error)
	FirstOrderDate(ctx context.Context) (time.Time, error)
	UsageTotals(ctx context.Context, kind models.ItemKind, from, to time.Time) ([]models.ItemUsage, error)
	TopCustomersByRevenue(ctx context.Context, from, to time.Time, limit int) ([]models.CustomerRevenue, error)
	TopRecipesByOrderCount(ctx context.Context, from, to time.Time, limit int) ([]models.RecipeCount, error)
}
