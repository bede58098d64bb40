package models

import "time"

// ItemKind discriminates the two kinds of stock the ledger tracks.
type ItemKind string

const (
	KindIngredient ItemKind = "ingredient"
	KindPackaging  ItemKind = "packaging"
)

// Valid reports whether k is one of the known kinds.
func (k ItemKind) Valid() bool {
	return k == KindIngredient || k == KindPackaging
}

// StockItem is an ingredient or packaging material tracked in inventory.
// DefaultPriceCents is the fallback unit price used only when the item has no
// purchase history; zero means unset. LowStockThreshold of zero disables
// low-stock alerts for the item.
type StockItem struct {
	ID                int64    `db:"id" json:"id"`
	Kind              ItemKind `db:"kind" json:"kind"`
	Name              string   `db:"name" json:"name"`
	DefaultUnit       string   `db:"default_unit" json:"default_unit"`
	DefaultPriceCents int64    `db:"default_price_cents" json:"default_price_cents"`
	LowStockThreshold float64  `db:"low_stock_threshold" json:"low_stock_threshold"`
	Notes             string   `db:"notes" json:"notes,omitempty"`
}

// Purchase records acquiring a quantity of a stock item for a total price.
// UnitCostMillicents is computed once at write time (1/1000 cent resolution)
// and persisted as a plain column. A purchase with TotalCostCents == 0 is a
// stock adjustment: it moves the physical count but is excluded from cost
// resolution.
type Purchase struct {
	ID                 int64     `db:"id" json:"id"`
	ItemKind           ItemKind  `db:"item_kind" json:"item_kind"`
	ItemID             int64     `db:"item_id" json:"item_id"`
	PurchaseDate       time.Time `db:"purchase_date" json:"purchase_date"`
	Quantity           float64   `db:"quantity" json:"quantity"`
	Unit               string    `db:"unit" json:"unit"`
	TotalCostCents     int64     `db:"total_cost_cents" json:"total_cost_cents"`
	UnitCostMillicents int64     `db:"unit_cost_millicents" json:"unit_cost_millicents"`
	Notes              string    `db:"notes" json:"notes,omitempty"`
}

// IsAdjustment reports whether the purchase is a zero-cost stock adjustment.
func (p *Purchase) IsAdjustment() bool {
	return p.TotalCostCents == 0
}

// Customer buys cookies.
type Customer struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Type  string `db:"type" json:"type"`
	Phone string `db:"phone" json:"phone,omitempty"`
	Notes string `db:"notes" json:"notes,omitempty"`
}

// Recipe is an advisory template for a standard batch. It pre-populates order
// drafts and is never consulted for cost snapshotting once an order exists.
type Recipe struct {
	ID                    int64   `db:"id" json:"id"`
	Name                  string  `db:"name" json:"name"`
	Description           string  `db:"description" json:"description,omitempty"`
	CookieSize            string  `db:"cookie_size" json:"cookie_size"`
	DoughWeightPerCookieG float64 `db:"dough_weight_per_cookie_g" json:"dough_weight_per_cookie_g"`
	YieldCookies          int     `db:"yield_cookies" json:"yield_cookies"`
	Notes                 string  `db:"notes" json:"notes,omitempty"`
}

// RecipeIngredient is one required ingredient line of a recipe.
type RecipeIngredient struct {
	RecipeID     int64   `db:"recipe_id" json:"recipe_id"`
	IngredientID int64   `db:"ingredient_id" json:"ingredient_id"`
	Quantity     float64 `db:"quantity" json:"quantity"`
}

// Order is a sale event. CustomerID and RecipeID are optional references.
type Order struct {
	ID                  int64     `db:"id" json:"id"`
	CustomerID          *int64    `db:"customer_id" json:"customer_id,omitempty"`
	RecipeID            *int64    `db:"recipe_id" json:"recipe_id,omitempty"`
	OrderDate           time.Time `db:"order_date" json:"order_date"`
	CookieSize          string    `db:"cookie_size" json:"cookie_size"`
	DoughWeightG        float64   `db:"dough_weight_g" json:"dough_weight_g"`
	QuantityOrdered     int       `db:"quantity_ordered" json:"quantity_ordered"`
	QuantityBaked       int       `db:"quantity_baked" json:"quantity_baked"`
	QuantityKeptFamily  int       `db:"quantity_kept_family" json:"quantity_kept_family"`
	SalePriceTotalCents int64     `db:"sale_price_total_cents" json:"sale_price_total_cents"`
	Notes               string    `db:"notes" json:"notes,omitempty"`
}

// OrderLine is one ingredient or packaging entry actually used by an order.
// CostAtTimeOfUseCents is frozen at order creation and never recomputed, so
// historical reports stay stable as prices change later.
type OrderLine struct {
	OrderID              int64    `db:"order_id" json:"order_id"`
	ItemKind             ItemKind `db:"item_kind" json:"item_kind"`
	ItemID               int64    `db:"item_id" json:"item_id"`
	Amount               float64  `db:"amount" json:"amount"`
	CostAtTimeOfUseCents int64    `db:"cost_at_time_of_use_cents" json:"cost_at_time_of_use_cents"`
}

// OrderWithCosts pairs an order with the sums of its snapshotted line costs.
type OrderWithCosts struct {
	Order               Order  `db:"order" json:"order"`
	CustomerName        string `db:"customer_name" json:"customer_name,omitempty"`
	RecipeName          string `db:"recipe_name" json:"recipe_name,omitempty"`
	IngredientCostCents int64  `db:"ingredient_cost_cents" json:"ingredient_cost_cents"`
	PackagingCostCents  int64  `db:"packaging_cost_cents" json:"packaging_cost_cents"`
}

// TotalCostCents is the combined snapshotted cost of the order.
func (o *OrderWithCosts) TotalCostCents() int64 {
	return o.IngredientCostCents + o.PackagingCostCents
}

// ProfitCents is revenue minus snapshotted cost.
func (o *OrderWithCosts) ProfitCents() int64 {
	return o.Order.SalePriceTotalCents - o.TotalCostCents()
}

// ItemUsage aggregates how much of an item orders consumed and at what
// snapshotted cost.
type ItemUsage struct {
	ItemID         int64   `db:"item_id" json:"item_id"`
	Name           string  `db:"name" json:"name"`
	Unit           string  `db:"unit" json:"unit"`
	AmountUsed     float64 `db:"amount_used" json:"amount_used"`
	TotalCostCents int64   `db:"total_cost_cents" json:"total_cost_cents"`
}

// CustomerRevenue is one row of the top-customers breakdown.
type CustomerRevenue struct {
	CustomerID   int64  `db:"customer_id" json:"customer_id"`
	Name         string `db:"name" json:"name"`
	OrderCount   int    `db:"order_count" json:"order_count"`
	RevenueCents int64  `db:"revenue_cents" json:"revenue_cents"`
}

// RecipeCount is one row of the top-recipes breakdown.
type RecipeCount struct {
	RecipeID   int64  `db:"recipe_id" json:"recipe_id"`
	Name       string `db:"name" json:"name"`
	OrderCount int    `db:"order_count" json:"order_count"`
}
