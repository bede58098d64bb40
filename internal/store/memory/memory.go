// Package memory implements the ledger store in process memory. It backs the
// service tests and local development without Postgres, and mirrors the
// transactional semantics of the SQL store: order creation with line items is
// all-or-nothing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

type orderRecord struct {
	order models.Order
	lines []models.OrderLine
}

type Store struct {
	mu sync.RWMutex

	items     map[models.ItemKind]map[int64]models.StockItem
	purchases []models.Purchase
	customers map[int64]models.Customer
	recipes   map[int64]models.Recipe
	recipeIng map[int64][]models.RecipeIngredient
	orders    []orderRecord

	nextItemID     int64
	nextPurchaseID int64
	nextCustomerID int64
	nextRecipeID   int64
	nextOrderID    int64
}

// New returns an empty in-memory ledger.
func New() *Store {
	return &Store{
		items: map[models.ItemKind]map[int64]models.StockItem{
			models.KindIngredient: {},
			models.KindPackaging:  {},
		},
		customers: map[int64]models.Customer{},
		recipes:   map[int64]models.Recipe{},
		recipeIng: map[int64][]models.RecipeIngredient{},
	}
}

var _ store.Ledger = (*Store)(nil)

// --- Stock items ---

func (s *Store) CreateStockItem(ctx context.Context, item *models.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !item.Kind.Valid() {
		return fmt.Errorf("unknown item kind %q", item.Kind)
	}
	for _, existing := range s.items[item.Kind] {
		if existing.Name == item.Name {
			return fmt.Errorf("stock item %q: %w", item.Name, store.ErrConflict)
		}
	}

	s.nextItemID++
	item.ID = s.nextItemID
	s.items[item.Kind][item.ID] = *item
	return nil
}

func (s *Store) GetStockItem(ctx context.Context, kind models.ItemKind, id int64) (*models.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getItemLocked(kind, id)
}

func (s *Store) getItemLocked(kind models.ItemKind, id int64) (*models.StockItem, error) {
	item, ok := s.items[kind][id]
	if !ok {
		return nil, fmt.Errorf("stock item %s/%d: %w", kind, id, store.ErrNotFound)
	}
	copied := item
	return &copied, nil
}

func (s *Store) ListStockItems(ctx context.Context, kind models.ItemKind) ([]models.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.StockItem, 0, len(s.items[kind]))
	for _, item := range s.items[kind] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *Store) UpdateStockItem(ctx context.Context, item *models.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.Kind][item.ID]; !ok {
		return fmt.Errorf("stock item %s/%d: %w", item.Kind, item.ID, store.ErrNotFound)
	}
	for id, existing := range s.items[item.Kind] {
		if id != item.ID && existing.Name == item.Name {
			return fmt.Errorf("stock item %q: %w", item.Name, store.ErrConflict)
		}
	}
	s.items[item.Kind][item.ID] = *item
	return nil
}

func (s *Store) DeleteStockItem(ctx context.Context, kind models.ItemKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[kind][id]; !ok {
		return fmt.Errorf("stock item %s/%d: %w", kind, id, store.ErrNotFound)
	}
	for _, rec := range s.orders {
		for _, line := range rec.lines {
			if line.ItemKind == kind && line.ItemID == id {
				return fmt.Errorf("stock item %s/%d is referenced: %w", kind, id, store.ErrConflict)
			}
		}
	}
	if kind == models.KindIngredient {
		for _, lines := range s.recipeIng {
			for _, line := range lines {
				if line.IngredientID == id {
					return fmt.Errorf("stock item %s/%d is referenced: %w", kind, id, store.ErrConflict)
				}
			}
		}
	}
	delete(s.items[kind], id)
	return nil
}

// --- Purchases ---

func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[purchase.ItemKind][purchase.ItemID]; !ok {
		return fmt.Errorf("stock item %s/%d: %w", purchase.ItemKind, purchase.ItemID, store.ErrNotFound)
	}
	s.nextPurchaseID++
	purchase.ID = s.nextPurchaseID
	s.purchases = append(s.purchases, *purchase)
	return nil
}

func (s *Store) GetPurchase(ctx context.Context, id int64) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.purchases {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("purchase %d: %w", id, store.ErrNotFound)
}

func (s *Store) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]models.Purchase, len(s.purchases))
	copy(purchases, s.purchases)
	sort.SliceStable(purchases, func(i, j int) bool {
		if !purchases[i].PurchaseDate.Equal(purchases[j].PurchaseDate) {
			return purchases[i].PurchaseDate.After(purchases[j].PurchaseDate)
		}
		return purchases[i].ID > purchases[j].ID
	})
	return purchases, nil
}

func (s *Store) UpdatePurchase(ctx context.Context, purchase *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.purchases {
		if s.purchases[i].ID == purchase.ID {
			s.purchases[i] = *purchase
			return nil
		}
	}
	return fmt.Errorf("purchase %d: %w", purchase.ID, store.ErrNotFound)
}

func (s *Store) DeletePurchase(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.purchases {
		if s.purchases[i].ID == id {
			s.purchases = append(s.purchases[:i], s.purchases[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("purchase %d: %w", id, store.ErrNotFound)
}

func (s *Store) LatestGenuinePurchase(ctx context.Context, kind models.ItemKind, id int64) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Purchase
	for i := range s.purchases {
		p := &s.purchases[i]
		if p.ItemKind != kind || p.ItemID != id || p.TotalCostCents <= 0 {
			continue
		}
		// Later date wins; same date, later insertion (higher id) wins.
		if latest == nil || p.PurchaseDate.After(latest.PurchaseDate) ||
			(p.PurchaseDate.Equal(latest.PurchaseDate) && p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no genuine purchase for %s/%d: %w", kind, id, store.ErrNotFound)
	}
	copied := *latest
	return &copied, nil
}

func (s *Store) PurchasedQuantity(ctx context.Context, kind models.ItemKind, id int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, p := range s.purchases {
		if p.ItemKind == kind && p.ItemID == id {
			total += p.Quantity
		}
	}
	return total, nil
}

func (s *Store) UsedQuantity(ctx context.Context, kind models.ItemKind, id int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, rec := range s.orders {
		for _, line := range rec.lines {
			if line.ItemKind == kind && line.ItemID == id {
				total += line.Amount
			}
		}
	}
	return total, nil
}

// --- Customers ---

func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if existing.Name == customer.Name {
			return fmt.Errorf("customer %q: %w", customer.Name, store.ErrConflict)
		}
	}
	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	s.customers[customer.ID] = *customer
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, store.ErrNotFound)
	}
	copied := customer
	return &copied, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return customers, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; !ok {
		return fmt.Errorf("customer %d: %w", customer.ID, store.ErrNotFound)
	}
	for id, existing := range s.customers {
		if id != customer.ID && existing.Name == customer.Name {
			return fmt.Errorf("customer %q: %w", customer.Name, store.ErrConflict)
		}
	}
	s.customers[customer.ID] = *customer
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return fmt.Errorf("customer %d: %w", id, store.ErrNotFound)
	}
	for _, rec := range s.orders {
		if rec.order.CustomerID != nil && *rec.order.CustomerID == id {
			return fmt.Errorf("customer %d has orders: %w", id, store.ErrConflict)
		}
	}
	delete(s.customers, id)
	return nil
}

// --- Recipes ---

func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.recipes {
		if existing.Name == recipe.Name {
			return fmt.Errorf("recipe %q: %w", recipe.Name, store.ErrConflict)
		}
	}
	for _, line := range ingredients {
		if _, ok := s.items[models.KindIngredient][line.IngredientID]; !ok {
			return fmt.Errorf("recipe ingredient %d: %w", line.IngredientID, store.ErrNotFound)
		}
	}

	s.nextRecipeID++
	recipe.ID = s.nextRecipeID
	s.recipes[recipe.ID] = *recipe

	lines := make([]models.RecipeIngredient, len(ingredients))
	for i, line := range ingredients {
		line.RecipeID = recipe.ID
		lines[i] = line
	}
	s.recipeIng[recipe.ID] = lines
	return nil
}

func (s *Store) GetRecipe(ctx context.Context, id int64) (*models.Recipe, []models.RecipeIngredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return nil, nil, fmt.Errorf("recipe %d: %w", id, store.ErrNotFound)
	}
	copied := recipe
	lines := make([]models.RecipeIngredient, len(s.recipeIng[id]))
	copy(lines, s.recipeIng[id])
	return &copied, lines, nil
}

func (s *Store) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]models.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		recipes = append(recipes, r)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Name < recipes[j].Name })
	return recipes, nil
}

func (s *Store) UpdateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[recipe.ID]; !ok {
		return fmt.Errorf("recipe %d: %w", recipe.ID, store.ErrNotFound)
	}
	for id, existing := range s.recipes {
		if id != recipe.ID && existing.Name == recipe.Name {
			return fmt.Errorf("recipe %q: %w", recipe.Name, store.ErrConflict)
		}
	}

	s.recipes[recipe.ID] = *recipe
	lines := make([]models.RecipeIngredient, len(ingredients))
	for i, line := range ingredients {
		line.RecipeID = recipe.ID
		lines[i] = line
	}
	s.recipeIng[recipe.ID] = lines
	return nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return fmt.Errorf("recipe %d: %w", id, store.ErrNotFound)
	}
	delete(s.recipes, id)
	delete(s.recipeIng, id)
	return nil
}

// --- Orders ---

func (s *Store) CreateOrderWithLines(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before mutating so a failure leaves no partial
	// state, matching the SQL store's transaction.
	if order.CustomerID != nil {
		if _, ok := s.customers[*order.CustomerID]; !ok {
			return fmt.Errorf("order references: %w", store.ErrNotFound)
		}
	}
	if order.RecipeID != nil {
		if _, ok := s.recipes[*order.RecipeID]; !ok {
			return fmt.Errorf("order references: %w", store.ErrNotFound)
		}
	}
	for _, line := range lines {
		if _, ok := s.items[line.ItemKind][line.ItemID]; !ok {
			return fmt.Errorf("order line item %s/%d: %w", line.ItemKind, line.ItemID, store.ErrNotFound)
		}
	}

	s.nextOrderID++
	order.ID = s.nextOrderID
	stored := make([]models.OrderLine, len(lines))
	for i, line := range lines {
		line.OrderID = order.ID
		stored[i] = line
	}
	s.orders = append(s.orders, orderRecord{order: *order, lines: stored})
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, []models.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.orders {
		if rec.order.ID == id {
			order := rec.order
			lines := make([]models.OrderLine, len(rec.lines))
			copy(lines, rec.lines)
			return &order, lines, nil
		}
	}
	return nil, nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
}

func (s *Store) ListOrders(ctx context.Context) ([]models.OrderWithCosts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := s.ordersWithCostsLocked(time.Time{}, time.Time{})
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Order.OrderDate.Equal(orders[j].Order.OrderDate) {
			return orders[i].Order.OrderDate.After(orders[j].Order.OrderDate)
		}
		return orders[i].Order.ID > orders[j].Order.ID
	})
	return orders, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].order.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("order %d: %w", id, store.ErrNotFound)
}

// --- Reporting reads ---

// inRange matches the half-open [from, to) window; a zero bound leaves that
// side unbounded.
func inRange(date time.Time, from, to time.Time) bool {
	if !from.IsZero() && date.Before(from) {
		return false
	}
	if !to.IsZero() && !date.Before(to) {
		return false
	}
	return true
}

func (s *Store) ordersWithCostsLocked(from, to time.Time) []models.OrderWithCosts {
	orders := make([]models.OrderWithCosts, 0, len(s.orders))
	for _, rec := range s.orders {
		if !inRange(rec.order.OrderDate, from, to) {
			continue
		}
		row := models.OrderWithCosts{Order: rec.order}
		if rec.order.CustomerID != nil {
			row.CustomerName = s.customers[*rec.order.CustomerID].Name
		}
		if rec.order.RecipeID != nil {
			row.RecipeName = s.recipes[*rec.order.RecipeID].Name
		}
		for _, line := range rec.lines {
			switch line.ItemKind {
			case models.KindIngredient:
				row.IngredientCostCents += line.CostAtTimeOfUseCents
			case models.KindPackaging:
				row.PackagingCostCents += line.CostAtTimeOfUseCents
			}
		}
		orders = append(orders, row)
	}
	return orders
}

func (s *Store) OrdersInRange(ctx context.Context, from, to time.Time) ([]models.OrderWithCosts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := s.ordersWithCostsLocked(from, to)
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Order.OrderDate.Equal(orders[j].Order.OrderDate) {
			return orders[i].Order.OrderDate.Before(orders[j].Order.OrderDate)
		}
		return orders[i].Order.ID < orders[j].Order.ID
	})
	return orders, nil
}

func (s *Store) FirstOrderDate(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first time.Time
	for _, rec := range s.orders {
		if first.IsZero() || rec.order.OrderDate.Before(first) {
			first = rec.order.OrderDate
		}
	}
	if first.IsZero() {
		return time.Time{}, store.ErrNotFound
	}
	return first, nil
}

func (s *Store) UsageTotals(ctx context.Context, kind models.ItemKind, from, to time.Time) ([]models.ItemUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byItem := map[int64]*models.ItemUsage{}
	for _, rec := range s.orders {
		if !inRange(rec.order.OrderDate, from, to) {
			continue
		}
		for _, line := range rec.lines {
			if line.ItemKind != kind {
				continue
			}
			usage, ok := byItem[line.ItemID]
			if !ok {
				item := s.items[kind][line.ItemID]
				usage = &models.ItemUsage{ItemID: line.ItemID, Name: item.Name, Unit: item.DefaultUnit}
				byItem[line.ItemID] = usage
			}
			usage.AmountUsed += line.Amount
			usage.TotalCostCents += line.CostAtTimeOfUseCents
		}
	}

	rows := make([]models.ItemUsage, 0, len(byItem))
	for _, usage := range byItem {
		rows = append(rows, *usage)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalCostCents != rows[j].TotalCostCents {
			return rows[i].TotalCostCents > rows[j].TotalCostCents
		}
		return rows[i].ItemID < rows[j].ItemID
	})
	return rows, nil
}

func (s *Store) TopCustomersByRevenue(ctx context.Context, from, to time.Time, limit int) ([]models.CustomerRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCustomer := map[int64]*models.CustomerRevenue{}
	for _, rec := range s.orders {
		if rec.order.CustomerID == nil || !inRange(rec.order.OrderDate, from, to) {
			continue
		}
		id := *rec.order.CustomerID
		row, ok := byCustomer[id]
		if !ok {
			row = &models.CustomerRevenue{CustomerID: id, Name: s.customers[id].Name}
			byCustomer[id] = row
		}
		row.OrderCount++
		row.RevenueCents += rec.order.SalePriceTotalCents
	}

	rows := make([]models.CustomerRevenue, 0, len(byCustomer))
	for _, row := range byCustomer {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RevenueCents != rows[j].RevenueCents {
			return rows[i].RevenueCents > rows[j].RevenueCents
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *Store) TopRecipesByOrderCount(ctx context.Context, from, to time.Time, limit int) ([]models.RecipeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byRecipe := map[int64]*models.RecipeCount{}
	for _, rec := range s.orders {
		if rec.order.RecipeID == nil || !inRange(rec.order.OrderDate, from, to) {
			continue
		}
		id := *rec.order.RecipeID
		row, ok := byRecipe[id]
		if !ok {
			row = &models.RecipeCount{RecipeID: id, Name: s.recipes[id].Name}
			byRecipe[id] = row
		}
		row.OrderCount++
	}

	rows := make([]models.RecipeCount, 0, len(byRecipe))
	for _, row := range byRecipe {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OrderCount != rows[j].OrderCount {
			return rows[i].OrderCount > rows[j].OrderCount
		}
		return rows[i].RecipeID < rows[j].RecipeID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
