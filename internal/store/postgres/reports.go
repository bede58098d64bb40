package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

// rangeClause builds a half-open [from, to) filter so adjacent windows never
// double-count an order on the boundary.
func rangeClause(from, to time.Time, args *[]interface{}, next func() string) string {
	clause := ""
	if !from.IsZero() {
		*args = append(*args, from)
		clause += " AND o.order_date >= " + next()
	}
	if !to.IsZero() {
		*args = append(*args, to)
		clause += " AND o.order_date < " + next()
	}
	return clause
}

func argNumberer(start int) func() string {
	n := start
	return func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}
}

// OrdersInRange retrieves orders with snapshotted cost sums, oldest first.
// Zero from/to leave that side unbounded.
func (s *Store) OrdersInRange(ctx context.Context, from, to time.Time) ([]models.OrderWithCosts, error) {
	args := []interface{}{}
	query := `
		SELECT ` + orderWithCostsColumns + `
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		LEFT JOIN recipes r ON r.id = o.recipe_id
		WHERE 1 = 1` +
		rangeClause(from, to, &args, argNumberer(0)) + `
		ORDER BY o.order_date ASC, o.id ASC`

	var orders []models.OrderWithCosts
	err := s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// FirstOrderDate returns the date of the earliest order
func (s *Store) FirstOrderDate(ctx context.Context) (time.Time, error) {
	var date time.Time
	err := s.db.GetContext(ctx, &date, "SELECT order_date FROM orders ORDER BY order_date ASC, id ASC LIMIT 1")
	if err == sql.ErrNoRows {
		return time.Time{}, store.ErrNotFound
	}
	return date, err
}

// UsageTotals aggregates snapshotted usage per item, most expensive first
func (s *Store) UsageTotals(ctx context.Context, kind models.ItemKind, from, to time.Time) ([]models.ItemUsage, error) {
	args := []interface{}{kind}
	query := `
		SELECT i.id AS item_id, i.name, i.default_unit AS unit,
		       COALESCE(SUM(l.amount), 0) AS amount_used,
		       COALESCE(SUM(l.cost_at_time_of_use_cents), 0) AS total_cost_cents
		FROM stock_items i
		JOIN order_lines l ON l.item_kind = i.kind AND l.item_id = i.id
		JOIN orders o ON o.id = l.order_id
		WHERE i.kind = $1` +
		rangeClause(from, to, &args, argNumberer(1)) + `
		GROUP BY i.id, i.name, i.default_unit
		ORDER BY total_cost_cents DESC, i.id ASC`

	var usage []models.ItemUsage
	err := s.db.SelectContext(ctx, &usage, query, args...)
	return usage, err
}

// TopCustomersByRevenue groups order revenue per customer, ties by id
func (s *Store) TopCustomersByRevenue(ctx context.Context, from, to time.Time, limit int) ([]models.CustomerRevenue, error) {
	args := []interface{}{}
	next := argNumberer(0)
	query := `
		SELECT c.id AS customer_id, c.name,
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.sale_price_total_cents), 0) AS revenue_cents
		FROM customers c
		JOIN orders o ON o.customer_id = c.id
		WHERE 1 = 1` + rangeClause(from, to, &args, next) + `
		GROUP BY c.id, c.name
		ORDER BY revenue_cents DESC, c.id ASC
		LIMIT ` + next()
	args = append(args, limit)

	var rows []models.CustomerRevenue
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

// TopRecipesByOrderCount groups order counts per recipe, ties by id
func (s *Store) TopRecipesByOrderCount(ctx context.Context, from, to time.Time, limit int) ([]models.RecipeCount, error) {
	args := []interface{}{}
	next := argNumberer(0)
	query := `
		SELECT r.id AS recipe_id, r.name, COUNT(o.id) AS order_count
		FROM recipes r
		JOIN orders o ON o.recipe_id = r.id
		WHERE 1 = 1` + rangeClause(from, to, &args, next) + `
		GROUP BY r.id, r.name
		ORDER BY order_count DESC, r.id ASC
		LIMIT ` + next()
	args = append(args, limit)

	var rows []models.RecipeCount
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}
