package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

// CreateOrderWithLines persists the order and every snapshotted line item in
// a single transaction. On any failure nothing is visible.
func (s *Store) CreateOrderWithLines(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (customer_id, recipe_id, order_date, cookie_size, dough_weight_g,
		                    quantity_ordered, quantity_baked, quantity_kept_family,
		                    sale_price_total_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err = tx.GetContext(ctx, &order.ID, query,
		order.CustomerID, order.RecipeID, order.OrderDate, order.CookieSize, order.DoughWeightG,
		order.QuantityOrdered, order.QuantityBaked, order.QuantityKeptFamily,
		order.SalePriceTotalCents, order.Notes)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("order references: %w", store.ErrNotFound)
	}
	if err != nil {
		return err
	}

	for i := range lines {
		lines[i].OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, item_kind, item_id, amount, cost_at_time_of_use_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			lines[i].OrderID, lines[i].ItemKind, lines[i].ItemID, lines[i].Amount, lines[i].CostAtTimeOfUseCents)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("order line item %s/%d: %w", lines[i].ItemKind, lines[i].ItemID, store.ErrNotFound)
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetOrder retrieves an order with its line items
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, []models.OrderLine, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	var lines []models.OrderLine
	err = s.db.SelectContext(ctx, &lines,
		"SELECT * FROM order_lines WHERE order_id = $1 ORDER BY item_kind, item_id", id)
	if err != nil {
		return nil, nil, err
	}
	return &order, lines, nil
}

const orderWithCostsColumns = `
	o.id "order.id", o.customer_id "order.customer_id", o.recipe_id "order.recipe_id",
	o.order_date "order.order_date", o.cookie_size "order.cookie_size",
	o.dough_weight_g "order.dough_weight_g", o.quantity_ordered "order.quantity_ordered",
	o.quantity_baked "order.quantity_baked", o.quantity_kept_family "order.quantity_kept_family",
	o.sale_price_total_cents "order.sale_price_total_cents", o.notes "order.notes",
	COALESCE(c.name, '') AS customer_name,
	COALESCE(r.name, '') AS recipe_name,
	COALESCE((SELECT SUM(l.cost_at_time_of_use_cents) FROM order_lines l
	          WHERE l.order_id = o.id AND l.item_kind = 'ingredient'), 0) AS ingredient_cost_cents,
	COALESCE((SELECT SUM(l.cost_at_time_of_use_cents) FROM order_lines l
	          WHERE l.order_id = o.id AND l.item_kind = 'packaging'), 0) AS packaging_cost_cents`

// ListOrders retrieves all orders with snapshotted cost sums, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.OrderWithCosts, error) {
	var orders []models.OrderWithCosts
	err := s.db.SelectContext(ctx, &orders, `
		SELECT `+orderWithCostsColumns+`
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		LEFT JOIN recipes r ON r.id = o.recipe_id
		ORDER BY o.order_date DESC, o.id DESC`)
	return orders, err
}

// DeleteOrder deletes an order; its line items cascade
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	return nil
}
