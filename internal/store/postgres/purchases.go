package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

// CreatePurchase inserts a purchase record with its precomputed unit cost
func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	query := `
		INSERT INTO purchases (item_kind, item_id, purchase_date, quantity, unit, total_cost_cents, unit_cost_millicents, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := s.db.GetContext(ctx, &purchase.ID, query,
		purchase.ItemKind, purchase.ItemID, purchase.PurchaseDate, purchase.Quantity,
		purchase.Unit, purchase.TotalCostCents, purchase.UnitCostMillicents, purchase.Notes)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("stock item %s/%d: %w", purchase.ItemKind, purchase.ItemID, store.ErrNotFound)
	}
	return err
}

// GetPurchase retrieves a purchase by ID
func (s *Store) GetPurchase(ctx context.Context, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.GetContext(ctx, &purchase, "SELECT * FROM purchases WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListPurchases retrieves all purchases, most recent first
func (s *Store) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.SelectContext(ctx, &purchases,
		"SELECT * FROM purchases ORDER BY purchase_date DESC, id DESC")
	return purchases, err
}

// UpdatePurchase updates a purchase record
func (s *Store) UpdatePurchase(ctx context.Context, purchase *models.Purchase) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE purchases
		SET item_kind = $1, item_id = $2, purchase_date = $3, quantity = $4, unit = $5,
		    total_cost_cents = $6, unit_cost_millicents = $7, notes = $8
		WHERE id = $9`,
		purchase.ItemKind, purchase.ItemID, purchase.PurchaseDate, purchase.Quantity, purchase.Unit,
		purchase.TotalCostCents, purchase.UnitCostMillicents, purchase.Notes, purchase.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("purchase %d: %w", purchase.ID, store.ErrNotFound)
	}
	return nil
}

// DeletePurchase deletes a purchase record
func (s *Store) DeletePurchase(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM purchases WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("purchase %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// LatestGenuinePurchase returns the newest non-adjustment purchase for an item
func (s *Store) LatestGenuinePurchase(ctx context.Context, kind models.ItemKind, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.GetContext(ctx, &purchase, `
		SELECT * FROM purchases
		WHERE item_kind = $1 AND item_id = $2 AND total_cost_cents > 0
		ORDER BY purchase_date DESC, id DESC
		LIMIT 1`, kind, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no genuine purchase for %s/%d: %w", kind, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// PurchasedQuantity sums purchased quantity for an item, adjustments included
func (s *Store) PurchasedQuantity(ctx context.Context, kind models.ItemKind, id int64) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(quantity), 0) FROM purchases
		WHERE item_kind = $1 AND item_id = $2`, kind, id)
	return total, err
}

// UsedQuantity sums the amounts consumed by order lines for an item
func (s *Store) UsedQuantity(ctx context.Context, kind models.ItemKind, id int64) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0) FROM order_lines
		WHERE item_kind = $1 AND item_id = $2`, kind, id)
	return total, err
}
