package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store is the Postgres-backed ledger.
type Store struct {
	db *sqlx.DB
}

// NewStore connects to the database and returns a ledger store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

var _ store.Ledger = (*Store)(nil)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

// CreateStockItem inserts a new ingredient or packaging item
func (s *Store) CreateStockItem(ctx context.Context, item *models.StockItem) error {
	query := `
		INSERT INTO stock_items (kind, name, default_unit, default_price_cents, low_stock_threshold, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := s.db.GetContext(ctx, &item.ID, query,
		item.Kind, item.Name, item.DefaultUnit, item.DefaultPriceCents, item.LowStockThreshold, item.Notes)
	if isUniqueViolation(err) {
		return fmt.Errorf("stock item %q: %w", item.Name, store.ErrConflict)
	}
	return err
}

// GetStockItem retrieves a stock item by kind and ID
func (s *Store) GetStockItem(ctx context.Context, kind models.ItemKind, id int64) (*models.StockItem, error) {
	var item models.StockItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM stock_items WHERE kind = $1 AND id = $2", kind, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock item %s/%d: %w", kind, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListStockItems retrieves all items of one kind ordered by name
func (s *Store) ListStockItems(ctx context.Context, kind models.ItemKind) ([]models.StockItem, error) {
	var items []models.StockItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM stock_items WHERE kind = $1 ORDER BY name", kind)
	return items, err
}

// UpdateStockItem updates an existing stock item
func (s *Store) UpdateStockItem(ctx context.Context, item *models.StockItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE stock_items
		SET name = $1, default_unit = $2, default_price_cents = $3, low_stock_threshold = $4, notes = $5
		WHERE kind = $6 AND id = $7`,
		item.Name, item.DefaultUnit, item.DefaultPriceCents, item.LowStockThreshold, item.Notes,
		item.Kind, item.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("stock item %q: %w", item.Name, store.ErrConflict)
	}
	if err != nil {
		return err
	}
	return requireRow(res, item.Kind, item.ID)
}

// DeleteStockItem deletes a stock item unless recipes or orders reference it
func (s *Store) DeleteStockItem(ctx context.Context, kind models.ItemKind, id int64) error {
	var referenced bool
	err := s.db.GetContext(ctx, &referenced, `
		SELECT EXISTS(SELECT 1 FROM order_lines WHERE item_kind = $1 AND item_id = $2)
		    OR EXISTS(SELECT 1 FROM recipe_ingredients WHERE $1 = 'ingredient' AND ingredient_id = $2)`,
		kind, id)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("stock item %s/%d is referenced: %w", kind, id, store.ErrConflict)
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM stock_items WHERE kind = $1 AND id = $2", kind, id)
	if err != nil {
		return err
	}
	return requireRow(res, kind, id)
}

func requireRow(res sql.Result, kind models.ItemKind, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("stock item %s/%d: %w", kind, id, store.ErrNotFound)
	}
	return nil
}
