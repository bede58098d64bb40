// Package cache holds hot read paths for the costing and stock services:
// the resolved unit cost and the derived stock level per item. Entries are
// invalidated whenever a purchase, order, or adjustment touches the item.
package cache

import (
	"context"

	"github.com/mukhma0c/cookies-manager/internal/models"
)

type Cache interface {
	// GetUnitCost returns the cached unit cost in millicents. The second
	// return value is false on a miss.
	GetUnitCost(ctx context.Context, kind models.ItemKind, itemID int64) (int64, bool, error)
	SetUnitCost(ctx context.Context, kind models.ItemKind, itemID int64, millicents int64) error

	// GetStock returns the cached stock level in the item's unit.
	GetStock(ctx context.Context, kind models.ItemKind, itemID int64) (float64, bool, error)
	SetStock(ctx context.Context, kind models.ItemKind, itemID int64, quantity float64) error

	// InvalidateItem drops both entries for the item.
	InvalidateItem(ctx context.Context, kind models.ItemKind, itemID int64) error

	Close() error
}

// Noop satisfies Cache without storing anything. Used in tests and when no
// Redis address is configured.
type Noop struct{}

func (Noop) GetUnitCost(context.Context, models.ItemKind, int64) (int64, bool, error) {
	return 0, false, nil
}

func (Noop) SetUnitCost(context.Context, models.ItemKind, int64, int64) error { return nil }

func (Noop) GetStock(context.Context, models.ItemKind, int64) (float64, bool, error) {
	return 0, false, nil
}

func (Noop) SetStock(context.Context, models.ItemKind, int64, float64) error { return nil }

func (Noop) InvalidateItem(context.Context, models.ItemKind, int64) error { return nil }

func (Noop) Close() error { return nil }
