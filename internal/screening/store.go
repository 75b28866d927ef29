package screening

import (
	"context"
	"fmt"

	"github.com/harrison/mchat/internal/models"
)

// ResultStore is the session-scoped key-value store of committed item results.
// Get returns (nil, nil) when no result exists for the item.
type ResultStore interface {
	Get(ctx context.Context, itemID int) (*models.ItemResult, error)
	Put(ctx context.Context, itemID int, result *models.ItemResult) error
	Delete(ctx context.Context, itemID int) error
}

// itemStore is one machine's view of the shared store. It can only
// address its own key, which keeps items isolated from each other.
type itemStore struct {
	itemID int
	inner  ResultStore
}

func (s itemStore) get(ctx context.Context) (*models.ItemResult, error) {
	r, err := s.inner.Get(ctx, s.itemID)
	if err != nil {
		return nil, err
	}
	if r != nil && r.ItemID != s.itemID {
		return nil, fmt.Errorf("%w: key %d holds item %d", ErrSchemaMismatch, s.itemID, r.ItemID)
	}
	return r, nil
}

func (s itemStore) put(ctx context.Context, r *models.ItemResult) error {
	if r.ItemID != s.itemID {
		return fmt.Errorf("%w: item %d attempted to write item %d", ErrCrossItemWrite, s.itemID, r.ItemID)
	}
	return s.inner.Put(ctx, s.itemID, r)
}

func (s itemStore) delete(ctx context.Context) error {
	return s.inner.Delete(ctx, s.itemID)
}
