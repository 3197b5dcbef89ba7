package orders

import (
	"context"
	"errors"
	"sort"

	"github.com/angelmondragon/giftstore-backend/pkg/jsonstore"
)

// ErrNotFound is returned when no order carries the requested ID.
var ErrNotFound = errors.New("order not found")

// Repository persists the order log.
type Repository struct {
	coll *jsonstore.Collection[Order]
}

func NewRepository(coll *jsonstore.Collection[Order]) (*Repository, error) {
	if coll == nil {
		return nil, errors.New("orders collection required")
	}
	return &Repository{coll: coll}, nil
}

// Append adds order to the log.
func (r *Repository) Append(ctx context.Context, order Order) error {
	return r.coll.Update(ctx, func(records []Order) ([]Order, error) {
		return append(records, order), nil
	})
}

// List returns orders newest first, optionally restricted to one store.
func (r *Repository) List(ctx context.Context, storeID string) ([]Order, error) {
	records, err := r.coll.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(records))
	for _, rec := range records {
		if storeID == "" || rec.StoreID == storeID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update applies mutate to the matching order and persists the log.
func (r *Repository) Update(ctx context.Context, id string, mutate func(*Order) error) (*Order, error) {
	var updated Order
	err := r.coll.Update(ctx, func(records []Order) ([]Order, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			if err := mutate(&records[i]); err != nil {
				return nil, err
			}
			updated = records[i]
			return records, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
