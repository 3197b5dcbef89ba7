package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/giftstore-backend/pkg/jsonstore"
)

// ErrNotFound is returned when no record carries the requested ID.
var ErrNotFound = errors.New("product not found")

// Repository handles product persistence on top of the products collection.
type Repository struct {
	coll *jsonstore.Collection[Product]
	seq  *jsonstore.Sequence
}

// NewRepository binds the products collection and its ID sequence.
func NewRepository(coll *jsonstore.Collection[Product], seq *jsonstore.Sequence) (*Repository, error) {
	if coll == nil {
		return nil, errors.New("products collection required")
	}
	if seq == nil {
		return nil, errors.New("product sequence required")
	}
	return &Repository{coll: coll, seq: seq}, nil
}

// List returns every product in file order.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	records, err := r.coll.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.normalized())
	}
	return out, nil
}

// ListByStore filters by exact storeId match.
func (r *Repository) ListByStore(ctx context.Context, storeID string) ([]Product, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0)
	for _, rec := range records {
		if rec.StoreID == storeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindByID returns the first product carrying id.
func (r *Repository) FindByID(ctx context.Context, id string) (*Product, error) {
	var found *Product
	err := r.coll.View(ctx, func(records []Product) error {
		for i := range records {
			if records[i].ID == id {
				product := records[i].normalized()
				found = &product
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Create assigns the next identifier and appends the record.
func (r *Repository) Create(ctx context.Context, dto CreateProductDTO) (*Product, error) {
	product := dto.ToModel()
	err := r.coll.Update(ctx, func(records []Product) ([]Product, error) {
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
		id, err := r.seq.Next(ids)
		if err != nil {
			return nil, fmt.Errorf("next product id: %w", err)
		}
		product.ID = id
		return append(records, product), nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update applies mutate to the first matching record and persists the
// collection. It returns the record as it was before and after mutate.
func (r *Repository) Update(ctx context.Context, id string, mutate func(*Product) error) (before, after *Product, err error) {
	err = r.coll.Update(ctx, func(records []Product) ([]Product, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			prev := records[i].normalized()
			next := prev
			next.Includes = nonNil(prev.Includes)
			next.Images = nonNil(prev.Images)
			if err := mutate(&next); err != nil {
				return nil, err
			}
			records[i] = next
			before, after = &prev, &next
			return records, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Delete removes every record carrying id and returns the first one removed.
func (r *Repository) Delete(ctx context.Context, id string) (*Product, error) {
	var removed *Product
	err := r.coll.Update(ctx, func(records []Product) ([]Product, error) {
		kept := records[:0]
		for i := range records {
			if records[i].ID == id {
				if removed == nil {
					product := records[i].normalized()
					removed = &product
				}
				continue
			}
			kept = append(kept, records[i])
		}
		if removed == nil {
			return nil, ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
