package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/giftstore-backend/pkg/jsonstore"
)

// ErrNotFound is returned when no record carries the requested ID.
var ErrNotFound = errors.New("store not found")

// Repository handles store persistence on top of the stores collection.
type Repository struct {
	coll *jsonstore.Collection[Store]
	seq  *jsonstore.Sequence
}

// NewRepository binds the stores collection and its ID sequence.
func NewRepository(coll *jsonstore.Collection[Store], seq *jsonstore.Sequence) (*Repository, error) {
	if coll == nil {
		return nil, errors.New("stores collection required")
	}
	if seq == nil {
		return nil, errors.New("store sequence required")
	}
	return &Repository{coll: coll, seq: seq}, nil
}

// List returns every store in file order.
func (r *Repository) List(ctx context.Context) ([]Store, error) {
	return r.coll.Load(ctx)
}

// FindByID loads a store by its st_NNN identifier.
func (r *Repository) FindByID(ctx context.Context, id string) (*Store, error) {
	var found *Store
	err := r.coll.View(ctx, func(records []Store) error {
		for i := range records {
			if records[i].ID == id {
				store := records[i]
				found = &store
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
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*Store, error) {
	store := dto.ToModel()
	err := r.coll.Update(ctx, func(records []Store) ([]Store, error) {
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
		id, err := r.seq.Next(ids)
		if err != nil {
			return nil, fmt.Errorf("next store id: %w", err)
		}
		store.ID = id
		return append(records, store), nil
	})
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// Update applies mutate to the matching record and persists the collection.
// Nothing is written when mutate fails.
func (r *Repository) Update(ctx context.Context, id string, mutate func(*Store) error) (*Store, error) {
	var updated Store
	err := r.coll.Update(ctx, func(records []Store) ([]Store, error) {
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
