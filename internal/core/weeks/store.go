package weeks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atelierhq/atelier/internal/platform/constants"
	"github.com/atelierhq/atelier/internal/platform/kv"
)

// Store provides typed access to the yearly week directory on top of the
// opaque key-value adapter. One key per year, always written wholesale.
type Store struct {
	kv kv.Store
}

// NewStore wraps a key-value adapter.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func keyYear(year int) string {
	return fmt.Sprintf("%s%d", constants.KeyWeeks, year)
}

// GetYear returns the week map for a year. An absent key yields an empty map.
func (store *Store) GetYear(ctx context.Context, year int) (map[int]*Week, error) {
	raw, err := store.kv.Get(ctx, keyYear(year))
	if err != nil {
		if kv.IsNotFound(err) {
			return map[int]*Week{}, nil
		}
		return nil, err
	}

	entries := map[int]*Week{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("weeks: corrupt directory entry for %d: %w", year, err)
	}
	return entries, nil
}

// PublishedWeeks returns the set of week numbers of a year whose entries are
// published. Unknown weeks are simply absent, which downstream read gating
// treats as unpublished.
func (store *Store) PublishedWeeks(ctx context.Context, year int) (map[int]bool, error) {
	entries, err := store.GetYear(ctx, year)
	if err != nil {
		return nil, err
	}

	published := make(map[int]bool, len(entries))
	for number, week := range entries {
		if week != nil && week.IsPublished {
			published[number] = true
		}
	}
	return published, nil
}

// PutYear overwrites the week map for a year.
func (store *Store) PutYear(ctx context.Context, year int, entries map[int]*Week) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("weeks: marshal directory for %d: %w", year, err)
	}
	return store.kv.Put(ctx, keyYear(year), string(raw))
}
