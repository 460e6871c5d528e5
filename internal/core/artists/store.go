package artists

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atelierhq/atelier/internal/platform/constants"
	"github.com/atelierhq/atelier/internal/platform/kv"
)

// Store provides typed access to the yearly artist directory on top of the
// opaque key-value adapter.
type Store struct {
	kv kv.Store
}

// NewStore wraps a key-value adapter.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func keyYear(year int) string {
	return fmt.Sprintf("%s%d", constants.KeyArtists, year)
}

// GetYear returns the artist map for a year. An absent key yields an empty map.
func (store *Store) GetYear(ctx context.Context, year int) (map[string]*Artist, error) {
	raw, err := store.kv.Get(ctx, keyYear(year))
	if err != nil {
		if kv.IsNotFound(err) {
			return map[string]*Artist{}, nil
		}
		return nil, err
	}

	entries := map[string]*Artist{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("artists: corrupt directory entry for %d: %w", year, err)
	}
	return entries, nil
}

// PutYear overwrites the artist map for a year.
func (store *Store) PutYear(ctx context.Context, year int, entries map[string]*Artist) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("artists: marshal directory for %d: %w", year, err)
	}
	return store.kv.Put(ctx, keyYear(year), string(raw))
}

// IncrementWorksCount bumps the aggregate for artistID in the given year,
// creating a minimal directory entry when the artist is not listed yet.
//
// Read-modify-write on the yearly key; concurrent placements may race the
// same counter, which is accepted — the count is a display aggregate, not a
// ledger.
func (store *Store) IncrementWorksCount(ctx context.Context, year int, artistID string) error {
	entries, err := store.GetYear(ctx, year)
	if err != nil {
		return err
	}

	artist, ok := entries[artistID]
	if !ok {
		artist = &Artist{ID: artistID}
		entries[artistID] = artist
	}
	artist.WorksCount++

	return store.PutYear(ctx, year, entries)
}
