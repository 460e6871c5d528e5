package works

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atelierhq/atelier/internal/platform/constants"
	"github.com/atelierhq/atelier/internal/platform/kv"
)

// Store provides typed access to the four denormalized work views on top of
// the opaque key-value adapter. Every write is a full overwrite of one key;
// merging is the caller's job (see IndexMaintainer).
type Store struct {
	kv kv.Store
}

// NewStore wraps a key-value adapter.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// # Key construction

func keyByID(id string) string {
	return constants.KeyWorkByID + id
}

func keyByArtist(artistID string) string {
	return constants.KeyWorksByArtist + artistID
}

func keyByWeek(year, week int) string {
	return fmt.Sprintf("%s%d:%d", constants.KeyWorksByWeek, year, week)
}

// # By-ID singleton

// GetByID returns the work stored under id, or kv.ErrNotFound.
func (store *Store) GetByID(ctx context.Context, id string) (*Work, error) {
	raw, err := store.kv.Get(ctx, keyByID(id))
	if err != nil {
		return nil, err
	}

	work := &Work{}
	if err := json.Unmarshal([]byte(raw), work); err != nil {
		return nil, fmt.Errorf("works: corrupt by-id entry %q: %w", id, err)
	}
	return work, nil
}

// PutByID overwrites the by-ID entry for work.ID.
func (store *Store) PutByID(ctx context.Context, work *Work) error {
	raw, err := json.Marshal(work)
	if err != nil {
		return fmt.Errorf("works: marshal work %q: %w", work.ID, err)
	}
	return store.kv.Put(ctx, keyByID(work.ID), string(raw))
}

// # Per-artist map

// GetArtistIndex returns the per-artist map. An absent key yields an empty map.
func (store *Store) GetArtistIndex(ctx context.Context, artistID string) (map[string]*Work, error) {
	return store.getWorkMap(ctx, keyByArtist(artistID))
}

// PutArtistIndex overwrites the per-artist map.
func (store *Store) PutArtistIndex(ctx context.Context, artistID string, entries map[string]*Work) error {
	return store.putWorkMap(ctx, keyByArtist(artistID), entries)
}

// # Per-week map

// GetWeekIndex returns the map for (year, week). An absent key yields an empty map.
func (store *Store) GetWeekIndex(ctx context.Context, year, week int) (map[string]*Work, error) {
	return store.getWorkMap(ctx, keyByWeek(year, week))
}

// PutWeekIndex overwrites the map for (year, week).
func (store *Store) PutWeekIndex(ctx context.Context, year, week int, entries map[string]*Work) error {
	return store.putWorkMap(ctx, keyByWeek(year, week), entries)
}

// # Unfiltered list

// GetList returns the unfiltered works list. An absent key yields an empty slice.
func (store *Store) GetList(ctx context.Context) ([]*Work, error) {
	raw, err := store.kv.Get(ctx, constants.KeyWorksAll)
	if err != nil {
		if kv.IsNotFound(err) {
			return []*Work{}, nil
		}
		return nil, err
	}

	var list []*Work
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("works: corrupt list entry: %w", err)
	}
	return list, nil
}

// PutList overwrites the unfiltered works list.
func (store *Store) PutList(ctx context.Context, list []*Work) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("works: marshal list: %w", err)
	}
	return store.kv.Put(ctx, constants.KeyWorksAll, string(raw))
}

// # Map helpers

func (store *Store) getWorkMap(ctx context.Context, key string) (map[string]*Work, error) {
	raw, err := store.kv.Get(ctx, key)
	if err != nil {
		if kv.IsNotFound(err) {
			return map[string]*Work{}, nil
		}
		return nil, err
	}

	entries := map[string]*Work{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("works: corrupt index entry %q: %w", key, err)
	}
	return entries, nil
}

func (store *Store) putWorkMap(ctx context.Context, key string, entries map[string]*Work) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("works: marshal index entry %q: %w", key, err)
	}
	return store.kv.Put(ctx, key, string(raw))
}
