package works

import (
	"context"
	"fmt"
	"log/slog"
)

// PlaceFlags selects which denormalized views Place rewrites. The moderation
// batch suppresses the expensive list rewrite per item and defers it to a
// single merge at the end.
type PlaceFlags struct {
	IDIndex              bool
	ArtistAndWeekIndices bool
	ListIndex            bool
}

// PlaceAll rewrites every view.
var PlaceAll = PlaceFlags{IDIndex: true, ArtistAndWeekIndices: true, ListIndex: true}

// ArtistCounter is the downstream aggregate hook: bumped once when a work is
// placed for the first time.
type ArtistCounter interface {
	IncrementWorksCount(ctx context.Context, year int, artistID string) error
}

// IndexMaintainer writes the full set of denormalized index entries
// representing a work's current state.
//
// # Consistency Model
//
// Each sub-index is read-modify-written independently; there is no
// cross-index transaction. A crash between sub-writes leaves the indices
// transiently inconsistent, self-healing on the next full placement of the
// same work, because every write recomputes the complete entry from the
// current Work value rather than diffing.
type IndexMaintainer struct {
	store    *Store
	counters ArtistCounter
	logger   *slog.Logger
}

// NewIndexMaintainer constructs a maintainer. counters may be nil, in which
// case first-placement aggregate bumps are skipped.
func NewIndexMaintainer(store *Store, counters ArtistCounter, logger *slog.Logger) *IndexMaintainer {
	return &IndexMaintainer{
		store:    store,
		counters: counters,
		logger:   logger,
	}
}

// Place writes work into every view selected by flags, each as a full
// overwrite of the relevant key.
//
// isNew marks the first-ever placement of a brand-new work and triggers the
// downstream artist aggregate increment.
func (maintainer *IndexMaintainer) Place(ctx context.Context, work *Work, isNew bool, flags PlaceFlags) error {

	// ── 1. By-ID singleton ────────────────────────────────────────────────
	if flags.IDIndex {
		if err := maintainer.store.PutByID(ctx, work); err != nil {
			return fmt.Errorf("works: place by-id %q: %w", work.ID, err)
		}
	}

	// ── 2. By-artist and by-week maps ─────────────────────────────────────
	if flags.ArtistAndWeekIndices {
		artistEntries, err := maintainer.store.GetArtistIndex(ctx, work.ArtistID)
		if err != nil {
			return fmt.Errorf("works: read artist index %q: %w", work.ArtistID, err)
		}
		artistEntries[work.ID] = work
		if err := maintainer.store.PutArtistIndex(ctx, work.ArtistID, artistEntries); err != nil {
			return fmt.Errorf("works: place artist index %q: %w", work.ArtistID, err)
		}

		for _, week := range work.WeekNumbers {
			weekEntries, err := maintainer.store.GetWeekIndex(ctx, work.Year, week)
			if err != nil {
				return fmt.Errorf("works: read week index %d/%d: %w", work.Year, week, err)
			}
			weekEntries[work.ID] = work
			if err := maintainer.store.PutWeekIndex(ctx, work.Year, week, weekEntries); err != nil {
				return fmt.Errorf("works: place week index %d/%d: %w", work.Year, week, err)
			}
		}
	}

	// ── 3. Unfiltered list ────────────────────────────────────────────────
	if flags.ListIndex {
		list, err := maintainer.store.GetList(ctx)
		if err != nil {
			return fmt.Errorf("works: read list index: %w", err)
		}
		list = upsertByID(list, work)
		if err := maintainer.store.PutList(ctx, list); err != nil {
			return fmt.Errorf("works: place list index: %w", err)
		}
	}

	// ── 4. Downstream aggregates ──────────────────────────────────────────
	if isNew && maintainer.counters != nil {
		if err := maintainer.counters.IncrementWorksCount(ctx, work.Year, work.ArtistID); err != nil {
			// The counter is a display aggregate; its failure must not
			// invalidate an otherwise complete placement.
			maintainer.logger.Warn("works_count_bump_failed",
				slog.String("artist_id", work.ArtistID),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

// upsertByID inserts work into list, replacing an existing entry with the
// same ID, preserving list order otherwise.
func upsertByID(list []*Work, work *Work) []*Work {
	for i, existing := range list {
		if existing.ID == work.ID {
			list[i] = work
			return list
		}
	}
	return append(list, work)
}
