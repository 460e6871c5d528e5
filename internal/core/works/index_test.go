package works_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/core/works"
	"github.com/atelierhq/atelier/internal/platform/kv"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingCounter records artist aggregate bumps.
type countingCounter struct {
	bumps map[string]int
}

func (c *countingCounter) IncrementWorksCount(_ context.Context, _ int, artistID string) error {
	if c.bumps == nil {
		c.bumps = map[string]int{}
	}
	c.bumps[artistID]++
	return nil
}

func sampleWork(id, artistID string, weeks ...int) *works.Work {
	return &works.Work{
		ID:                 id,
		ArtistID:           artistID,
		Year:               2026,
		WeekNumbers:        weeks,
		Title:              "Study " + id,
		Items:              []works.URLItem{{URL: "https://x/" + id + ".png"}},
		SubmittedTimestamp: "2026-08-01T12:00:00Z",
	}
}

/*
TestPlace_AllIndices verifies a full placement writes the by-ID entry, the
artist map, one map per tagged week, and the unfiltered list.
*/
func TestPlace_AllIndices(t *testing.T) {
	ctx := context.Background()
	memory := kv.NewMemoryStore()
	store := works.NewStore(memory)
	maintainer := works.NewIndexMaintainer(store, nil, discardLogger())

	work := sampleWork("a1b2c3d4", "disc123", 31, 32)
	require.NoError(t, maintainer.Place(ctx, work, true, works.PlaceAll))

	byID, err := store.GetByID(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, "Study a1b2c3d4", byID.Title)

	artistEntries, err := store.GetArtistIndex(ctx, "disc123")
	require.NoError(t, err)
	assert.Contains(t, artistEntries, "a1b2c3d4")

	for _, week := range []int{31, 32} {
		weekEntries, err := store.GetWeekIndex(ctx, 2026, week)
		require.NoError(t, err)
		assert.Contains(t, weekEntries, "a1b2c3d4", "week %d", week)
	}

	list, err := store.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1b2c3d4", list[0].ID)
}

/*
TestPlace_MergesExistingEntries verifies placement merges into existing maps
instead of clobbering sibling works.
*/
func TestPlace_MergesExistingEntries(t *testing.T) {
	ctx := context.Background()
	store := works.NewStore(kv.NewMemoryStore())
	maintainer := works.NewIndexMaintainer(store, nil, discardLogger())

	first := sampleWork("aaaa1111", "disc123", 31)
	second := sampleWork("bbbb2222", "disc123", 31)

	require.NoError(t, maintainer.Place(ctx, first, true, works.PlaceAll))
	require.NoError(t, maintainer.Place(ctx, second, true, works.PlaceAll))

	artistEntries, err := store.GetArtistIndex(ctx, "disc123")
	require.NoError(t, err)
	assert.Len(t, artistEntries, 2)

	weekEntries, err := store.GetWeekIndex(ctx, 2026, 31)
	require.NoError(t, err)
	assert.Len(t, weekEntries, 2)

	list, err := store.GetList(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

/*
TestPlace_ReplacesByID verifies re-placing a work replaces its slot in every
view rather than duplicating it.
*/
func TestPlace_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	store := works.NewStore(kv.NewMemoryStore())
	maintainer := works.NewIndexMaintainer(store, nil, discardLogger())

	work := sampleWork("a1b2c3d4", "disc123", 31)
	require.NoError(t, maintainer.Place(ctx, work, true, works.PlaceAll))

	work.Title = "Revised Study"
	require.NoError(t, maintainer.Place(ctx, work, false, works.PlaceAll))

	list, err := store.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Revised Study", list[0].Title)

	artistEntries, err := store.GetArtistIndex(ctx, "disc123")
	require.NoError(t, err)
	assert.Equal(t, "Revised Study", artistEntries["a1b2c3d4"].Title)
}

/*
TestPlace_FlagsSuppressListWrite verifies the list key is untouched when the
list flag is off — the mechanism the moderation batch relies on.
*/
func TestPlace_FlagsSuppressListWrite(t *testing.T) {
	ctx := context.Background()
	memory := kv.NewMemoryStore()
	store := works.NewStore(memory)
	maintainer := works.NewIndexMaintainer(store, nil, discardLogger())

	flags := works.PlaceAll
	flags.ListIndex = false

	work := sampleWork("a1b2c3d4", "disc123", 31)
	require.NoError(t, maintainer.Place(ctx, work, false, flags))

	assert.Equal(t, 0, memory.PutCount("works:all"))

	// The disjoint sub-indices were still written.
	byID, err := store.GetByID(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.NotNil(t, byID)
}

/*
TestPlace_BumpsArtistCounterOnce verifies the aggregate hook fires only for
brand-new placements.
*/
func TestPlace_BumpsArtistCounterOnce(t *testing.T) {
	ctx := context.Background()
	store := works.NewStore(kv.NewMemoryStore())
	counter := &countingCounter{}
	maintainer := works.NewIndexMaintainer(store, counter, discardLogger())

	work := sampleWork("a1b2c3d4", "disc123", 31)
	require.NoError(t, maintainer.Place(ctx, work, true, works.PlaceAll))
	require.NoError(t, maintainer.Place(ctx, work, false, works.PlaceAll))

	assert.Equal(t, 1, counter.bumps["disc123"])
}
