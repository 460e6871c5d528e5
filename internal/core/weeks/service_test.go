package weeks_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/core/weeks"
	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/kv"
	"github.com/atelierhq/atelier/internal/platform/sec"
)

func newService() (*weeks.Service, *weeks.Store) {
	store := weeks.NewStore(kv.NewMemoryStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return weeks.NewService(store, logger), store
}

func staff() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "staff1", Role: string(sec.RoleModerator)}
}

func member() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "member1", Role: string(sec.RoleMember)}
}

func directory() map[int]*weeks.Week {
	return map[int]*weeks.Week{
		30: {Theme: "Botanical Ink", IsPublished: true},
		31: {Theme: "Night Market", IsPublished: true},
		32: {Theme: "Unannounced"},
	}
}

func TestOverwrite_StaffOnly(t *testing.T) {
	service, _ := newService()

	err := service.Overwrite(context.Background(), 2026, directory(), member())
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	err = service.Overwrite(context.Background(), 2026, directory(), nil)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestOverwrite_NormalizesAddressingFields(t *testing.T) {
	ctx := context.Background()
	service, store := newService()

	entries := directory()
	entries[30].Week = 99   // lies about its own number
	entries[30].Year = 2019 // and its year

	require.NoError(t, service.Overwrite(ctx, 2026, entries, staff()))

	persisted, err := store.GetYear(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, persisted, 3)
	assert.Equal(t, 30, persisted[30].Week)
	assert.Equal(t, 2026, persisted[30].Year)
}

func TestOverwrite_ReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	service, store := newService()

	require.NoError(t, service.Overwrite(ctx, 2026, directory(), staff()))
	require.NoError(t, service.Overwrite(ctx, 2026, map[int]*weeks.Week{
		40: {Theme: "Harvest", IsPublished: true},
	}, staff()))

	persisted, err := store.GetYear(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Contains(t, persisted, 40)
}

func TestOverwrite_Validation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	tests := []struct {
		name    string
		year    int
		entries map[int]*weeks.Week
	}{
		{"year_out_of_range", 1990, directory()},
		{"nil_map", 2026, nil},
		{"week_number_out_of_range", 2026, map[int]*weeks.Week{54: {Theme: "x"}}},
		{"missing_theme", 2026, map[int]*weeks.Week{30: {}}},
		{"null_entry", 2026, map[int]*weeks.Week{30: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Overwrite(ctx, tt.year, tt.entries, staff())
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		})
	}
}

func TestList_RedactsUnpublishedForNonStaff(t *testing.T) {
	ctx := context.Background()
	service, _ := newService()
	require.NoError(t, service.Overwrite(ctx, 2026, directory(), staff()))

	// Staff see everything, including the unannounced theme.
	visible, err := service.List(ctx, 2026, staff())
	require.NoError(t, err)
	assert.Len(t, visible, 3)

	// Members and anonymous callers only see published weeks.
	visible, err = service.List(ctx, 2026, member())
	require.NoError(t, err)
	assert.Len(t, visible, 2)
	assert.NotContains(t, visible, 32)

	visible, err = service.List(ctx, 2026, nil)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestPublishedWeeks(t *testing.T) {
	ctx := context.Background()
	service, store := newService()
	require.NoError(t, service.Overwrite(ctx, 2026, directory(), staff()))

	published, err := store.PublishedWeeks(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{30: true, 31: true}, published)

	// A year with no directory publishes nothing.
	published, err = store.PublishedWeeks(ctx, 2031)
	require.NoError(t, err)
	assert.Empty(t, published)
}

func TestList_EmptyYear(t *testing.T) {
	service, _ := newService()

	visible, err := service.List(context.Background(), 2031, nil)
	require.NoError(t, err)
	assert.Empty(t, visible)
}
