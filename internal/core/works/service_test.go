package works_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/core/works"
	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/kv"
	"github.com/atelierhq/atelier/internal/platform/sec"
)

const testCDN = "https://cdn.atelier.gallery/"

// countingScraper derives deterministic fake thumbnails and records how
// often it was invoked.
type countingScraper struct {
	calls int
}

func (s *countingScraper) ScrapeThumbnails(_ context.Context, pageURL string) (string, string, error) {
	s.calls++
	return "small:" + pageURL, "high:" + pageURL, nil
}

// stubAnnouncer returns a fixed external post ID.
type stubAnnouncer struct {
	externalID string
	err        error
	calls      int
}

func (a *stubAnnouncer) PostOrEditWork(_ context.Context, _ *works.Work) (string, error) {
	a.calls++
	return a.externalID, a.err
}

// stubWeekGate exposes a fixed published-week set per year.
type stubWeekGate struct {
	published map[int]map[int]bool
	calls     int
}

func (g *stubWeekGate) PublishedWeeks(_ context.Context, year int) (map[int]bool, error) {
	g.calls++
	return g.published[year], nil
}

type serviceFixture struct {
	service *works.Service
	store   *works.Store
	memory  *kv.MemoryStore
}

func newFixture(allocate works.AllocateFunc, announcer works.Announcer, thumbnailer works.Thumbnailer) *serviceFixture {
	return newGatedFixture(allocate, announcer, thumbnailer, nil)
}

func newGatedFixture(allocate works.AllocateFunc, announcer works.Announcer, thumbnailer works.Thumbnailer, gate works.WeekGate) *serviceFixture {
	memory := kv.NewMemoryStore()
	store := works.NewStore(memory)
	maintainer := works.NewIndexMaintainer(store, nil, discardLogger())
	service := works.NewService(store, maintainer, allocate, announcer, thumbnailer, gate, testCDN, discardLogger())
	return &serviceFixture{service: service, store: store, memory: memory}
}

func artistClaims(artistID string) *sec.AuthClaims {
	return &sec.AuthClaims{UserID: artistID, Role: string(sec.RoleArtist)}
}

func staffClaims() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "staff1", Role: string(sec.RoleModerator)}
}

func submission(artistID string, urls ...string) *works.Work {
	items := make([]works.URLItem, len(urls))
	for i, u := range urls {
		items[i] = works.URLItem{URL: u}
	}
	return &works.Work{
		ArtistID:    artistID,
		Year:        2026,
		WeekNumbers: []int{31},
		Title:       "Weekly Study",
		Items:       items,
	}
}

/*
TestPut_CreatesWork covers the happy path: a first submission gets a fresh
allocator ID, a submission timestamp, derived thumbnails, and lands in all
four views.
*/
func TestPut_CreatesWork(t *testing.T) {
	ctx := context.Background()
	fixture := newFixture(nil, nil, nil)

	created, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), artistClaims("disc123"))
	require.NoError(t, err)

	assert.Regexp(t, `^[a-z0-9]{4,12}$`, created.ID)
	assert.False(t, created.IsApproved)
	assert.False(t, created.IsSoftDeleted)
	assert.Empty(t, created.DiscordID)
	assert.NotEmpty(t, created.SubmittedTimestamp)
	assert.NotEmpty(t, created.ThumbnailURL)

	// Index completeness: the work is reachable through every view.
	byID, err := fixture.store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	artistEntries, err := fixture.store.GetArtistIndex(ctx, "disc123")
	require.NoError(t, err)
	assert.Contains(t, artistEntries, created.ID)

	weekEntries, err := fixture.store.GetWeekIndex(ctx, 2026, 31)
	require.NoError(t, err)
	assert.Contains(t, weekEntries, created.ID)

	list, err := fixture.store.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

/*
TestPut_RequiresIdentity verifies the authn gate fails closed.
*/
func TestPut_RequiresIdentity(t *testing.T) {
	fixture := newFixture(nil, nil, nil)

	_, err := fixture.service.Put(context.Background(), submission("disc123", "https://x/a.png"), nil)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
}

/*
TestPut_ValidationErrors verifies structural violations come back as
itemized field errors before any store mutation.
*/
func TestPut_ValidationErrors(t *testing.T) {
	fixture := newFixture(nil, nil, nil)

	invalid := &works.Work{
		ArtistID:    "disc123",
		Year:        1990,              // out of range
		WeekNumbers: nil,               // empty
		Title:       "",                // required
		Items:       []works.URLItem{}, // empty
	}

	_, err := fixture.service.Put(context.Background(), invalid, artistClaims("disc123"))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.NotEmpty(t, ae.Details)
	assert.Equal(t, 0, fixture.memory.Len(), "validation failure must not touch the store")

	// Week numbers form a set.
	repeated := submission("disc123", "https://x/a.png")
	repeated.WeekNumbers = []int{31, 31}
	_, err = fixture.service.Put(context.Background(), repeated, artistClaims("disc123"))
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestPut_PrivilegeReset verifies no caller may set moderation state through
the submission path, whatever the payload claims.
*/
func TestPut_PrivilegeReset(t *testing.T) {
	fixture := newFixture(nil, nil, nil)

	payload := submission("disc123", "https://x/a.png")
	payload.IsApproved = true
	payload.IsSoftDeleted = true
	payload.DiscordID = "smuggled"

	created, err := fixture.service.Put(context.Background(), payload, artistClaims("disc123"))
	require.NoError(t, err)

	assert.False(t, created.IsApproved)
	assert.False(t, created.IsSoftDeleted)
	assert.Empty(t, created.DiscordID)
}

/*
TestPut_OwnershipMismatch verifies a non-staff caller cannot submit works
for another artist.
*/
func TestPut_OwnershipMismatch(t *testing.T) {
	fixture := newFixture(nil, nil, nil)

	_, err := fixture.service.Put(context.Background(), submission("someone-else", "https://x/a.png"), artistClaims("disc123"))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
}

/*
TestPut_DuplicateSubmissionRejected covers idempotent resubmission: the same
(artist, items) pair resolves to the occupied ID and is rejected as a
duplicate instead of creating a second work.
*/
func TestPut_DuplicateSubmissionRejected(t *testing.T) {
	ctx := context.Background()
	fixture := newFixture(nil, nil, nil)
	claims := artistClaims("disc123")

	_, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), claims)
	require.NoError(t, err)

	_, err = fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), claims)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)

	list, err := fixture.store.GetList(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "never two distinct works for the same content")
}

/*
TestPut_CollisionIsFatal verifies a derived ID naming a distinct record
surfaces as a 500 COLLISION, never a silent overwrite.
*/
func TestPut_CollisionIsFatal(t *testing.T) {
	ctx := context.Background()

	// Broken allocator: everything hashes to the same ID.
	fixture := newFixture(func(string, []works.URLItem) string { return "fixed123" }, nil, nil)

	_, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), artistClaims("disc123"))
	require.NoError(t, err)

	_, err = fixture.service.Put(ctx, submission("disc999", "https://x/b.png"), artistClaims("disc999"))
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "COLLISION", ae.Code)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)

	// The original record survived untouched.
	original, err := fixture.store.GetByID(ctx, "fixed123")
	require.NoError(t, err)
	assert.Equal(t, "disc123", original.ArtistID)
}

/*
TestPut_EditCarriesOverProvenance verifies an edit keyed by the existing ID
preserves submittedTimestamp and discordId even though the privilege reset
cleared them on the incoming payload.
*/
func TestPut_EditCarriesOverProvenance(t *testing.T) {
	ctx := context.Background()
	announcer := &stubAnnouncer{externalID: "discord-777"}
	fixture := newFixture(nil, announcer, nil)
	claims := artistClaims("disc123")

	created, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), claims)
	require.NoError(t, err)
	require.Equal(t, "discord-777", created.DiscordID)

	edit := submission("disc123", "https://x/a.png")
	edit.ID = created.ID
	edit.Items = created.Items
	edit.Title = "Retitled Study"

	updated, err := fixture.service.Put(ctx, edit, claims)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.SubmittedTimestamp, updated.SubmittedTimestamp)
	assert.Equal(t, "discord-777", updated.DiscordID)
	assert.Equal(t, "Retitled Study", updated.Title)
	assert.False(t, updated.IsApproved, "edits always require re-moderation")
}

/*
TestPut_ThumbnailsNotRegeneratedWhenItemsUnchanged verifies the derivation
pipeline is skipped on edits whose item list is structurally unchanged.
*/
func TestPut_ThumbnailsNotRegeneratedWhenItemsUnchanged(t *testing.T) {
	ctx := context.Background()
	scraper := &countingScraper{}
	fixture := newFixture(nil, nil, scraper)
	claims := artistClaims("disc123")

	created, err := fixture.service.Put(ctx, submission("disc123", "https://pixiv.net/artworks/1"), claims)
	require.NoError(t, err)
	require.Equal(t, 1, scraper.calls)

	// Edit with the identical (already derived) item list.
	edit := submission("disc123", "https://pixiv.net/artworks/1")
	edit.ID = created.ID
	edit.Items = created.Items
	edit.Title = "Retitled"

	updated, err := fixture.service.Put(ctx, edit, claims)
	require.NoError(t, err)
	assert.Equal(t, 1, scraper.calls, "unchanged items must not trigger a re-scrape")
	assert.Equal(t, created.Items, updated.Items)

	// Changing the item list does trigger derivation again.
	rework := submission("disc123", "https://pixiv.net/artworks/2")
	rework.ID = created.ID

	_, err = fixture.service.Put(ctx, rework, claims)
	require.NoError(t, err)
	assert.Equal(t, 2, scraper.calls)
}

/*
TestPut_StaffOverwriteRetainsOwnership verifies staff edits cannot reassign
a work to a different artist.
*/
func TestPut_StaffOverwriteRetainsOwnership(t *testing.T) {
	ctx := context.Background()
	fixture := newFixture(nil, nil, nil)

	created, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), artistClaims("disc123"))
	require.NoError(t, err)

	edit := submission("someone-else", "https://x/a.png")
	edit.ID = created.ID
	edit.Items = created.Items

	updated, err := fixture.service.Put(ctx, edit, staffClaims())
	require.NoError(t, err)
	assert.Equal(t, "disc123", updated.ArtistID, "staff overwrites never change artistId")
}

/*
TestPut_EditRequiresPersistedOwnership verifies a non-staff artist cannot
take over another artist's work by resubmitting its ID under their own
artistId.
*/
func TestPut_EditRequiresPersistedOwnership(t *testing.T) {
	ctx := context.Background()
	fixture := newFixture(nil, nil, nil)

	created, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), artistClaims("disc123"))
	require.NoError(t, err)

	takeover := submission("disc999", "https://x/a.png")
	takeover.ID = created.ID
	takeover.Items = created.Items

	_, err = fixture.service.Put(ctx, takeover, artistClaims("disc999"))
	require.Error(t, err)
	assert.Equal(t, "BAD_REQUEST", apperr.As(err).Code)

	persisted, err := fixture.store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "disc123", persisted.ArtistID, "ownership must survive a foreign resubmission")
}

/*
TestPut_AnnouncementFailureIsNonFatal verifies the canonical write succeeds
even when the external announcement sync fails.
*/
func TestPut_AnnouncementFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	announcer := &stubAnnouncer{err: assert.AnError}
	fixture := newFixture(nil, announcer, nil)

	created, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), artistClaims("disc123"))
	require.NoError(t, err)
	assert.Empty(t, created.DiscordID)
	assert.Equal(t, 1, announcer.calls)

	persisted, err := fixture.store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, persisted.ID)
}

/*
TestGet_VisibilityPredicate verifies soft-deleted works read as absent and
unapproved works are restricted to staff and owner.
*/
func TestGet_VisibilityPredicate(t *testing.T) {
	ctx := context.Background()
	fixture := newFixture(nil, nil, nil)
	owner := artistClaims("disc123")

	created, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), owner)
	require.NoError(t, err)

	// Unapproved: owner and staff can read it, strangers and anonymous cannot.
	_, err = fixture.service.Get(ctx, created.ID, owner)
	assert.NoError(t, err)
	_, err = fixture.service.Get(ctx, created.ID, staffClaims())
	assert.NoError(t, err)
	_, err = fixture.service.Get(ctx, created.ID, artistClaims("stranger"))
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	_, err = fixture.service.Get(ctx, created.ID, nil)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// Soft-deleted: excluded for everyone, staff included.
	require.NoError(t, fixture.service.Moderate(ctx, []string{created.ID}, works.TransitionDelete, staffClaims()))
	_, err = fixture.service.Get(ctx, created.ID, staffClaims())
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestWeekPublicationGate verifies approved works tagged only to unpublished
weeks stay hidden from the public until the week itself is published, while
staff and the owning artist read through the gate.
*/
func TestWeekPublicationGate(t *testing.T) {
	ctx := context.Background()
	gate := &stubWeekGate{published: map[int]map[int]bool{}}
	fixture := newGatedFixture(nil, nil, nil, gate)
	owner := artistClaims("disc123")

	created, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), owner)
	require.NoError(t, err)
	other, err := fixture.service.Put(ctx, submission("disc999", "https://x/b.png"), artistClaims("disc999"))
	require.NoError(t, err)
	require.NoError(t, fixture.service.Moderate(ctx, []string{created.ID, other.ID}, works.TransitionApprove, staffClaims()))

	// Week 31 is not published: approved or not, the public sees nothing.
	_, err = fixture.service.Get(ctx, created.ID, nil)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	results, err := fixture.service.List(ctx, works.ListQuery{Week: 31, Year: 2026}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	// One week-map read covered both works of the year.
	assert.Equal(t, 2, gate.calls)

	// Owner and staff read through the gate.
	_, err = fixture.service.Get(ctx, created.ID, owner)
	assert.NoError(t, err)
	_, err = fixture.service.Get(ctx, created.ID, staffClaims())
	assert.NoError(t, err)

	// Publishing the week opens the public view.
	gate.published[2026] = map[int]bool{31: true}
	_, err = fixture.service.Get(ctx, created.ID, nil)
	assert.NoError(t, err)
	results, err = fixture.service.List(ctx, works.ListQuery{Week: 31, Year: 2026}, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

/*
TestList_FilterSelectivity verifies artist beats week beats the unfiltered
list, and that results come back keyed by ID.
*/
func TestList_FilterSelectivity(t *testing.T) {
	ctx := context.Background()
	fixture := newFixture(nil, nil, nil)

	first, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), artistClaims("disc123"))
	require.NoError(t, err)
	second, err := fixture.service.Put(ctx, submission("disc999", "https://x/b.png"), artistClaims("disc999"))
	require.NoError(t, err)

	require.NoError(t, fixture.service.Moderate(ctx, []string{first.ID, second.ID}, works.TransitionApprove, staffClaims()))

	// Artist filter wins even when week is also provided.
	results, err := fixture.service.List(ctx, works.ListQuery{ArtistID: "disc123", Week: 31, Year: 2026}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, first.ID)

	// Week filter.
	results, err = fixture.service.List(ctx, works.ListQuery{Week: 31, Year: 2026}, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Unfiltered.
	results, err = fixture.service.List(ctx, works.ListQuery{}, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

/*
TestList_UnapprovedQueue verifies the staff-only pending view and the owner
visibility rule on default listings.
*/
func TestList_UnapprovedQueue(t *testing.T) {
	ctx := context.Background()
	fixture := newFixture(nil, nil, nil)

	pending, err := fixture.service.Put(ctx, submission("disc123", "https://x/a.png"), artistClaims("disc123"))
	require.NoError(t, err)
	approved, err := fixture.service.Put(ctx, submission("disc999", "https://x/b.png"), artistClaims("disc999"))
	require.NoError(t, err)
	require.NoError(t, fixture.service.Moderate(ctx, []string{approved.ID}, works.TransitionApprove, staffClaims()))

	// Staff pending queue contains only the unapproved work.
	results, err := fixture.service.List(ctx, works.ListQuery{IsUnapproved: true}, staffClaims())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, pending.ID)

	// Anonymous callers see only the approved work.
	results, err = fixture.service.List(ctx, works.ListQuery{}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, approved.ID)

	// The owner additionally sees their own pending submission.
	results, err = fixture.service.List(ctx, works.ListQuery{}, artistClaims("disc123"))
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Non-staff callers asking for the pending queue get their normal view.
	results, err = fixture.service.List(ctx, works.ListQuery{IsUnapproved: true}, artistClaims("disc999"))
	require.NoError(t, err)
	assert.Contains(t, results, approved.ID)
}
