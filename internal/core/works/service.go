package works

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/kv"
	"github.com/atelierhq/atelier/internal/platform/sec"
	"github.com/atelierhq/atelier/internal/platform/validate"
)

// Announcer is the external announcement service contract. It creates or
// edits the companion post for a work and returns the external post ID.
// Whether a create or an edit is attempted is gated by the work's current
// DiscordID. Failures are non-fatal.
type Announcer interface {
	PostOrEditWork(ctx context.Context, work *Work) (string, error)
}

// WeekGate reports which week numbers of a year are published. Works tagged
// only to unpublished weeks are hidden from callers who are neither staff
// nor the owning artist. A nil gate leaves every week visible.
type WeekGate interface {
	PublishedWeeks(ctx context.Context, year int) (map[int]bool, error)
}

// Service orchestrates validation, authorization, business-state transitions
// and index placement for works.
type Service struct {
	store       *Store
	index       *IndexMaintainer
	allocate    AllocateFunc
	announcer   Announcer
	thumbnailer Thumbnailer
	weekGate    WeekGate
	cdnBaseURL  string
	logger      *slog.Logger
}

// NewService constructs the work service. announcer, thumbnailer and
// weekGate may be nil; the corresponding enrichment and gating steps then
// degrade to no-ops.
func NewService(
	store *Store,
	index *IndexMaintainer,
	allocate AllocateFunc,
	announcer Announcer,
	thumbnailer Thumbnailer,
	weekGate WeekGate,
	cdnBaseURL string,
	logger *slog.Logger,
) *Service {
	if allocate == nil {
		allocate = DetermineShortID
	}
	return &Service{
		store:       store,
		index:       index,
		allocate:    allocate,
		announcer:   announcer,
		thumbnailer: thumbnailer,
		weekGate:    weekGate,
		cdnBaseURL:  cdnBaseURL,
		logger:      logger,
	}
}

// # Create / Update

// Put creates or updates a work on behalf of caller.
//
// # Flow
//
//  1. Authn gate: no identity → Forbidden.
//  2. Structural validation with itemized field errors.
//  3. Privilege reset: isApproved/discordId/isSoftDeleted cleared
//     unconditionally — re-submission requires re-moderation.
//  4. Ownership: caller must be staff or the owning artist.
//  5. Existing-record lookup (sentinel "noop" ID counts as absent).
//  6. Creating: allocate a short ID and re-check the by-ID index; an
//     identical duplicate is rejected as "already exists", a distinct
//     record under the allocated ID is a fatal collision.
//     Editing: presented ID must match and, for non-staff callers, the
//     persisted record must already belong to them; staff overwrites
//     retain the persisted artistId; discordId and submittedTimestamp
//     always carry over from the persisted record.
//  7. Thumbnails derived only when creating or when the item list changed.
//  8. Announcement sync, non-fatal.
//  9. Placement into all four views.
//
// No store mutation happens before every check has passed.
func (service *Service) Put(ctx context.Context, input *Work, caller *sec.AuthClaims) (*Work, error) {

	// ── 1. Authn gate ─────────────────────────────────────────────────────
	if caller == nil {
		return nil, apperr.Forbidden("Authentication required")
	}

	// ── 2. Schema validation ──────────────────────────────────────────────
	if err := validateWork(input); err != nil {
		return nil, err
	}

	// ── 3. Privilege reset ────────────────────────────────────────────────
	// No caller, staff or not, may set moderation state via this path.
	input.IsApproved = false
	input.IsSoftDeleted = false
	input.DiscordID = ""

	// ── 4. Ownership check ────────────────────────────────────────────────
	if !caller.IsStaff() && input.ArtistID != caller.UserID {
		return nil, apperr.BadRequest("Works can only be submitted for your own artist profile")
	}

	// ── 5. Existing-record lookup ─────────────────────────────────────────
	existing, err := service.lookupExisting(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	// ── 6. Branch: creating vs editing ────────────────────────────────────
	isNew := existing == nil
	if isNew {
		if err := service.allocateID(ctx, input); err != nil {
			return nil, err
		}
		input.SubmittedTimestamp = time.Now().UTC().Format(time.RFC3339)
	} else {
		// Presented ID must exactly match the persisted record.
		if existing.ID != input.ID {
			return nil, apperr.Forbidden("Submitted ID does not match the existing record")
		}

		// Ownership is fixed at creation. Staff overwrites retain the
		// persisted owner; everyone else must already be that owner.
		if caller.IsStaff() {
			input.ArtistID = existing.ArtistID
		} else if existing.ArtistID != caller.UserID {
			return nil, apperr.BadRequest("Works can only be submitted for your own artist profile")
		}

		// Provenance and external linkage always carry over.
		input.DiscordID = existing.DiscordID
		input.SubmittedTimestamp = existing.SubmittedTimestamp
	}

	// ── 7. Thumbnail derivation ───────────────────────────────────────────
	if isNew || !itemsEqual(existing.Items, input.Items) {
		input.Items = deriveItemThumbnails(ctx, input.Items, service.cdnBaseURL, service.thumbnailer, service.logger)
	} else {
		// Item list unchanged: keep the persisted derivations untouched.
		input.Items = existing.Items
	}

	// ── 8. Post-level thumbnail selection ─────────────────────────────────
	if input.ThumbnailURL == "" {
		input.ThumbnailURL, input.SmallThumbnailURL = selectPostThumbnails(input.Items)
	}

	// ── 9. Announcement sync (non-fatal) ──────────────────────────────────
	service.syncAnnouncement(ctx, input)

	// ── 10. Persist & index ───────────────────────────────────────────────
	if err := service.index.Place(ctx, input, isNew, PlaceAll); err != nil {
		return nil, err
	}

	service.logger.Info("work_put",
		slog.String("work_id", input.ID),
		slog.String("artist_id", input.ArtistID),
		slog.Bool("is_new", isNew),
	)
	return input, nil
}

// lookupExisting reads the persisted work for the presented ID. The sentinel
// placeholder and the empty string both mean "no ID supplied".
func (service *Service) lookupExisting(ctx context.Context, id string) (*Work, error) {
	if id == "" || id == SentinelNoopID {
		return nil, nil
	}

	existing, err := service.store.GetByID(ctx, id)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	return existing, nil
}

// allocateID assigns a freshly derived short ID to input, re-checking the
// by-ID index before acceptance.
func (service *Service) allocateID(ctx context.Context, input *Work) error {
	id := service.allocate(input.ArtistID, input.Items)

	occupant, err := service.store.GetByID(ctx, id)
	if err != nil && !kv.IsNotFound(err) {
		return apperr.Internal(err)
	}

	if occupant != nil {
		// Identical content resolves to the same ID by construction; that is
		// a duplicate submission, not a collision. Compared on the same
		// footing the ID derivation uses — item URLs, not derived fields.
		if occupant.ArtistID == input.ArtistID && itemURLsEqual(occupant.Items, input.Items) {
			return apperr.BadRequest("This work already exists")
		}

		// A distinct record under the derived ID implies a broken hash or an
		// adversarial submission. Surface it loudly; never overwrite.
		return apperr.Collision(id, fmt.Errorf("works: allocated id %q already names a distinct record", id))
	}

	input.ID = id
	return nil
}

// syncAnnouncement attempts to create or update the companion external post.
// The work's persistence must not depend on this step succeeding.
func (service *Service) syncAnnouncement(ctx context.Context, work *Work) {
	if service.announcer == nil {
		return
	}

	externalID, err := service.announcer.PostOrEditWork(ctx, work)
	if err != nil {
		service.logger.Warn("announcement_sync_failed",
			slog.String("work_id", work.ID),
			slog.Any("error", err),
		)
		return
	}
	if externalID != "" {
		work.DiscordID = externalID
	}
}

// # Reads

// Get returns the work stored under id, treating soft-deleted and absent
// records identically. Unapproved works are visible to staff and the owning
// artist only.
func (service *Service) Get(ctx context.Context, id string, caller *sec.AuthClaims) (*Work, error) {
	work, err := service.store.GetByID(ctx, id)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, apperr.NotFound("Work")
		}
		return nil, apperr.Internal(err)
	}

	if !isVisible(work, caller) {
		return nil, apperr.NotFound("Work")
	}

	published, err := service.newWeekVisibility().published(ctx, work, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !published {
		return nil, apperr.NotFound("Work")
	}
	return work, nil
}

// List returns works matching the most selective provided filter
// (artist > week > none) as a map keyed by work ID.
func (service *Service) List(ctx context.Context, query ListQuery, caller *sec.AuthClaims) (map[string]*Work, error) {
	selected, err := service.selectIndex(ctx, query)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	isStaff := caller != nil && caller.IsStaff()
	visibility := service.newWeekVisibility()

	results := make(map[string]*Work, len(selected))
	for _, work := range selected {
		if query.IsUnapproved && isStaff {
			// Moderation queue view: pending submissions only.
			if !work.IsApproved && !work.IsSoftDeleted {
				results[work.ID] = work
			}
			continue
		}

		if !isVisible(work, caller) {
			continue
		}
		published, err := visibility.published(ctx, work, caller)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if published {
			results[work.ID] = work
		}
	}

	return results, nil
}

// selectIndex reads the densest index covering the query.
func (service *Service) selectIndex(ctx context.Context, query ListQuery) ([]*Work, error) {
	switch {
	case query.ArtistID != "":
		entries, err := service.store.GetArtistIndex(ctx, query.ArtistID)
		if err != nil {
			return nil, err
		}
		return mapValues(entries), nil

	case query.Week != 0:
		year := query.Year
		if year == 0 {
			year = time.Now().UTC().Year()
		}
		entries, err := service.store.GetWeekIndex(ctx, year, query.Week)
		if err != nil {
			return nil, err
		}
		return mapValues(entries), nil

	default:
		return service.store.GetList(ctx)
	}
}

// weekVisibility applies the publication gate with a per-request cache of
// each year's published-week set, so a list read hits the week map at most
// once per year it spans.
type weekVisibility struct {
	gate  WeekGate
	cache map[int]map[int]bool
}

func (service *Service) newWeekVisibility() *weekVisibility {
	return &weekVisibility{gate: service.weekGate, cache: make(map[int]map[int]bool)}
}

// published reports whether work sits in at least one published week. Staff
// and the owning artist bypass the gate; a week with no entry in the year's
// map counts as unpublished.
func (visibility *weekVisibility) published(ctx context.Context, work *Work, caller *sec.AuthClaims) (bool, error) {
	if visibility.gate == nil {
		return true, nil
	}
	if caller != nil && (caller.IsStaff() || caller.UserID == work.ArtistID) {
		return true, nil
	}

	weeks, ok := visibility.cache[work.Year]
	if !ok {
		loaded, err := visibility.gate.PublishedWeeks(ctx, work.Year)
		if err != nil {
			return false, err
		}
		visibility.cache[work.Year] = loaded
		weeks = loaded
	}

	for _, number := range work.WeekNumbers {
		if weeks[number] {
			return true, nil
		}
	}
	return false, nil
}

// isVisible implements the default read predicate: soft-deleted works are
// excluded everywhere; unapproved works are visible to staff and owner only.
func isVisible(work *Work, caller *sec.AuthClaims) bool {
	if work.IsSoftDeleted {
		return false
	}
	if work.IsApproved {
		return true
	}
	if caller == nil {
		return false
	}
	return caller.IsStaff() || caller.UserID == work.ArtistID
}

func mapValues(entries map[string]*Work) []*Work {
	values := make([]*Work, 0, len(entries))
	for _, work := range entries {
		values = append(values, work)
	}
	return values
}

// # Validation

func validateWork(input *Work) error {
	v := &validate.Validator{}

	v.Required(FieldArtistID, input.ArtistID)
	v.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, MaxTitleLen)
	v.MaxLen(FieldMedium, input.Medium, MaxMediumLen)
	v.MaxLen(FieldDescription, input.Description, MaxDescriptionLen)
	v.Range(FieldYear, input.Year, MinYear, MaxYear)

	v.Custom(FieldWeekNumbers, len(input.WeekNumbers) == 0, "At least one week is required")
	v.Custom(FieldWeekNumbers, len(input.WeekNumbers) > MaxWeekNumbers,
		fmt.Sprintf("At most %d weeks are allowed", MaxWeekNumbers))
	seen := make(map[int]bool, len(input.WeekNumbers))
	for _, week := range input.WeekNumbers {
		if week < 1 || week > 53 {
			v.Custom(FieldWeekNumbers, true, "Week numbers must be between 1 and 53")
			break
		}
		if seen[week] {
			v.Custom(FieldWeekNumbers, true, "Week numbers must not repeat")
			break
		}
		seen[week] = true
	}

	v.Custom(FieldItems, len(input.Items) == 0, "At least one item is required")
	v.Custom(FieldItems, len(input.Items) > MaxItems,
		fmt.Sprintf("At most %d items are allowed", MaxItems))
	for i, item := range input.Items {
		v.URL(fmt.Sprintf("%s[%d].url", FieldItems, i), item.URL)
	}

	if input.ID != "" && input.ID != SentinelNoopID {
		v.ShortID(FieldID, input.ID)
	}

	return v.Err()
}
