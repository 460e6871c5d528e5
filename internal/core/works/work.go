/*
Package works implements the multi-index consistency layer for submitted works.

A Work is persisted as four denormalized views in a key-value store that
offers no multi-key transactions: a by-ID singleton, a per-artist map, one
per-week map for every week the work is tagged to, and the unfiltered list.
The package keeps these views mutually consistent by always recomputing full
index entries from the current Work value (never incremental diffs), making
repeated writes self-correcting.

Components:

  - Allocator: deterministic short-ID assignment with collision detection.
  - IndexMaintainer: full-overwrite placement of a work into every view.
  - Service: validation, authorization, and create/update orchestration.
  - Moderation: privileged batch state transitions with a single list merge.
*/
package works

import "time"

// SentinelNoopID is a reserved placeholder identifier. A submitted work
// carrying it is treated as having no ID at all.
const SentinelNoopID = "noop"

// Bounds enforced on submitted works.
const (
	MaxTitleLen       = 160
	MaxMediumLen      = 80
	MaxDescriptionLen = 2000
	MaxWeekNumbers    = 6
	MaxItems          = 12
	MinYear           = 2018
	MaxYear           = 2100
)

// URLItem is a single entry in a work's ordered item list: an external URL
// plus its derived meta image and two thumbnail variants. Order is
// user-significant and preserved verbatim.
type URLItem struct {
	URL                 string `json:"url"`
	MetaImageURL        string `json:"metaImageUrl,omitempty"`
	SmallThumbnailURL   string `json:"smallThumbnailUrl,omitempty"`
	HighDPIThumbnailURL string `json:"highDpiThumbnailUrl,omitempty"`
}

// Work is the central entity: a submitted art piece tied to an artist and
// one or more theme weeks.
type Work struct {
	// ID is the allocator-assigned short identifier, immutable once set.
	ID string `json:"id"`

	// ArtistID is the owning artist, immutable after first creation.
	ArtistID string `json:"artistId"`

	Year        int   `json:"year"`
	WeekNumbers []int `json:"weekNumbers"`

	Title       string    `json:"title"`
	Medium      string    `json:"medium,omitempty"`
	Description string    `json:"description,omitempty"`
	Items       []URLItem `json:"items"`

	// Post-level thumbnails, chosen from the first non-placeholder item
	// thumbnail, else the first item's.
	ThumbnailURL      string `json:"thumbnailUrl,omitempty"`
	SmallThumbnailURL string `json:"smallThumbnailUrl,omitempty"`

	// Moderation state. Only the moderation batch path may set these;
	// an artist edit always resets both.
	IsApproved    bool `json:"isApproved"`
	IsSoftDeleted bool `json:"isSoftDeleted"`

	// DiscordID links the companion announcement post, preserved across
	// edits once set.
	DiscordID string `json:"discordId,omitempty"`

	// SubmittedTimestamp is ISO-8601, set once at first creation.
	SubmittedTimestamp string `json:"submittedTimestamp"`
}

// SubmittedAt parses the submission timestamp. The zero time is returned for
// records whose timestamp is absent or malformed, which sorts them last.
func (w *Work) SubmittedAt() time.Time {
	parsed, err := time.Parse(time.RFC3339, w.SubmittedTimestamp)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// ListQuery selects a subset of works. The most selective provided filter
// wins: artist > week > none.
type ListQuery struct {
	Year         int
	Week         int
	ArtistID     string
	IsUnapproved bool
}

// JSON field identifiers used in validation errors.
const (
	FieldID          = "id"
	FieldArtistID    = "artistId"
	FieldYear        = "year"
	FieldWeekNumbers = "weekNumbers"
	FieldTitle       = "title"
	FieldMedium      = "medium"
	FieldDescription = "description"
	FieldItems       = "items"
)
