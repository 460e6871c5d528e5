/*
Package weeks manages theme-week metadata: the yearly directory of weekly
prompts that works are tagged against.

The directory is mutated wholesale: a staff PUT replaces a whole year's map
in one write. Publication state gates what non-staff callers see.
*/
package weeks

// Week is one theme period within a year.
type Week struct {
	Week  int    `json:"week"`
	Year  int    `json:"year"`
	Theme string `json:"theme"`

	Description string `json:"description,omitempty"`

	// IsPublished gates non-staff visibility: unpublished weeks (and the
	// works tagged to them) stay hidden until the theme is announced.
	IsPublished bool `json:"isPublished"`
}

// Bounds enforced on week overwrites.
const (
	MaxThemeLen       = 120
	MaxDescriptionLen = 2000
)

// JSON field identifiers used in validation errors.
const (
	FieldYear  = "year"
	FieldWeeks = "weeks"
	FieldTheme = "theme"
)
