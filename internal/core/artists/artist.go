/*
Package artists serves the yearly artist directory and maintains the
per-artist works aggregate.

Artist records are externally maintained (profile edits flow through a
separate service); this package reads the directory and applies the one
mutation the works pipeline needs: bumping worksCount when an artist's work
is placed for the first time.
*/
package artists

// Artist is a directory entry for one participating artist in a given year.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// Socials maps a platform name to a profile URL.
	Socials map[string]string `json:"socials,omitempty"`

	// WorksCount is the running total of works this artist has submitted
	// in the year, incremented on first placement of each work.
	WorksCount int `json:"worksCount"`
}
