package works

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"path"
	"strings"
)

// Placeholder thumbnails assigned where no real derivation is possible
// (audio items, failed scrapes).
const (
	PlaceholderSmallThumbnailURL   = "https://cdn.atelier.gallery/static/placeholder-small.png"
	PlaceholderHighDPIThumbnailURL = "https://cdn.atelier.gallery/static/placeholder-2x.png"
)

// Thumbnailer is the external thumbnail pipeline contract: given an external
// page or image URL it scrapes/derives a small and a high-DPI variant.
//
// Failures are non-fatal — the work's persistence never depends on an
// enrichment step succeeding.
type Thumbnailer interface {
	ScrapeThumbnails(ctx context.Context, pageURL string) (small, highDPI string, err error)
}

// itemKind classifies an item URL by shape.
type itemKind int

const (
	itemKindExternal itemKind = iota
	itemKindInternal
	itemKindAudio
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
	".flac": true,
}

// classifyItem decides how an item's thumbnails are derived: audio gets the
// fixed placeholder pair, internal CDN assets get suffix-derived variants,
// everything else is an external link to be scraped.
func classifyItem(itemURL, cdnBaseURL string) itemKind {
	if audioExtensions[strings.ToLower(path.Ext(strippedPath(itemURL)))] {
		return itemKindAudio
	}
	if cdnBaseURL != "" && strings.HasPrefix(itemURL, cdnBaseURL) {
		return itemKindInternal
	}
	return itemKindExternal
}

// strippedPath returns the URL path with query/fragment removed so extension
// sniffing is not confused by "?v=2" suffixes.
func strippedPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Path
}

// internalVariant inserts suffix before the asset's extension. Uploaded CDN
// assets have their resized variants stored alongside the original under the
// same base name ("u/abc.png" → "u/abc-small.png", "u/abc-2x.png").
func internalVariant(assetURL, suffix string) string {
	ext := path.Ext(assetURL)
	if ext == "" {
		return assetURL + suffix
	}
	return strings.TrimSuffix(assetURL, ext) + suffix + ext
}

// deriveItemThumbnails fills in the thumbnail pair for every item, in order.
// Scrape failures degrade to the placeholder pair and are logged, never
// propagated.
func deriveItemThumbnails(ctx context.Context, items []URLItem, cdnBaseURL string, thumbnailer Thumbnailer, logger *slog.Logger) []URLItem {
	derived := make([]URLItem, len(items))

	for i, item := range items {
		derived[i] = item

		switch classifyItem(item.URL, cdnBaseURL) {
		case itemKindAudio:
			derived[i].SmallThumbnailURL = PlaceholderSmallThumbnailURL
			derived[i].HighDPIThumbnailURL = PlaceholderHighDPIThumbnailURL

		case itemKindInternal:
			derived[i].SmallThumbnailURL = internalVariant(item.URL, "-small")
			derived[i].HighDPIThumbnailURL = internalVariant(item.URL, "-2x")

		case itemKindExternal:
			small, highDPI, err := scrape(ctx, thumbnailer, item.URL)
			if err != nil {
				logger.Warn("thumbnail_scrape_failed",
					slog.String("url", item.URL),
					slog.Any("error", err),
				)
				derived[i].SmallThumbnailURL = PlaceholderSmallThumbnailURL
				derived[i].HighDPIThumbnailURL = PlaceholderHighDPIThumbnailURL
				continue
			}
			derived[i].MetaImageURL = highDPI
			derived[i].SmallThumbnailURL = small
			derived[i].HighDPIThumbnailURL = highDPI
		}
	}

	return derived
}

func scrape(ctx context.Context, thumbnailer Thumbnailer, pageURL string) (string, string, error) {
	if thumbnailer == nil {
		return PlaceholderSmallThumbnailURL, PlaceholderHighDPIThumbnailURL, nil
	}
	return thumbnailer.ScrapeThumbnails(ctx, pageURL)
}

// selectPostThumbnails picks the work-level thumbnail pair: the first item
// with a non-placeholder thumbnail wins; if none qualifies, the first item's
// pair is used as-is.
func selectPostThumbnails(items []URLItem) (thumbnailURL, smallThumbnailURL string) {
	if len(items) == 0 {
		return "", ""
	}

	for _, item := range items {
		if item.HighDPIThumbnailURL != "" && item.HighDPIThumbnailURL != PlaceholderHighDPIThumbnailURL {
			return item.HighDPIThumbnailURL, item.SmallThumbnailURL
		}
	}

	return items[0].HighDPIThumbnailURL, items[0].SmallThumbnailURL
}

// itemsEqual reports structural equality of two item lists via their
// serialized forms. Thumbnail derivation is skipped on edits whose item list
// is unchanged.
func itemsEqual(a, b []URLItem) bool {
	rawA, errA := json.Marshal(a)
	rawB, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(rawA, rawB)
}

// itemURLsEqual compares item lists by their URLs only, ignoring derived
// thumbnail fields. This is the content identity the short-ID is built from.
func itemURLsEqual(a, b []URLItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].URL != b[i].URL {
			return false
		}
	}
	return true
}
