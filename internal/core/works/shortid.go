package works

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"
)

// shortIDLength is the number of characters taken from the encoded digest.
// 8 base32 characters carry 40 bits, which keeps accidental collisions
// negligible at gallery scale while staying within the 4-12 char ID bound.
const shortIDLength = 8

// shortIDEncoding is unpadded standard base32; lowercased it yields the
// [a-z2-7] alphabet accepted by the ID format validator.
var shortIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// AllocateFunc derives a candidate short ID from a work's authorship and
// content. It is injectable so collision paths can be exercised in tests.
type AllocateFunc func(artistID string, items []URLItem) string

// DetermineShortID deterministically derives a short identifier from the
// artist and the ordered list of submitted item URLs.
//
// # Idempotence
//
// Resubmitting the exact same (artist, items) combination always yields the
// same ID, so duplicate submissions resolve to the existing record instead
// of silently creating a second work. Only the item URLs participate —
// derived thumbnails must not perturb the identity of the content.
func DetermineShortID(artistID string, items []URLItem) string {
	hasher := sha256.New()
	hasher.Write([]byte(artistID))
	for _, item := range items {
		// NUL separators prevent ambiguous concatenations.
		hasher.Write([]byte{0})
		hasher.Write([]byte(item.URL))
	}

	encoded := strings.ToLower(shortIDEncoding.EncodeToString(hasher.Sum(nil)))
	return encoded[:shortIDLength]
}
