// Copyright (c) 2026 Atelier. All rights reserved.

// Package slug generates ASCII identifiers from arbitrary Unicode strings.
//
// # Usage
//
// Slugs sanitize user-supplied filenames before they become object-store
// keys (e.g. "Café Étude.PNG" → "cafe-etude-png"), so keys stay portable
// across S3-compatible backends and CDN URLs.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// multiHyphen collapses runs of hyphens left behind by sanitization.
var multiHyphen = regexp.MustCompile(`-{2,}`)

// stripMarks decomposes accented characters and drops the combining marks
// (é → e + combining acute → e).
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// From converts an arbitrary Unicode string into a lowercase ASCII slug.
// An input with no usable characters returns "".
func From(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	result := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		default:
			return '-'
		}
	}, folded)

	result = multiHyphen.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
