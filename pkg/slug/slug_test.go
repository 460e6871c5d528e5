// Copyright (c) 2026 Atelier. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelierhq/atelier/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Night Market", "night-market"},
		{"Café Étude.PNG", "cafe-etude-png"},
		{"  --Weekly__Study #31--  ", "weekly-study-31"},
		{"ALLCAPS", "allcaps"},
		{"日本語のみ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slug.From(tt.input), "input %q", tt.input)
	}
}
