package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Hello, World!", "hello-world"},
		{"already a slug", "hello-world", "hello-world"},
		{"collapses punctuation runs", "Go 1.22 -- What's New?", "go-1-22-what-s-new"},
		{"strips leading and trailing separators", "  ...Edge Case...  ", "edge-case"},
		{"digits survive", "Top 10 Tips", "top-10-tips"},
		{"unicode letters survive", "Café Culture", "café-culture"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
