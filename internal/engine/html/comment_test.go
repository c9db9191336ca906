package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAttachedCommentText(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		attach bool
	}{
		{
			name:   "single line",
			src:    "<!-- A button. -->\n<x-el></x-el>",
			want:   "A button.",
			attach: true,
		},
		{
			name:   "multi line is unindented",
			src:    "<!--\n    My element.\n      Indented detail.\n-->\n<x-el></x-el>",
			want:   "My element.\n  Indented detail.",
			attach: true,
		},
		{
			name:   "license banner",
			src:    "<!-- @license MIT -->\n<x-el></x-el>",
			attach: false,
		},
		{
			name:   "separated by element",
			src:    "<!-- docs --><div></div><x-el></x-el>",
			attach: false,
		},
		{
			name:   "empty comment",
			src:    "<!-- --><x-el></x-el>",
			attach: false,
		},
		{
			name:   "no comment",
			src:    "<x-el></x-el>",
			attach: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseString(t, tt.src)
			el, ok := Query(doc.Root(), HasTagName("x-el"))
			require.True(t, ok)

			got, ok := GetAttachedCommentText(el)
			assert.Equal(t, tt.attach, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
