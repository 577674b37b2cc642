package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeTreePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]any
		incoming map[string]any
		want     map[string]any
	}{
		{
			name:     "objects recurse",
			existing: map[string]any{"a": map[string]any{"b": 1}},
			incoming: map[string]any{"a": map[string]any{"c": 2}},
			want:     map[string]any{"a": map[string]any{"b": 1, "c": 2}},
		},
		{
			name:     "object replaces leaf",
			existing: map[string]any{"a": "x"},
			incoming: map[string]any{"a": map[string]any{"b": 1}},
			want:     map[string]any{"a": map[string]any{"b": 1}},
		},
		{
			name:     "leaf replaces object",
			existing: map[string]any{"a": map[string]any{"b": 1}},
			incoming: map[string]any{"a": "y"},
			want:     map[string]any{"a": "y"},
		},
		{
			name:     "array replaces object",
			existing: map[string]any{"a": map[string]any{"b": 1}},
			incoming: map[string]any{"a": []any{"z"}},
			want:     map[string]any{"a": []any{"z"}},
		},
		{
			name:     "existing only keys survive",
			existing: map[string]any{"keep": "me", "a": map[string]any{"b": 1}},
			incoming: map[string]any{"a": map[string]any{"b": 2}},
			want:     map[string]any{"keep": "me", "a": map[string]any{"b": 2}},
		},
		{
			name:     "nil existing",
			existing: nil,
			incoming: map[string]any{"a": "b"},
			want:     map[string]any{"a": "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeTree(tt.existing, tt.incoming))
		})
	}
}

func TestMergeTreeLeavesInputsUntouched(t *testing.T) {
	inner := map[string]any{"b": 1}
	existing := map[string]any{"a": inner}

	_ = MergeTree(existing, map[string]any{"a": map[string]any{"c": 2}})

	assert.Equal(t, map[string]any{"b": 1}, inner)
}
