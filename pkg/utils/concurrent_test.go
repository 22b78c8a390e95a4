package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	tests := []struct {
		name      string
		items     []int
		batchSize int
		want      [][]int
	}{
		{"empty", nil, 3, nil},
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"larger than input", []int{1, 2}, 100, [][]int{{1, 2}}},
		{"non-positive size", []int{1, 2, 3}, 0, [][]int{{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Batch(tt.items, tt.batchSize))
		})
	}
}

func TestRemoveDuplicateStrings(t *testing.T) {
	assert.Equal(t, []string{"c2", "c1", "c3"}, RemoveDuplicateStrings([]string{"c2", "c1", "c2", "c3", "c1"}))
	assert.Empty(t, RemoveDuplicateStrings(nil))
}
