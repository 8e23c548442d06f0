package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	normalized := PageRequest{Page: -1, Size: 0}.Normalize()
	assert.Equal(t, 0, normalized.Page)
	assert.Equal(t, 20, normalized.Size)
	assert.Equal(t, 0, normalized.Offset())

	normalized = PageRequest{Page: 2, Size: 10}.Normalize()
	assert.Equal(t, 20, normalized.Offset())
}

func TestNewPageComputesTotalPages(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, PageRequest{Page: 0, Size: 3}, 7)
	assert.Equal(t, int64(7), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
}
