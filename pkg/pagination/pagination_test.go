package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query   string
		page    int
		perPage int
		offset  int
	}{
		{"", 1, 10, 0},
		{"?page=3&per_page=5", 3, 5, 10},
		{"?page=0&per_page=500", 1, 10, 0},
		{"?page=abc&per_page=-2", 1, 10, 0},
		{"?page=2&per_page=50", 2, 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest("GET", "/api/v1/blog"+tt.query, nil))
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a"}, 21, Params{Page: 2, PerPage: 10})
	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)

	empty := NewResult[string](nil, 0, DefaultParams())
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}
