package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: DefaultLimit, Page: 1}},
		{"page=2&limit=30", Pagination{Limit: 30, Page: 2, Offset: 30}},
		{"page=0&limit=-5", Pagination{Limit: DefaultLimit, Page: 1}},
		{"limit=1000", Pagination{Limit: MaxLimit, Page: 1}},
		{"page=abc", Pagination{Limit: DefaultLimit, Page: 1}},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		assert.Equal(t, tt.want, ParsePagination(q), tt.query)
	}
}

func TestComputeMetaAndWindow(t *testing.T) {
	p := New(2, 10)
	p.ComputeMeta(25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)

	start, end := p.Window(25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	last := New(3, 10)
	start, end = last.Window(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	beyond := New(9, 10)
	start, end = beyond.Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}
