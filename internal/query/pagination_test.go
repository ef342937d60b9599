package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		page, limit string
		want        Page
	}{
		{"", "", Page{1, 10}},
		{"abc", "xyz", Page{1, 10}},
		{"0", "0", Page{1, 1}},
		{"-4", "-4", Page{1, 1}},
		{"3", "25", Page{3, 25}},
		{"2", "1000", Page{2, 100}},
		{"2.5", "10", Page{1, 10}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePage(tt.page, tt.limit), "page=%q limit=%q", tt.page, tt.limit)
	}
}

func TestPageSkip(t *testing.T) {
	for page := 1; page <= 5; page++ {
		for _, limit := range []int{1, 10, 100} {
			p := Page{Number: page, Limit: limit}
			assert.Equal(t, (page-1)*limit, p.Skip())
		}
	}
}

func TestParsePageCapsHugePage(t *testing.T) {
	for _, limit := range []string{"1", "10", "100"} {
		p := ParsePage("9223372036854775807", limit)

		assert.Equal(t, MaxPage, p.Number)
		assert.Positive(t, p.Skip(), "limit=%s", limit)
	}
}

func TestNewPagination(t *testing.T) {
	for _, total := range []int64{0, 1, 9, 10, 11, 99, 100, 101} {
		for _, limit := range []int{1, 10, 100} {
			for page := 1; page <= 4; page++ {
				pg := NewPagination(Page{Number: page, Limit: limit}, total)

				wantPages := int(math.Ceil(float64(total) / float64(limit)))
				assert.Equal(t, wantPages, pg.TotalPages)
				assert.Equal(t, page < wantPages, pg.HasNextPage)
				assert.Equal(t, page > 1, pg.HasPrevPage)
				assert.Equal(t, total, pg.TotalProducts)
				assert.Equal(t, pg.HasNextPage, pg.NextPage != nil)
				assert.Equal(t, pg.HasPrevPage, pg.PrevPage != nil)
			}
		}
	}
}

func TestNewPaginationNeighbours(t *testing.T) {
	pg := NewPagination(Page{Number: 2, Limit: 10}, 35)

	assert.Equal(t, 4, pg.TotalPages)
	if assert.NotNil(t, pg.NextPage) {
		assert.Equal(t, 3, *pg.NextPage)
	}
	if assert.NotNil(t, pg.PrevPage) {
		assert.Equal(t, 1, *pg.PrevPage)
	}
}

func TestNewPaginationEmpty(t *testing.T) {
	pg := NewPagination(Page{Number: 1, Limit: 10}, 0)

	assert.Equal(t, 0, pg.TotalPages)
	assert.False(t, pg.HasNextPage)
	assert.False(t, pg.HasPrevPage)
}
