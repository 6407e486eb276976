package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name       string
		start      int
		size       int
		wantItems  []int
		wantNext   bool
		wantPrev   bool
		wantStart  int
		wantPerPag int
	}{
		{name: "first window", start: 1, size: 3, wantItems: []int{1, 2, 3}, wantNext: true, wantStart: 1, wantPerPag: 3},
		{name: "middle window", start: 4, size: 3, wantItems: []int{4, 5, 6}, wantNext: true, wantPrev: true, wantStart: 4, wantPerPag: 3},
		{name: "short last window", start: 7, size: 3, wantItems: []int{7}, wantPrev: true, wantStart: 7, wantPerPag: 3},
		{name: "past the end", start: 20, size: 3, wantItems: []int{}, wantPrev: true, wantStart: 20, wantPerPag: 3},
		{name: "unset start", start: 0, size: 2, wantItems: []int{1, 2}, wantNext: true, wantStart: 1, wantPerPag: 2},
		{name: "unset size", start: 3, size: 0, wantItems: []int{3, 4, 5, 6, 7}, wantPrev: true, wantStart: 3, wantPerPag: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Window(items, tt.start, tt.size)
			assert.Equal(t, tt.wantItems, page.Items)
			assert.Equal(t, len(items), page.TotalResults)
			assert.Equal(t, tt.wantStart, page.StartIndex)
			assert.Equal(t, tt.wantPerPag, page.ItemsPerPage)
			assert.Equal(t, tt.wantNext, page.HasNext())
			assert.Equal(t, tt.wantPrev, page.HasPrevious())
		})
	}
}

func TestIndexPage_Navigation(t *testing.T) {
	page := Window([]string{"a", "b", "c", "d", "e"}, 2, 2)
	assert.Equal(t, 4, page.NextIndex())
	assert.Equal(t, 1, page.PreviousIndex())
}

func TestTokenPage_HasNext(t *testing.T) {
	assert.False(t, TokenPage[string]{}.HasNext())
	assert.True(t, TokenPage[string]{NextPageToken: "abc"}.HasNext())
}
