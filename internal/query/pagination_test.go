package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantNext *PageRef
		wantPrev *PageRef
	}{
		{"empty", 1, 10, 0, nil, nil},
		{"single page", 1, 10, 10, nil, nil},
		{"first of two", 1, 10, 11, &PageRef{2, 10}, nil},
		{"middle", 2, 10, 25, &PageRef{3, 10}, &PageRef{1, 10}},
		{"last exact", 3, 10, 30, nil, &PageRef{2, 10}},
		{"past the end", 5, 10, 12, nil, &PageRef{4, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantNext, p.Next)
			assert.Equal(t, tt.wantPrev, p.Prev)
		})
	}
}

func TestProject(t *testing.T) {
	type location struct {
		Address string `json:"address"`
	}
	item := struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Status   string   `json:"status"`
		Location location `json:"location"`
	}{"abc", "Pothole", "reported", location{"Main St"}}

	out, err := Project(item, []string{"title", "location.address", "missing"})
	require.NoError(t, err)

	assert.Equal(t, "abc", out["id"])
	assert.Equal(t, "Pothole", out["title"])
	assert.Contains(t, out, "location")
	assert.NotContains(t, out, "status")
	assert.NotContains(t, out, "missing")
}
