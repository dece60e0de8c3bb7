package query

import (
	"net/url"
	"testing"

	cErr "bastion/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(n int64) *int64 { return &n }

func TestParseValues(t *testing.T) {
	v := url.Values{}
	v.Set("searchTerm", "  ann ")
	v.Set("sort", "name,-createdAt")
	v.Set("page", "2")
	v.Set("limit", "5")
	v.Set("fields", "name,email")
	v.Add("populate", "createdBy:name username")
	v.Set("status", "active")

	opts, err := ParseValues(v)
	require.NoError(t, err)

	assert.Equal(t, "ann", opts.SearchTerm)
	assert.Equal(t, "name,-createdAt", opts.Sort)
	assert.Equal(t, int64(2), *opts.Page)
	assert.Equal(t, int64(5), *opts.Limit)
	assert.Equal(t, "name,email", opts.Fields)
	assert.Equal(t, []PopulateSpec{{Path: "createdBy", Select: "name username"}}, opts.Populate)
	assert.Equal(t, map[string]any{"status": "active"}, opts.Filters)
}

func TestParseValuesRejectsNonNumericPaging(t *testing.T) {
	_, err := ParseValues(url.Values{"limit": {"ten"}})
	require.Error(t, err)
	assert.True(t, cErr.HasCode(err, cErr.BAD_REQUEST_QUERY))
}

func TestParsePopulate(t *testing.T) {
	specs := ParsePopulate("createdBy,updatedBy", "createdBy:name")
	assert.Equal(t, []PopulateSpec{
		{Path: "createdBy", Select: "name"},
		{Path: "updatedBy"},
	}, specs)

	assert.Empty(t, ParsePopulate("", " , ", ":name"))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name      string
		page      *int64
		limit     *int64
		wantPage  int64
		wantLimit int64
	}{
		{"defaults", nil, nil, DefaultPage, DefaultLimit},
		{"zero page", ptr(0), ptr(10), 1, 10},
		{"negative", ptr(-3), ptr(-1), 1, 1},
		{"limit zero", ptr(2), ptr(0), 2, 1},
		{"too large", ptr(4), ptr(5000), 4, MaxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l := Sanitize(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantLimit, l)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), TotalPages(0, 20))
	assert.Equal(t, int64(1), TotalPages(20, 20))
	assert.Equal(t, int64(3), TotalPages(12, 5))
}
