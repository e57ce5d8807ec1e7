package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fix-my-city/internal/errs"
)

func TestParse_Defaults(t *testing.T) {
	req, err := Parse(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.Limit)
	assert.Empty(t, req.Filter)
	assert.Nil(t, req.Near)
	require.Len(t, req.Sort, 2)
	assert.Equal(t, "priority", req.Sort[0].Field.Path)
	assert.True(t, req.Sort[0].Desc)
	assert.Equal(t, "createdAt", req.Sort[1].Field.Path)
	assert.True(t, req.Sort[1].Desc)
	assert.Equal(t, int64(0), req.Skip())
}

func TestParse_StripsReservedKeysAndTypesValues(t *testing.T) {
	q, err := url.ParseQuery("category=Roads&priority[gte]=0&createdAt[lt]=2024-06-01&select=title,status&sort=-upvoteCount&page=2&limit=5")
	require.NoError(t, err)

	req, err := Parse(q)
	require.NoError(t, err)

	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, int64(5), req.Skip())
	assert.Equal(t, []string{"title", "status"}, req.Select)
	require.Len(t, req.Sort, 1)
	assert.Equal(t, "upvoteCount", req.Sort[0].Field.Path)

	// ключи отсортированы: category, createdAt[lt], priority[gte]
	require.Len(t, req.Filter, 3)

	assert.Equal(t, "category", req.Filter[0].Field.Path)
	assert.Equal(t, OpEq, req.Filter[0].Op)
	assert.Equal(t, "Roads", req.Filter[0].Value)

	assert.Equal(t, OpLt, req.Filter[1].Op)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), req.Filter[1].Value)

	assert.Equal(t, "priority", req.Filter[2].Field.Path)
	assert.Equal(t, OpGte, req.Filter[2].Op)
	assert.Equal(t, 0.0, req.Filter[2].Value)
}

func TestParse_InOperator(t *testing.T) {
	req, err := Parse(url.Values{"status[in]": {"reported,in progress"}})
	require.NoError(t, err)
	require.Len(t, req.Filter, 1)
	assert.Equal(t, OpIn, req.Filter[0].Op)
	assert.Equal(t, []any{"reported", "in progress"}, req.Filter[0].Value)
}

func TestParse_RepeatedEqualityBecomesIn(t *testing.T) {
	req, err := Parse(url.Values{"category": {"Roads", "Parks"}})
	require.NoError(t, err)
	require.Len(t, req.Filter, 1)
	assert.Equal(t, OpIn, req.Filter[0].Op)
	assert.Equal(t, []any{"Roads", "Parks"}, req.Filter[0].Value)
}

func TestParse_UnknownKeyIsStringEquality(t *testing.T) {
	req, err := Parse(url.Values{"location.address": {"Main St"}, "ward": {"7"}})
	require.NoError(t, err)
	require.Len(t, req.Filter, 2)
	assert.Equal(t, "location.address", req.Filter[0].Field.Path)
	assert.Equal(t, "ward", req.Filter[1].Field.Path)
	assert.Equal(t, KindString, req.Filter[1].Field.Kind)
	assert.Equal(t, "7", req.Filter[1].Value)
}

func TestParse_IDField(t *testing.T) {
	req, err := Parse(url.Values{"id": {"65f000000000000000000001"}})
	require.NoError(t, err)
	assert.Equal(t, "_id", req.Filter[0].Field.Path)
	assert.Equal(t, KindID, req.Filter[0].Field.Kind)
}

func TestParse_Near(t *testing.T) {
	req, err := Parse(url.Values{"near": {"-122.1,37.4"}, "radius": {"250"}})
	require.NoError(t, err)
	require.NotNil(t, req.Near)
	assert.Equal(t, -122.1, req.Near.Lng)
	assert.Equal(t, 37.4, req.Near.Lat)
	assert.Equal(t, 250.0, req.Near.RadiusMeters)
	assert.Empty(t, req.Filter)

	req, err = Parse(url.Values{"near": {"10,20"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultRadius, req.Near.RadiusMeters)
}

func TestParse_LimitIsCapped(t *testing.T) {
	req, err := Parse(url.Values{"limit": {"500"}})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, req.Limit)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]url.Values{
		"zero page":         {"page": {"0"}},
		"negative limit":    {"limit": {"-3"}},
		"non-numeric page":  {"page": {"two"}},
		"unknown operator":  {"priority[ne]": {"1"}},
		"regex operator":    {"title[regex]": {".*"}},
		"dollar field":      {"$where": {"1"}},
		"nested dollar":     {"location.$x": {"1"}},
		"bad number":        {"priority[gt]": {"high"}},
		"nan":               {"priority": {"NaN"}},
		"bad time":          {"createdAt[gte]": {"yesterday"}},
		"malformed bracket": {"priority[gte": {"1"}},
		"bad sort":          {"sort": {"-$natural"}},
		"bad select":        {"select": {"title,$x"}},
		"bad near":          {"near": {"200,0"}},
		"bad radius":        {"near": {"0,0"}, "radius": {"-1"}},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(values)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestConditionBuilders(t *testing.T) {
	c := Gte("priority", 0.0)
	assert.Equal(t, KindNumber, c.Field.Kind)
	assert.Equal(t, OpGte, c.Op)

	in := In("status", "reported", "closed")
	assert.Equal(t, []any{"reported", "closed"}, in.Value)

	assert.Panics(t, func() { Eq("$bad", 1) })
}
