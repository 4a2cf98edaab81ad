package handlers

import (
	"net/url"
	"testing"
	"time"

	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserFilter(t *testing.T) {
	query := url.Values{
		"is_staff":           {"1"},
		"is_active":          {"False"},
		"date_joined_after":  {"2024-01-01"},
		"date_joined_before": {"2024-01-31"},
		"search":             {"ann, lee"},
		"ordering":           {"-date_joined,bogus,username"},
	}

	filter, err := parseUserFilter(query)
	require.NoError(t, err)

	require.NotNil(t, filter.IsStaff)
	assert.True(t, *filter.IsStaff)
	require.NotNil(t, filter.IsActive)
	assert.False(t, *filter.IsActive)
	assert.Nil(t, filter.IsSuperuser)

	require.NotNil(t, filter.DateJoinedFrom)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *filter.DateJoinedFrom)
	require.NotNil(t, filter.DateJoinedTo)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999000, time.UTC), *filter.DateJoinedTo)

	assert.Equal(t, []string{"ann", "lee"}, filter.Search)
	assert.Equal(t, []store.OrderTerm{
		{Field: "date_joined", Desc: true},
		{Field: "username"},
	}, filter.Ordering)
	assert.Zero(t, filter.Limit)
}

func TestParseUserFilterDefaults(t *testing.T) {
	filter, err := parseUserFilter(url.Values{"is_staff": {""}})
	require.NoError(t, err)
	assert.Nil(t, filter.IsStaff)
	assert.Empty(t, filter.Search)
	assert.Equal(t, store.DefaultOrdering, filter.Ordering)
}

func TestParseUserFilterTimestamp(t *testing.T) {
	filter, err := parseUserFilter(url.Values{"date_joined_before": {"2024-03-01T12:30:00Z"}})
	require.NoError(t, err)
	require.NotNil(t, filter.DateJoinedTo)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), *filter.DateJoinedTo)
}

func TestParseUserFilterErrors(t *testing.T) {
	_, err := parseUserFilter(url.Values{
		"is_superuser":      {"yes"},
		"date_joined_after": {"yesterday"},
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string][]string{
		"is_superuser": {msgInvalidBoolean},
		"date_joined":  {msgInvalidDate},
	}, verr.Fields)
}
