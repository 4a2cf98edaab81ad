package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/internal/store"
)

const (
	dateLayout        = "2006-01-02"
	msgInvalidBoolean = "Must be a valid boolean."
	msgInvalidDate    = "Enter a valid date."
)

// parseUserFilter turns list query parameters into a store filter. Paging
// is left to the caller.
func parseUserFilter(query url.Values) (store.UserFilter, error) {
	var filter store.UserFilter
	errs := &services.ValidationError{}

	filter.IsStaff = parseBoolParam(errs, query, "is_staff")
	filter.IsActive = parseBoolParam(errs, query, "is_active")
	filter.IsSuperuser = parseBoolParam(errs, query, "is_superuser")

	if raw := strings.TrimSpace(query.Get("date_joined_after")); raw != "" {
		from, _, err := parseDateParam(raw)
		if err != nil {
			errs.Add("date_joined", msgInvalidDate)
		} else {
			filter.DateJoinedFrom = &from
		}
	}
	if raw := strings.TrimSpace(query.Get("date_joined_before")); raw != "" {
		to, dateOnly, err := parseDateParam(raw)
		if err != nil {
			errs.Add("date_joined", msgInvalidDate)
		} else {
			if dateOnly {
				to = to.AddDate(0, 0, 1).Add(-time.Microsecond)
			}
			filter.DateJoinedTo = &to
		}
	}

	if err := errs.Err(); err != nil {
		return store.UserFilter{}, err
	}

	filter.Search = store.SplitSearch(query.Get("search"))
	filter.Ordering = store.ParseOrdering(query.Get("ordering"))
	return filter, nil
}

func parseBoolParam(errs *services.ValidationError, query url.Values, name string) *bool {
	var value bool
	switch strings.TrimSpace(query.Get(name)) {
	case "":
		return nil
	case "true", "True", "1":
		value = true
	case "false", "False", "0":
		value = false
	default:
		errs.Add(name, msgInvalidBoolean)
		return nil
	}
	return &value
}

// parseDateParam accepts a calendar date (read as UTC midnight) or an RFC 3339
// timestamp.
func parseDateParam(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}
