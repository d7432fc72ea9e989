package query

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"mercator-hq/vesta/pkg/audit"
)

// Parse builds a query from URL parameters using the same names as the
// audit.Query JSON tags. Times are RFC 3339. The result is validated and
// has defaults applied.
func Parse(values url.Values) (*audit.Query, error) {
	q := &audit.Query{
		Action:      values.Get("action"),
		Language:    values.Get("language"),
		FlagKind:    values.Get("flag_kind"),
		Topic:       values.Get("topic"),
		ContentHash: values.Get("content_hash"),
		RequestID:   values.Get("request_id"),
		SortBy:      values.Get("sort_by"),
		SortOrder:   values.Get("sort_order"),
	}

	var err error
	if q.StartTime, err = parseTime(values, "start_time"); err != nil {
		return nil, err
	}
	if q.EndTime, err = parseTime(values, "end_time"); err != nil {
		return nil, err
	}
	if q.MinToxicity, err = parseFloat(values, "min_toxicity"); err != nil {
		return nil, err
	}
	if q.MaxToxicity, err = parseFloat(values, "max_toxicity"); err != nil {
		return nil, err
	}
	if q.Limit, err = parseInt(values, "limit"); err != nil {
		return nil, err
	}
	if q.Offset, err = parseInt(values, "offset"); err != nil {
		return nil, err
	}
	if s := values.Get("degraded"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, audit.NewQueryError("degraded", fmt.Errorf("invalid boolean %q", s))
		}
		q.Degraded = &b
	}

	if err := Validate(q); err != nil {
		return nil, err
	}
	ApplyDefaults(q)
	return q, nil
}

func parseTime(values url.Values, key string) (*time.Time, error) {
	s := values.Get(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, audit.NewQueryError(key, fmt.Errorf("invalid RFC 3339 time %q", s))
	}
	return &t, nil
}

func parseFloat(values url.Values, key string) (*float64, error) {
	s := values.Get(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, audit.NewQueryError(key, fmt.Errorf("invalid number %q", s))
	}
	return &f, nil
}

func parseInt(values url.Values, key string) (int, error) {
	s := values.Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, audit.NewQueryError(key, fmt.Errorf("invalid integer %q", s))
	}
	return n, nil
}
