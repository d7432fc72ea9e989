package query

import (
	"fmt"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/moderation"
)

const (
	// DefaultLimit is the number of records returned when no limit is given.
	DefaultLimit = 100

	// MaxLimit is the largest page a single query may request.
	MaxLimit = 10000
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	audit.SortByAnalyzedAt:     true,
	audit.SortByToxicityScore:  true,
	audit.SortBySentimentScore: true,
	audit.SortByConfidence:     true,
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// Validate reports the first invalid parameter of q as a *audit.QueryError.
func Validate(q *audit.Query) error {
	if q.Limit < 0 {
		return audit.NewQueryError("limit", fmt.Errorf("must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return audit.NewQueryError("limit", fmt.Errorf("must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return audit.NewQueryError("offset", fmt.Errorf("must be >= 0, got %d", q.Offset))
	}

	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return audit.NewQueryError("sort_by", fmt.Errorf("invalid sort field: %s", q.SortBy))
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return audit.NewQueryError("sort_order", fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return audit.NewQueryError("start_time", fmt.Errorf("must be before end_time"))
	}

	if q.Action != "" {
		if _, err := moderation.ParseAction(q.Action); err != nil {
			return audit.NewQueryError("action", err)
		}
	}
	if q.FlagKind != "" {
		if _, err := moderation.ParseFlagKind(q.FlagKind); err != nil {
			return audit.NewQueryError("flag_kind", err)
		}
	}

	if err := checkUnit("min_toxicity", q.MinToxicity); err != nil {
		return err
	}
	if err := checkUnit("max_toxicity", q.MaxToxicity); err != nil {
		return err
	}
	if q.MinToxicity != nil && q.MaxToxicity != nil && *q.MinToxicity > *q.MaxToxicity {
		return audit.NewQueryError("min_toxicity", fmt.Errorf("must be <= max_toxicity"))
	}

	return nil
}

// ApplyDefaults fills in limit and sort order.
func ApplyDefaults(q *audit.Query) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = audit.SortByAnalyzedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

func checkUnit(field string, v *float64) error {
	if v != nil && (*v < 0 || *v > 1) {
		return audit.NewQueryError(field, fmt.Errorf("must be within [0, 1], got %g", *v))
	}
	return nil
}
