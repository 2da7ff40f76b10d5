// Package timeutil provides instant parsing and calendar helpers for the
// metrics engine. All instants are UTC.
package timeutil

import (
	"fmt"
	"sort"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

// ParseInstant parses an ISO-8601 timestamp (with Z or offset designator)
// into a UTC instant. Malformed input is a hard error; silently coercing a
// bad timestamp would corrupt window membership downstream.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Median returns the median of values, or 0 for an empty slice. Even-length
// inputs return the mean of the two middle values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// MonthKey formats an instant as its calendar-month bucket key ("YYYY-MM").
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// GroupByMonth buckets items by the calendar month of their creation instant.
// Items without a creation instant are dropped.
func GroupByMonth(items []model.Item) map[string][]model.Item {
	buckets := make(map[string][]model.Item)
	for _, it := range items {
		created, ok := it.Created()
		if !ok {
			continue
		}
		key := MonthKey(created)
		buckets[key] = append(buckets[key], it)
	}
	return buckets
}

// FilterLastDays returns the items created within the trailing day-count
// window ending at now. Items without a creation instant are dropped.
func FilterLastDays(items []model.Item, now time.Time, days int) []model.Item {
	cutoff := now.AddDate(0, 0, -days)
	var out []model.Item
	for _, it := range items {
		created, ok := it.Created()
		if !ok {
			continue
		}
		if !created.Before(cutoff) {
			out = append(out, it)
		}
	}
	return out
}

// MonthStart returns the first instant of the month identified by a
// "YYYY-MM" key.
func MonthStart(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t.UTC(), nil
}

// MonthEnd returns the first instant of the last day of the month identified
// by a "YYYY-MM" key. December rolls into the following January.
func MonthEnd(key string) (time.Time, error) {
	start, err := MonthStart(key)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 1, 0).AddDate(0, 0, -1), nil
}
