package types

import "time"

const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 1000
)

// QueryFilter holds common pagination parameters for list queries
type QueryFilter struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// NewDefaultQueryFilter returns a QueryFilter with sane defaults
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  FilterDefaultLimit,
		Offset: 0,
	}
}

// GetLimit returns the effective limit, clamped to the allowed range
func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit <= 0 {
		return FilterDefaultLimit
	}
	if f.Limit > FilterMaxLimit {
		return FilterMaxLimit
	}
	return f.Limit
}

// GetOffset returns the effective offset
func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset < 0 {
		return 0
	}
	return f.Offset
}

// TimeRangeFilter bounds a query to a window; either side may be open.
type TimeRangeFilter struct {
	StartTime *time.Time `form:"start_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   *time.Time `form:"end_time" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Contains reports whether t falls inside the window.
func (f *TimeRangeFilter) Contains(t time.Time) bool {
	if f == nil {
		return true
	}
	if f.StartTime != nil && t.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && t.After(*f.EndTime) {
		return false
	}
	return true
}
