package domain

import "time"

const (
	LastUpdateToday     = "today"
	LastUpdatePast7Days = "past_7_days"
	LastUpdateThisMonth = "this_month"
	LastUpdateThisYear  = "this_year"
)

// LastUpdateOptions lists the accepted last_update filter values in display order.
var LastUpdateOptions = []string{
	LastUpdateToday,
	LastUpdatePast7Days,
	LastUpdateThisMonth,
	LastUpdateThisYear,
}

// LastUpdateRange returns the half-open [from, to) window for a last_update filter option.
func LastUpdateRange(option string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	switch option {
	case LastUpdateToday:
		return today, tomorrow, nil
	case LastUpdatePast7Days:
		return today.AddDate(0, 0, -7), tomorrow, nil
	case LastUpdateThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, 0), nil
	case LastUpdateThisYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidLastUpdateFilter
	}
}
