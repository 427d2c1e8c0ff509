package utils

import "time"

// Day is the billing unit for rentals
const Day = 24 * time.Hour

// BillableDays returns the number of started days between start and end,
// never less than one: a same-day return is billed as a full day.
func BillableDays(start, end time.Time) int {
	span := end.Sub(start)
	if span <= 0 {
		return 1
	}

	days := int(span / Day)
	if span%Day != 0 {
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}
