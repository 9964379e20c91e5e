package engine

import "time"

// NextBankExpiration returns the next time-bank settlement date: the last
// business day of April, August or December, whichever quarter boundary comes
// next. A last day falling on a weekend is pulled back to Friday.
func NextBankExpiration(now time.Time) time.Time {
	year := now.Year()
	var month time.Month
	switch {
	case now.Month() < time.April:
		month = time.April
	case now.Month() < time.August:
		month = time.August
	case now.Month() < time.December:
		month = time.December
	default:
		month = time.April
		year++
	}

	// Day 0 of the following month normalizes to the last day of month.
	day := time.Date(year, month+1, 0, 0, 0, 0, 0, now.Location())
	switch day.Weekday() {
	case time.Sunday:
		day = day.AddDate(0, 0, -2)
	case time.Saturday:
		day = day.AddDate(0, 0, -1)
	}
	return day
}
