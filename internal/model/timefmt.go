package model

import (
	"fmt"
	"time"
)

// Vendor wire layouts. The API carries dates as DD/MM/YYYY and times as HH:MM
// with no seconds.
const (
	dayLayout   = "02/01/2006"
	clockLayout = "15:04"
	isoLayout   = "2006-01-02"
)

// ParseDay parses a vendor DD/MM/YYYY date at local midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.Local)
}

// ParseDayTime combines vendor date and time strings into a local timestamp.
func ParseDayTime(dateStr, timeStr string) (time.Time, error) {
	return time.ParseInLocation(dayLayout+" "+clockLayout, dateStr+" "+timeStr, time.Local)
}

// FormatDay renders a timestamp as a vendor DD/MM/YYYY date.
func FormatDay(t time.Time) string { return t.Format(dayLayout) }

// FormatClock renders the wall-clock minute of a timestamp.
func FormatClock(t time.Time) string { return t.Format(clockLayout) }

// DayISO renders the calendar day as YYYY-MM-DD, the format the work-day
// query expects.
func DayISO(t time.Time) string { return t.Format(isoLayout) }

// FormatDuration renders a duration as signed HH:MM, minutes truncated.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}
