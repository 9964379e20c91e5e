// Package engine implements the labor-rule time accounting over a day's
// punch sequence. All functions are pure: they take "now" explicitly, never
// touch the network or clock, and return nil instead of erroring when the
// input state does not permit a result.
package engine

import (
	"time"

	"pontoctl/internal/model"
)

const (
	// MandatoryBreak is the minimum unpaid interval required before a full
	// shift counts as complete under CLT rules. Shorter breaks do not
	// discharge the requirement.
	MandatoryBreak = time.Hour

	// maxStretch caps a single uninterrupted work stretch, approximated as
	// measured from the last punch.
	maxStretch = 6 * time.Hour

	// dailyCap is the absolute per-day working-time limit.
	dailyCap = 10 * time.Hour

	// nightShiftHour is the local hour after which night-shift premium
	// applies.
	nightShiftHour = 22
)

// eventTimes reconstructs the timestamp of each event, keeping positions so
// that index parity is preserved. Unparseable events yield the zero time.
func eventTimes(events []model.PunchEvent) []time.Time {
	times := make([]time.Time, len(events))
	for i, ev := range events {
		if t, ok := ev.When(); ok {
			times[i] = t
		}
	}
	return times
}

// WorkedDuration totals the closed clock-in/clock-out intervals plus, when
// the count is odd, the still-open interval up to now. Invalid or negative
// intervals contribute nothing; the result is always >= 0.
func WorkedDuration(events []model.PunchEvent, now time.Time) time.Duration {
	times := eventTimes(events)
	var total time.Duration
	for i := 0; i < len(times); i += 2 {
		in := times[i]
		if in.IsZero() {
			continue
		}
		out := now
		if i+1 < len(times) {
			out = times[i+1]
		}
		if !out.IsZero() && out.After(in) {
			total += out.Sub(in)
		}
	}
	return total
}

// ExpectedEnd projects when the shift reaches targetHours of worked time.
// It returns nil when there are no events or the count is even: once clocked
// out, a re-entry cannot be predicted. If no completed break of at least
// MandatoryBreak exists yet, the shortfall is absorbed by adding a full
// break on top of the remaining time.
func ExpectedEnd(events []model.PunchEvent, targetHours int, now time.Time) *time.Time {
	if len(events) == 0 || len(events)%2 == 0 {
		return nil
	}

	times := eventTimes(events)
	penalty := MandatoryBreak
	for i := 1; i+1 < len(times); i += 2 {
		out, in := times[i], times[i+1]
		if !out.IsZero() && !in.IsZero() && in.Sub(out) >= MandatoryBreak {
			penalty = 0
			break
		}
	}

	worked := WorkedDuration(events, now)
	target := time.Duration(targetHours) * time.Hour
	if worked >= target {
		end := now
		return &end
	}

	end := now.Add(target - worked + penalty)
	return &end
}

// OvertimeLimit returns the earliest wall-clock time after which continued
// work counts as overtime. Non-standard-regime employees have no separate
// rule and get expectedEnd back unchanged. For the standard regime the limit
// is the earliest of: six hours past the last punch, the moment the 10h daily
// cap is reached, and 22:00 local. A limit already in the past means the
// employee is in overtime now; it is still returned. Nil only when there are
// no events.
func OvertimeLimit(events []model.PunchEvent, worked time.Duration, standardRegime bool, expectedEnd *time.Time, now time.Time) *time.Time {
	if !standardRegime && expectedEnd != nil {
		return expectedEnd
	}
	if len(events) == 0 {
		return nil
	}

	times := eventTimes(events)
	last := times[len(times)-1]
	if last.IsZero() {
		return nil
	}

	limit := last.Add(maxStretch)
	if capAt := now.Add(dailyCap - worked); capAt.Before(limit) {
		limit = capAt
	}
	if night := time.Date(now.Year(), now.Month(), now.Day(), nightShiftHour, 0, 0, 0, now.Location()); night.Before(limit) {
		limit = night
	}
	return &limit
}
