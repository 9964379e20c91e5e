// Package model defines domain entities shared by the API adapters, the
// pending-punch ledger and the time-accounting engine.
package model

import "time"

// Location is where a punch was registered. Reference locations come from the
// employee's saved favorites; everything else is carried through from the
// vendor record unchanged.
type Location struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Address           string  `json:"address"`
	OriginalLatitude  float64 `json:"original_latitude"`
	OriginalLongitude float64 `json:"original_longitude"`
	OriginalAddress   string  `json:"original_address"`
	Edited            bool    `json:"location_edited"`
	Accuracy          float64 `json:"accuracy"`
	AccuracyMethod    *string `json:"accuracy_method"`
	ReferenceID       *int64  `json:"reference_id"`
}

// PunchEvent is a single clock-in or clock-out record. Within one calendar
// day events are ordered by timestamp and index parity determines the role:
// even index = clock-in, odd index = clock-out.
type PunchEvent struct {
	Date        string    // DD/MM/YYYY, vendor wire format
	Time        string    // HH:MM, 1-minute resolution
	SourceLabel string    // human-readable origin, may be empty
	Location    *Location // nil when the vendor sent no coordinates
	Pending     bool      // recorded locally, not yet confirmed by the server
}

// When reconstructs the event timestamp in local time. ok is false when the
// vendor strings do not parse; callers skip such events.
func (e PunchEvent) When() (time.Time, bool) {
	t, err := ParseDayTime(e.Date, e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EmployeeClassification drives which labor-rule variant the engine applies.
type EmployeeClassification struct {
	StandardRegime    bool // CLT contract: 8h target, 6h/10h/22:00 overtime rule
	TargetHoursPerDay int
}

// ClassifyEmployee maps the vendor's contract flag to a classification.
func ClassifyEmployee(standardRegime bool) EmployeeClassification {
	target := 6
	if standardRegime {
		target = 8
	}
	return EmployeeClassification{StandardRegime: standardRegime, TargetHoursPerDay: target}
}

// PendingPunch is an optimistically recorded punch awaiting server
// confirmation. It lives only in the local ledger, which owns it exclusively.
type PendingPunch struct {
	Timestamp int64    `json:"timestamp"` // epoch ms of the punch itself
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Location  Location `json:"location"`
	CreatedAt int64    `json:"created_at"` // epoch ms, drives TTL eviction
}

// Event projects the entry into the punch list shape.
func (p PendingPunch) Event() PunchEvent {
	loc := p.Location
	return PunchEvent{
		Date:     p.Date,
		Time:     p.Time,
		Location: &loc,
		Pending:  true,
	}
}

// Session is the vendor auth state. Created by sign-in, persisted between
// runs, destroyed on logout.
type Session struct {
	Token        string `json:"token"`
	Client       string `json:"client"`
	UID          string `json:"uid"`
	SignInCount  int    `json:"sign_in_count"`
	LastSignInIP string `json:"last_sign_in_ip"`
	LastSignInAt int64  `json:"last_sign_in_at"` // epoch seconds
}

// LoggedIn reports whether the session carries the full auth header triple.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != "" && s.Client != "" && s.UID != ""
}
