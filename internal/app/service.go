// Package app orchestrates the refresh cycle and the punch flow behind the
// display boundary. It owns no rendering; callers present the Summary.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pontoctl/internal/api"
	"pontoctl/internal/engine"
	"pontoctl/internal/model"
)

// VendorClient is the slice of the API client the service depends on.
type VendorClient interface {
	FetchSession(ctx context.Context) (*api.SessionInfo, error)
	FetchWorkDay(ctx context.Context, dayISO string, employeeID int64) ([]model.PunchEvent, error)
	RegisterPunch(ctx context.Context, in api.RegisterInput) error
}

// Ledger is the pending-punch reconciler surface the service uses.
type Ledger interface {
	Append(entry model.PendingPunch) error
	Merge(server []model.PunchEvent) []model.PunchEvent
}

// Summary is the computed state of the current day, ready for display. A
// refresh failure never produces a partial Summary; callers keep showing the
// previous one.
type Summary struct {
	Classification model.EmployeeClassification
	Punches        []model.PunchEvent // merged and time-ordered
	Worked         time.Duration
	ExpectedEnd    *time.Time // nil: no projection possible
	OvertimeLimit  *time.Time // nil: no punches yet
	TimeBalance    *time.Duration
	BankExpiresAt  time.Time
	LastPunchDate  string
	LastPunchTime  string

	// LastLocation is the most recent server punch location, used as the
	// default for the next registration. Nil when no punch carried one.
	LastLocation *model.Location

	// References are the employee's saved punch locations.
	References []model.Location
}

// Service wires the fetch adapters, the reconciler and the engine together.
type Service struct {
	client   VendorClient
	ledger   Ledger
	deviceID string
	proxyURL string
	log      *zap.Logger
	now      func() time.Time
}

// New constructs the service. deviceID is the persistent installation uuid;
// proxyURL may be empty for direct vendor access.
func New(client VendorClient, led Ledger, deviceID, proxyURL string, log *zap.Logger) *Service {
	return &Service{
		client:   client,
		ledger:   led,
		deviceID: deviceID,
		proxyURL: proxyURL,
		log:      log,
		now:      time.Now,
	}
}

// Refresh runs one cycle: session, then the day's punches (the day fetch uses
// the employee id learned from the session), reconciles pending local writes,
// and computes the engine outputs against a single "now" held fixed for the
// whole computation.
func (s *Service) Refresh(ctx context.Context) (*Summary, error) {
	info, err := s.client.FetchSession(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	server, err := s.client.FetchWorkDay(ctx, model.DayISO(now), info.EmployeeID)
	if err != nil {
		return nil, err
	}

	merged := s.ledger.Merge(server)
	worked := engine.WorkedDuration(merged, now)
	end := engine.ExpectedEnd(merged, info.Classification.TargetHoursPerDay, now)
	limit := engine.OvertimeLimit(merged, worked, info.Classification.StandardRegime, end, now)

	sum := &Summary{
		Classification: info.Classification,
		Punches:        merged,
		Worked:         worked,
		ExpectedEnd:    end,
		OvertimeLimit:  limit,
		BankExpiresAt:  engine.NextBankExpiration(now),
		LastPunchDate:  info.LastPunchDate,
		LastPunchTime:  info.LastPunchTime,
		References:     info.LocationReferences,
	}
	if info.TimeBalanceSec != nil {
		balance := time.Duration(*info.TimeBalanceSec * float64(time.Second))
		sum.TimeBalance = &balance
	}

	// The day list beats the session's cached last-punch fields when present.
	if last := lastServerPunch(merged); last != nil {
		sum.LastPunchDate = last.Date
		sum.LastPunchTime = last.Time
		if last.Location != nil {
			loc := *last.Location
			sum.LastLocation = &loc
		}
	}

	s.log.Debug("refresh complete",
		zap.Int("punches", len(merged)),
		zap.Duration("worked", worked))
	return sum, nil
}

// Punch registers a new punch at the given location, then records it in the
// pending ledger so it shows up before the server reflects it. The caller
// refreshes afterwards.
func (s *Service) Punch(ctx context.Context, loc model.Location) error {
	err := s.client.RegisterPunch(ctx, api.RegisterInput{
		Location: loc,
		DeviceID: s.deviceID,
		ProxyURL: s.proxyURL,
	})
	if err != nil {
		return err
	}

	now := s.now()
	entry := model.PendingPunch{
		Timestamp: now.UnixMilli(),
		Date:      model.FormatDay(now),
		Time:      model.FormatClock(now),
		Location:  loc,
		CreatedAt: now.UnixMilli(),
	}
	if err := s.ledger.Append(entry); err != nil {
		// The punch is registered; losing the optimistic entry only delays
		// its appearance until the server catches up.
		s.log.Warn("recording pending punch", zap.Error(err))
	}
	return nil
}

// lastServerPunch returns the last non-pending event, nil when all events are
// local.
func lastServerPunch(events []model.PunchEvent) *model.PunchEvent {
	for i := len(events) - 1; i >= 0; i-- {
		if !events[i].Pending {
			return &events[i]
		}
	}
	return nil
}
