package app

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pontoctl/internal/api"
	"pontoctl/internal/model"
)

type fakeVendor struct {
	info    *api.SessionInfo
	day     []model.PunchEvent
	infoErr error
	dayErr  error
	regErr  error

	dayCalls   []int64 // employee ids the work-day fetch was asked for
	registered []api.RegisterInput
}

var _ VendorClient = (*fakeVendor)(nil)

func (f *fakeVendor) FetchSession(context.Context) (*api.SessionInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeVendor) FetchWorkDay(_ context.Context, _ string, employeeID int64) ([]model.PunchEvent, error) {
	f.dayCalls = append(f.dayCalls, employeeID)
	return f.day, f.dayErr
}

func (f *fakeVendor) RegisterPunch(_ context.Context, in api.RegisterInput) error {
	if f.regErr != nil {
		return f.regErr
	}
	f.registered = append(f.registered, in)
	return nil
}

type fakeLedger struct {
	entries   []model.PendingPunch
	appendErr error
}

var _ Ledger = (*fakeLedger)(nil)

func (f *fakeLedger) Append(entry model.PendingPunch) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedger) Merge(server []model.PunchEvent) []model.PunchEvent {
	out := append([]model.PunchEvent(nil), server...)
	for _, e := range f.entries {
		out = append(out, e.Event())
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].When()
		b, _ := out[j].When()
		return a.Before(b)
	})
	return out
}

func card(tm string) model.PunchEvent {
	return model.PunchEvent{Date: "06/11/2025", Time: tm}
}

func newTestService(vendor *fakeVendor, led Ledger, now time.Time) *Service {
	s := New(vendor, led, "dev-uuid", "http://relay.local/register", zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	now, err := model.ParseDayTime("06/11/2025", "13:00")
	require.NoError(t, err)

	balance := float64(-7620)
	loc := &model.Location{Latitude: -23.5, Longitude: -46.6, Address: "Rua X, 10"}
	vendor := &fakeVendor{
		info: &api.SessionInfo{
			EmployeeID:     42,
			Classification: model.ClassifyEmployee(true),
			LastPunchDate:  "05/11/2025",
			LastPunchTime:  "18:00",
			TimeBalanceSec: &balance,
		},
		day: []model.PunchEvent{
			card("09:00"),
			card("12:00"),
			{Date: "06/11/2025", Time: "13:00", Location: loc},
		},
	}

	svc := newTestService(vendor, &fakeLedger{}, now)
	sum, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{42}, vendor.dayCalls, "work-day fetch uses the employee id from the session")

	assert.Equal(t, 3*time.Hour, sum.Worked)
	// 1h break taken 12:00-13:00, so no penalty: 13:00 + 5h.
	require.NotNil(t, sum.ExpectedEnd)
	assert.Equal(t, "18:00", model.FormatClock(*sum.ExpectedEnd))
	// min(13:00+6h, 13:00+(10h-3h), 22:00) = 19:00.
	require.NotNil(t, sum.OvertimeLimit)
	assert.Equal(t, "19:00", model.FormatClock(*sum.OvertimeLimit))

	require.NotNil(t, sum.TimeBalance)
	assert.Equal(t, "-02:07", model.FormatDuration(*sum.TimeBalance))

	// Day list beats the session's cached last punch.
	assert.Equal(t, "06/11/2025", sum.LastPunchDate)
	assert.Equal(t, "13:00", sum.LastPunchTime)
	require.NotNil(t, sum.LastLocation)
	assert.Equal(t, "Rua X, 10", sum.LastLocation.Address)
}

func TestRefreshKeepsSessionLastPunchWhenDayIsEmpty(t *testing.T) {
	t.Parallel()
	now, err := model.ParseDayTime("06/11/2025", "08:00")
	require.NoError(t, err)

	vendor := &fakeVendor{
		info: &api.SessionInfo{
			Classification: model.ClassifyEmployee(true),
			LastPunchDate:  "05/11/2025",
			LastPunchTime:  "18:00",
		},
	}
	svc := newTestService(vendor, &fakeLedger{}, now)

	sum, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "05/11/2025", sum.LastPunchDate)
	assert.Equal(t, "18:00", sum.LastPunchTime)
	assert.Nil(t, sum.ExpectedEnd)
	assert.Nil(t, sum.OvertimeLimit)
	assert.Zero(t, sum.Worked)
}

func TestRefreshMergesPendingBeforeComputing(t *testing.T) {
	t.Parallel()
	now, err := model.ParseDayTime("06/11/2025", "13:05")
	require.NoError(t, err)

	punchAt, err := model.ParseDayTime("06/11/2025", "13:00")
	require.NoError(t, err)

	vendor := &fakeVendor{
		info: &api.SessionInfo{Classification: model.ClassifyEmployee(true)},
		day:  []model.PunchEvent{card("09:00"), card("12:00")},
	}
	led := &fakeLedger{entries: []model.PendingPunch{{
		Timestamp: punchAt.UnixMilli(),
		Date:      "06/11/2025",
		Time:      "13:00",
		CreatedAt: punchAt.UnixMilli(),
	}}}
	svc := newTestService(vendor, led, now)

	sum, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	// The pending clock-in makes the sequence odd, so projections exist.
	require.Len(t, sum.Punches, 3)
	assert.True(t, sum.Punches[2].Pending)
	assert.Equal(t, 3*time.Hour+5*time.Minute, sum.Worked)
	require.NotNil(t, sum.ExpectedEnd)

	// The pending entry is local; the last *server* punch is what counts as
	// the last registered one.
	assert.Equal(t, "06/11/2025", sum.LastPunchDate)
	assert.Equal(t, "12:00", sum.LastPunchTime)
}

func TestRefreshPropagatesErrors(t *testing.T) {
	t.Parallel()
	now := time.Now()
	boom := errors.New("boom")

	svc := newTestService(&fakeVendor{infoErr: boom}, &fakeLedger{}, now)
	sum, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, sum, "a failed refresh yields no partial summary")

	vendor := &fakeVendor{
		info:   &api.SessionInfo{Classification: model.ClassifyEmployee(true)},
		dayErr: boom,
	}
	svc = newTestService(vendor, &fakeLedger{}, now)
	sum, err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, sum)
}

func TestPunch(t *testing.T) {
	t.Parallel()
	now, err := model.ParseDayTime("06/11/2025", "13:00")
	require.NoError(t, err)

	vendor := &fakeVendor{}
	led := &fakeLedger{}
	svc := newTestService(vendor, led, now)

	loc := model.Location{Latitude: -23.5, Longitude: -46.6, Address: "Rua X, 10"}
	require.NoError(t, svc.Punch(context.Background(), loc))

	require.Len(t, vendor.registered, 1)
	reg := vendor.registered[0]
	assert.Equal(t, loc, reg.Location)
	assert.Equal(t, "dev-uuid", reg.DeviceID)
	assert.Equal(t, "http://relay.local/register", reg.ProxyURL)

	require.Len(t, led.entries, 1)
	entry := led.entries[0]
	assert.Equal(t, now.UnixMilli(), entry.Timestamp)
	assert.Equal(t, now.UnixMilli(), entry.CreatedAt)
	assert.Equal(t, "06/11/2025", entry.Date)
	assert.Equal(t, "13:00", entry.Time)
	assert.Equal(t, loc, entry.Location)
}

func TestPunchRegisterFailureSkipsLedger(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	led := &fakeLedger{}
	svc := newTestService(&fakeVendor{regErr: boom}, led, time.Now())

	err := svc.Punch(context.Background(), model.Location{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, led.entries, "an unconfirmed punch must not enter the ledger")
}

func TestPunchLedgerFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	vendor := &fakeVendor{}
	led := &fakeLedger{appendErr: errors.New("disk full")}
	svc := newTestService(vendor, led, time.Now())

	// The punch is registered with the vendor; losing the optimistic entry
	// only delays its local appearance.
	assert.NoError(t, svc.Punch(context.Background(), model.Location{}))
	assert.Len(t, vendor.registered, 1)
}
