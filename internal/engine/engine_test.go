package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pontoctl/internal/model"
)

const testDay = "06/11/2025"

func card(tm string) model.PunchEvent {
	return model.PunchEvent{Date: testDay, Time: tm}
}

func at(t *testing.T, tm string) time.Time {
	t.Helper()
	ts, err := model.ParseDayTime(testDay, tm)
	require.NoError(t, err)
	return ts
}

func TestWorkedDuration(t *testing.T) {
	t.Parallel()
	now := at(t, "20:00")

	tests := []struct {
		name   string
		events []model.PunchEvent
		now    time.Time
		want   time.Duration
	}{
		{"no events", nil, now, 0},
		{"open interval counts to now", []model.PunchEvent{card("09:00")}, at(t, "12:00"), 3 * time.Hour},
		{"closed pair", []model.PunchEvent{card("09:00"), card("12:00")}, now, 3 * time.Hour},
		{"full day with break", []model.PunchEvent{card("09:00"), card("12:00"), card("13:00"), card("18:00")}, now, 8 * time.Hour},
		{"negative interval contributes zero", []model.PunchEvent{card("12:00"), card("09:00")}, now, 0},
		{"unparseable clock-in skipped", []model.PunchEvent{{Date: testDay, Time: "bogus"}, card("12:00")}, now, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorkedDuration(tt.events, tt.now)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, time.Duration(0))
		})
	}
}

func TestWorkedDurationMonotonicWhileClockedIn(t *testing.T) {
	t.Parallel()
	events := []model.PunchEvent{card("09:00"), card("12:00"), card("13:00")}

	prev := time.Duration(-1)
	for _, tm := range []string{"13:00", "13:30", "15:00", "19:45"} {
		got := WorkedDuration(events, at(t, tm))
		assert.GreaterOrEqual(t, got, prev, "worked time went down at %s", tm)
		prev = got
	}
}

func TestExpectedEndNoProjection(t *testing.T) {
	t.Parallel()
	now := at(t, "13:00")

	assert.Nil(t, ExpectedEnd(nil, 8, now), "no events")
	assert.Nil(t, ExpectedEnd([]model.PunchEvent{card("09:00"), card("12:00")}, 8, now), "even count, clocked out")
}

func TestExpectedEnd(t *testing.T) {
	t.Parallel()

	t.Run("single clock-in adds mandatory break", func(t *testing.T) {
		// 4h worked at 13:00, 4h remaining, plus the 1h break not yet taken.
		got := ExpectedEnd([]model.PunchEvent{card("09:00")}, 8, at(t, "13:00"))
		require.NotNil(t, got)
		assert.Equal(t, at(t, "18:00"), *got)
	})

	t.Run("one-hour break discharges the requirement", func(t *testing.T) {
		events := []model.PunchEvent{card("09:00"), card("12:00"), card("13:00")}
		got := ExpectedEnd(events, 8, at(t, "13:00"))
		require.NotNil(t, got)
		assert.Equal(t, at(t, "18:00"), *got) // 13:00 + 5h, no penalty
	})

	t.Run("short break does not discharge", func(t *testing.T) {
		events := []model.PunchEvent{card("09:00"), card("12:00"), card("12:15")}
		got := ExpectedEnd(events, 8, at(t, "12:15"))
		require.NotNil(t, got)
		// remaining = (8h - 3h) + 1h = 6h from now.
		assert.Equal(t, at(t, "18:15"), *got)
	})

	t.Run("target already met returns now", func(t *testing.T) {
		events := []model.PunchEvent{card("06:00"), card("12:00"), card("13:00")}
		now := at(t, "16:00") // 6h + 3h worked
		got := ExpectedEnd(events, 8, now)
		require.NotNil(t, got)
		assert.Equal(t, now, *got)
	})

	t.Run("six-hour target for non-standard regime", func(t *testing.T) {
		got := ExpectedEnd([]model.PunchEvent{card("09:00")}, 6, at(t, "10:00"))
		require.NotNil(t, got)
		// 1h worked, 5h remaining, plus break penalty.
		assert.Equal(t, at(t, "16:00"), *got)
	})
}

func TestOvertimeLimit(t *testing.T) {
	t.Parallel()

	t.Run("nil without events", func(t *testing.T) {
		assert.Nil(t, OvertimeLimit(nil, 0, true, nil, at(t, "12:00")))
	})

	t.Run("non-standard regime returns expected end unchanged", func(t *testing.T) {
		end := at(t, "15:00")
		got := OvertimeLimit([]model.PunchEvent{card("09:00")}, time.Hour, false, &end, at(t, "10:00"))
		require.NotNil(t, got)
		assert.Equal(t, end, *got)
	})

	t.Run("earliest of three candidates", func(t *testing.T) {
		// Last punch 13:00, 9h worked at 18:00: stretch limit 19:00, daily
		// cap 19:00, night threshold 22:00.
		events := []model.PunchEvent{card("08:00"), card("12:00"), card("13:00")}
		got := OvertimeLimit(events, 9*time.Hour, true, nil, at(t, "18:00"))
		require.NotNil(t, got)
		assert.Equal(t, at(t, "19:00"), *got)
	})

	t.Run("night threshold wins", func(t *testing.T) {
		events := []model.PunchEvent{card("16:30")}
		got := OvertimeLimit(events, time.Hour, true, nil, at(t, "17:00"))
		require.NotNil(t, got)
		assert.Equal(t, at(t, "22:00"), *got)
	})

	t.Run("daily cap exceeded returns a past limit", func(t *testing.T) {
		events := []model.PunchEvent{card("08:00"), card("12:00"), card("18:00")}
		now := at(t, "19:00")
		got := OvertimeLimit(events, 10*time.Hour+30*time.Minute, true, nil, now)
		require.NotNil(t, got)
		assert.Equal(t, at(t, "18:30"), *got)
		assert.True(t, got.Before(now), "limit should already be in the past")
	})
}
