package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"pontoctl/internal/model"
)

type timeCardPayload struct {
	Date              string   `json:"date"`
	Time              string   `json:"time"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Address           string   `json:"address"`
	OriginalLatitude  *float64 `json:"original_latitude"`
	OriginalLongitude *float64 `json:"original_longitude"`
	OriginalAddress   string   `json:"original_address"`
	LocationEdited    bool     `json:"location_edited"`
	Accuracy          *float64 `json:"accuracy"`
	AccuracyMethod    *string  `json:"accuracy_method"`
	SoftwareMethod    struct {
		Name string `json:"name"`
	} `json:"software_method"`
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
}

// FetchWorkDay retrieves the day's punches for the given employee, shaped
// into domain events and sorted by reconstructed timestamp. The vendor does
// not guarantee ordering.
func (c *Client) FetchWorkDay(ctx context.Context, dayISO string, employeeID int64) ([]model.PunchEvent, error) {
	q := url.Values{}
	q.Set("start_date", dayISO)
	q.Set("end_date", dayISO)
	q.Set("attributes", "time_cards")
	if employeeID > 0 {
		q.Set("employee_id", strconv.FormatInt(employeeID, 10))
	}

	data, err := c.Request(ctx, http.MethodGet, "/api/time_cards/work_days?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		WorkDays []struct {
			TimeCards []timeCardPayload `json:"time_cards"`
		} `json:"work_days"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode work days: %w", err)
	}
	if len(payload.WorkDays) == 0 {
		return nil, nil
	}

	cards := payload.WorkDays[0].TimeCards
	events := make([]model.PunchEvent, 0, len(cards))
	for _, card := range cards {
		events = append(events, card.event())
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, _ := events[i].When()
		b, _ := events[j].When()
		return a.Before(b)
	})
	return events, nil
}

func (t timeCardPayload) event() model.PunchEvent {
	ev := model.PunchEvent{
		Date:        t.Date,
		Time:        t.Time,
		SourceLabel: t.SoftwareMethod.Name,
	}
	if ev.SourceLabel == "" {
		ev.SourceLabel = t.Source.Name
	}
	if t.Latitude != nil && t.Longitude != nil {
		loc := model.Location{
			Latitude:       *t.Latitude,
			Longitude:      *t.Longitude,
			Address:        t.Address,
			Edited:         t.LocationEdited,
			AccuracyMethod: t.AccuracyMethod,
		}
		loc.OriginalLatitude = *t.Latitude
		loc.OriginalLongitude = *t.Longitude
		loc.OriginalAddress = t.Address
		if t.OriginalLatitude != nil {
			loc.OriginalLatitude = *t.OriginalLatitude
		}
		if t.OriginalLongitude != nil {
			loc.OriginalLongitude = *t.OriginalLongitude
		}
		if t.OriginalAddress != "" {
			loc.OriginalAddress = t.OriginalAddress
		}
		if t.Accuracy != nil {
			loc.Accuracy = *t.Accuracy
		}
		ev.Location = &loc
	}
	return ev
}
