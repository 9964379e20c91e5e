package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pontoctl/internal/model"
)

// SessionInfo is the subset of the vendor session the client consumes.
type SessionInfo struct {
	EmployeeID         int64 // 0 when the vendor did not identify one
	Classification     model.EmployeeClassification
	LastPunchDate      string
	LastPunchTime      string
	TimeBalanceSec     *float64 // signed seconds; nil when absent
	LocationReferences []model.Location
}

type locationReference struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type employeePayload struct {
	ID                 *int64   `json:"id"`
	EmployeeID         *int64   `json:"employee_id"`
	TimeBalance        *float64 `json:"time_balance"`
	BankBalance        *float64 `json:"bank_balance"`
	IsCLT              *bool    `json:"is_clt"`
	WorkStatusTimeCard struct {
		Date string `json:"date"`
		Time string `json:"time"`
	} `json:"work_status_time_card"`
	LocationReferences []locationReference `json:"location_references"`
}

// FetchSession retrieves and shapes the vendor session. Unknown employee
// classification defaults to the standard regime, the more restrictive rule
// set. The raw employee object is remembered for the register payload.
func (c *Client) FetchSession(ctx context.Context) (*SessionInfo, error) {
	data, err := c.Request(ctx, http.MethodGet, "/api/session", nil, nil)
	if err != nil {
		return nil, err
	}

	raw := extractEmployee(data)
	c.employee = raw

	var emp employeePayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &emp); err != nil {
			return nil, fmt.Errorf("decode session employee: %w", err)
		}
	}

	info := &SessionInfo{
		Classification: model.ClassifyEmployee(true),
		LastPunchDate:  emp.WorkStatusTimeCard.Date,
		LastPunchTime:  emp.WorkStatusTimeCard.Time,
	}
	if emp.IsCLT != nil {
		info.Classification = model.ClassifyEmployee(*emp.IsCLT)
	}
	switch {
	case emp.ID != nil:
		info.EmployeeID = *emp.ID
	case emp.EmployeeID != nil:
		info.EmployeeID = *emp.EmployeeID
	}
	switch {
	case emp.TimeBalance != nil:
		info.TimeBalanceSec = emp.TimeBalance
	case emp.BankBalance != nil:
		info.TimeBalanceSec = emp.BankBalance
	}
	for _, ref := range emp.LocationReferences {
		id := ref.ID
		info.LocationReferences = append(info.LocationReferences, model.Location{
			Latitude:          ref.Latitude,
			Longitude:         ref.Longitude,
			Address:           ref.Address,
			OriginalLatitude:  ref.Latitude,
			OriginalLongitude: ref.Longitude,
			OriginalAddress:   ref.Address,
			ReferenceID:       &id,
		})
	}
	return info, nil
}

// extractEmployee digs the employee object out of the session response. The
// vendor has shipped it under several nestings: a "session" envelope or bare,
// with the employee at "employee", "current_employee" or "user.employee".
func extractEmployee(data []byte) json.RawMessage {
	var env struct {
		Session json.RawMessage `json:"session"`
	}
	body := data
	if err := json.Unmarshal(data, &env); err == nil && len(env.Session) > 0 && string(env.Session) != "null" {
		body = env.Session
	}

	var probe struct {
		Employee        json.RawMessage `json:"employee"`
		CurrentEmployee json.RawMessage `json:"current_employee"`
		User            struct {
			Employee json.RawMessage `json:"employee"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}
	for _, raw := range []json.RawMessage{probe.Employee, probe.CurrentEmployee, probe.User.Employee} {
		if len(raw) > 0 && string(raw) != "null" {
			return raw
		}
	}
	return nil
}
