package api

import (
	"context"
	"encoding/json"
	"net/http"

	"pontoctl/internal/errs"
	"pontoctl/internal/model"
)

// appVersion mirrors the vendor app release the register endpoint expects to
// see in the envelope.
const appVersion = "0.10.32"

const (
	registerPath   = "/api/time_cards/register"
	vendorOrigin   = "https://app2.pontomais.com.br"
	vendorReferer  = "https://app2.pontomais.com.br/"
	defaultProfile = `{"id":null,"pin":null}`
)

// RegisterInput describes a punch registration.
type RegisterInput struct {
	Location model.Location
	DeviceID string
	ProxyURL string // non-empty routes the POST through the relay
}

// RegisterPunch posts a new punch for the current session. A 202 means the
// vendor accepted the write asynchronously and it may not yet be visible in
// subsequent reads; the caller records the punch as pending either way.
func (c *Client) RegisterPunch(ctx context.Context, in RegisterInput) error {
	if !c.sess.LoggedIn() {
		return errs.ErrNotLoggedIn
	}

	employee := c.employee
	if len(employee) == 0 {
		employee = json.RawMessage(defaultProfile)
	}

	loc := in.Location
	payload := map[string]any{
		"image":    nil,
		"employee": employee,
		"time_card": map[string]any{
			"latitude":           loc.Latitude,
			"longitude":          loc.Longitude,
			"address":            loc.Address,
			"reference_id":       loc.ReferenceID,
			"original_latitude":  loc.OriginalLatitude,
			"original_longitude": loc.OriginalLongitude,
			"original_address":   loc.OriginalAddress,
			"location_edited":    loc.Edited,
			"accuracy":           loc.Accuracy,
			"accuracy_method":    loc.AccuracyMethod,
			"image":              nil,
		},
		"_path":       "/registrar-ponto",
		"_appVersion": appVersion,
		"_device": map[string]any{
			"browser": map[string]any{
				"name":                "chrome",
				"version":             "138.0.0.0",
				"versionSearchString": "chrome",
			},
			"manufacturer": "null",
			"model":        "null",
			"uuid": map[string]any{
				"success":   "Login efetuado com sucesso!",
				"token":     c.sess.Token,
				"client_id": c.sess.Client,
				"data": map[string]any{
					"login":           c.sess.UID,
					"sign_in_count":   c.sess.SignInCount,
					"last_sign_in_ip": c.sess.LastSignInIP,
					"last_sign_in_at": c.sess.LastSignInAt,
				},
				"uuid": in.DeviceID,
				// Filled in server-side by the relay.
				"authorization": "",
			},
			"version": "null",
		},
	}

	headers := http.Header{}
	headers.Set("token", c.sess.Token)
	headers.Set("uuid", in.DeviceID)

	path := registerPath
	if in.ProxyURL != "" {
		path = in.ProxyURL
	} else {
		// Without the relay the vendor still checks these.
		headers.Set("origin", vendorOrigin)
		headers.Set("referer", vendorReferer)
	}

	_, err := c.Request(ctx, http.MethodPost, path, payload, headers)
	return err
}
