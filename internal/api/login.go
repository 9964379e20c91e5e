package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pontoctl/internal/errs"
	"pontoctl/internal/model"
)

// SignIn authenticates against the vendor and returns the resulting session.
// A response missing any of the token/client/uid triple fails with
// ErrAuthIncomplete and is never retried. The session is installed on the
// client; persisting it is the caller's concern.
func (c *Client) SignIn(ctx context.Context, login, password string) (*model.Session, error) {
	body := map[string]string{
		"login":    strings.TrimSpace(login),
		"password": password,
	}
	data, err := c.Request(ctx, http.MethodPost, "/api/auth/sign_in", body, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Token    string `json:"token"`
		ClientID string `json:"client_id"`
		Data     struct {
			Login        string `json:"login"`
			SignInCount  int    `json:"sign_in_count"`
			LastSignInIP string `json:"last_sign_in_ip"`
			LastSignInAt int64  `json:"last_sign_in_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode sign-in response: %w", err)
	}

	uid := resp.Data.Login
	if uid == "" {
		uid = strings.TrimSpace(login)
	}
	if resp.Token == "" || resp.ClientID == "" || uid == "" {
		return nil, errs.ErrAuthIncomplete
	}

	lastSignInAt := resp.Data.LastSignInAt
	if lastSignInAt == 0 {
		lastSignInAt = time.Now().Unix()
	}

	sess := &model.Session{
		Token:        resp.Token,
		Client:       resp.ClientID,
		UID:          uid,
		SignInCount:  resp.Data.SignInCount,
		LastSignInIP: resp.Data.LastSignInIP,
		LastSignInAt: lastSignInAt,
	}
	c.SetSession(sess)
	return sess, nil
}
