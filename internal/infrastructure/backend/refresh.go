package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
	"github.com/sameboat/jobsheet/internal/pkg/metrics"
)

const (
	msgNoAccessToken      = "No access token returned from server"
	msgRefreshUnavailable = "Currently service is unavailable, please try again"
)

type tokenBody struct {
	Access string `json:"access"`
	Token  string `json:"token"`
}

func (b tokenBody) value() string {
	if b.Access != "" {
		return b.Access
	}
	return b.Token
}

// Refresh exchanges the refresh cookie for a new access token. The stored
// token is cleared before the call, so a failed refresh leaves the session
// logged out.
func (c *Client) Refresh(ctx context.Context, creds ports.Credentials) domain.Envelope[string] {
	env := c.refresh(ctx, creds)
	result := "success"
	if !env.Success {
		result = "failure"
		c.log.Warn().Str("reason", env.Message).Msg("token refresh failed")
	}
	metrics.TokenRefreshTotal.WithLabelValues(result).Inc()
	return env
}

func (c *Client) refresh(ctx context.Context, creds ports.Credentials) domain.Envelope[string] {
	if err := creds.ClearToken(ctx); err != nil {
		c.log.Error().Err(err).Msg("clear token before refresh")
		return domain.Fail[string](domain.KindSession, msgSessionStore)
	}

	req := Request{Name: "auth.refresh", Method: http.MethodPost, Path: "/refresh"}
	resp, err := c.send(ctx, creds, req, "")
	if err != nil {
		c.log.Error().Err(err).Msg("refresh request failed")
		return domain.Fail[string](domain.KindNetwork, msgRefreshUnavailable)
	}

	if !resp.ok() {
		msg := firstField(resp.body, "detail", "message")
		if msg == "" {
			msg = fmt.Sprintf("Refresh failed (%d)", resp.status)
		}
		return domain.Fail[string](domain.KindUnauthorized, msg).WithStatus(resp.status)
	}

	if !resp.isJSON() {
		return domain.Fail[string](domain.KindMalformed, msgInvalidFormat).WithStatus(resp.status)
	}

	var body tokenBody
	if err := json.Unmarshal(bytes.TrimSpace(resp.body), &body); err != nil {
		return domain.Fail[string](domain.KindMalformed, msgInvalidJSON).WithStatus(resp.status)
	}
	token := body.value()
	if token == "" {
		return domain.Fail[string](domain.KindMalformed, msgNoAccessToken).WithStatus(resp.status)
	}

	if err := creds.SetToken(ctx, token); err != nil {
		c.log.Error().Err(err).Msg("persist refreshed token")
		return domain.Fail[string](domain.KindSession, msgSessionStore)
	}
	return domain.Ok(token)
}
