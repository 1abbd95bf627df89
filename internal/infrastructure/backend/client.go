// Package backend talks to the job-tracker REST API. Every exported call
// returns a domain.Envelope; transport and decoding failures are folded
// into failed envelopes and never returned as raw errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
	"github.com/sameboat/jobsheet/internal/pkg/metrics"
)

const (
	mimeJSON = "application/json"

	msgSessionExpired = "Session expired. Please login again."
	msgUnknownServer  = "Unknown server error"
	msgNetwork        = "Network error"
	msgInvalidJSON    = "Server returned invalid JSON response"
	msgInvalidFormat  = "Server returned invalid response format"
	msgSessionStore   = "Your session could not be read. Please login again."
)

// Client is the backend API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient returns a Client rooted at baseURL. A nil httpClient means
// http.DefaultClient, which sets no timeout of its own.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// Request describes one backend call. Body is kept as bytes so the call can
// be replayed after a token refresh.
type Request struct {
	// Name labels metrics and logs, e.g. "jobs.list".
	Name        string
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

func jsonRequest(name, method, path string, payload any) (Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s request: %w", name, err)
	}
	return Request{Name: name, Method: method, Path: path, ContentType: mimeJSON, Body: body}, nil
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

func (r *response) isJSON() bool { return strings.Contains(r.contentType, mimeJSON) }

// send performs one round trip. The bearer token is attached when non-empty;
// stored cookies are always attached and any cookies the backend sets are
// written back to creds. creds may be nil for anonymous calls.
func (c *Client) send(ctx context.Context, creds ports.Credentials, req Request, token string) (*response, error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(req.Name).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", req.Name, err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", mimeJSON)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if creds != nil {
		cookies, err := creds.Cookies(ctx)
		if err != nil {
			c.log.Warn().Err(err).Str("endpoint", req.Name).Msg("stored cookies unavailable")
		}
		for _, ck := range cookies {
			httpReq.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(req.Name, "network_error").Inc()
		return nil, fmt.Errorf("send %s request: %w", req.Name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(req.Name, "network_error").Inc()
		return nil, fmt.Errorf("read %s response: %w", req.Name, err)
	}

	if creds != nil {
		if set := resp.Cookies(); len(set) > 0 {
			if err := creds.SetCookies(ctx, set); err != nil {
				c.log.Warn().Err(err).Str("endpoint", req.Name).Msg("persist backend cookies")
			}
		}
	}

	outcome := "ok"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "http_error"
	}
	metrics.BackendRequestsTotal.WithLabelValues(req.Name, outcome).Inc()

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        payload,
	}, nil
}

// Do performs an anonymous call and normalizes the outcome.
func (c *Client) Do(ctx context.Context, req Request) domain.Envelope[json.RawMessage] {
	resp, err := c.send(ctx, nil, req, "")
	if err != nil {
		return c.networkFailure(req, err, msgNetwork)
	}
	return normalize(resp)
}

// AuthorizedDo performs a call on behalf of a session. On 401 it refreshes
// the access token once and replays the request once with the new token;
// if the refresh fails the call fails without a retry.
//
// Two concurrent calls of the same session that both receive 401 will each
// run their own refresh.
func (c *Client) AuthorizedDo(ctx context.Context, creds ports.Credentials, req Request) domain.Envelope[json.RawMessage] {
	token, _, err := creds.Token(ctx)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", req.Name).Msg("read session token")
		return domain.Fail[json.RawMessage](domain.KindSession, msgSessionStore)
	}

	resp, err := c.send(ctx, creds, req, token)
	if err != nil {
		return c.networkFailure(req, err, msgNetwork)
	}

	if resp.status == http.StatusUnauthorized {
		fresh := c.Refresh(ctx, creds)
		if !fresh.Success {
			msg := fresh.Message
			if msg == "" {
				msg = msgSessionExpired
			}
			return domain.Fail[json.RawMessage](domain.KindUnauthorized, msg).WithStatus(http.StatusUnauthorized)
		}

		resp, err = c.send(ctx, creds, req, fresh.Data)
		if err != nil {
			return c.networkFailure(req, err, msgNetwork)
		}
	}

	return normalize(resp)
}

func (c *Client) networkFailure(req Request, err error, msg string) domain.Envelope[json.RawMessage] {
	c.log.Error().Err(err).Str("endpoint", req.Name).Str("method", req.Method).Msg("backend request failed")
	return domain.Fail[json.RawMessage](domain.KindNetwork, msg)
}

// normalize turns a response into an envelope. JSON bodies are passed
// through as data; other bodies become a JSON string.
func normalize(resp *response) domain.Envelope[json.RawMessage] {
	var data json.RawMessage
	if resp.isJSON() {
		trimmed := bytes.TrimSpace(resp.body)
		if len(trimmed) > 0 {
			if !json.Valid(trimmed) {
				return domain.Fail[json.RawMessage](domain.KindMalformed, msgInvalidJSON).WithStatus(resp.status)
			}
			data = json.RawMessage(trimmed)
		}
	} else if len(resp.body) > 0 {
		data, _ = json.Marshal(string(resp.body))
	}

	if !resp.ok() {
		return domain.Fail[json.RawMessage](kindForStatus(resp.status), failureMessage(data)).WithStatus(resp.status)
	}
	env := domain.Ok(data)
	env.Status = resp.status
	return env
}

func kindForStatus(status int) domain.FailureKind {
	switch {
	case status == http.StatusUnauthorized:
		return domain.KindUnauthorized
	case status >= 500:
		return domain.KindServer
	default:
		return domain.KindValidation
	}
}

// decodeData converts a successful raw envelope to a typed one.
func decodeData[T any](env domain.Envelope[json.RawMessage]) domain.Envelope[T] {
	if !env.Success {
		return domain.Recast[json.RawMessage, T](env)
	}
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return domain.Envelope[T]{Success: true, Data: out, Message: env.Message, Status: env.Status}
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return domain.Fail[T](domain.KindMalformed, msgInvalidFormat).WithStatus(env.Status)
	}
	return domain.Envelope[T]{Success: true, Data: out, Message: env.Message, Status: env.Status}
}
