package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
	"github.com/sameboat/jobsheet/internal/pkg/metrics"
)

const (
	keyToken   = "token"
	keyCookies = "cookies"
	keyJob     = "job_to_update"
	keyTheme   = "theme"
	keyFlash   = "flash"
)

var sessionKeys = []string{keyToken, keyCookies, keyJob, keyTheme, keyFlash}

func sessionKey(id, name string) string {
	return "session:" + id + ":" + name
}

func countStoreError(op string) {
	metrics.SessionStoreErrorsTotal.WithLabelValues(op).Inc()
}

// SessionFactory opens sessions backed by one KV store. The sealer is
// optional; when set, the token and cookies are encrypted at rest.
type SessionFactory struct {
	store  ports.KVStore
	sealer ports.Sealer
	ttl    time.Duration
	logger zerolog.Logger
}

func NewSessionFactory(store ports.KVStore, sealer ports.Sealer, ttl time.Duration, logger zerolog.Logger) *SessionFactory {
	return &SessionFactory{store: store, sealer: sealer, ttl: ttl, logger: logger}
}

// Open returns the session with the given id. Nothing is read until a
// method is called.
func (f *SessionFactory) Open(id string) ports.Session {
	return &Session{id: id, factory: f}
}

// Ping reports whether the underlying store is reachable.
func (f *SessionFactory) Ping(ctx context.Context) error {
	return f.store.Ping(ctx)
}

var _ ports.SessionProvider = (*SessionFactory)(nil)

// Session implements ports.Session on top of a KV store.
type Session struct {
	id      string
	factory *SessionFactory
}

var _ ports.Session = (*Session)(nil)

func (s *Session) ID() string { return s.id }

// Rotate copies every stored value to a new random id, deletes the old
// entries and switches the session to the new id. Sealed values are moved
// as stored.
func (s *Session) Rotate(ctx context.Context) error {
	next := uuid.NewString()
	for _, name := range sessionKeys {
		v, ok, err := s.get(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := s.factory.store.Set(ctx, sessionKey(next, name), v, s.factory.ttl); err != nil {
			countStoreError("set")
			return fmt.Errorf("session rotate %s: %w", name, err)
		}
	}
	if err := s.del(ctx, sessionKeys...); err != nil {
		return err
	}
	s.factory.logger.Debug().Str("session", s.id).Str("next", next).Msg("session rotated")
	s.id = next
	return nil
}

func (s *Session) key(name string) string { return sessionKey(s.id, name) }

func (s *Session) get(ctx context.Context, name string) (string, bool, error) {
	v, ok, err := s.factory.store.Get(ctx, s.key(name))
	if err != nil {
		countStoreError("get")
		return "", false, fmt.Errorf("session get %s: %w", name, err)
	}
	return v, ok, nil
}

func (s *Session) set(ctx context.Context, name, value string) error {
	if err := s.factory.store.Set(ctx, s.key(name), value, s.factory.ttl); err != nil {
		countStoreError("set")
		return fmt.Errorf("session set %s: %w", name, err)
	}
	return nil
}

func (s *Session) del(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.key(n)
	}
	if err := s.factory.store.Delete(ctx, keys...); err != nil {
		countStoreError("delete")
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// getSealed reads a sealed value. A value that no longer opens (for
// example after the secret changed) is dropped and reads as missing.
func (s *Session) getSealed(ctx context.Context, name string) (string, bool, error) {
	v, ok, err := s.get(ctx, name)
	if err != nil || !ok || s.factory.sealer == nil {
		return v, ok, err
	}
	plain, err := s.factory.sealer.Open(v)
	if err != nil {
		s.factory.logger.Warn().Err(err).Str("session", s.id).Str("key", name).Msg("discarding unreadable sealed value")
		_ = s.del(ctx, name)
		return "", false, nil
	}
	return string(plain), true, nil
}

func (s *Session) setSealed(ctx context.Context, name, value string) error {
	if s.factory.sealer != nil {
		sealed, err := s.factory.sealer.Seal([]byte(value))
		if err != nil {
			return fmt.Errorf("seal %s: %w", name, err)
		}
		value = sealed
	}
	return s.set(ctx, name, value)
}

// Token returns the access token; ok is false when none is stored.
func (s *Session) Token(ctx context.Context) (string, bool, error) {
	tok, ok, err := s.getSealed(ctx, keyToken)
	if err != nil || !ok || tok == "" {
		return "", false, err
	}
	return tok, true, nil
}

// SetToken replaces the stored token.
func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.setSealed(ctx, keyToken, token)
}

func (s *Session) ClearToken(ctx context.Context) error {
	return s.del(ctx, keyToken)
}

// IsLoggedIn reports whether a token is stored. Store failures read as
// logged out.
func (s *Session) IsLoggedIn(ctx context.Context) bool {
	_, ok, err := s.Token(ctx)
	if err != nil {
		s.factory.logger.Error().Err(err).Str("session", s.id).Msg("read token")
		return false
	}
	return ok
}

// Identity decodes the stored token's claims without verifying the
// signature. The result is for display only.
func (s *Session) Identity(ctx context.Context) (domain.Identity, bool) {
	tok, ok, err := s.Token(ctx)
	if err != nil || !ok {
		return domain.Identity{}, false
	}
	return identityFromToken(tok)
}

func identityFromToken(tok string) (domain.Identity, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return domain.Identity{}, false
	}
	var id domain.Identity
	if v, ok := claims["user_id"]; ok && v != nil {
		id.UserID = fmt.Sprint(v)
	} else if sub, err := claims.GetSubject(); err == nil {
		id.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, true
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Cookies returns the cookies the backend has set for this session.
func (s *Session) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	raw, ok, err := s.getSealed(ctx, keyCookies)
	if err != nil || !ok {
		return nil, err
	}
	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.factory.logger.Warn().Err(err).Str("session", s.id).Msg("discarding malformed cookies")
		_ = s.del(ctx, keyCookies)
		return nil, nil
	}
	out := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out, nil
}

// SetCookies merges cookies into the stored jar by name. A cookie the
// backend expires (MaxAge < 0 or an empty value) is removed.
func (s *Session) SetCookies(ctx context.Context, cookies []*http.Cookie) error {
	current, err := s.Cookies(ctx)
	if err != nil {
		return err
	}
	jar := make([]storedCookie, 0, len(current)+len(cookies))
	index := make(map[string]int, len(current)+len(cookies))
	for _, c := range current {
		index[c.Name] = len(jar)
		jar = append(jar, storedCookie{Name: c.Name, Value: c.Value})
	}
	for _, c := range cookies {
		expired := c.MaxAge < 0 || c.Value == ""
		i, exists := index[c.Name]
		switch {
		case expired && exists:
			jar[i].Value = ""
		case expired:
		case exists:
			jar[i].Value = c.Value
		default:
			index[c.Name] = len(jar)
			jar = append(jar, storedCookie{Name: c.Name, Value: c.Value})
		}
	}

	kept := jar[:0]
	for _, c := range jar {
		if c.Value != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return s.ClearCookies(ctx)
	}
	b, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	return s.setSealed(ctx, keyCookies, string(b))
}

func (s *Session) ClearCookies(ctx context.Context) error {
	return s.del(ctx, keyCookies)
}

// StageJob keeps a copy of job for the edit page.
func (s *Session) StageJob(ctx context.Context, job domain.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode staged job: %w", err)
	}
	return s.set(ctx, keyJob, string(b))
}

// StagedJob returns the staged job, or nil when none is staged.
func (s *Session) StagedJob(ctx context.Context) (*domain.Job, error) {
	raw, ok, err := s.get(ctx, keyJob)
	if err != nil || !ok {
		return nil, err
	}
	var job domain.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		s.factory.logger.Warn().Err(err).Str("session", s.id).Msg("discarding malformed staged job")
		_ = s.del(ctx, keyJob)
		return nil, nil
	}
	return &job, nil
}

func (s *Session) ClearStagedJob(ctx context.Context) error {
	return s.del(ctx, keyJob)
}

// Theme returns the stored display theme, light by default.
func (s *Session) Theme(ctx context.Context) string {
	v, ok, err := s.get(ctx, keyTheme)
	if err != nil || !ok || (v != domain.ThemeLight && v != domain.ThemeDark) {
		return domain.ThemeLight
	}
	return v
}

var errUnknownTheme = errors.New("unknown theme")

func (s *Session) SetTheme(ctx context.Context, theme string) error {
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return fmt.Errorf("%w: %q", errUnknownTheme, theme)
	}
	return s.set(ctx, keyTheme, theme)
}
