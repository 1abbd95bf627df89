package ports

import (
	"context"
	"net/http"

	"github.com/sameboat/jobsheet/internal/core/domain"
)

// Credentials is the part of a session the backend client needs: the
// bearer token and the cookies the backend has set (the refresh cookie).
type Credentials interface {
	Token(ctx context.Context) (string, bool, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	Cookies(ctx context.Context) ([]*http.Cookie, error)
	SetCookies(ctx context.Context, cookies []*http.Cookie) error
	ClearCookies(ctx context.Context) error
}

// Session is one browser's server-side state.
type Session interface {
	Credentials

	ID() string
	// Rotate moves the session's state to a fresh id and forgets the old
	// one. Called after sign-in so a planted id never becomes a login.
	Rotate(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
	Identity(ctx context.Context) (domain.Identity, bool)

	StageJob(ctx context.Context, job domain.Job) error
	StagedJob(ctx context.Context) (*domain.Job, error)
	ClearStagedJob(ctx context.Context) error

	Theme(ctx context.Context) string
	SetTheme(ctx context.Context, theme string) error
}

// FlashStore keeps one-shot notices across a redirect.
type FlashStore interface {
	Set(ctx context.Context, sessionID string, flash domain.Flash) error
	// Read returns the pending flash and removes it; nil when none.
	Read(ctx context.Context, sessionID string) (*domain.Flash, error)
}

// SessionProvider opens the session of one browser.
type SessionProvider interface {
	Open(id string) Session
	Ping(ctx context.Context) error
}
