package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/api/middleware"
	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
	"github.com/sameboat/jobsheet/internal/core/service"
	"github.com/sameboat/jobsheet/internal/infrastructure/db/memory"
)

var renderer = view.MustRenderer()

// fixture is one browser session against an echo instance wired like the
// real router.
type fixture struct {
	e        *echo.Echo
	sessions *service.SessionFactory
	sess     ports.Session
	flashes  *service.FlashStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	e := echo.New()
	e.Renderer = renderer
	e.Validator = NewValidator(service.NewFormValidator())
	sessions := service.NewSessionFactory(store, nil, time.Hour, zerolog.Nop())
	return &fixture{
		e:        e,
		sessions: sessions,
		sess:     sessions.Open("sid-1"),
		flashes:  service.NewFlashStore(store, time.Hour, zerolog.Nop()),
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	if err := f.sess.SetToken(context.Background(), "token-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
}

func (f *fixture) request(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.Set(middleware.SessionKey, f.sess)
	return c, rec
}

func (f *fixture) get(target string) (echo.Context, *httptest.ResponseRecorder) {
	return f.request(http.MethodGet, target, nil, "")
}

func (f *fixture) postForm(target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	return f.request(http.MethodPost, target, strings.NewReader(form.Encode()), echo.MIMEApplicationForm)
}

// flash returns the pending flash, consuming it.
func (f *fixture) flash(t *testing.T) *domain.Flash {
	t.Helper()
	fl, err := f.flashes.Read(context.Background(), f.sess.ID())
	if err != nil {
		t.Fatalf("read flash: %v", err)
	}
	return fl
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != to {
		t.Fatalf("expected redirect to %q, got %q", to, loc)
	}
}

func expectFlash(t *testing.T, f *fixture, msg string, typ domain.NoticeType) {
	t.Helper()
	fl := f.flash(t)
	if fl == nil {
		t.Fatalf("expected flash %q, got none", msg)
	}
	if fl.Message != msg || fl.Type != typ {
		t.Fatalf("expected flash %q/%s, got %q/%s", msg, typ, fl.Message, fl.Type)
	}
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

// --- service stubs ---

type stubAuthService struct {
	loginFn    func(in ports.LoginInput) domain.Envelope[string]
	registerFn func(in ports.RegisterInput) domain.Envelope[domain.Account]
	logoutFn   func() domain.Envelope[struct{}]
	forgotFn   func(email string) domain.Envelope[struct{}]
	resetFn    func(in ports.PasswordResetInput) domain.Envelope[struct{}]
}

func (s *stubAuthService) Login(ctx context.Context, sess ports.Session, in ports.LoginInput) domain.Envelope[string] {
	env := s.loginFn(in)
	if env.Success {
		_ = sess.SetToken(ctx, env.Data)
	}
	return env
}

func (s *stubAuthService) Register(_ context.Context, in ports.RegisterInput) domain.Envelope[domain.Account] {
	return s.registerFn(in)
}

func (s *stubAuthService) Logout(context.Context, ports.Session) domain.Envelope[struct{}] {
	return s.logoutFn()
}

func (s *stubAuthService) ForgotPassword(_ context.Context, email string) domain.Envelope[struct{}] {
	return s.forgotFn(email)
}

func (s *stubAuthService) ResetPassword(_ context.Context, in ports.PasswordResetInput) domain.Envelope[struct{}] {
	return s.resetFn(in)
}

type stubJobService struct {
	sheetFn  func(query string) domain.Envelope[ports.JobSheet]
	createFn func(in ports.JobInput) domain.Envelope[domain.Job]
	updateFn func(id string, in ports.JobInput) domain.Envelope[domain.Job]
	deleteFn func(id string) domain.Envelope[struct{}]
	stageFn  func(id string) error
	stagedFn func(id string) (*domain.Job, error)
}

func (s *stubJobService) Sheet(_ context.Context, _ ports.Session, query string) domain.Envelope[ports.JobSheet] {
	return s.sheetFn(query)
}

func (s *stubJobService) Create(_ context.Context, _ ports.Session, in ports.JobInput) domain.Envelope[domain.Job] {
	return s.createFn(in)
}

func (s *stubJobService) Update(_ context.Context, _ ports.Session, id string, in ports.JobInput) domain.Envelope[domain.Job] {
	return s.updateFn(id, in)
}

func (s *stubJobService) Delete(_ context.Context, _ ports.Session, id string) domain.Envelope[struct{}] {
	return s.deleteFn(id)
}

func (s *stubJobService) Stage(_ context.Context, _ ports.Session, id string) error {
	return s.stageFn(id)
}

func (s *stubJobService) Staged(_ context.Context, _ ports.Session, id string) (*domain.Job, error) {
	return s.stagedFn(id)
}
