package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/api/middleware"
	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/service"
	"github.com/sameboat/jobsheet/internal/infrastructure/backend"
	"github.com/sameboat/jobsheet/internal/infrastructure/db/memory"
)

// The router registers process-wide prometheus collectors, so it is built
// once for all checks.
func TestRouter(t *testing.T) {
	store := memory.NewStore()
	forms := service.NewFormValidator()
	client := backend.NewClient("http://127.0.0.1:1", nil, zerolog.Nop())
	log := zerolog.Nop()

	e := NewRouter(Deps{
		Sessions:    service.NewSessionFactory(store, nil, time.Hour, log),
		Flashes:     service.NewFlashStore(store, time.Hour, log),
		AuthService: service.NewAuthService(backend.NewAuth(client), forms, log),
		JobService:  service.NewJobService(backend.NewJobs(client), forms, log),
		Forms:       forms,
		Renderer:    view.MustRenderer(),
		Session:     middleware.SessionOptions{CookieName: "sid", TTL: time.Hour},
		Logger:      log,
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	t.Run("liveness", func(t *testing.T) {
		if rec := serve(http.MethodGet, "/health"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("readiness", func(t *testing.T) {
		rec := serve(http.MethodGet, "/health/ready")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "session_store") {
			t.Fatalf("unexpected readiness %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("index issues session cookie", func(t *testing.T) {
		rec := serve(http.MethodGet, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(rec.Result().Cookies()) == 0 {
			t.Fatalf("session cookie missing")
		}
	})

	t.Run("jobs require login", func(t *testing.T) {
		rec := serve(http.MethodGet, "/jobs")
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("api requires login", func(t *testing.T) {
		rec := serve(http.MethodGet, "/api/jobs")
		if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Fatalf("expected 401 envelope, got %d %s", rec.Code, rec.Body.String())
		}
	})

	postLogin := func(body, cookie string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: middleware.CSRFField, Value: cookie})
		}
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("login validation needs no backend", func(t *testing.T) {
		rec := postLogin("email=&password=&_csrf=tok-1", "tok-1")
		if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "Email and password are required") {
			t.Fatalf("unexpected login response %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `name="_csrf" value="tok-1"`) {
			t.Fatalf("form should carry the csrf token")
		}
	})

	t.Run("post without csrf field is rejected", func(t *testing.T) {
		if rec := postLogin("email=&password=", "tok-1"); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("post with mismatched csrf token is rejected", func(t *testing.T) {
		if rec := postLogin("email=&password=&_csrf=forged", "tok-1"); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if rec := postLogin("email=&password=&_csrf=forged", ""); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 without cookie, got %d", rec.Code)
		}
	})

	t.Run("login page sets csrf cookie", func(t *testing.T) {
		rec := serve(http.MethodGet, "/login")
		var token string
		for _, ck := range rec.Result().Cookies() {
			if ck.Name == middleware.CSRFField {
				token = ck.Value
			}
		}
		if token == "" || !strings.Contains(rec.Body.String(), `value="`+token+`"`) {
			t.Fatalf("csrf token missing from cookie or form")
		}
	})

	t.Run("metrics", func(t *testing.T) {
		if rec := serve(http.MethodGet, "/metrics"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("unknown page", func(t *testing.T) {
		if rec := serve(http.MethodGet, "/nope"); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
