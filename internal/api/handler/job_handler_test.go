package handler

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

func newJobHandler(f *fixture, svc *stubJobService) *JobHandler {
	return NewJobHandler(svc, f.flashes, zerolog.Nop())
}

// multipartForm encodes fields plus an optional resume file.
func multipartForm(t *testing.T, fields map[string]string, resume []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if resume != nil {
		fw, err := w.CreateFormFile("resume", "cv.pdf")
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = fw.Write(resume)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestSheet_RendersCardsAndStats(t *testing.T) {
	f := newFixture(t)
	jobs := []domain.Job{
		{ID: "1", Title: "Backend Engineer", Company: "Acme", Status: "Interview", IsActive: true},
		{ID: "2", Title: "SRE", Company: "Globex", Status: "Rejected"},
	}
	var query string
	h := newJobHandler(f, &stubJobService{sheetFn: func(q string) domain.Envelope[ports.JobSheet] {
		query = q
		return domain.Ok(ports.JobSheet{Query: q, Total: 2, Jobs: jobs, Stats: domain.ComputeStats(jobs)})
	}})

	c, rec := f.get("/jobs?q=acme")
	if err := h.Sheet(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if query != "acme" {
		t.Fatalf("query not passed, got %q", query)
	}
	body := rec.Body.String()
	for _, want := range []string{"Backend Engineer", "Globex", `id="stat-applied">2<`, `id="stat-interviewed">1<`, `id="stat-rejected">1<`, `value="acme"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestSheet_UnauthorizedGoesToLogin(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{sheetFn: func(string) domain.Envelope[ports.JobSheet] {
		return domain.Fail[ports.JobSheet](domain.KindUnauthorized, "Session expired. Please login again.")
	}})

	c, rec := f.get("/jobs")
	if err := h.Sheet(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/login")
	expectFlash(t, f, "Session expired. Please login again.", domain.NoticeError)
}

func TestSheet_BackendFailureShowsEmptySheet(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{sheetFn: func(string) domain.Envelope[ports.JobSheet] {
		return domain.Fail[ports.JobSheet](domain.KindNetwork, "Network error")
	}})

	c, rec := f.get("/jobs")
	if err := h.Sheet(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Network error") || !strings.Contains(body, "No jobs found. Add a job to get started.") {
		t.Fatalf("expected error toast and empty text")
	}
}

func TestCreate_SendsFieldsAndFile(t *testing.T) {
	f := newFixture(t)
	var got ports.JobInput
	h := newJobHandler(f, &stubJobService{createFn: func(in ports.JobInput) domain.Envelope[domain.Job] {
		got = in
		return domain.Ok(domain.Job{ID: "9"}).WithMessage("Job added successfully")
	}})

	body, ct := multipartForm(t, map[string]string{
		"job_title":           "Go Developer",
		"company_name":        "Initech",
		"location":            "Remote",
		"experience_required": "3",
		"skills":              "go, sql ,docker",
		"notes":               "referral",
	}, []byte("%PDF-1.4"))
	c, rec := f.request(http.MethodPost, "/jobs", body, ct)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/jobs/new")
	expectFlash(t, f, "Job added successfully", domain.NoticeSuccess)

	if got.Title != "Go Developer" || got.Company != "Initech" || got.ExperienceRequired != "3" {
		t.Fatalf("fields not bound: %+v", got)
	}
	if len(got.Skills) != 3 || got.Skills[1] != " sql " {
		t.Fatalf("skills not split on commas: %q", got.Skills)
	}
	if got.IsActive != nil {
		t.Fatalf("add form must not send is_active")
	}
	if got.Resume == nil || got.Resume.Filename != "cv.pdf" || string(got.Resume.Content) != "%PDF-1.4" {
		t.Fatalf("resume not attached: %+v", got.Resume)
	}
	if got.CoverLetter != nil {
		t.Fatalf("absent cover letter must stay nil")
	}
}

func TestCreate_EmptyFileIsSkipped(t *testing.T) {
	f := newFixture(t)
	var got ports.JobInput
	h := newJobHandler(f, &stubJobService{createFn: func(in ports.JobInput) domain.Envelope[domain.Job] {
		got = in
		return domain.Ok(domain.Job{}).WithMessage("Job added successfully")
	}})

	body, ct := multipartForm(t, map[string]string{"job_title": "x"}, []byte{})
	c, _ := f.request(http.MethodPost, "/jobs", body, ct)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Resume != nil {
		t.Fatalf("empty upload must be skipped")
	}
}

func TestCreate_ValidationFailureKeepsInput(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{createFn: func(ports.JobInput) domain.Envelope[domain.Job] {
		return domain.Fail[domain.Job](domain.KindValidation, "Company name is required")
	}})

	body, ct := multipartForm(t, map[string]string{"job_title": "Go Developer", "skills": "go, sql"}, nil)
	c, rec := f.request(http.MethodPost, "/jobs", body, ct)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "Company name is required") || !strings.Contains(out, `value="Go Developer"`) {
		t.Fatalf("form not shown again with input and message")
	}
}

func TestCreate_UnauthorizedGoesToLogin(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{createFn: func(ports.JobInput) domain.Envelope[domain.Job] {
		return domain.Fail[domain.Job](domain.KindUnauthorized, "Session expired. Please login again.")
	}})

	body, ct := multipartForm(t, map[string]string{"job_title": "x"}, nil)
	c, rec := f.request(http.MethodPost, "/jobs", body, ct)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/login")
}

func TestStage_RedirectsToEditPage(t *testing.T) {
	f := newFixture(t)
	var staged string
	h := newJobHandler(f, &stubJobService{stageFn: func(id string) error {
		staged = id
		return nil
	}})

	c, rec := f.postForm("/jobs/42/stage", url.Values{})
	if err := h.Stage(withParam(c, "id", "42")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/jobs/42/edit")
	if staged != "42" {
		t.Fatalf("wrong job staged: %q", staged)
	}
}

func TestStage_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		to   string
		msg  string
	}{
		{"not found", domain.ErrJobNotFound, "/jobs", msgJobNotFound},
		{"unauthorized", fmt.Errorf("list jobs: %w", &domain.Failure{Kind: domain.KindUnauthorized, Message: "Session expired. Please login again."}), "/login", "Session expired. Please login again."},
		{"network", fmt.Errorf("list jobs: %w", &domain.Failure{Kind: domain.KindNetwork, Message: "Network error"}), "/jobs", "Network error"},
		{"store", errors.New("boom"), "/jobs", msgJobsLoadFail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			h := newJobHandler(f, &stubJobService{stageFn: func(string) error { return tc.err }})

			c, rec := f.postForm("/jobs/1/stage", url.Values{})
			if err := h.Stage(withParam(c, "id", "1")); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			expectRedirect(t, rec, tc.to)
			expectFlash(t, f, tc.msg, domain.NoticeError)
		})
	}
}

func TestEditForm_PrefillsStagedJob(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{stagedFn: func(id string) (*domain.Job, error) {
		return &domain.Job{ID: id, Title: "Data Engineer", Skills: []string{"go", "sql"}, IsActive: true, ResumeURL: "https://files.example.com/cv.pdf"}, nil
	}})

	c, rec := f.get("/jobs/7/edit")
	if err := h.EditForm(withParam(c, "id", "7")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`action="/jobs/7"`, `value="Data Engineer"`, `value="go, sql"`, "is_active_present", " checked", "View Last Uploaded"} {
		if !strings.Contains(body, want) {
			t.Fatalf("edit form missing %q", want)
		}
	}
}

func TestEditForm_NothingStaged(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{stagedFn: func(string) (*domain.Job, error) {
		return nil, domain.ErrJobNotStaged
	}})

	c, rec := f.get("/jobs/7/edit")
	if err := h.EditForm(withParam(c, "id", "7")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/jobs")
	expectFlash(t, f, msgSelectJob, domain.NoticeError)
}

func TestUpdate_ActiveCheckbox(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		want   *bool
	}{
		{"checked", map[string]string{"is_active": "true", "is_active_present": "1"}, boolPtr(true)},
		{"unchecked", map[string]string{"is_active_present": "1"}, boolPtr(false)},
		{"not on form", map[string]string{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			var got ports.JobInput
			var gotID string
			h := newJobHandler(f, &stubJobService{updateFn: func(id string, in ports.JobInput) domain.Envelope[domain.Job] {
				gotID, got = id, in
				return domain.Ok(domain.Job{ID: id}).WithMessage("Job updated successfully")
			}})

			tc.fields["job_title"] = "Lead"
			body, ct := multipartForm(t, tc.fields, nil)
			c, rec := f.request(http.MethodPost, "/jobs/5", body, ct)
			if err := h.Update(withParam(c, "id", "5")); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			expectRedirect(t, rec, "/jobs")
			expectFlash(t, f, "Job updated successfully", domain.NoticeSuccess)
			if gotID != "5" {
				t.Fatalf("wrong id %q", gotID)
			}
			switch {
			case tc.want == nil && got.IsActive != nil:
				t.Fatalf("is_active should be omitted, got %v", *got.IsActive)
			case tc.want != nil && (got.IsActive == nil || *got.IsActive != *tc.want):
				t.Fatalf("is_active = %v, want %v", got.IsActive, *tc.want)
			}
		})
	}
}

func TestUpdate_FailureShowsFormAgain(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{updateFn: func(string, ports.JobInput) domain.Envelope[domain.Job] {
		return domain.Fail[domain.Job](domain.KindServer, "Update failed")
	}})

	body, ct := multipartForm(t, map[string]string{"job_title": "Lead"}, nil)
	c, rec := f.request(http.MethodPost, "/jobs/5", body, ct)
	if err := h.Update(withParam(c, "id", "5")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "Update failed") {
		t.Fatalf("expected 422 with message, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/jobs/5"`) {
		t.Fatalf("form must keep posting to the same job")
	}
}

func TestDelete_FlashesOutcome(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{deleteFn: func(id string) domain.Envelope[struct{}] {
		if id != "3" {
			t.Errorf("wrong id %q", id)
		}
		return domain.Ok(struct{}{}).WithMessage("Job deleted successfully")
	}})

	c, rec := f.postForm("/jobs/3/delete", url.Values{})
	if err := h.Delete(withParam(c, "id", "3")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/jobs")
	expectFlash(t, f, "Job deleted successfully", domain.NoticeSuccess)
}

func TestDelete_FailureIsError(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{deleteFn: func(string) domain.Envelope[struct{}] {
		return domain.Fail[struct{}](domain.KindServer, "Unable to delete the job")
	}})

	c, rec := f.postForm("/jobs/3/delete", url.Values{})
	if err := h.Delete(withParam(c, "id", "3")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/jobs")
	expectFlash(t, f, "Unable to delete the job", domain.NoticeError)
}

func TestNewForm_Renders(t *testing.T) {
	f := newFixture(t)
	h := newJobHandler(f, &stubJobService{})

	c, rec := f.get("/jobs/new")
	if err := h.NewForm(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, `action="/jobs"`) {
		t.Fatalf("add form not rendered")
	}
	if strings.Contains(body, "is_active_present") {
		t.Fatalf("add form must not carry the active checkbox")
	}
}

func TestReadJobForm_BadBody(t *testing.T) {
	f := newFixture(t)
	c, _ := f.request(http.MethodPost, "/jobs", strings.NewReader("--x\r\nbroken"), "multipart/form-data; boundary=x")
	_, err := readJobForm(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func boolPtr(b bool) *bool { return &b }
