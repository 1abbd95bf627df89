package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sameboat/jobsheet/internal/core/ports"
)

func TestCreateJob_MultipartBody(t *testing.T) {
	active := true
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jobs/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		form := r.MultipartForm
		if got := form.Value["skills"]; len(got) != 2 || got[0] != "go" || got[1] != "sql" {
			t.Errorf("skills not repeated: %v", got)
		}
		if got := form.Value["notes"]; len(got) != 1 || got[0] != "referral" {
			t.Errorf("unexpected notes: %v", got)
		}
		if _, ok := form.Value["job_url"]; ok {
			t.Errorf("blank optional field was sent")
		}
		if form.Value["is_active"][0] != "true" {
			t.Errorf("is_active not sent")
		}
		if _, ok := form.File["cover_letter"]; ok {
			t.Errorf("empty file was sent")
		}
		files := form.File["resume"]
		if len(files) != 1 || files[0].Filename != "cv.pdf" {
			t.Errorf("resume part missing")
		} else {
			f, _ := files[0].Open()
			b, _ := io.ReadAll(f)
			_ = f.Close()
			if string(b) != "%PDF" {
				t.Errorf("unexpected resume content %q", b)
			}
		}
		writeJSON(w, http.StatusCreated, `{"message":"Job created","data":{"job_title":"Go dev","company_name":"Acme"}}`)
	}))

	in := ports.JobInput{
		Title:              "Go dev",
		Company:            "Acme",
		Location:           "Remote",
		ExperienceRequired: "3",
		IsActive:           &active,
		Skills:             []string{"go", "sql"},
		Notes:              []string{"referral"},
		Resume:             &ports.FileUpload{Filename: "cv.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
		CoverLetter:        &ports.FileUpload{Filename: "empty.pdf"},
	}
	env := NewJobs(client).CreateJob(context.Background(), &memCreds{token: "t"}, in)
	if !env.Success {
		t.Fatalf("expected success, got %q", env.Message)
	}
	if env.Data.Title != "Go dev" || env.Data.Company != "Acme" {
		t.Fatalf("unexpected job: %+v", env.Data)
	}
}

func TestListJobs(t *testing.T) {
	body := `[{"job_id":"1","job_title":"A","skills":["go"],"current_status":"APPLIED","is_active":true},{"job_id":"2","job_title":"B"}]`
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}))
	env := NewJobs(client).ListJobs(context.Background(), &memCreds{token: "t"})
	if !env.Success || len(env.Data) != 2 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Data[0].ID != "1" || !env.Data[0].IsActive || env.Data[0].Skills[0] != "go" {
		t.Fatalf("unexpected first job: %+v", env.Data[0])
	}
}

func TestListJobs_PaginatedAndEmpty(t *testing.T) {
	paged := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"count":1,"results":[{"job_id":"7"}]}`)
	}))
	env := NewJobs(paged).ListJobs(context.Background(), &memCreds{token: "t"})
	if !env.Success || len(env.Data) != 1 || env.Data[0].ID != "7" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	empty := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	}))
	env = NewJobs(empty).ListJobs(context.Background(), &memCreds{token: "t"})
	if !env.Success || env.Data == nil || len(env.Data) != 0 {
		t.Fatalf("expected empty non-nil list, got %+v", env)
	}
}

func TestListJobs_MissingListsEncodeEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"job_id":"3","skills":null}]`)
	}))
	env := NewJobs(client).ListJobs(context.Background(), &memCreds{token: "t"})
	if !env.Success || len(env.Data) != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Data[0].Skills == nil || env.Data[0].Notes == nil {
		t.Fatalf("expected empty lists, got %+v", env.Data[0])
	}
	raw, err := json.Marshal(env.Data[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"skills":[]`) || !strings.Contains(string(raw), `"notes":[]`) {
		t.Fatalf("lists should encode as [], got %s", raw)
	}
}

func TestListJobs_UnexpectedShape(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"jobs":"nope"}`)
	}))
	env := NewJobs(client).ListJobs(context.Background(), &memCreds{token: "t"})
	if env.Success || env.Message != "Server returned invalid response format" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestUpdateJob_UsesPatch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/jobs/abc/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"message":"Job updated","data":{"job_title":"New"}}`)
	}))
	env := NewJobs(client).UpdateJob(context.Background(), &memCreds{token: "t"}, "abc", ports.JobInput{Title: "New"})
	if !env.Success || env.Data.Title != "New" || env.Message != "Job updated" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestDeleteJob(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/jobs/abc/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	env := NewJobs(client).DeleteJob(context.Background(), &memCreds{token: "t"}, "abc")
	if !env.Success {
		t.Fatalf("expected success, got %q", env.Message)
	}
}

func TestDeleteJob_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"No Jobs matches the given query."}`)
	}))
	env := NewJobs(client).DeleteJob(context.Background(), &memCreds{token: "t"}, "abc")
	if env.Success || env.Message != "No Jobs matches the given query." || env.Status != http.StatusNotFound {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
