package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

// Jobs implements ports.JobsAPI. Every call goes through AuthorizedDo.
type Jobs struct {
	client *Client
}

// NewJobs returns the job endpoints of client.
func NewJobs(client *Client) *Jobs {
	return &Jobs{client: client}
}

// jobWrite is the backend's answer to a create or update:
// {"message": "...", "data": {...job}}. A bare job object is accepted too.
type jobWrite struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeJobWrite(env domain.Envelope[json.RawMessage]) domain.Envelope[domain.Job] {
	if !env.Success {
		return domain.Recast[json.RawMessage, domain.Job](env)
	}
	var w jobWrite
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &w) == nil && len(w.Data) > 0 {
		out := decodeData[domain.Job](domain.Envelope[json.RawMessage]{Success: true, Data: w.Data, Status: env.Status})
		if w.Message != "" {
			out.Message = w.Message
		}
		return out
	}
	return decodeData[domain.Job](env)
}

// CreateJob posts a new job.
func (j *Jobs) CreateJob(ctx context.Context, creds ports.Credentials, in ports.JobInput) domain.Envelope[domain.Job] {
	body, ct, err := jobForm(in)
	if err != nil {
		j.client.log.Error().Err(err).Msg("encode job form")
		return domain.Fail[domain.Job](domain.KindValidation, "something went wrong")
	}
	req := Request{Name: "jobs.create", Method: http.MethodPost, Path: "/jobs/", ContentType: ct, Body: body}
	return decodeJobWrite(j.client.AuthorizedDo(ctx, creds, req))
}

// ListJobs returns every job of the logged-in user. The backend answers
// with a bare array; a paginated {"results": [...]} body is accepted too.
func (j *Jobs) ListJobs(ctx context.Context, creds ports.Credentials) domain.Envelope[[]domain.Job] {
	req := Request{Name: "jobs.list", Method: http.MethodGet, Path: "/jobs/"}
	env := j.client.AuthorizedDo(ctx, creds, req)
	if !env.Success {
		return domain.Recast[json.RawMessage, []domain.Job](env)
	}

	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if json.Unmarshal(env.Data, &page) == nil && len(page.Results) > 0 {
		env.Data = page.Results
	}
	out := decodeData[[]domain.Job](env)
	if out.Success && out.Data == nil {
		out.Data = []domain.Job{}
	}
	for i := range out.Data {
		out.Data[i] = out.Data[i].WithLists()
	}
	return out
}

// UpdateJob patches the job with the given id.
func (j *Jobs) UpdateJob(ctx context.Context, creds ports.Credentials, id string, in ports.JobInput) domain.Envelope[domain.Job] {
	body, ct, err := jobForm(in)
	if err != nil {
		j.client.log.Error().Err(err).Msg("encode job form")
		return domain.Fail[domain.Job](domain.KindValidation, "Update failed")
	}
	req := Request{
		Name:        "jobs.update",
		Method:      http.MethodPatch,
		Path:        "/jobs/" + url.PathEscape(id) + "/",
		ContentType: ct,
		Body:        body,
	}
	return decodeJobWrite(j.client.AuthorizedDo(ctx, creds, req))
}

// DeleteJob removes the job with the given id.
func (j *Jobs) DeleteJob(ctx context.Context, creds ports.Credentials, id string) domain.Envelope[struct{}] {
	req := Request{Name: "jobs.delete", Method: http.MethodDelete, Path: "/jobs/" + url.PathEscape(id) + "/"}
	env := j.client.AuthorizedDo(ctx, creds, req)
	if !env.Success {
		return domain.Recast[json.RawMessage, struct{}](env)
	}
	return domain.Ok(struct{}{}).WithStatus(env.Status).WithMessage(firstField(env.Data, "message"))
}
