package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

// maxUploadBytes caps each attached document.
const maxUploadBytes = 10 << 20

const (
	msgJobNotFound  = "Job not found"
	msgSelectJob    = "Select a job to update first."
	msgJobsLoadFail = "Unable to load jobs"
	msgUploadFailed = "Could not read the uploaded file"
)

// JobHandler serves the job sheet and the add and edit pages.
type JobHandler struct {
	pages
	jobService ports.JobService
}

func NewJobHandler(jobService ports.JobService, flashes ports.FlashStore, logger zerolog.Logger) *JobHandler {
	return &JobHandler{
		pages:      pages{flashes: flashes, logger: logger},
		jobService: jobService,
	}
}

// jobRequest is the add and edit form. Skills and notes arrive comma
// separated; the checkbox is only honoured when the edit form sent its
// companion hidden field.
type jobRequest struct {
	Title              string `form:"job_title"`
	Company            string `form:"company_name"`
	Location           string `form:"location"`
	ExperienceRequired string `form:"experience_required"`
	EmploymentType     string `form:"employment_type"`
	JobURL             string `form:"job_url"`
	AppliedDate        string `form:"applied_date"`
	Status             string `form:"current_status"`
	Skills             string `form:"skills"`
	Notes              string `form:"notes"`
	IsActive           string `form:"is_active"`
	IsActivePresent    string `form:"is_active_present"`
}

func (r jobRequest) input() ports.JobInput {
	in := ports.JobInput{
		Title:              r.Title,
		Company:            r.Company,
		Location:           r.Location,
		ExperienceRequired: r.ExperienceRequired,
		EmploymentType:     r.EmploymentType,
		JobURL:             r.JobURL,
		AppliedDate:        r.AppliedDate,
		Status:             r.Status,
		Skills:             splitList(r.Skills),
		Notes:              splitList(r.Notes),
	}
	if r.IsActivePresent != "" {
		active := r.IsActive == "true" || r.IsActive == "on"
		in.IsActive = &active
	}
	return in
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// readJobForm binds the form fields and the optional documents.
func readJobForm(c echo.Context) (ports.JobInput, error) {
	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return ports.JobInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	in := req.input()

	var err error
	if in.Resume, err = formFile(c, "resume"); err != nil {
		return in, err
	}
	if in.CoverLetter, err = formFile(c, "cover_letter"); err != nil {
		return in, err
	}
	return in, nil
}

// formFile returns nil when the field is absent or the file is empty.
func formFile(c echo.Context, field string) (*ports.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > maxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("%s is larger than 10 MB", field))
	}
	content, err := readUpload(fh)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &ports.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     content,
	}, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}

// loginAgain sends the browser to the login page with msg as an error.
func (h *JobHandler) loginAgain(c echo.Context, msg string) error {
	return h.redirect(c, "/login", notice(msg, domain.NoticeError, 0))
}

// Sheet renders GET /jobs?q=. Every visit lists the jobs afresh.
func (h *JobHandler) Sheet(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	q := c.QueryParam("q")
	env := h.jobService.Sheet(c.Request().Context(), sess, q)
	if env.Kind == domain.KindUnauthorized {
		return h.loginAgain(c, env.Message)
	}

	var n view.Notifier
	sheet := env.Data
	if !env.Success {
		n.Error(env.Message)
		sheet = ports.JobSheet{Query: strings.TrimSpace(q), Jobs: []domain.Job{}}
	}
	return h.render(c, http.StatusOK, "jobs", "Job sheet", &n, view.NewSheet(sheet))
}

// NewForm renders GET /jobs/new.
func (h *JobHandler) NewForm(c echo.Context) error {
	form := view.NewJobForm("Add job", "/jobs", "Add Job", domain.Job{IsActive: true})
	return h.render(c, http.StatusOK, "job_form", "Add job", nil, form)
}

// Create handles POST /jobs. The add page is shown again, empty, after a
// successful save so several jobs can be entered in a row.
func (h *JobHandler) Create(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	in, err := readJobForm(c)
	if err != nil {
		return h.uploadFailed(c, err, "Add job", "/jobs", "Add Job", "", in)
	}

	env := h.jobService.Create(c.Request().Context(), sess, in)
	if env.Kind == domain.KindUnauthorized {
		return h.loginAgain(c, env.Message)
	}
	if !env.Success {
		var n view.Notifier
		n.Error(env.Message)
		form := view.JobFormFromInput("Add job", "/jobs", "Add Job", "", in)
		return h.render(c, http.StatusUnprocessableEntity, "job_form", "Add job", &n, form)
	}
	return h.redirect(c, "/jobs/new", notice(env.Message, domain.NoticeSuccess, 0))
}

// Stage handles POST /jobs/:id/stage, the "Update Job" button of a card.
func (h *JobHandler) Stage(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	err = h.jobService.Stage(c.Request().Context(), sess, id)
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, "/jobs/"+url.PathEscape(id)+"/edit")
	case errors.Is(err, domain.ErrUnauthorized):
		return h.loginAgain(c, failureText(err, msgJobsLoadFail))
	case errors.Is(err, domain.ErrJobNotFound):
		return h.redirect(c, "/jobs", notice(msgJobNotFound, domain.NoticeError, 0))
	}
	h.logger.Warn().Err(err).Str("session", sess.ID()).Str("job_id", id).Msg("stage job")
	return h.redirect(c, "/jobs", notice(failureText(err, msgJobsLoadFail), domain.NoticeError, 0))
}

// EditForm renders GET /jobs/:id/edit prefilled from the staged job.
func (h *JobHandler) EditForm(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	job, err := h.jobService.Staged(c.Request().Context(), sess, id)
	if err != nil {
		if !errors.Is(err, domain.ErrJobNotStaged) {
			h.logger.Warn().Err(err).Str("session", sess.ID()).Str("job_id", id).Msg("read staged job")
		}
		return h.redirect(c, "/jobs", notice(msgSelectJob, domain.NoticeError, 0))
	}
	form := view.NewJobForm("Update job", editAction(id), "Update Job", *job)
	return h.render(c, http.StatusOK, "job_form", "Update job", nil, form)
}

// Update handles POST /jobs/:id.
func (h *JobHandler) Update(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	in, err := readJobForm(c)
	if err != nil {
		return h.uploadFailed(c, err, "Update job", editAction(id), "Update Job", id, in)
	}

	env := h.jobService.Update(c.Request().Context(), sess, id, in)
	if env.Kind == domain.KindUnauthorized {
		return h.loginAgain(c, env.Message)
	}
	if !env.Success {
		var n view.Notifier
		n.Error(env.Message)
		form := view.JobFormFromInput("Update job", editAction(id), "Update Job", id, in)
		return h.render(c, http.StatusUnprocessableEntity, "job_form", "Update job", &n, form)
	}
	return h.redirect(c, "/jobs", notice(env.Message, domain.NoticeSuccess, 0))
}

// Delete handles POST /jobs/:id/delete.
func (h *JobHandler) Delete(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	env := h.jobService.Delete(c.Request().Context(), sess, c.Param("id"))
	if env.Kind == domain.KindUnauthorized {
		return h.loginAgain(c, env.Message)
	}
	typ := domain.NoticeSuccess
	if !env.Success {
		typ = domain.NoticeError
	}
	return h.redirect(c, "/jobs", notice(env.Message, typ, 0))
}

// uploadFailed shows the form again when the request itself could not be
// read. Errors echo already understands are passed through.
func (h *JobHandler) uploadFailed(c echo.Context, err error, heading, action, submit, id string, in ports.JobInput) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusBadRequest {
		return err
	}
	h.logger.Warn().Err(err).Msg("read job form")
	var n view.Notifier
	if he != nil {
		n.Error(fmt.Sprint(he.Message))
	} else {
		n.Error(msgUploadFailed)
	}
	form := view.JobFormFromInput(heading, action, submit, id, in)
	return h.render(c, http.StatusUnprocessableEntity, "job_form", heading, &n, form)
}

func editAction(id string) string {
	return "/jobs/" + url.PathEscape(id)
}

// failureText returns the user-facing message carried by err, or fallback.
func failureText(err error, fallback string) string {
	var f *domain.Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	return fallback
}
