package view

import (
	"strings"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

// Page is the data every template receives.
type Page struct {
	Title    string
	Theme    string
	LoggedIn bool
	Identity domain.Identity
	Toasts   []domain.Toast
	CSRF     string
	Data     any
}

// Dark reports whether the dark theme is selected.
func (p Page) Dark() bool { return p.Theme == domain.ThemeDark }

// LoginForm keeps the typed email when the form is shown again.
type LoginForm struct {
	Email string
}

// RegisterForm keeps the typed values except passwords.
type RegisterForm struct {
	FirstName string
	LastName  string
	UserName  string
	Email     string
}

// ResetForm carries the reset-link parameters into the form.
type ResetForm struct {
	UID   string
	Token string
}

// JobForm drives both the add and the edit page.
type JobForm struct {
	Heading        string
	Action         string
	Submit         string
	Job            domain.Job
	Skills         string
	Notes          string
	EmploymentOpts []string
	StatusOpts     []string
}

var (
	employmentTypes = []string{domain.EmploymentFullTime, domain.EmploymentPartTime, domain.EmploymentInternship, domain.EmploymentContract}
	statuses        = []string{domain.StatusSaved, domain.StatusApplied, domain.StatusShortlisted, domain.StatusInterview, domain.StatusOffer, domain.StatusRejected}
)

// NewJobForm prefills a job form. job may be the zero value.
func NewJobForm(heading, action, submit string, job domain.Job) JobForm {
	return JobForm{
		Heading:        heading,
		Action:         action,
		Submit:         submit,
		Job:            job,
		Skills:         strings.Join(job.Skills, ", "),
		Notes:          strings.Join(job.Notes, ", "),
		EmploymentOpts: employmentTypes,
		StatusOpts:     statuses,
	}
}

// JobFormFromInput rebuilds a form from submitted values so they survive a
// failed validation.
func JobFormFromInput(heading, action, submit, id string, in ports.JobInput) JobForm {
	job := domain.Job{
		ID:                 id,
		Title:              in.Title,
		Company:            in.Company,
		Location:           in.Location,
		EmploymentType:     in.EmploymentType,
		ExperienceRequired: in.ExperienceRequired,
		JobURL:             in.JobURL,
		AppliedDate:        in.AppliedDate,
		Skills:             in.Skills,
		Notes:              in.Notes,
		Status:             in.Status,
		IsActive:           in.IsActive == nil || *in.IsActive,
	}
	return NewJobForm(heading, action, submit, job)
}

// Sheet is the job list page.
type Sheet struct {
	Query string
	Total int
	Stats domain.Stats
	Cards []Card
	Empty string
}

// NewSheet builds the list page from a job sheet.
func NewSheet(s ports.JobSheet) Sheet {
	return Sheet{
		Query: s.Query,
		Total: s.Total,
		Stats: s.Stats,
		Cards: Cards(s.Jobs),
		Empty: EmptyJobsText,
	}
}

// ErrorPage is shown for failures outside the JSON API.
type ErrorPage struct {
	Code    int
	Message string
}
