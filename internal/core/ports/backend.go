package ports

import (
	"context"

	"github.com/sameboat/jobsheet/internal/core/domain"
)

// FileUpload is an optional document attached to a job form.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// JobInput carries the job form fields. Skills and Notes are sent as
// repeated form keys.
type JobInput struct {
	Title              string `validate:"required"`
	Company            string `validate:"required"`
	Location           string `validate:"required"`
	ExperienceRequired string `validate:"required"`
	EmploymentType     string
	JobURL             string
	AppliedDate        string
	Status             string
	IsActive           *bool
	Skills             []string
	Notes              []string
	Resume             *FileUpload
	CoverLetter        *FileUpload
}

// IsEmpty reports whether no field of the form was filled in.
func (in JobInput) IsEmpty() bool {
	for _, v := range []string{in.Title, in.Company, in.Location, in.ExperienceRequired,
		in.EmploymentType, in.JobURL, in.AppliedDate, in.Status} {
		if v != "" {
			return false
		}
	}
	return len(in.Skills) == 0 && len(in.Notes) == 0 && in.Resume == nil && in.CoverLetter == nil
}

// LoginInput carries the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput carries the registration form. ConfirmPassword is checked
// locally and never sent.
type RegisterInput struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	UserName        string `json:"user_name" validate:"required"`
	Email           string `json:"email" validate:"required,jsemail"`
	Password        string `json:"password" validate:"required,min=8,pwupper,pwlower,pwdigit,pwspecial,pwstrong"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"`
}

// PasswordResetInput carries the reset form plus the link parameters.
type PasswordResetInput struct {
	UID             string `json:"-"`
	Token           string `json:"-"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AuthAPI is the backend's account surface.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials, in LoginInput) domain.Envelope[string]
	Register(ctx context.Context, in RegisterInput) domain.Envelope[domain.Account]
	Logout(ctx context.Context, creds Credentials) domain.Envelope[struct{}]
	RequestPasswordReset(ctx context.Context, email string) domain.Envelope[struct{}]
	ConfirmPasswordReset(ctx context.Context, in PasswordResetInput) domain.Envelope[struct{}]
}

// JobsAPI is the backend's job CRUD surface. Every call is authorized.
type JobsAPI interface {
	CreateJob(ctx context.Context, creds Credentials, in JobInput) domain.Envelope[domain.Job]
	ListJobs(ctx context.Context, creds Credentials) domain.Envelope[[]domain.Job]
	UpdateJob(ctx context.Context, creds Credentials, id string, in JobInput) domain.Envelope[domain.Job]
	DeleteJob(ctx context.Context, creds Credentials, id string) domain.Envelope[struct{}]
}
