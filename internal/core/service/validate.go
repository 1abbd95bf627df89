package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nbutton23/zxcvbn-go"

	"github.com/sameboat/jobsheet/internal/core/ports"
)

// Form messages shown to the user when local validation fails.
const (
	msgLoginRequired    = "Email and password are required"
	msgRegisterRequired = "All fields must be filled before registration."
	msgInvalidEmail     = "Please enter a valid email address."
	msgPasswordLength   = "Password must be at least 8 characters long."
	msgPasswordUpper    = "Password must contain at least one uppercase letter."
	msgPasswordLower    = "Password must contain at least one lowercase letter."
	msgPasswordDigit    = "Password must contain at least one number."
	msgPasswordSpecial  = "Password must contain at least one special character."
	msgPasswordWeak     = "Password is too weak. Try making it more unique."
	msgPasswordMismatch = "Password and confirm password do not match."
	msgForgotRequired   = "Please enter your email"
	msgResetRequired    = "Password fields cannot be empty."
	msgResetMismatch    = "Passwords do not match."
	msgResetLinkInvalid = "Invalid or expired password reset link."
	msgJobFormEmpty     = "Please fill the form before submitting."
)

const (
	// minPasswordScore is the lowest accepted zxcvbn score (0-4).
	minPasswordScore = 3
	specialChars     = `!@#$%^&*()_-+=<>?{}[]~`
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var jobLabels = map[string]string{
	"Title":              "Job title",
	"Company":            "Company name",
	"Location":           "Location",
	"ExperienceRequired": "Experience Required",
}

var tagMessages = map[string]string{
	"jsemail":   msgInvalidEmail,
	"min":       msgPasswordLength,
	"pwupper":   msgPasswordUpper,
	"pwlower":   msgPasswordLower,
	"pwdigit":   msgPasswordDigit,
	"pwspecial": msgPasswordSpecial,
	"pwstrong":  msgPasswordWeak,
	"eqfield":   msgPasswordMismatch,
}

// FormValidator checks the account and job forms before anything is sent
// to the backend. Each check returns the single message to show, or ""
// when the form is valid.
type FormValidator struct {
	v *validator.Validate
}

// NewFormValidator registers the password and email rules used by the
// registration form.
func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("jsemail", func(fl validator.FieldLevel) bool { return emailPattern.MatchString(fl.Field().String()) })
	must("pwupper", hasRune(func(r rune) bool { return r >= 'A' && r <= 'Z' }))
	must("pwlower", hasRune(func(r rune) bool { return r >= 'a' && r <= 'z' }))
	must("pwdigit", hasRune(func(r rune) bool { return r >= '0' && r <= '9' }))
	must("pwspecial", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), specialChars)
	})
	must("pwstrong", func(fl validator.FieldLevel) bool {
		return zxcvbn.PasswordStrength(fl.Field().String(), nil).Score >= minPasswordScore
	})
	return &FormValidator{v: v}
}

func hasRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), pred) >= 0
	}
}

// Struct exposes the underlying validator for request binding.
func (f *FormValidator) Struct(i any) error {
	return f.v.Struct(i)
}

func (f *FormValidator) fieldErrors(i any) validator.ValidationErrors {
	var ve validator.ValidationErrors
	if err := f.v.Struct(i); err != nil && errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Login requires both fields.
func (f *FormValidator) Login(in ports.LoginInput) string {
	if strings.TrimSpace(in.Email) == "" || len(f.fieldErrors(in)) > 0 {
		return msgLoginRequired
	}
	return ""
}

// Register checks that every field is filled, then the email format, the
// password rules in order and finally the confirmation.
func (f *FormValidator) Register(in ports.RegisterInput) string {
	ve := f.fieldErrors(blankToEmpty(in))
	if len(ve) == 0 {
		return ""
	}
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return msgRegisterRequired
		}
	}
	if msg, ok := tagMessages[ve[0].Tag()]; ok {
		return msg
	}
	return msgRegisterRequired
}

// blankToEmpty returns a copy of in with whitespace-only strings emptied,
// so they fail "required" like empty ones.
func blankToEmpty(in ports.RegisterInput) ports.RegisterInput {
	rv := reflect.ValueOf(&in).Elem()
	for i := 0; i < rv.NumField(); i++ {
		fv := rv.Field(i)
		if fv.Kind() == reflect.String && strings.TrimSpace(fv.String()) == "" {
			fv.SetString("")
		}
	}
	return in
}

// ForgotPassword requires an email.
func (f *FormValidator) ForgotPassword(email string) string {
	if strings.TrimSpace(email) == "" {
		return msgForgotRequired
	}
	return ""
}

// ResetPassword checks the two password fields, then the link parameters.
func (f *FormValidator) ResetPassword(in ports.PasswordResetInput) string {
	switch {
	case strings.TrimSpace(in.NewPassword) == "" || strings.TrimSpace(in.ConfirmPassword) == "":
		return msgResetRequired
	case strings.TrimSpace(in.NewPassword) != strings.TrimSpace(in.ConfirmPassword):
		return msgResetMismatch
	case in.UID == "" || in.Token == "":
		return msgResetLinkInvalid
	}
	return ""
}

// Job rejects an entirely empty form, then reports the first missing
// required field by its label.
func (f *FormValidator) Job(in ports.JobInput) string {
	if in.IsEmpty() {
		return msgJobFormEmpty
	}
	for _, fe := range f.fieldErrors(in) {
		if fe.Tag() != "required" {
			continue
		}
		label, ok := jobLabels[fe.StructField()]
		if !ok {
			label = fe.Field()
		}
		return label + " is required"
	}
	return ""
}
