package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a backend call did not succeed.
type FailureKind string

const (
	KindNetwork      FailureKind = "network"
	KindUnauthorized FailureKind = "unauthorized"
	KindValidation   FailureKind = "validation"
	KindServer       FailureKind = "server"
	KindMalformed    FailureKind = "malformed_response"
	KindSession      FailureKind = "session"
)

var (
	ErrNetwork           = errors.New("backend unreachable")
	ErrUnauthorized      = errors.New("not authorized")
	ErrValidation        = errors.New("validation failed")
	ErrServer            = errors.New("backend server error")
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrSession           = errors.New("session storage failure")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotStaged      = errors.New("job not staged for update")
)

var kindErrors = map[FailureKind]error{
	KindNetwork:      ErrNetwork,
	KindUnauthorized: ErrUnauthorized,
	KindValidation:   ErrValidation,
	KindServer:       ErrServer,
	KindMalformed:    ErrMalformedResponse,
	KindSession:      ErrSession,
}

// Failure is the error form of a failed Envelope. It unwraps to the
// sentinel matching its kind so callers can use errors.Is.
type Failure struct {
	Kind    FailureKind
	Status  int
	Message string
}

func (f *Failure) Error() string {
	if f.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return kindErrors[f.Kind]
}

// Envelope is the normalized result of every backend call:
// {success, data, message}. Data is meaningful only when Success is true.
type Envelope[T any] struct {
	Success bool        `json:"success"`
	Data    T           `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Kind    FailureKind `json:"-"`
	Status  int         `json:"-"`
}

// Ok wraps data in a successful envelope.
func Ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Fail builds a failed envelope.
func Fail[T any](kind FailureKind, message string) Envelope[T] {
	return Envelope[T]{Kind: kind, Message: message}
}

// WithMessage returns a copy of e carrying msg.
func (e Envelope[T]) WithMessage(msg string) Envelope[T] {
	e.Message = msg
	return e
}

// WithStatus returns a copy of e carrying the backend HTTP status.
func (e Envelope[T]) WithStatus(status int) Envelope[T] {
	e.Status = status
	return e
}

// Err returns nil for a successful envelope and a *Failure otherwise.
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	return &Failure{Kind: e.Kind, Status: e.Status, Message: e.Message}
}

// Recast carries a failed envelope over to another data type.
func Recast[T, U any](e Envelope[T]) Envelope[U] {
	return Envelope[U]{Success: false, Message: e.Message, Kind: e.Kind, Status: e.Status}
}
