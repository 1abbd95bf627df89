package domain

import "time"

// NoticeType is the severity of a flash or toast.
type NoticeType string

const (
	NoticeInfo    NoticeType = "info"
	NoticeSuccess NoticeType = "success"
	NoticeError   NoticeType = "error"
	NoticeWarning NoticeType = "warning"
)

// DefaultNoticeDuration is how long a toast stays up when no duration is given.
const DefaultNoticeDuration = 3000

// Valid reports whether t is one of the known notice types.
func (t NoticeType) Valid() bool {
	switch t {
	case NoticeInfo, NoticeSuccess, NoticeError, NoticeWarning:
		return true
	}
	return false
}

// Flash is a notice queued before a redirect and shown once on the next page.
// Duration is in milliseconds.
type Flash struct {
	Message  string     `json:"message"`
	Type     NoticeType `json:"type"`
	Duration int        `json:"duration"`
}

// Normalize fills in the defaults for type and duration.
func (f Flash) Normalize() Flash {
	if !f.Type.Valid() {
		f.Type = NoticeInfo
	}
	if f.Duration <= 0 {
		f.Duration = DefaultNoticeDuration
	}
	return f
}

// Toast is a notice rendered into the current response.
type Toast struct {
	Message  string
	Type     NoticeType
	Duration time.Duration
}
