package view

import (
	"time"

	"github.com/sameboat/jobsheet/internal/core/domain"
)

// Notifier collects the toasts of one response. The zero value is ready
// to use.
type Notifier struct {
	toasts []domain.Toast
}

// Show queues a toast. A non-positive duration means the default.
func (n *Notifier) Show(message string, typ domain.NoticeType, durationMs int) {
	if message == "" {
		return
	}
	if !typ.Valid() {
		typ = domain.NoticeInfo
	}
	if durationMs <= 0 {
		durationMs = domain.DefaultNoticeDuration
	}
	n.toasts = append(n.toasts, domain.Toast{
		Message:  message,
		Type:     typ,
		Duration: time.Duration(durationMs) * time.Millisecond,
	})
}

// Error queues an error toast with the default duration.
func (n *Notifier) Error(message string) { n.Show(message, domain.NoticeError, 0) }

// Success queues a success toast with the default duration.
func (n *Notifier) Success(message string) { n.Show(message, domain.NoticeSuccess, 0) }

// ShowFlash turns a flash read on page load into a toast.
func (n *Notifier) ShowFlash(f *domain.Flash) {
	if f == nil {
		return
	}
	n.Show(f.Message, f.Type, f.Duration)
}

// Toasts returns the queued toasts in order.
func (n *Notifier) Toasts() []domain.Toast {
	return n.toasts
}
