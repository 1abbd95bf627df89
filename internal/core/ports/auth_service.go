package ports

import (
	"context"

	"github.com/sameboat/jobsheet/internal/core/domain"
)

// AuthService validates account forms and forwards them to the backend.
type AuthService interface {
	Login(ctx context.Context, sess Session, in LoginInput) domain.Envelope[string]
	Register(ctx context.Context, in RegisterInput) domain.Envelope[domain.Account]
	Logout(ctx context.Context, sess Session) domain.Envelope[struct{}]
	ForgotPassword(ctx context.Context, email string) domain.Envelope[struct{}]
	ResetPassword(ctx context.Context, in PasswordResetInput) domain.Envelope[struct{}]
}
