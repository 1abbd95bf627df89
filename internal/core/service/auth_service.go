package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

const (
	msgServiceUnavailable = "Service unavailable. Please try again shortly."
	msgResetLinkFailed    = "Unable to send reset link."
	msgResetLinkSent      = "Password reset link sent to your email!"
	msgResetFailed        = "Password reset failed."
	msgLoginFailed        = "Login failed"
)

// AuthService validates the account forms locally and forwards valid ones
// to the backend. A form that fails validation never reaches the network.
type AuthService struct {
	api       ports.AuthAPI
	validator *FormValidator
	logger    zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(api ports.AuthAPI, validator *FormValidator, logger zerolog.Logger) *AuthService {
	return &AuthService{api: api, validator: validator, logger: logger}
}

func invalid[T any](msg string) domain.Envelope[T] {
	return domain.Fail[T](domain.KindValidation, msg)
}

// Login authenticates and stores the token in sess.
func (s *AuthService) Login(ctx context.Context, sess ports.Session, in ports.LoginInput) domain.Envelope[string] {
	in.Email = strings.TrimSpace(in.Email)
	if msg := s.validator.Login(in); msg != "" {
		return invalid[string](msg)
	}

	env := s.api.Login(ctx, sess, in)
	if !env.Success {
		if err := sess.ClearToken(ctx); err != nil {
			s.logger.Error().Err(err).Str("session", sess.ID()).Msg("clear token after failed login")
		}
		if env.Message == "" {
			env.Message = msgLoginFailed
		}
		s.logger.Info().Str("reason", env.Message).Msg("login rejected")
		return env
	}
	s.logger.Info().Str("session", sess.ID()).Msg("user logged in")
	return env
}

// Register creates an account. The confirmation field is checked here and
// not sent.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) domain.Envelope[domain.Account] {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = strings.TrimSpace(in.Email)
	if msg := s.validator.Register(in); msg != "" {
		return invalid[domain.Account](msg)
	}
	return s.api.Register(ctx, in)
}

// Logout ends the backend session and drops the staged job.
func (s *AuthService) Logout(ctx context.Context, sess ports.Session) domain.Envelope[struct{}] {
	env := s.api.Logout(ctx, sess)
	if !env.Success {
		return env
	}
	if err := sess.ClearStagedJob(ctx); err != nil {
		s.logger.Error().Err(err).Str("session", sess.ID()).Msg("clear staged job on logout")
	}
	s.logger.Info().Str("session", sess.ID()).Msg("user logged out")
	return env
}

// ForgotPassword requests a reset link for email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) domain.Envelope[struct{}] {
	email = strings.TrimSpace(email)
	if msg := s.validator.ForgotPassword(email); msg != "" {
		return invalid[struct{}](msg)
	}

	env := s.api.RequestPasswordReset(ctx, email)
	if !env.Success {
		switch {
		case strings.Contains(strings.ToLower(env.Message), "network"):
			return env.WithMessage(msgServiceUnavailable)
		case env.Message == "":
			return env.WithMessage(msgResetLinkFailed)
		}
		return env
	}
	return env.WithMessage(msgResetLinkSent)
}

// ResetPassword sets a new password from a reset link.
func (s *AuthService) ResetPassword(ctx context.Context, in ports.PasswordResetInput) domain.Envelope[struct{}] {
	in.NewPassword = strings.TrimSpace(in.NewPassword)
	in.ConfirmPassword = strings.TrimSpace(in.ConfirmPassword)
	if msg := s.validator.ResetPassword(in); msg != "" {
		return invalid[struct{}](msg)
	}

	env := s.api.ConfirmPasswordReset(ctx, in)
	if !env.Success && env.Message == "" {
		return env.WithMessage(msgResetFailed)
	}
	return env
}
