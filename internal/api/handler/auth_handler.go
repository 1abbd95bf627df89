package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

const (
	msgWelcomeBack   = "Welcome back! You’re now logged in"
	msgRegistered    = "You’ve registered successfully! Please log in."
	msgLoggedOut     = "Logout successful"
	msgLogoutFailed  = "Logout failed"
	msgResetComplete = "Password reset successful."
)

// AuthHandler serves the account pages.
type AuthHandler struct {
	pages
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService, flashes ports.FlashStore, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		pages:       pages{flashes: flashes, logger: logger},
		authService: authService,
	}
}

type loginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type registerRequest struct {
	FirstName       string `form:"first_name"`
	LastName        string `form:"last_name"`
	UserName        string `form:"user_name"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

// LoginForm renders GET /login. Logged-in visitors go straight to their jobs.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if sess.IsLoggedIn(c.Request().Context()) {
		return c.Redirect(http.StatusSeeOther, "/jobs")
	}
	return h.render(c, http.StatusOK, "login", "Login", nil, view.LoginForm{})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	ctx := c.Request().Context()
	env := h.authService.Login(ctx, sess, ports.LoginInput{Email: req.Email, Password: req.Password})
	if !env.Success {
		var n view.Notifier
		n.Error(env.Message)
		return h.render(c, http.StatusUnprocessableEntity, "login", "Login", &n, view.LoginForm{Email: req.Email})
	}
	if err := sess.Rotate(ctx); err != nil {
		h.logger.Error().Err(err).Str("session", sess.ID()).Msg("rotate session after login")
		_ = sess.ClearToken(ctx)
		_ = sess.ClearCookies(ctx)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "session unavailable")
	}
	return h.redirect(c, "/jobs", notice(msgWelcomeBack, domain.NoticeSuccess, 4000))
}

// RegisterForm renders GET /register.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "register", "Register", nil, view.RegisterForm{})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	env := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		UserName:        req.UserName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if !env.Success {
		var n view.Notifier
		n.Error(env.Message)
		form := view.RegisterForm{FirstName: req.FirstName, LastName: req.LastName, UserName: req.UserName, Email: req.Email}
		return h.render(c, http.StatusUnprocessableEntity, "register", "Register", &n, form)
	}
	return h.redirect(c, "/login", notice(msgRegistered, domain.NoticeSuccess, 0))
}

// ForgotPasswordForm renders GET /forgot-password.
func (h *AuthHandler) ForgotPasswordForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "forgot_password", "Forgot password", nil, nil)
}

// ForgotPassword handles POST /forgot-password. The page is shown again
// with the outcome as a toast.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	env := h.authService.ForgotPassword(c.Request().Context(), c.FormValue("email"))

	var n view.Notifier
	status := http.StatusOK
	if env.Success {
		n.Show(env.Message, domain.NoticeSuccess, 4000)
	} else {
		n.Error(env.Message)
		status = http.StatusUnprocessableEntity
	}
	return h.render(c, status, "forgot_password", "Forgot password", &n, nil)
}

// ResetPasswordForm renders GET /reset-password?uid=&token=.
func (h *AuthHandler) ResetPasswordForm(c echo.Context) error {
	form := view.ResetForm{UID: c.QueryParam("uid"), Token: c.QueryParam("token")}
	return h.render(c, http.StatusOK, "reset_password", "Reset password", nil, form)
}

// ResetPassword handles POST /reset-password?uid=&token=.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	in := ports.PasswordResetInput{
		UID:             c.QueryParam("uid"),
		Token:           c.QueryParam("token"),
		NewPassword:     c.FormValue("new_password"),
		ConfirmPassword: c.FormValue("confirm_password"),
	}

	env := h.authService.ResetPassword(c.Request().Context(), in)
	if !env.Success {
		var n view.Notifier
		n.Error(env.Message)
		form := view.ResetForm{UID: in.UID, Token: in.Token}
		return h.render(c, http.StatusUnprocessableEntity, "reset_password", "Reset password", &n, form)
	}
	msg := env.Message
	if msg == "" {
		msg = msgResetComplete
	}
	return h.redirect(c, "/login", notice(msg, domain.NoticeSuccess, 0))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	env := h.authService.Logout(c.Request().Context(), sess)
	if !env.Success {
		h.logger.Warn().Str("session", sess.ID()).Str("reason", env.Message).Msg("logout failed")
		return h.redirect(c, sameOriginPath(c.Request().Referer()), notice(msgLogoutFailed, domain.NoticeError, 0))
	}
	return h.redirect(c, "/login", notice(msgLoggedOut, domain.NoticeSuccess, 4000))
}
