package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

const (
	msgLoginUnavailable    = "Login Service is unavailable right now. Please try after sometime"
	msgRegisterUnavailable = "Register Service is unavailable right now. Please try after sometime"
	msgLogoutFailed        = "Logout failed. Please try again."
	msgResetLinkFailed     = "Failed to send reset password link"
	msgNetworkRetry        = "Network error, please try again"
	msgNoToken             = "No token returned from server"
	msgRegisterFailed      = "Something went wrong"
	msgResetSuccess        = "Password reset successful."
)

// Auth implements ports.AuthAPI on top of a Client.
type Auth struct {
	client *Client
}

// NewAuth returns the account endpoints of client.
func NewAuth(client *Client) *Auth {
	return &Auth{client: client}
}

// Login posts the credentials and stores the returned token in creds.
func (a *Auth) Login(ctx context.Context, creds ports.Credentials, in ports.LoginInput) domain.Envelope[string] {
	req, err := jsonRequest("auth.login", http.MethodPost, "/login/", in)
	if err != nil {
		return domain.Fail[string](domain.KindValidation, err.Error())
	}
	resp, err := a.client.send(ctx, creds, req, "")
	if err != nil {
		a.client.log.Error().Err(err).Msg("login request failed")
		return domain.Fail[string](domain.KindNetwork, msgLoginUnavailable)
	}

	if !resp.ok() {
		return domain.Fail[string](kindForStatus(resp.status), loginFailure(resp)).WithStatus(resp.status)
	}
	if !resp.isJSON() {
		return domain.Fail[string](domain.KindMalformed, msgInvalidFormat).WithStatus(resp.status)
	}

	var body tokenBody
	if err := json.Unmarshal(bytes.TrimSpace(resp.body), &body); err != nil {
		a.client.log.Error().Err(err).Msg("decode login response")
		return domain.Fail[string](domain.KindMalformed, msgInvalidJSON).WithStatus(resp.status)
	}
	token := body.Token
	if token == "" {
		token = body.Access
	}
	if token == "" {
		return domain.Fail[string](domain.KindMalformed, msgNoToken).WithStatus(resp.status)
	}

	if err := creds.SetToken(ctx, token); err != nil {
		a.client.log.Error().Err(err).Msg("persist login token")
		return domain.Fail[string](domain.KindSession, msgSessionStore)
	}
	return domain.Ok(token).WithMessage("Login successful")
}

// loginFailure prefers the server's message and falls back to a text
// chosen by status when the body is not JSON.
func loginFailure(resp *response) string {
	var obj map[string]json.RawMessage
	if json.Unmarshal(resp.body, &obj) == nil {
		if msg := firstField(resp.body, "message", "detail"); msg != "" {
			return msg
		}
		return "Login failed"
	}
	switch resp.status {
	case http.StatusBadRequest:
		return "Invalid email or password"
	case http.StatusUnauthorized:
		return "Unauthorized, please login again"
	case http.StatusInternalServerError:
		return "Server error, try later"
	default:
		return fmt.Sprintf("Server error (%d)", resp.status)
	}
}

// Register creates an account. Field errors returned by the backend are
// joined into one message.
func (a *Auth) Register(ctx context.Context, in ports.RegisterInput) domain.Envelope[domain.Account] {
	req, err := jsonRequest("auth.register", http.MethodPost, "/register-user/", in)
	if err != nil {
		return domain.Fail[domain.Account](domain.KindValidation, err.Error())
	}
	resp, err := a.client.send(ctx, nil, req, "")
	if err != nil {
		a.client.log.Error().Err(err).Msg("register request failed")
		return domain.Fail[domain.Account](domain.KindNetwork, msgRegisterUnavailable)
	}

	if !resp.ok() {
		return domain.Fail[domain.Account](kindForStatus(resp.status), joinValidation(resp.body, msgRegisterFailed)).
			WithStatus(resp.status)
	}

	var account domain.Account
	if len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, &account); err != nil {
			a.client.log.Warn().Err(err).Msg("decode register response")
		}
	}
	env := domain.Ok(account)
	env.Status = resp.status
	return env
}

// Logout ends the backend session. On success the token and the backend
// cookies are dropped from creds.
func (a *Auth) Logout(ctx context.Context, creds ports.Credentials) domain.Envelope[struct{}] {
	req := Request{Name: "auth.logout", Method: http.MethodPost, Path: "/logout", ContentType: mimeJSON}
	resp, err := a.client.send(ctx, creds, req, "")
	if err != nil {
		a.client.log.Error().Err(err).Msg("logout request failed")
		return domain.Fail[struct{}](domain.KindNetwork, "Logout failed. Please try after sometime")
	}
	if !resp.ok() {
		return domain.Fail[struct{}](kindForStatus(resp.status), msgLogoutFailed).WithStatus(resp.status)
	}

	if err := creds.ClearToken(ctx); err != nil {
		a.client.log.Error().Err(err).Msg("clear token on logout")
	}
	if err := creds.ClearCookies(ctx); err != nil {
		a.client.log.Error().Err(err).Msg("clear cookies on logout")
	}
	return domain.Ok(struct{}{}).WithMessage("Logout successful.")
}

// RequestPasswordReset asks the backend to mail a reset link.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) domain.Envelope[struct{}] {
	req, err := jsonRequest("auth.reset_link", http.MethodPost, "/send-reset-password-link", map[string]string{"email": email})
	if err != nil {
		return domain.Fail[struct{}](domain.KindValidation, err.Error())
	}
	resp, err := a.client.send(ctx, nil, req, "")
	if err != nil {
		a.client.log.Error().Err(err).Msg("reset link request failed")
		return domain.Fail[struct{}](domain.KindNetwork, msgNetworkRetry)
	}
	if !resp.ok() {
		msg := firstField(resp.body, "message")
		if msg == "" {
			msg = msgResetLinkFailed
		}
		return domain.Fail[struct{}](kindForStatus(resp.status), msg).WithStatus(resp.status)
	}
	return domain.Ok(struct{}{}).WithMessage(firstField(resp.body, "message"))
}

// ConfirmPasswordReset sets a new password using the uid and token of a
// reset link.
func (a *Auth) ConfirmPasswordReset(ctx context.Context, in ports.PasswordResetInput) domain.Envelope[struct{}] {
	path := "/reset-password/" + url.PathEscape(in.UID) + "/" + url.PathEscape(in.Token)
	req, err := jsonRequest("auth.reset_password", http.MethodPost, path, in)
	if err != nil {
		return domain.Fail[struct{}](domain.KindValidation, err.Error())
	}
	resp, err := a.client.send(ctx, nil, req, "")
	if err != nil {
		a.client.log.Error().Err(err).Msg("reset password request failed")
		return domain.Fail[struct{}](domain.KindNetwork, msgNetworkRetry)
	}
	if !resp.ok() {
		return domain.Fail[struct{}](kindForStatus(resp.status), resetMessage(resp.body)).WithStatus(resp.status)
	}
	return domain.Ok(struct{}{}).WithMessage(msgResetSuccess)
}
