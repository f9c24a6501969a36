package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"libreria/internal/adapters/api"
	"libreria/internal/domain/session"
)

// AuthAPI defines the backend surface needed by the session manager.
type AuthAPI interface {
	Me(ctx context.Context) (session.Identity, error)
	AdminCheck(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password, token string) error
	Register(ctx context.Context, nombre, email, password, token string) error
	ResendVerification(ctx context.Context, email string) error
	Logout(ctx context.Context) error
}

// ChallengeResetter resets a form's verification widget so the next
// attempt gets a fresh single-use token.
type ChallengeResetter interface {
	Reset(widgetID string)
}

// UserAffordance is the header affordance that shows either the signed-in
// user (action: open profile) or a guest button (action: open the auth
// surface).
type UserAffordance interface {
	ShowUser(nombre string)
	ShowGuest()
}

// AuthSurface is the login/registration surface.
type AuthSurface interface {
	CloseAuth()
	SwitchToLogin()
	ShowLoginError(msg string)
	ShowLoginNotice(msg string)
	ShowRegisterError(msg string)
	ShowRegisterSuccess(msg string)
	OfferResendVerification(email string)
}

// Local validation errors: surfaced immediately, no request sent.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrMissingFields      = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingChallenge   = errors.New("complete the verification challenge first")
	ErrResendInFlight     = errors.New("a verification email is already being sent")
)

// SessionManager tracks the authenticated identity and drives the
// login/registration/logout flows.
type SessionManager struct {
	API        AuthAPI
	Challenge  ChallengeResetter
	Affordance UserAffordance
	Surface    AuthSurface
	Nav        Navigator

	mu         sync.Mutex
	identity   session.Identity
	resendBusy bool
}

// LoginInput carries a login form submission. WidgetID identifies the
// form's verification widget; empty means the form declares no challenge.
type LoginInput struct {
	Email    string
	Password string
	Token    string
	WidgetID string
}

// RegisterInput carries a registration form submission.
type RegisterInput struct {
	Nombre    string
	Email     string
	Password  string
	Password2 string
	Token     string
	WidgetID  string
}

// Identity returns the last refreshed identity.
func (m *SessionManager) Identity() session.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Refresh queries the current identity and rewires the user affordance.
// Failure is absorbed: the prior affordance is left as-is and no error
// reaches the caller.
func (m *SessionManager) Refresh(ctx context.Context) {
	id, err := m.API.Me(ctx)
	if err != nil {
		slog.Info("auth_event", "event", "refresh_failed", "error", err.Error())
		return
	}

	m.mu.Lock()
	m.identity = id
	m.mu.Unlock()

	if id.Authenticated {
		m.Affordance.ShowUser(id.DisplayName())
	} else {
		m.Affordance.ShowGuest()
	}
}

// Login submits the login form. Local validation failures return before
// any network call; server failures surface the server message and, for
// unverified accounts, arm the one-shot resend-verification action. The
// challenge widget is reset after every submitted attempt.
func (m *SessionManager) Login(ctx context.Context, input LoginInput) error {
	if input.Email == "" || input.Password == "" {
		m.Surface.ShowLoginError(ErrMissingCredentials.Error())
		return ErrMissingCredentials
	}
	if input.WidgetID != "" && input.Token == "" {
		m.Surface.ShowLoginError(ErrMissingChallenge.Error())
		return ErrMissingChallenge
	}

	err := m.API.Login(ctx, input.Email, input.Password, input.Token)
	m.Challenge.Reset(input.WidgetID)

	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "error", err.Error())
		m.Surface.ShowLoginError(err.Error())
		if isUnverified(err) {
			m.Surface.OfferResendVerification(input.Email)
		}
		return err
	}

	slog.Info("auth_event", "event", "login_success", "email", input.Email)
	m.Surface.CloseAuth()
	m.Refresh(ctx)

	// Best-effort admin check; redirect failures are swallowed.
	if admin, err := m.API.AdminCheck(ctx); err == nil && admin {
		m.mu.Lock()
		m.identity.Admin = true
		m.mu.Unlock()
		m.Nav.Redirect("/admin")
	}
	return nil
}

// Register submits the registration form. All fields must be non-empty
// and the passwords must match before any network call. The challenge
// widget is reset after every submitted attempt regardless of outcome.
func (m *SessionManager) Register(ctx context.Context, input RegisterInput) error {
	if input.Nombre == "" || input.Email == "" || input.Password == "" || input.Password2 == "" {
		m.Surface.ShowRegisterError(ErrMissingFields.Error())
		return ErrMissingFields
	}
	if input.Password != input.Password2 {
		m.Surface.ShowRegisterError(ErrPasswordMismatch.Error())
		return ErrPasswordMismatch
	}
	if input.WidgetID != "" && input.Token == "" {
		m.Surface.ShowRegisterError(ErrMissingChallenge.Error())
		return ErrMissingChallenge
	}

	err := m.API.Register(ctx, input.Nombre, input.Email, input.Password, input.Token)
	m.Challenge.Reset(input.WidgetID)

	if err != nil {
		slog.Info("auth_event", "event", "register_failed", "email", input.Email, "error", err.Error())
		m.Surface.ShowRegisterError(err.Error())
		return err
	}

	slog.Info("auth_event", "event", "register_success", "email", input.Email)
	m.Surface.ShowRegisterSuccess("Registro exitoso. Revisa tu correo para verificar la cuenta.")
	m.Surface.SwitchToLogin()
	return nil
}

// ResendVerification triggers a fresh verification email. The action is
// disabled for the duration of its own request.
func (m *SessionManager) ResendVerification(ctx context.Context, email string) error {
	m.mu.Lock()
	if m.resendBusy {
		m.mu.Unlock()
		return ErrResendInFlight
	}
	m.resendBusy = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.resendBusy = false
		m.mu.Unlock()
	}()

	if err := m.API.ResendVerification(ctx, email); err != nil {
		slog.Info("auth_event", "event", "resend_failed", "email", email, "error", err.Error())
		m.Surface.ShowLoginError(err.Error())
		return err
	}
	slog.Info("auth_event", "event", "resend_sent", "email", email)
	m.Surface.ShowLoginNotice("Correo de verificación reenviado.")
	return nil
}

// Logout posts a best-effort logout and reloads identity state
// unconditionally afterward.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.API.Logout(ctx); err != nil {
		slog.Info("auth_event", "event", "logout_failed", "error", err.Error())
	}
	m.mu.Lock()
	m.identity = session.Identity{}
	m.mu.Unlock()
	m.Refresh(ctx)
}

// isUnverified reports whether a login failure indicates an unverified
// account (the server answers 403 with a "verificar" message).
func isUnverified(err error) bool {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == 403 && strings.Contains(strings.ToLower(apiErr.Message), "verific")
}
