package api

import (
	"context"

	"libreria/internal/domain/session"
)

// Me returns the current session identity.
func (c *Client) Me(ctx context.Context) (session.Identity, error) {
	var id session.Identity
	err := c.get(ctx, "/api/v1/auth/me", nil, &id)
	return id, err
}

// AdminCheck reports whether the current session belongs to an
// administrator.
func (c *Client) AdminCheck(ctx context.Context) (bool, error) {
	var out struct {
		Admin bool `json:"admin"`
	}
	if err := c.get(ctx, "/api/v1/admin/check", nil, &out); err != nil {
		return false, err
	}
	return out.Admin, nil
}

// Login starts a session for the given credentials. token is the
// single-use human-verification token for the login form.
func (c *Client) Login(ctx context.Context, email, password, token string) error {
	body := struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Recaptcha string `json:"recaptcha,omitempty"`
	}{email, password, token}
	return c.post(ctx, "/api/v1/auth/login", body, nil)
}

// Register creates a new account. token is the single-use
// human-verification token for the registration form.
func (c *Client) Register(ctx context.Context, nombre, email, password, token string) error {
	body := struct {
		Nombre    string `json:"nombre"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Recaptcha string `json:"recaptcha,omitempty"`
	}{nombre, email, password, token}
	return c.post(ctx, "/api/v1/auth/register", body, nil)
}

// ResendVerification asks the backend to send a fresh verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{email}
	return c.post(ctx, "/api/v1/auth/resend-verification", body, nil)
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/v1/auth/logout", nil, nil)
}
