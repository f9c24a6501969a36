package session

// User is the authenticated user's public profile.
type User struct {
	Nombre     string `json:"nombre"`
	Email      string `json:"email"`
	Verificado bool   `json:"verificado"`
}

// Identity is the current session's identity as reported by the backend.
// Admin is resolved by a separate check, only after a successful login.
type Identity struct {
	Authenticated bool `json:"authenticated"`
	User          User `json:"user"`
	Admin         bool `json:"-"`
}

// DisplayName returns the user's name, falling back to the email and then
// a generic label.
func (i Identity) DisplayName() string {
	if i.User.Nombre != "" {
		return i.User.Nombre
	}
	if i.User.Email != "" {
		return i.User.Email
	}
	return "Usuario"
}
