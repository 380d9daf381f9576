package models

import "strings"

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

// Identifier is what the token endpoint expects as "username".
func (r LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

func (r LoginRequest) Validate() *ValidationError {
	if r.Identifier() == "" {
		return invalid("email", "Email or username is required.")
	}
	if r.Email != "" && !validEmail(r.Email) {
		return invalid("email", "Please enter a valid email address.")
	}
	if r.Password == "" {
		return invalid("password", "Password is required.")
	}
	return nil
}

// Session is a bearer token plus the little profile we could read.
// It lives only for the response that carries it.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type SessionUser struct {
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
