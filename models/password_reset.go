package models

import (
	"net/url"
	"strings"

	"storefront/tools"
)

// ResetTicket is scraped from the reset form and is good for exactly one
// submission. It is never stored or reused.
type ResetTicket struct {
	Login  string
	Key    string
	Nonce  string
	Cookie string
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r ForgotPasswordRequest) Validate() *ValidationError {
	if r.Email == "" {
		return invalid("email", "Email is required.")
	} else if !validEmail(r.Email) {
		return invalid("email", "Please enter a valid email address.")
	}
	return nil
}

// ResetPasswordRequest accepts both the short names and the rp_* names the
// emailed link uses.
type ResetPasswordRequest struct {
	Key       string `json:"key"`
	RpKey     string `json:"rp_key"`
	Login     string `json:"login"`
	RpLogin   string `json:"rp_login"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (r *ResetPasswordRequest) Normalize() {
	if r.Key == "" {
		r.Key = r.RpKey
	}
	if r.Login == "" {
		r.Login = r.RpLogin
	}
	r.Key = strings.TrimSpace(decodeParam(r.Key))
	r.Login = strings.TrimSpace(decodeParam(r.Login))
}

func (r ResetPasswordRequest) Validate() *ValidationError {
	if r.Key == "" {
		return invalid("key", "Reset key is required.")
	} else if r.Login == "" {
		return invalid("login", "Login is required.")
	}
	return checkNewPassword(r.Password, r.Password2)
}

// decodeParam undoes the percent-encoding links pick up when copied around.
func decodeParam(v string) string {
	out, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return out
}

func validEmail(email string) bool {
	return tools.ValidateEmail(email)
}
