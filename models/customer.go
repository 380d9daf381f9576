package models

import (
	"encoding/json"
	"strings"

	"storefront/tools"
)

// Registration is the sign-up payload. The customer itself is only ever
// persisted upstream.
type Registration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// UnmarshalJSON lets every field arrive as a JSON number too; a numeric phone
// is common from mobile forms.
func (r *Registration) UnmarshalJSON(b []byte) error {
	var fields map[string]text
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	*r = Registration{
		FirstName: string(fields["first_name"]),
		LastName:  string(fields["last_name"]),
		Email:     string(fields["email"]),
		Phone:     string(fields["phone"]),
		Password:  string(fields["password"]),
		Password2: string(fields["password2"]),
	}
	return nil
}

func (r *Registration) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

// Validate returns the first problem found, in the order the form shows fields.
func (r Registration) Validate() *ValidationError {
	if r.Email == "" {
		return invalid("email", "Email is required.")
	} else if !validEmail(r.Email) {
		return invalid("email", "Please enter a valid email address.")
	}
	return checkNewPassword(r.Password, r.Password2)
}

// ResolvedNames fills blank names from the email local part.
func (r Registration) ResolvedNames() (first, last string) {
	first, last = r.FirstName, r.LastName
	if first == "" {
		local, _, _ := strings.Cut(r.Email, "@")
		if local == "" {
			local = "Customer"
		}
		first = tools.Capitalize(local)
	}
	if last == "" {
		last = "Customer"
	}
	return first, last
}

// CustomerSummary is what the storefront gets back after sign-up.
type CustomerSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func checkNewPassword(password, password2 string) *ValidationError {
	if password == "" {
		return invalid("password", "Password is required.")
	} else if password2 == "" {
		return invalid("password2", "Password confirmation is required.")
	} else if password != password2 {
		return invalid("password2", MsgPasswordsMismatch)
	} else if tools.CheckPassword(password) != "" {
		return invalid("password", "Password must be at least 6 characters.")
	}
	return nil
}
