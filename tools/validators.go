package tools

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const MinPasswordLength = 6

var validate = validator.New()

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	return validate.Var(email, "email") == nil
}

// CheckPassword returns the name of the failing field, or "" when the
// password is acceptable.
func CheckPassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "password"
	}
	return ""
}
