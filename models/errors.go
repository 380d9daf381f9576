package models

import (
	"errors"
	"fmt"
)

// ConfigurationError means the upstream base URL or API credentials are not set.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return "missing " + e.Missing + " env var"
}

// ValidationError is malformed client input. Message is safe to show.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// UpstreamError is a non-success answer from the commerce or content platform.
// Message carries upstream text and must never be sent to clients.
type UpstreamError struct {
	Status  int
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream error %d: %s", e.Status, e.Message)
}

// EndpointMissingError means the token endpoint is not installed upstream.
type EndpointMissingError struct {
	URL string
}

func (e *EndpointMissingError) Error() string {
	return "WordPress auth endpoint is missing. Install/enable a JWT plugin exposing POST " + e.URL + "."
}

// InvalidOrExpiredLinkError is returned when a password reset link is no longer usable.
type InvalidOrExpiredLinkError struct{}

func (e *InvalidOrExpiredLinkError) Error() string {
	return "This reset link is invalid or expired. Please request a new password reset email."
}

// ResetRejectedError is a reset submission the platform refused for a reason
// other than the link itself. Message is already normalized.
type ResetRejectedError struct {
	Message string
}

func (e *ResetRejectedError) Error() string {
	return e.Message
}

// RecoveryUnavailableError aggregates every failed reset-request strategy.
type RecoveryUnavailableError struct {
	Causes []error
}

func (e *RecoveryUnavailableError) Error() string {
	return "password recovery unavailable: " + errors.Join(e.Causes...).Error()
}

func (e *RecoveryUnavailableError) Unwrap() []error {
	return e.Causes
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCustomerExists     = errors.New("customer already exists")
)

const (
	MsgInvalidCredentials  = "Invalid email or password"
	MsgCustomerExists      = "An account with this email already exists."
	MsgNotConfigured       = "Store auth is not configured on the server."
	MsgPasswordsMismatch   = "Passwords do not match."
	MsgWeakPassword        = "Please choose a stronger password."
	MsgResetRetry          = "Unable to reset password right now. Please try again."
	MsgRecoveryUnavailable = "Unable to request password reset right now. Please try again."
	MsgRegisterRetry       = "Unable to create account right now. Please try again."
)
