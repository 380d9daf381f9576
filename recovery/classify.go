package recovery

import (
	"storefront/models"
	"storefront/tools"
)

// Markers the content platform is known to emit. Markup drift gets patched here.
var (
	requestSentPhrases = []string{
		"password reset email has been sent",
		"check your email for the confirmation link",
	}
	resetDoneLocations = []string{"checkemail=confirm", "checkemail=changed", "action=login"}
	resetDonePhrases   = []string{
		"password has been reset",
		"password reset complete",
		"your password has been reset",
	}
	badLinkPhrases      = []string{"invalid key", "expired", "invalid password reset link", "key is no longer valid"}
	badLinkLocations    = []string{"error=invalidkey", "error=expiredkey"}
	mismatchPhrases     = []string{"passwords do not match"}
	weakPasswordPhrases = []string{"password is too weak", "too short"}
)

// ClassifyOutcome reports whether a new-password submission was accepted,
// judging by the redirect target first and the page text second.
func ClassifyOutcome(html, location string) bool {
	return tools.ContainsAny(location, resetDoneLocations...) ||
		tools.ContainsAny(html, resetDonePhrases...)
}

// NormalizeResetError turns a rejection page into an error whose message is
// safe to show to the shopper.
func NormalizeResetError(html string) error {
	switch {
	case tools.ContainsAny(html, badLinkPhrases...):
		return &models.InvalidOrExpiredLinkError{}
	case tools.ContainsAny(html, mismatchPhrases...):
		return &models.ResetRejectedError{Message: models.MsgPasswordsMismatch}
	case tools.ContainsAny(html, weakPasswordPhrases...):
		return &models.ResetRejectedError{Message: models.MsgWeakPassword}
	}
	return &models.ResetRejectedError{Message: models.MsgResetRetry}
}

func requestAccepted(html string) bool {
	return tools.ContainsAny(html, requestSentPhrases...)
}
