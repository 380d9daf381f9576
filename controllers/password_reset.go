package controllers

import (
	"storefront/models"

	"github.com/gin-gonic/gin"
)

// ForgotPassword answers the same way whether or not the address is known.
func ForgotPassword(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	var req models.ForgotPasswordRequest
	if !BindBody(c, &req) {
		return
	}
	req.Normalize()
	if verr := req.Validate(); verr != nil {
		RespondFailure(c, verr, models.MsgRecoveryUnavailable)
		return
	}

	if err := svc.Recovery.RequestReset(c.Request.Context(), req.Email); err != nil {
		RespondFailure(c, err, models.MsgRecoveryUnavailable)
		return
	}
	RespondSuccess(c, gin.H{
		"source":  "store-auth-forgot-password",
		"message": "If this email exists, a password reset link has been sent.",
	})
}

// ResetPassword completes the emailed reset link. A fresh form is opened on
// every call.
func ResetPassword(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	var req models.ResetPasswordRequest
	if !BindBody(c, &req) {
		return
	}
	req.Normalize()
	if verr := req.Validate(); verr != nil {
		RespondFailure(c, verr, models.MsgResetRetry)
		return
	}

	if err := svc.Recovery.ResetPassword(c.Request.Context(), req.Login, req.Key, req.Password); err != nil {
		RespondRejection(c, err, models.MsgResetRetry)
		return
	}
	RespondSuccess(c, gin.H{
		"source":  "store-auth-reset-password",
		"message": "Your password has been reset. You can now sign in.",
	})
}
