package controllers

import (
	"net/http"
	"path"
	"strings"

	"storefront/models"

	"github.com/gin-gonic/gin"
)

const (
	msgUnknownAction = "Unknown auth action."
	msgLoginFailed   = "Unable to sign in right now. Please try again."
)

var authActions = map[string]gin.HandlerFunc{
	"login":           Login,
	"register":        Register,
	"forgot-password": ForgotPassword,
	"reset-password":  ResetPassword,
}

// AuthAction serves POST /api/store/auth?action=<a> and /api/store/auth/<a>.
func AuthAction(c *gin.Context) {
	action := strings.ToLower(strings.TrimSpace(c.Query("action")))
	if action == "" {
		action = strings.ToLower(strings.TrimSpace(c.Param("action")))
	}
	if action == "" {
		action = strings.ToLower(path.Base(c.Request.URL.Path))
	}
	handler, ok := authActions[action]
	if !ok {
		RespondError(c, msgUnknownAction, http.StatusNotFound)
		return
	}
	handler(c)
}

// Login exchanges credentials for a bearer token.
func Login(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	var req models.LoginRequest
	if !BindBody(c, &req) {
		return
	}
	req.Normalize()
	if verr := req.Validate(); verr != nil {
		RespondFailure(c, verr, msgLoginFailed)
		return
	}

	session, err := svc.Auth.Login(c.Request.Context(), req.Identifier(), req.Password)
	if err != nil {
		RespondFailure(c, err, msgLoginFailed)
		return
	}
	RespondSuccess(c, gin.H{
		"source":  "store-auth-login",
		"token":   session.Token,
		"user":    session.User,
		"message": "Login successful.",
	})
}

// Register creates a store customer. Every upstream failure other than a
// duplicate email is reported with the same retry message.
func Register(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	var req models.Registration
	if !BindBody(c, &req) {
		return
	}
	req.Normalize()
	if verr := req.Validate(); verr != nil {
		RespondFailure(c, verr, models.MsgRegisterRetry)
		return
	}

	created, err := svc.Commerce.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		RespondRejection(c, err, models.MsgRegisterRetry)
		return
	}
	RespondSuccess(c, gin.H{
		"source":  "store-auth-register",
		"user":    created,
		"message": "Account created successfully.",
	})
}
