package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/services"

	"github.com/gin-gonic/gin"
)

const msgInvalidJSON = "Invalid JSON body."

func ParamID(c *gin.Context, name string) (int64, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, "Missing "+name, http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// BindBody decodes a JSON body into dst. An empty body leaves dst untouched.
func BindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, msgInvalidJSON, http.StatusBadRequest)
		return false
	}
	return true
}

// Svc aborts with 500 when the services middleware is missing.
func Svc(c *gin.Context) *services.Services {
	svc := services.Instance(c)
	if svc == nil {
		RespondError(c, "services not configured", http.StatusInternalServerError)
	}
	return svc
}
