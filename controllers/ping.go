package controllers

import (
	"storefront/config"

	"github.com/gin-gonic/gin"
)

type pingResponse struct {
	OK        bool    `json:"ok"`
	WCURL     *string `json:"wc_url"`
	HasKey    bool    `json:"has_key"`
	HasSecret bool    `json:"has_secret"`
}

// GET /api/ping reports whether the upstream settings are present. It never
// echoes the credentials themselves.
func Ping(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	resp := pingResponse{OK: true}
	if base, err := config.StoreBaseURL(svc.Env); err == nil {
		resp.WCURL = &base
	}
	resp.HasKey = svc.Env.Lookup(config.EnvStoreKey) != "" || svc.Env.Lookup(config.EnvStoreKeyAlt) != ""
	resp.HasSecret = svc.Env.Lookup(config.EnvStoreSecret) != "" || svc.Env.Lookup(config.EnvStoreSecretAlt) != ""
	RespondSuccess(c, resp)
}
