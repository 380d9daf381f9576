package services

import (
	"net/http"
	"time"

	"storefront/commerce"
	"storefront/config"
	"storefront/recovery"
	"storefront/tokenauth"
	"storefront/tools"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const servicesKey = "services"

// Services holds the upstream clients a request handler may need.
type Services struct {
	Env      config.Source
	Commerce *commerce.Client
	Auth     *tokenauth.Client
	Recovery *recovery.Relay
	Log      *zap.Logger
}

// New builds every upstream client from env. Clients re-read env on each
// call, so a rotated secret is picked up without a restart.
func New(env config.Source, cfg config.Configuration, log *zap.Logger) *Services {
	timeout := time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second
	content := func(follow bool) *http.Client {
		return tools.NewHTTPClient(tools.TargetContent, follow, timeout)
	}
	return &Services{
		Env:      env,
		Commerce: commerce.NewClient(env, tools.NewHTTPClient(tools.TargetCommerce, true, timeout), log.Named("commerce")),
		Auth:     tokenauth.NewClient(env, content(true), log.Named("tokenauth")),
		Recovery: recovery.NewRelay(env, content(false), log.Named("recovery")),
		Log:      log,
	}
}

// SetToContext is the gin middleware that makes svc available to handlers.
func SetToContext(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(servicesKey, svc)
		c.Next()
	}
}

func Instance(c *gin.Context) *Services {
	v, ok := c.Get(servicesKey)
	if !ok {
		return nil
	}
	svc, _ := v.(*Services)
	return svc
}
