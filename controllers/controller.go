package controllers

import (
	"errors"
	"net/http"

	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondFailure maps err to a status and a message safe for shoppers.
// fallback is used when the error carries nothing presentable. The raw
// error only goes to the log.
func RespondFailure(c *gin.Context, err error, fallback string) {
	status, msg := classify(err, fallback)
	respondLogged(c, err, status, msg)
}

// RespondRejection is RespondFailure for forms whose upstream failures are
// all shown as a 400 retry message. A missing configuration stays a 500.
func RespondRejection(c *gin.Context, err error, fallback string) {
	status, msg := classify(err, fallback)
	var cfgErr *models.ConfigurationError
	if (status >= http.StatusInternalServerError || status == http.StatusNotFound) && !errors.As(err, &cfgErr) {
		status, msg = http.StatusBadRequest, fallback
	}
	respondLogged(c, err, status, msg)
}

func respondLogged(c *gin.Context, err error, status int, msg string) {
	log := logger(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	RespondError(c, msg, status)
}

func classify(err error, fallback string) (int, string) {
	var (
		cfgErr      *models.ConfigurationError
		validation  *models.ValidationError
		upstream    *models.UpstreamError
		missing     *models.EndpointMissingError
		badLink     *models.InvalidOrExpiredLinkError
		rejected    *models.ResetRejectedError
		unavailable *models.RecoveryUnavailableError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, models.MsgNotConfigured
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, models.MsgInvalidCredentials
	case errors.Is(err, models.ErrCustomerExists):
		return http.StatusBadRequest, models.MsgCustomerExists
	case errors.As(err, &missing):
		return http.StatusInternalServerError, missing.Error()
	case errors.As(err, &badLink):
		return http.StatusBadRequest, badLink.Error()
	case errors.As(err, &rejected):
		return http.StatusBadRequest, rejected.Message
	case errors.As(err, &unavailable):
		return http.StatusInternalServerError, models.MsgRecoveryUnavailable
	case errors.As(err, &upstream) && upstream.Status == http.StatusNotFound:
		return http.StatusNotFound, fallback
	}
	return http.StatusInternalServerError, fallback
}

func logger(c *gin.Context) *zap.Logger {
	if svc := services.Instance(c); svc != nil && svc.Log != nil {
		return svc.Log.With(zap.String("request_id", c.GetString("request_id")))
	}
	return zap.L()
}
