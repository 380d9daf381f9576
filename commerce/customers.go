package commerce

import (
	"context"
	"errors"
	"net/http"

	"storefront/models"
	"storefront/tools"

	"go.uber.org/zap"
)

type billingContact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type customerPayload struct {
	Email     string         `json:"email"`
	Username  string         `json:"username"`
	Password  string         `json:"password"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Billing   billingContact `json:"billing"`
}

// CreateCustomer registers a store account. reg must already be normalized
// and validated.
func (c *Client) CreateCustomer(ctx context.Context, reg models.Registration) (*models.CustomerSummary, error) {
	first, last := reg.ResolvedNames()
	payload := customerPayload{
		Email:     reg.Email,
		Username:  tools.MakeUsername(reg.Email, c.now()),
		Password:  reg.Password,
		FirstName: first,
		LastName:  last,
		Billing: billingContact{
			FirstName: first,
			LastName:  last,
			Email:     reg.Email,
			Phone:     reg.Phone,
		},
	}

	resp, err := c.Request(ctx, "customers", RequestOptions{Method: http.MethodPost, Body: payload})
	if err != nil {
		if customerExists(err) {
			return nil, models.ErrCustomerExists
		}
		return nil, err
	}

	var created models.CustomerSummary
	if err := resp.Decode(&created); err != nil {
		c.log.Warn("customer created but response unreadable", zap.Error(err))
		return nil, &models.UpstreamError{Status: resp.Status, Message: err.Error()}
	}
	return &created, nil
}

func customerExists(err error) bool {
	var up *models.UpstreamError
	if !errors.As(err, &up) {
		return false
	}
	return up.Code == "registration-error-email-exists" ||
		tools.ContainsAny(up.Message, "registration-error-email-exists", "already registered", "already exists")
}
