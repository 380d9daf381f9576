package commerce

import (
	"context"
	"net/http"

	"storefront/models"
)

const (
	paymentMethod      = "cod"
	paymentMethodTitle = "Cash on delivery"
)

type billingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Postcode  string `json:"postcode"`
}

type shippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Postcode  string `json:"postcode"`
}

type orderPayload struct {
	PaymentMethod      string            `json:"payment_method"`
	PaymentMethodTitle string            `json:"payment_method_title"`
	SetPaid            bool              `json:"set_paid"`
	Billing            billingAddress    `json:"billing"`
	Shipping           shippingAddress   `json:"shipping"`
	LineItems          []models.LineItem `json:"line_items"`
	CustomerNote       string            `json:"customer_note,omitempty"`
}

type rawOrder struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

func buildOrder(cust models.CheckoutCustomer, lines []models.LineItem, notes string) orderPayload {
	return orderPayload{
		PaymentMethod:      paymentMethod,
		PaymentMethodTitle: paymentMethodTitle,
		SetPaid:            false,
		Billing: billingAddress{
			FirstName: cust.FirstName,
			LastName:  cust.LastName,
			Email:     cust.Email,
			Phone:     cust.Phone,
			Address1:  cust.Address1,
			City:      cust.City,
			Country:   cust.Country,
			Postcode:  cust.Postcode,
		},
		Shipping: shippingAddress{
			FirstName: cust.FirstName,
			LastName:  cust.LastName,
			Address1:  cust.Address1,
			City:      cust.City,
			Country:   cust.Country,
			Postcode:  cust.Postcode,
		},
		LineItems:    lines,
		CustomerNote: notes,
	}
}

// CreateOrder places an unpaid cash-on-delivery order. Lines come from
// CheckoutRequest.Validate.
func (c *Client) CreateOrder(ctx context.Context, cust models.CheckoutCustomer, lines []models.LineItem, notes string) (*models.OrderSummary, error) {
	resp, err := c.Request(ctx, "orders", RequestOptions{
		Method: http.MethodPost,
		Body:   buildOrder(cust, lines, notes),
	})
	if err != nil {
		return nil, err
	}
	var order rawOrder
	if err := resp.Decode(&order); err != nil {
		return nil, &models.UpstreamError{Status: resp.Status, Message: err.Error()}
	}
	summary := models.OrderSummary(order)
	return &summary, nil
}
