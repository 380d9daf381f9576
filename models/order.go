package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront/tools"
)

type CheckoutCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Postcode  string `json:"postcode"`
}

// UnmarshalJSON accepts numbers and booleans for any billing field, so a
// numeric postcode or phone is as good as a quoted one. A customer that is
// not an object decodes as empty and fails validation instead of binding.
func (c *CheckoutCustomer) UnmarshalJSON(b []byte) error {
	var fields map[string]text
	if json.Unmarshal(b, &fields) != nil {
		*c = CheckoutCustomer{}
		return nil
	}
	*c = CheckoutCustomer{
		FirstName: string(fields["first_name"]),
		LastName:  string(fields["last_name"]),
		Email:     string(fields["email"]),
		Phone:     string(fields["phone"]),
		Address1:  string(fields["address_1"]),
		City:      string(fields["city"]),
		Country:   string(fields["country"]),
		Postcode:  string(fields["postcode"]),
	}
	return nil
}

// LineItemInput keeps the raw JSON so "3", 3 and 3.5 can be told apart.
type LineItemInput struct {
	ProductID   json.RawMessage `json:"product_id"`
	Quantity    json.RawMessage `json:"quantity"`
	VariationID json.RawMessage `json:"variation_id,omitempty"`
}

// CheckoutRequest keeps items raw until Validate so a malformed entry is
// reported by its index.
type CheckoutRequest struct {
	Customer CheckoutCustomer `json:"customer"`
	Items    json.RawMessage  `json:"items"`
	Notes    text             `json:"notes"`
}

// LineItem is a validated order line.
type LineItem struct {
	ProductID   int64 `json:"product_id"`
	Quantity    int64 `json:"quantity"`
	VariationID int64 `json:"variation_id,omitempty"`
}

// requiredFields returns the billing fields in the order they are checked.
func (c CheckoutCustomer) requiredFields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"first_name", c.FirstName},
		{"last_name", c.LastName},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address_1", c.Address1},
		{"city", c.City},
		{"country", c.Country},
		{"postcode", c.Postcode},
	}
}

// MissingFields names the first blank billing field, or "".
func (c CheckoutCustomer) MissingFields() string {
	for _, f := range c.requiredFields() {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// Validate checks billing fields, then items, and converts the items.
func (r CheckoutRequest) Validate() ([]LineItem, *ValidationError) {
	if missing := r.Customer.MissingFields(); missing != "" {
		return nil, invalid("customer."+missing, "Missing required field: customer."+missing)
	}
	var items []json.RawMessage
	if json.Unmarshal(r.Items, &items) != nil || len(items) == 0 {
		return nil, invalid("items", "Missing required field: items")
	}

	lines := make([]LineItem, 0, len(items))
	for i, raw := range items {
		var item LineItemInput
		if json.Unmarshal(raw, &item) != nil {
			item = LineItemInput{}
		}
		productID, ok := tools.PositiveInt(item.ProductID)
		if !ok {
			field := fmt.Sprintf("items[%d].product_id", i)
			return nil, invalid(field, "Invalid "+field)
		}
		quantity, ok := tools.PositiveInt(item.Quantity)
		if !ok {
			field := fmt.Sprintf("items[%d].quantity", i)
			return nil, invalid(field, "Invalid "+field)
		}
		// a bad variation id just means "no variation"
		variationID, _ := tools.PositiveInt(item.VariationID)
		lines = append(lines, LineItem{ProductID: productID, Quantity: quantity, VariationID: variationID})
	}
	return lines, nil
}

// OrderSummary is the part of the created order the storefront needs.
type OrderSummary struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}
