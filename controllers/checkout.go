package controllers

import (
	"storefront/models"

	"github.com/gin-gonic/gin"
)

const msgCheckoutFailed = "Unable to place your order right now. Please try again."

// POST /api/store/checkout
func Checkout(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	var req models.CheckoutRequest
	if !BindBody(c, &req) {
		return
	}
	lines, verr := req.Validate()
	if verr != nil {
		RespondFailure(c, verr, msgCheckoutFailed)
		return
	}
	order, err := svc.Commerce.CreateOrder(c.Request.Context(), req.Customer, lines, string(req.Notes))
	if err != nil {
		RespondFailure(c, err, msgCheckoutFailed)
		return
	}
	RespondSuccess(c, gin.H{"source": "store-checkout", "order": order})
}
