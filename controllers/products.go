package controllers

import (
	"net/http"
	"strconv"

	"storefront/commerce"

	"github.com/gin-gonic/gin"
)

const (
	msgProductsUnavailable   = "Unable to load products right now."
	msgProductNotFound       = "Product not found."
	msgCategoriesUnavailable = "Unable to load categories right now."
)

type productListResponse struct {
	Source string `json:"source"`
	*commerce.ProductPage
}

type productDetailResponse struct {
	Source string `json:"source"`
	*commerce.ProductDetail
}

// GET /api/store/products
func ListProducts(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	q, err := commerce.ParseProductQuery(c.Request.URL.Query())
	if err != nil {
		RespondFailure(c, err, msgProductsUnavailable)
		return
	}
	page, err := svc.Commerce.ListProducts(c.Request.Context(), q)
	if err != nil {
		RespondFailure(c, err, msgProductsUnavailable)
		return
	}
	RespondSuccess(c, productListResponse{Source: "store-products", ProductPage: page})
}

// GET /api/store/products/:id
func GetProduct(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	detail, err := svc.Commerce.GetProduct(c.Request.Context(), id)
	if err != nil {
		RespondFailure(c, err, msgProductNotFound)
		return
	}
	RespondSuccess(c, productDetailResponse{Source: "store-endpoint", ProductDetail: detail})
}

// GET /api/store/products/:id/variations
// Answers with a bare array, as the storefront's variant picker expects.
func ListVariations(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	page, perPage := 1, commerce.MaxPerPage
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil && v > 0 && v <= commerce.MaxPerPage {
		perPage = v
	}
	vars, err := svc.Commerce.ListVariations(c.Request.Context(), id, page, perPage)
	if err != nil {
		RespondFailure(c, err, msgProductsUnavailable)
		return
	}
	RespondSuccess(c, vars)
}

// GET /api/products is kept for old storefront builds.
func LegacyProducts(c *gin.Context) {
	target := "/api/store/products"
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	c.Redirect(http.StatusTemporaryRedirect, target)
}

// GET /api/store/categories
func ListCategories(c *gin.Context) {
	svc := Svc(c)
	if svc == nil {
		return
	}
	q, err := commerce.ParseCategoryQuery(c.Request.URL.Query())
	if err != nil {
		RespondFailure(c, err, msgCategoriesUnavailable)
		return
	}
	items, err := svc.Commerce.ListCategories(c.Request.Context(), q)
	if err != nil {
		RespondFailure(c, err, msgCategoriesUnavailable)
		return
	}
	RespondSuccess(c, gin.H{"source": "store-categories", "items": items})
}
