package commerce

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"storefront/models"
	"storefront/tools"

	"go.uber.org/zap"
)

const (
	DefaultPerPage  = 12
	MaxPerPage      = 100
	variationsLimit = 100
)

// Upstream product shapes. Woo sends prices as strings.
type rawImage struct {
	ID        int64  `json:"id"`
	Src       string `json:"src"`
	Thumbnail string `json:"thumbnail"`
	Alt       string `json:"alt"`
}

type rawCategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type rawProduct struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Type             string           `json:"type"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	Price            string           `json:"price"`
	RegularPrice     string           `json:"regular_price"`
	SalePrice        string           `json:"sale_price"`
	OnSale           bool             `json:"on_sale"`
	StockStatus      string           `json:"stock_status"`
	StockQuantity    *int             `json:"stock_quantity"`
	SKU              string           `json:"sku"`
	Images           []rawImage       `json:"images"`
	Categories       []rawCategoryRef `json:"categories"`
}

type rawVariation struct {
	ID            int64                `json:"id"`
	Price         string               `json:"price"`
	RegularPrice  string               `json:"regular_price"`
	SalePrice     string               `json:"sale_price"`
	OnSale        bool                 `json:"on_sale"`
	StockStatus   string               `json:"stock_status"`
	StockQuantity *int                 `json:"stock_quantity"`
	SKU           string               `json:"sku"`
	Attributes    []VariationAttribute `json:"attributes"`
	Image         *rawImage            `json:"image"`
}

type rawCategory struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Count  int    `json:"count"`
	Parent int64  `json:"parent"`
}

// Public shapes.
type Image struct {
	ID        int64  `json:"id,omitempty"`
	Src       string `json:"src"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Alt       string `json:"alt"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ProductSummary struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	Type         string        `json:"type"`
	Price        string        `json:"price"`
	RegularPrice string        `json:"regular_price"`
	SalePrice    string        `json:"sale_price"`
	OnSale       bool          `json:"on_sale"`
	StockStatus  string        `json:"stock_status"`
	Category     *CategoryRef  `json:"category"`
	Categories   []CategoryRef `json:"categories"`
	Image        *Image        `json:"image"`
}

type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Type             string        `json:"type"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	Price            string        `json:"price"`
	RegularPrice     string        `json:"regular_price"`
	SalePrice        string        `json:"sale_price"`
	OnSale           bool          `json:"on_sale"`
	StockStatus      string        `json:"stock_status"`
	StockQuantity    *int          `json:"stock_quantity"`
	SKU              string        `json:"sku"`
	Images           []Image       `json:"images"`
	Categories       []CategoryRef `json:"categories"`
}

type VariationAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

type Variation struct {
	ID            int64                `json:"id"`
	Price         string               `json:"price"`
	RegularPrice  string               `json:"regular_price"`
	SalePrice     string               `json:"sale_price"`
	OnSale        bool                 `json:"on_sale"`
	StockStatus   string               `json:"stock_status"`
	StockQuantity *int                 `json:"stock_quantity"`
	SKU           string               `json:"sku"`
	Attributes    []VariationAttribute `json:"attributes"`
	Image         *Image               `json:"image"`
}

type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Count  int    `json:"count"`
	Parent int64  `json:"parent"`
}

type ProductPage struct {
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
	Items      []ProductSummary `json:"items"`
}

type ProductDetail struct {
	Product    Product     `json:"product"`
	Variations []Variation `json:"variations"`
}

func summarize(p rawProduct) ProductSummary {
	s := ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Type:         p.Type,
		Price:        p.Price,
		RegularPrice: p.RegularPrice,
		SalePrice:    p.SalePrice,
		OnSale:       p.OnSale,
		StockStatus:  p.StockStatus,
		Categories:   make([]CategoryRef, 0, len(p.Categories)),
	}
	for _, c := range p.Categories {
		s.Categories = append(s.Categories, CategoryRef(c))
	}
	if len(s.Categories) > 0 {
		first := s.Categories[0]
		s.Category = &first
	}
	if len(p.Images) > 0 {
		img := publicImage(p.Images[0])
		img.ID = 0
		s.Image = &img
	}
	return s
}

func publicImage(img rawImage) Image {
	thumb := img.Thumbnail
	if thumb == "" {
		thumb = img.Src
	}
	return Image{ID: img.ID, Src: img.Src, Thumbnail: thumb, Alt: img.Alt}
}

func detail(p rawProduct) Product {
	out := Product{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Type:             p.Type,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		RegularPrice:     p.RegularPrice,
		SalePrice:        p.SalePrice,
		OnSale:           p.OnSale,
		StockStatus:      p.StockStatus,
		StockQuantity:    p.StockQuantity,
		SKU:              p.SKU,
		Images:           make([]Image, 0, len(p.Images)),
		Categories:       make([]CategoryRef, 0, len(p.Categories)),
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, publicImage(img))
	}
	for _, c := range p.Categories {
		out.Categories = append(out.Categories, CategoryRef(c))
	}
	return out
}

func variation(v rawVariation) Variation {
	out := Variation{
		ID:            v.ID,
		Price:         v.Price,
		RegularPrice:  v.RegularPrice,
		SalePrice:     v.SalePrice,
		OnSale:        v.OnSale,
		StockStatus:   v.StockStatus,
		StockQuantity: v.StockQuantity,
		SKU:           v.SKU,
		Attributes:    v.Attributes,
	}
	if out.Attributes == nil {
		out.Attributes = []VariationAttribute{}
	}
	if v.Image != nil {
		out.Image = &Image{ID: v.Image.ID, Src: v.Image.Src, Alt: v.Image.Alt}
	}
	return out
}

// ListProducts returns one page of simple and variable products.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	q = q.withDefaults()
	resp, err := c.Request(ctx, "products", RequestOptions{Query: q.values()})
	if err != nil {
		return nil, err
	}

	var raw []rawProduct
	c.decodeList(resp, "products", &raw)

	items := make([]ProductSummary, 0, len(raw))
	for _, p := range raw {
		if p.Type != "simple" && p.Type != "variable" {
			continue
		}
		items = append(items, summarize(p))
	}
	if len(items) > q.PerPage {
		items = items[:q.PerPage]
	}

	total, _ := strconv.Atoi(resp.Header.Get("X-WP-Total"))
	totalPages, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
	return &ProductPage{
		Page:       q.Page,
		PerPage:    q.PerPage,
		Total:      total,
		TotalPages: totalPages,
		Items:      items,
	}, nil
}

// GetProduct returns a product and, for variable products, its variations.
func (c *Client) GetProduct(ctx context.Context, id int64) (*ProductDetail, error) {
	resp, err := c.Request(ctx, "products/"+strconv.FormatInt(id, 10), RequestOptions{})
	if err != nil {
		return nil, err
	}
	var raw rawProduct
	if err := resp.Decode(&raw); err != nil {
		return nil, &models.UpstreamError{Status: resp.Status, Message: err.Error()}
	}

	out := &ProductDetail{Product: detail(raw), Variations: []Variation{}}
	if raw.Type == "variable" {
		vars, err := c.ListVariations(ctx, id, 1, variationsLimit)
		if err != nil {
			return nil, err
		}
		out.Variations = vars
	}
	return out, nil
}

// ListVariations treats "this product has no variations" upstream answers
// as an empty list.
func (c *Client) ListVariations(ctx context.Context, id int64, page, perPage int) ([]Variation, error) {
	path := "products/" + strconv.FormatInt(id, 10) + "/variations"
	resp, err := c.Request(ctx, path, RequestOptions{Query: url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}})
	if err != nil {
		if noVariations(err) {
			c.log.Debug("no variations", zap.Int64("product_id", id), zap.Error(err))
			return []Variation{}, nil
		}
		return nil, err
	}

	var raw []rawVariation
	c.decodeList(resp, path, &raw)
	out := make([]Variation, 0, len(raw))
	for _, v := range raw {
		out = append(out, variation(v))
	}
	return out, nil
}

func noVariations(err error) bool {
	var up *models.UpstreamError
	if !errors.As(err, &up) {
		return false
	}
	return up.Code == "woocommerce_rest_product_invalid_id" ||
		up.Code == "rest_no_route" ||
		tools.ContainsAny(up.Message, "woocommerce_rest_product_invalid_id", "No route was found", "cannot be viewed")
}

// ListCategories returns product categories in upstream order.
func (c *Client) ListCategories(ctx context.Context, q CategoryQuery) ([]Category, error) {
	resp, err := c.Request(ctx, "products/categories", RequestOptions{Query: q.values()})
	if err != nil {
		return nil, err
	}
	var raw []rawCategory
	c.decodeList(resp, "products/categories", &raw)
	out := make([]Category, 0, len(raw))
	for _, cat := range raw {
		out = append(out, Category(cat))
	}
	return out, nil
}

// decodeList leaves dst empty when the upstream did not send a JSON array.
func (c *Client) decodeList(resp *Response, path string, dst any) {
	if err := resp.Decode(dst); err != nil {
		c.log.Warn("unexpected list payload",
			zap.String("path", path),
			zap.Int("upstream_status", resp.Status),
			zap.Error(err))
	}
}
