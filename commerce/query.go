package commerce

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"storefront/models"
)

// Sort shortcuts accepted by the product listing.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

var sortOrders = map[string][2]string{
	SortNewest:    {"date", "desc"},
	SortPriceAsc:  {"price", "asc"},
	SortPriceDesc: {"price", "desc"},
}

// orderby values the products endpoint understands.
var productOrderBy = []string{
	"date", "id", "include", "title", "slug", "price", "popularity", "rating", "menu_order", "modified",
}

type ProductQuery struct {
	Page     int
	PerPage  int
	Search   string
	Category string
	Status   string
	OnSale   string
	OrderBy  string
	Order    string
}

type CategoryQuery struct {
	Page      int
	PerPage   int
	HideEmpty bool
}

// ParseProductQuery applies listing defaults. An explicit orderby/order pair
// wins over the sort shortcut; an unknown shortcut means newest first.
func ParseProductQuery(v url.Values) (ProductQuery, error) {
	q := ProductQuery{
		Search:   strings.TrimSpace(v.Get("search")),
		Category: strings.TrimSpace(v.Get("category")),
		Status:   strings.TrimSpace(v.Get("status")),
	}
	if q.Status == "" {
		q.Status = "publish"
	}

	var err error
	if q.Page, err = intParam(v, "page", 1, 1, 0); err != nil {
		return q, err
	}
	if q.PerPage, err = intParam(v, "per_page", DefaultPerPage, 1, MaxPerPage); err != nil {
		return q, err
	}

	if raw := strings.TrimSpace(v.Get("on_sale")); raw != "" {
		b, perr := strconv.ParseBool(raw)
		if perr != nil {
			return q, &models.ValidationError{Field: "on_sale", Message: "Invalid on_sale"}
		}
		q.OnSale = strconv.FormatBool(b)
	}

	pair, ok := sortOrders[strings.TrimSpace(v.Get("sort"))]
	if !ok {
		pair = sortOrders[SortNewest]
	}
	q.OrderBy, q.Order = pair[0], pair[1]

	if ob := strings.ToLower(strings.TrimSpace(v.Get("orderby"))); ob != "" {
		if !slices.Contains(productOrderBy, ob) {
			return q, &models.ValidationError{Field: "orderby", Message: "Invalid orderby"}
		}
		q.OrderBy = ob
	}
	if o := strings.ToLower(strings.TrimSpace(v.Get("order"))); o != "" {
		if o != "asc" && o != "desc" {
			return q, &models.ValidationError{Field: "order", Message: "Invalid order"}
		}
		q.Order = o
	}
	return q, nil
}

func (q ProductQuery) withDefaults() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > MaxPerPage {
		q.PerPage = DefaultPerPage
	}
	if q.Status == "" {
		q.Status = "publish"
	}
	if q.OrderBy == "" {
		q.OrderBy, q.Order = "date", "desc"
	}
	if q.Order == "" {
		q.Order = "desc"
	}
	return q
}

func (q ProductQuery) values() url.Values {
	v := url.Values{
		"page":     {strconv.Itoa(q.Page)},
		"per_page": {strconv.Itoa(q.PerPage)},
		"status":   {q.Status},
		"orderby":  {q.OrderBy},
		"order":    {q.Order},
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.OnSale != "" {
		v.Set("on_sale", q.OnSale)
	}
	return v
}

func ParseCategoryQuery(v url.Values) (CategoryQuery, error) {
	q := CategoryQuery{HideEmpty: true}
	var err error
	if q.Page, err = intParam(v, "page", 1, 1, 0); err != nil {
		return q, err
	}
	if q.PerPage, err = intParam(v, "per_page", MaxPerPage, 1, MaxPerPage); err != nil {
		return q, err
	}
	if raw := strings.TrimSpace(v.Get("hide_empty")); raw != "" {
		b, perr := strconv.ParseBool(raw)
		if perr != nil {
			return q, &models.ValidationError{Field: "hide_empty", Message: "Invalid hide_empty"}
		}
		q.HideEmpty = b
	}
	return q, nil
}

func (q CategoryQuery) values() url.Values {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = MaxPerPage
	}
	return url.Values{
		"page":       {strconv.Itoa(q.Page)},
		"per_page":   {strconv.Itoa(q.PerPage)},
		"hide_empty": {strconv.FormatBool(q.HideEmpty)},
	}
}

// intParam reads an integer in [lo, hi]; hi <= 0 means unbounded.
func intParam(v url.Values, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || (hi > 0 && n > hi) {
		return 0, &models.ValidationError{Field: name, Message: "Invalid " + name}
	}
	return n, nil
}
