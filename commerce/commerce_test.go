package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/config"
	"storefront/models"
	"storefront/tools"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	src := config.MapSource{
		config.EnvStoreURL:    srv.URL + "/",
		config.EnvStoreKey:    "ck_test",
		config.EnvStoreSecret: "cs_test",
	}
	c := NewClient(src, srv.Client(), nil)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRequestSignsAndPrefixes(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := c.Request(context.Background(), "products", RequestOptions{Query: url.Values{
		"search": {"mug"},
		"empty":  {""},
	}})
	require.NoError(t, err)

	assert.Equal(t, "/wp-json/wc/v3/products", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "ck_test", q.Get("consumer_key"))
	assert.Equal(t, "cs_test", q.Get("consumer_secret"))
	assert.Equal(t, "mug", q.Get("search"))
	assert.False(t, q.Has("empty"))
}

func TestRequestMissingConfiguration(t *testing.T) {
	c := NewClient(config.MapSource{config.EnvStoreURL: "https://shop.test"}, nil, nil)

	_, err := c.Request(context.Background(), "products", RequestOptions{})

	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.EnvStoreKey, cfgErr.Missing)
}

func TestRequestUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"code":    "woocommerce_rest_product_invalid_id",
			"message": "Invalid ID.",
		})
	})

	_, err := c.Request(context.Background(), "products/9", RequestOptions{})

	var up *models.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusNotFound, up.Status)
	assert.Equal(t, "woocommerce_rest_product_invalid_id", up.Code)
}

func TestRequestNonJSONSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	})

	resp, err := c.Request(context.Background(), "products", RequestOptions{})
	require.NoError(t, err)
	assert.False(t, resp.JSON)
	assert.Error(t, resp.Decode(&[]rawProduct{}))
}

func TestParseProductQuery(t *testing.T) {
	tests := []struct {
		name    string
		in      url.Values
		want    ProductQuery
		wantErr string
	}{
		{
			name: "defaults",
			in:   url.Values{},
			want: ProductQuery{Page: 1, PerPage: 12, Status: "publish", OrderBy: "date", Order: "desc"},
		},
		{
			name: "price ascending shortcut",
			in:   url.Values{"sort": {"price_asc"}, "page": {"3"}, "per_page": {"24"}},
			want: ProductQuery{Page: 3, PerPage: 24, Status: "publish", OrderBy: "price", Order: "asc"},
		},
		{
			name: "unknown shortcut falls back to newest",
			in:   url.Values{"sort": {"random"}},
			want: ProductQuery{Page: 1, PerPage: 12, Status: "publish", OrderBy: "date", Order: "desc"},
		},
		{
			name: "explicit order wins",
			in:   url.Values{"sort": {"price_desc"}, "orderby": {"title"}, "order": {"ASC"}},
			want: ProductQuery{Page: 1, PerPage: 12, Status: "publish", OrderBy: "title", Order: "asc"},
		},
		{
			name: "filters",
			in:   url.Values{"category": {"15"}, "search": {" tea "}, "on_sale": {"1"}},
			want: ProductQuery{Page: 1, PerPage: 12, Status: "publish", OrderBy: "date", Order: "desc", Category: "15", Search: "tea", OnSale: "true"},
		},
		{name: "per_page too large", in: url.Values{"per_page": {"101"}}, wantErr: "per_page"},
		{name: "page zero", in: url.Values{"page": {"0"}}, wantErr: "page"},
		{name: "bad order", in: url.Values{"order": {"up"}}, wantErr: "order"},
		{name: "bad orderby", in: url.Values{"orderby": {"name; drop"}}, wantErr: "orderby"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductQuery(tt.in)
			if tt.wantErr != "" {
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantErr, verr.Field)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseProductQuery() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListProductsFiltersAndCaps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		assert.Equal(t, "price", r.URL.Query().Get("orderby"))
		w.Header().Set("X-WP-Total", "40")
		w.Header().Set("X-WP-TotalPages", "20")
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Mug", "type": "simple", "price": "9.00",
				"categories": []map[string]any{{"id": 3, "name": "Kitchen", "slug": "kitchen"}},
				"images":     []map[string]any{{"id": 7, "src": "https://cdn/mug.jpg", "alt": ""}}},
			{"id": 2, "name": "Bundle", "type": "grouped"},
			{"id": 3, "name": "Shirt", "type": "variable"},
			{"id": 4, "name": "Cap", "type": "simple"},
		})
	})

	page, err := c.ListProducts(context.Background(), ProductQuery{Page: 1, PerPage: 2, OrderBy: "price", Order: "asc"})
	require.NoError(t, err)

	assert.Equal(t, 40, page.Total)
	assert.Equal(t, 20, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(1), page.Items[0].ID)
	assert.Equal(t, int64(3), page.Items[1].ID)

	mug := page.Items[0]
	require.NotNil(t, mug.Category)
	assert.Equal(t, "kitchen", mug.Category.Slug)
	require.NotNil(t, mug.Image)
	assert.Equal(t, "https://cdn/mug.jpg", mug.Image.Thumbnail)
	assert.Nil(t, page.Items[1].Image)
}

func TestListProductsNonArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"unexpected": true})
	})

	page, err := c.ListProducts(context.Background(), ProductQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 12, page.PerPage)
}

func TestListProductsOversizedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"type":"simple","description":"`)
		_, _ = io.WriteString(w, strings.Repeat("x", 5<<20))
		_, _ = io.WriteString(w, `"}]`)
	})

	page, err := c.ListProducts(context.Background(), ProductQuery{})
	assert.Nil(t, page)
	assert.ErrorIs(t, err, tools.ErrBodyTooLarge)
}

func TestGetProductVariable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/v3/products/5":
			writeJSON(w, http.StatusOK, map[string]any{"id": 5, "name": "Shirt", "type": "variable"})
		case "/wp-json/wc/v3/products/5/variations":
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 51, "price": "20", "attributes": []map[string]any{{"id": 1, "name": "Size", "option": "M"}}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	d, err := c.GetProduct(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", d.Product.Name)
	require.Len(t, d.Variations, 1)
	assert.Equal(t, "M", d.Variations[0].Attributes[0].Option)
}

func TestGetProductSimpleSkipsVariations(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, map[string]any{"id": 6, "type": "simple"})
	})

	d, err := c.GetProduct(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NotNil(t, d.Variations)
	assert.Empty(t, d.Variations)
}

func TestListVariationsTolerance(t *testing.T) {
	for name, body := range map[string]map[string]any{
		"invalid id":       {"code": "woocommerce_rest_product_invalid_id", "message": "Invalid ID."},
		"no route":         {"code": "rest_no_route", "message": "No route was found matching the URL and request method."},
		"cannot be viewed": {"code": "woocommerce_rest_cannot_view", "message": "Sorry, this resource cannot be viewed."},
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, body)
			})
			vars, err := c.ListVariations(context.Background(), 8, 1, 100)
			require.NoError(t, err)
			assert.Empty(t, vars)
		})
	}

	t.Run("other errors propagate", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"code": "db_error", "message": "boom"})
		})
		_, err := c.ListVariations(context.Background(), 8, 1, 100)
		var up *models.UpstreamError
		assert.ErrorAs(t, err, &up)
	})
}

func TestListCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("hide_empty"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Tea", "slug": "tea", "count": 4, "parent": 0, "description": "hidden"},
		})
	})

	q, err := ParseCategoryQuery(url.Values{})
	require.NoError(t, err)
	cats, err := c.ListCategories(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []Category{{ID: 1, Name: "Tea", Slug: "tea", Count: 4}}, cats)
}

func TestCreateCustomer(t *testing.T) {
	var sent customerPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/customers", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": 77, "email": sent.Email, "first_name": sent.FirstName, "last_name": sent.LastName,
		})
	})

	got, err := c.CreateCustomer(context.Background(), models.Registration{
		Email:    "jane.doe+shop@example.com",
		Password: "secret1",
		Phone:    "555",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane.doeshop_1700000000000", sent.Username)
	assert.Equal(t, "Jane.doe+shop", sent.FirstName)
	assert.Equal(t, "Customer", sent.LastName)
	assert.Equal(t, "555", sent.Billing.Phone)
	assert.Equal(t, &models.CustomerSummary{ID: 77, Email: "jane.doe+shop@example.com", FirstName: "Jane.doe+shop", LastName: "Customer"}, got)
}

func TestCreateCustomerExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    "registration-error-email-exists",
			"message": "An account is already registered with your email address.",
		})
	})

	_, err := c.CreateCustomer(context.Background(), models.Registration{Email: "a@b.co", Password: "secret1"})
	assert.True(t, errors.Is(err, models.ErrCustomerExists))
}

func TestCreateOrderPayload(t *testing.T) {
	var sent map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": 1001, "status": "processing", "total": "18.00", "currency": "EUR", "number": "1001",
		})
	})

	cust := models.CheckoutCustomer{
		FirstName: "Ana", LastName: "Lee", Email: "ana@example.com", Phone: "1",
		Address1: "Main 1", City: "Lisbon", Country: "PT", Postcode: "1000",
	}
	order, err := c.CreateOrder(context.Background(), cust, []models.LineItem{{ProductID: 3, Quantity: 2}}, "")
	require.NoError(t, err)

	assert.Equal(t, &models.OrderSummary{ID: 1001, Status: "processing", Total: "18.00", Currency: "EUR"}, order)
	assert.Equal(t, "cod", sent["payment_method"])
	assert.Equal(t, "Cash on delivery", sent["payment_method_title"])
	assert.Equal(t, false, sent["set_paid"])
	assert.NotContains(t, sent, "customer_note")

	shipping := sent["shipping"].(map[string]any)
	assert.NotContains(t, shipping, "email")
	assert.NotContains(t, shipping, "phone")
	billing := sent["billing"].(map[string]any)
	assert.Equal(t, "ana@example.com", billing["email"])

	lines := sent["line_items"].([]any)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0].(map[string]any), "variation_id")
}
