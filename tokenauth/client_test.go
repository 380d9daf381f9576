package tokenauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/config"
	"storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSite struct {
	routes  []string
	token   func(w http.ResponseWriter, r *http.Request)
	profile func(w http.ResponseWriter, r *http.Request)
}

func (f fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/wp-json":
		routes := map[string]any{"/": map[string]any{}}
		for _, rt := range f.routes {
			routes[rt] = map[string]any{"methods": []string{"POST"}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "Shop", "routes": routes})
	case "/wp-json/wp/v2/users/me":
		if f.profile == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.profile(w, r)
	default:
		if f.token == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":"rest_no_route","message":"No route was found matching the URL and request method.","data":{"status":404}}`)
			return
		}
		f.token(w, r)
	}
}

func newClient(t *testing.T, site fakeSite) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)
	return NewClient(config.MapSource{config.EnvStoreURL: srv.URL}, srv.Client(), nil), srv.URL
}

func TestDetectEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		routes []string
		want   string
	}{
		{"jwt-auth preferred", []string{RouteSimpleJWTLogin, RouteJWTAuth}, RouteJWTAuth},
		{"simple-jwt-login", []string{RouteSimpleJWTLogin}, RouteSimpleJWTLogin},
		{"default when neither advertised", nil, RouteJWTAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, base := newClient(t, fakeSite{routes: tt.routes})
			got, err := c.DetectEndpoint(context.Background())
			require.NoError(t, err)
			assert.Equal(t, base+"/wp-json"+tt.want, got)
		})
	}
}

func TestDetectEndpointNotConfigured(t *testing.T) {
	c := NewClient(config.MapSource{}, nil, nil)
	_, err := c.DetectEndpoint(context.Background())
	var cfgErr *models.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoginWithProfile(t *testing.T) {
	var sent map[string]string
	c, _ := newClient(t, fakeSite{
		routes: []string{RouteJWTAuth},
		token: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/wp-json/jwt-auth/v1/token", r.URL.Path)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			_, _ = io.WriteString(w, `{"token":"tok-1","user_email":"jane@example.com"}`)
		},
		profile: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"id":12,"email":"jane@example.com","first_name":"Jane","last_name":"Doe"}`)
		},
	})

	s, err := c.Login(context.Background(), "jane@example.com", "pw123456")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"username": "jane@example.com", "password": "pw123456"}, sent)
	assert.Equal(t, &models.Session{
		Token: "tok-1",
		User:  models.SessionUser{ID: 12, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
	}, s)
}

func TestLoginProfileUnavailable(t *testing.T) {
	c, _ := newClient(t, fakeSite{
		routes: []string{RouteSimpleJWTLogin},
		token: func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"success":true,"jwt":"tok-2","user_id":"7","user_email":"j@example.com"}`)
		},
	})

	s, err := c.Login(context.Background(), "jane", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", s.Token)
	assert.Equal(t, models.SessionUser{ID: 7, Email: "j@example.com"}, s.User)
}

func TestLoginNestedToken(t *testing.T) {
	c, _ := newClient(t, fakeSite{
		routes: []string{RouteSimpleJWTLogin},
		token: func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"success":true,"data":{"jwt":"tok-3"}}`)
		},
	})

	s, err := c.Login(context.Background(), "jane", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-3", s.Token)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name  string
		token func(w http.ResponseWriter, r *http.Request)
		check func(t *testing.T, err error)
	}{
		{
			name: "wrong password",
			token: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, `{"code":"[jwt_auth] incorrect_password","message":"The password you entered is incorrect."}`)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
			},
		},
		{
			name: "success without token",
			token: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"success":true}`)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
			},
		},
		{
			name: "non-json failure",
			token: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, "<html>bad gateway</html>")
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
			},
		},
		{
			name:  "plugin not installed",
			token: nil,
			check: func(t *testing.T, err error) {
				var missing *models.EndpointMissingError
				require.ErrorAs(t, err, &missing)
				assert.Contains(t, missing.Error(), "/wp-json/jwt-auth/v1/token")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newClient(t, fakeSite{token: tt.token})
			_, err := c.Login(context.Background(), "jane", "pw123456")
			tt.check(t, err)
		})
	}
}

func TestFetchProfileBestEffort(t *testing.T) {
	c, _ := newClient(t, fakeSite{profile: func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	}})

	assert.Nil(t, c.FetchProfile(context.Background(), "tok"))
	assert.Nil(t, c.FetchProfile(context.Background(), ""))
}
