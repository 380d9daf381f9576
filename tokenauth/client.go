// Package tokenauth logs shoppers in against whichever JWT plugin the
// content platform has installed.
package tokenauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"storefront/config"
	"storefront/models"
	"storefront/tools"

	"go.uber.org/zap"
)

// Known plugin routes, in order of preference.
const (
	RouteJWTAuth        = "/jwt-auth/v1/token"
	RouteSimpleJWTLogin = "/simple-jwt-login/v1/auth"
)

const noRouteMessage = "No route was found matching the URL and request method"

type Client struct {
	src  config.Source
	http *http.Client
	log  *zap.Logger
}

func NewClient(src config.Source, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = tools.NewHTTPClient(tools.TargetContent, true, 0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{src: src, http: httpClient, log: log}
}

// DetectEndpoint reads the route index and returns the token URL to use.
// An unreachable or unreadable index yields the jwt-auth default.
func (c *Client) DetectEndpoint(ctx context.Context) (string, error) {
	base, err := config.StoreBaseURL(c.src)
	if err != nil {
		return "", err
	}
	fallback := base + "/wp-json" + RouteJWTAuth

	var index struct {
		Routes map[string]json.RawMessage `json:"routes"`
	}
	status, body, err := c.send(ctx, http.MethodGet, base+"/wp-json", nil, "")
	if err != nil {
		c.log.Warn("route index unavailable", zap.Error(err))
		return fallback, nil
	}
	if err := json.Unmarshal(body, &index); err != nil {
		c.log.Warn("route index unreadable", zap.Int("upstream_status", status), zap.Error(err))
		return fallback, nil
	}

	for _, route := range []string{RouteJWTAuth, RouteSimpleJWTLogin} {
		if _, ok := index.Routes[route]; ok {
			return base + "/wp-json" + route, nil
		}
	}
	return fallback, nil
}

type tokenReply struct {
	Message   string          `json:"message"`
	Token     string          `json:"token"`
	JWT       string          `json:"jwt"`
	UserID    json.RawMessage `json:"user_id"`
	UserEmail string          `json:"user_email"`
	Data      json.RawMessage `json:"data"`
}

func (t *tokenReply) token() string {
	if t.Token != "" {
		return t.Token
	}
	if t.JWT != "" {
		return t.JWT
	}
	// simple-jwt-login nests the token under "data"
	var nested struct {
		Token string `json:"token"`
		JWT   string `json:"jwt"`
	}
	if json.Unmarshal(t.Data, &nested) != nil {
		return ""
	}
	if nested.Token != "" {
		return nested.Token
	}
	return nested.JWT
}

// Login exchanges credentials for a bearer token and whatever profile the
// platform will give us.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.Session, error) {
	endpoint, err := c.DetectEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"username": identifier, "password": password})
	if err != nil {
		return nil, err
	}
	status, body, err := c.send(ctx, http.MethodPost, endpoint, payload, "")
	if err != nil {
		return nil, err
	}

	var reply tokenReply
	if err := json.Unmarshal(body, &reply); err != nil {
		reply = tokenReply{Message: string(body)}
	}
	upstreamMsg := reply.Message
	if len(upstreamMsg) > 200 {
		upstreamMsg = upstreamMsg[:200]
	}

	if strings.Contains(upstreamMsg, noRouteMessage) {
		c.log.Warn("token endpoint missing",
			zap.Int("upstream_status", status),
			zap.String("endpoint", endpoint),
			zap.String("upstream_message", upstreamMsg))
		return nil, &models.EndpointMissingError{URL: endpoint}
	}
	if status < 200 || status >= 300 {
		c.log.Info("login rejected",
			zap.Int("upstream_status", status),
			zap.String("endpoint", endpoint),
			zap.String("upstream_message", upstreamMsg))
		return nil, models.ErrInvalidCredentials
	}

	token := reply.token()
	if token == "" {
		c.log.Warn("token missing from successful auth response",
			zap.Int("upstream_status", status),
			zap.String("endpoint", endpoint))
		return nil, models.ErrInvalidCredentials
	}

	session := &models.Session{Token: token}
	if profile := c.FetchProfile(ctx, token); profile != nil {
		session.User = *profile
	} else {
		c.log.Warn("token valid but profile unavailable", zap.String("endpoint", endpoint))
	}
	if session.User.ID == 0 {
		session.User.ID, _ = tools.PositiveInt(reply.UserID)
	}
	if session.User.Email == "" {
		session.User.Email = reply.UserEmail
	}
	return session, nil
}

// FetchProfile returns nil on any failure; a missing profile is not fatal.
func (c *Client) FetchProfile(ctx context.Context, token string) *models.SessionUser {
	if token == "" {
		return nil
	}
	base, err := config.StoreBaseURL(c.src)
	if err != nil {
		return nil
	}
	status, body, err := c.send(ctx, http.MethodGet, base+"/wp-json/wp/v2/users/me", nil, token)
	if err != nil || status < 200 || status >= 300 {
		return nil
	}
	var me struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return nil
	}
	return &models.SessionUser{ID: me.ID, Email: me.Email, FirstName: me.FirstName, LastName: me.LastName}
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte, bearer string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("tokenauth: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("tokenauth %s %s: %w", method, req.URL.Path, err)
	}
	body, err := tools.ReadBody(resp)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("tokenauth %s %s: read body: %w", method, req.URL.Path, err)
	}
	return resp.StatusCode, []byte(body), nil
}
