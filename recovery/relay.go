// Package recovery drives the content platform's server-rendered password
// recovery pages on the shopper's behalf.
package recovery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/config"
	"storefront/models"
	"storefront/tools"

	"go.uber.org/zap"
)

// Relay never keeps a ResetTicket between calls.
type Relay struct {
	src        config.Source
	http       *http.Client
	log        *zap.Logger
	strategies []Strategy
}

// NewRelay wires the default strategy order. httpClient must not follow
// redirects; nil builds one that doesn't.
func NewRelay(src config.Source, httpClient *http.Client, log *zap.Logger) *Relay {
	if httpClient == nil {
		httpClient = tools.NewHTTPClient(tools.TargetContent, false, 0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{
		src:        src,
		http:       httpClient,
		log:        log,
		strategies: []Strategy{AccountLostPassword{}, WPLoginLostPassword{}},
	}
}

// WithStrategies replaces the strategy order.
func (r *Relay) WithStrategies(s ...Strategy) *Relay {
	cp := *r
	cp.strategies = s
	return &cp
}

// RequestReset asks the platform to mail a reset link, trying each strategy
// in order. Whether the address is registered is never revealed.
func (r *Relay) RequestReset(ctx context.Context, email string) error {
	base, err := config.StoreBaseURL(r.src)
	if err != nil {
		return err
	}

	var causes []error
	for _, s := range r.strategies {
		err := s.Request(ctx, r.http, base, email)
		if err == nil {
			r.log.Debug("password reset requested", zap.String("strategy", s.Name()))
			return nil
		}
		r.log.Warn("password reset strategy failed",
			zap.String("strategy", s.Name()),
			zap.Error(err))
		causes = append(causes, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return &models.RecoveryUnavailableError{Causes: causes}
}

// OpenResetForm loads the reset form for an emailed login/key pair and
// scrapes what the follow-up submission needs.
func (r *Relay) OpenResetForm(ctx context.Context, login, key string) (*models.ResetTicket, error) {
	base, err := config.StoreBaseURL(r.src)
	if err != nil {
		return nil, err
	}

	q := url.Values{"action": {"rp"}, "key": {key}, "login": {login}}
	target := base + "/wp-login.php?" + q.Encode()
	jar := cookieList{}

	page, err := r.get(ctx, target, "")
	if err != nil {
		return nil, err
	}
	jar.add(page.resp)

	if isRedirect(page.resp.StatusCode) {
		loc := page.resp.Header.Get("Location")
		if tools.ContainsAny(loc, badLinkLocations...) {
			return nil, &models.InvalidOrExpiredLinkError{}
		}
		next, ok := sameFormRedirect(target, loc)
		if !ok {
			r.log.Warn("reset form redirected elsewhere", zap.Int("upstream_status", page.resp.StatusCode))
			return nil, &models.InvalidOrExpiredLinkError{}
		}
		// stock installs park login:key in a cookie and bounce back to the form
		page, err = r.get(ctx, next, jar.header())
		if err != nil {
			return nil, err
		}
		jar.add(page.resp)
		if isRedirect(page.resp.StatusCode) {
			if tools.ContainsAny(page.resp.Header.Get("Location"), badLinkLocations...) {
				return nil, &models.InvalidOrExpiredLinkError{}
			}
			return nil, &models.UpstreamError{Status: page.resp.StatusCode, Message: "reset form redirected twice"}
		}
	}

	if page.resp.StatusCode < 200 || page.resp.StatusCode >= 300 {
		return nil, NormalizeResetError(page.body)
	}

	ticket := &models.ResetTicket{
		Login:  tools.ExtractField(page.body, "rp_login"),
		Key:    tools.ExtractField(page.body, "rp_key"),
		Nonce:  tools.ExtractField(page.body, "wp-resetpass-nonce"),
		Cookie: jar.header(),
	}
	if ticket.Login == "" {
		ticket.Login = tools.ExtractFieldByID(page.body, "user_login")
	}
	if ticket.Login == "" || ticket.Key == "" {
		return nil, &models.InvalidOrExpiredLinkError{}
	}
	return ticket, nil
}

// SubmitNewPassword posts the new password with a ticket from OpenResetForm.
func (r *Relay) SubmitNewPassword(ctx context.Context, ticket *models.ResetTicket, password string) error {
	base, err := config.StoreBaseURL(r.src)
	if err != nil {
		return err
	}

	form := url.Values{
		"rp_login":  {ticket.Login},
		"rp_key":    {ticket.Key},
		"pass1":     {password},
		"pass2":     {password},
		"wp-submit": {"Save Password"},
	}
	if ticket.Nonce != "" {
		form.Set("wp-resetpass-nonce", ticket.Nonce)
	}

	res, err := postForm(ctx, r.http, base+"/wp-login.php?action=resetpass", form, ticket.Cookie)
	if err != nil {
		return err
	}
	location := res.resp.Header.Get("Location")
	if ClassifyOutcome(res.body, location) {
		return nil
	}
	if tools.ContainsAny(location, badLinkLocations...) {
		return &models.InvalidOrExpiredLinkError{}
	}
	r.log.Info("password reset rejected", zap.Int("upstream_status", res.resp.StatusCode))
	return NormalizeResetError(res.body)
}

// ResetPassword opens a fresh form and submits to it in one go.
func (r *Relay) ResetPassword(ctx context.Context, login, key, password string) error {
	ticket, err := r.OpenResetForm(ctx, login, key)
	if err != nil {
		return err
	}
	return r.SubmitNewPassword(ctx, ticket, password)
}

type reply struct {
	resp *http.Response
	body string
}

func (r *Relay) get(ctx context.Context, target, cookie string) (*reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("recovery: build request: %w", err)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return do(r.http, req)
}

func postForm(ctx context.Context, client *http.Client, target string, form url.Values, cookie string) (*reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("recovery: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return do(client, req)
}

func do(client *http.Client, req *http.Request) (*reply, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recovery %s %s: %w", req.Method, req.URL.Path, err)
	}
	body, err := tools.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("recovery %s %s: read body: %w", req.Method, req.URL.Path, err)
	}
	return &reply{resp: resp, body: body}, nil
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

// sameFormRedirect resolves loc against from and accepts it only when it
// points back at the reset form on the same host.
func sameFormRedirect(from, loc string) (string, bool) {
	if loc == "" {
		return "", false
	}
	base, err := url.Parse(from)
	if err != nil {
		return "", false
	}
	next, err := base.Parse(loc)
	if err != nil || next.Host != base.Host {
		return "", false
	}
	if !strings.HasSuffix(next.Path, "/wp-login.php") || next.Query().Get("action") != "rp" {
		return "", false
	}
	return next.String(), true
}

// cookieList keeps name=value pairs in arrival order, later values winning.
type cookieList struct {
	names  []string
	values map[string]string
}

func (c *cookieList) add(resp *http.Response) {
	for _, ck := range resp.Cookies() {
		if c.values == nil {
			c.values = map[string]string{}
		}
		if _, seen := c.values[ck.Name]; !seen {
			c.names = append(c.names, ck.Name)
		}
		c.values[ck.Name] = ck.Value
	}
}

func (c *cookieList) header() string {
	parts := make([]string, 0, len(c.names))
	for _, n := range c.names {
		parts = append(parts, n+"="+c.values[n])
	}
	return strings.Join(parts, "; ")
}
