package recovery

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"storefront/models"
	"storefront/tools"
)

// Strategy is one way of getting the platform to send a reset email.
// Implementations must not follow redirects on their own.
type Strategy interface {
	Name() string
	Request(ctx context.Context, client *http.Client, base, email string) error
}

// ErrMissingNonce means the lost-password page did not carry the expected
// form token, usually because the store runs a different theme or plugin.
var ErrMissingNonce = errors.New("lost-password form nonce not found")

const (
	accountLostPasswordPath = "/my-account/lost-password/"
	lostPasswordNonceField  = "woocommerce-lost-password-nonce"
)

// AccountLostPassword submits the store's "my account" lost-password form.
type AccountLostPassword struct{}

func (AccountLostPassword) Name() string { return "account-lost-password" }

func (AccountLostPassword) Request(ctx context.Context, client *http.Client, base, email string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+accountLostPasswordPath, nil)
	if err != nil {
		return err
	}
	form, err := do(client, req)
	if err != nil {
		return err
	}
	if form.resp.StatusCode < 200 || form.resp.StatusCode >= 300 {
		return &models.UpstreamError{Status: form.resp.StatusCode, Message: snippet(form.body)}
	}

	nonce := tools.ExtractField(form.body, lostPasswordNonceField)
	if nonce == "" {
		return ErrMissingNonce
	}

	res, err := postForm(ctx, client, base+accountLostPasswordPath, url.Values{
		"user_login":           {email},
		"wc_reset_password":    {"Reset password"},
		lostPasswordNonceField: {nonce},
		"_wp_http_referer":     {accountLostPasswordPath},
	}, "")
	if err != nil {
		return err
	}

	switch {
	case res.resp.StatusCode == http.StatusFound || res.resp.StatusCode == http.StatusSeeOther:
		return nil
	case res.resp.StatusCode >= 200 && res.resp.StatusCode < 300 && requestAccepted(res.body):
		return nil
	}
	return &models.UpstreamError{Status: res.resp.StatusCode, Message: snippet(res.body)}
}

// WPLoginLostPassword posts to the platform's native lost-password endpoint.
type WPLoginLostPassword struct{}

func (WPLoginLostPassword) Name() string { return "wp-login-lostpassword" }

func (WPLoginLostPassword) Request(ctx context.Context, client *http.Client, base, email string) error {
	res, err := postForm(ctx, client, base+"/wp-login.php?action=lostpassword", url.Values{
		"user_login":  {email},
		"redirect_to": {""},
		"wp-submit":   {"Get New Password"},
	}, "")
	if err != nil {
		return err
	}
	if (res.resp.StatusCode >= 200 && res.resp.StatusCode < 300) || res.resp.StatusCode == http.StatusFound {
		return nil
	}
	return &models.UpstreamError{Status: res.resp.StatusCode, Message: snippet(res.body)}
}

func snippet(body string) string {
	if len(body) > 200 {
		return body[:200]
	}
	return body
}
