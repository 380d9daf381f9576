// Package commerce talks to the WooCommerce REST API and reshapes what it
// returns into the smaller public shapes the storefront consumes.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/config"
	"storefront/models"
	"storefront/tools"

	"go.uber.org/zap"
)

const apiPrefix = "/wp-json/wc/v3/"

// Client is safe for concurrent use. Base URL and credentials are looked up
// on every request.
type Client struct {
	src  config.Source
	http *http.Client
	log  *zap.Logger
	now  func() time.Time
}

func NewClient(src config.Source, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = tools.NewHTTPClient(tools.TargetCommerce, true, 0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{src: src, http: httpClient, log: log, now: time.Now}
}

type RequestOptions struct {
	Method string
	Query  url.Values
	Body   any
}

// Response is a successful upstream answer. Body is not guaranteed to be JSON.
type Response struct {
	Status int
	Body   []byte
	JSON   bool
	Header http.Header
}

func (r *Response) Decode(v any) error {
	if !r.JSON {
		return fmt.Errorf("commerce: response is not JSON: %.120s", r.Body)
	}
	return json.Unmarshal(r.Body, v)
}

// Request performs one signed call against resourcePath (e.g. "products/12").
// There are no retries.
func (c *Client) Request(ctx context.Context, resourcePath string, opts RequestOptions) (*Response, error) {
	base, err := config.StoreBaseURL(c.src)
	if err != nil {
		return nil, err
	}
	creds, err := config.APICredentials(c.src)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(base + apiPrefix + strings.TrimLeft(resourcePath, "/"))
	if err != nil {
		return nil, fmt.Errorf("commerce: bad url: %w", err)
	}
	q := u.Query()
	for k, vs := range opts.Query {
		for _, v := range vs {
			if v != "" {
				q.Set(k, v)
			}
		}
	}
	q.Set("consumer_key", creds.Key)
	q.Set("consumer_secret", creds.Secret)
	u.RawQuery = q.Encode()

	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("commerce: encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("commerce: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce %s %s: %w", method, resourcePath, redact(err))
	}
	text, err := tools.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("commerce %s %s: read body: %w", method, resourcePath, err)
	}

	c.log.Debug("commerce request",
		zap.String("method", method),
		zap.String("path", resourcePath),
		zap.Int("upstream_status", resp.StatusCode))

	raw := []byte(text)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError(resp.StatusCode, raw)
	}
	return &Response{Status: resp.StatusCode, Body: raw, JSON: json.Valid(raw), Header: resp.Header}, nil
}

func upstreamError(status int, raw []byte) *models.UpstreamError {
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
		return &models.UpstreamError{Status: status, Code: parsed.Code, Message: parsed.Message}
	}
	msg := string(raw)
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return &models.UpstreamError{Status: status, Message: msg}
}

// redact drops the query (and with it the API secret) from transport
// errors, which quote the request URL.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, perr := url.Parse(uerr.URL); perr == nil {
			u.RawQuery = ""
			uerr.URL = u.String()
		}
	}
	return err
}
