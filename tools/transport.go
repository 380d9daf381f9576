package tools

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Upstream names used as metric labels and span prefixes.
const (
	TargetCommerce = "commerce"
	TargetContent  = "content"
)

const maxBodyBytes = 4 << 20

var upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "storefront_upstream_request_duration_seconds",
	Help:    "Latency of calls to the upstream commerce and content platforms.",
	Buckets: prometheus.DefBuckets,
}, []string{"target", "method", "code"})

type instrumentedTransport struct {
	target string
	next   http.RoundTripper
}

func (t instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := otel.Tracer("storefront/upstream").Start(req.Context(), t.target+" "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	// never put the full URL on the span, the commerce API carries its secret in the query
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("net.peer.name", req.URL.Host),
		attribute.String("url.path", req.URL.Path),
	)

	out := req.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(out.Header))

	start := time.Now()
	resp, err := t.next.RoundTrip(out)
	code := "error"
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		code = strconv.Itoa(resp.StatusCode)
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		if resp.StatusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, resp.Status)
		}
	}
	upstreamDuration.WithLabelValues(t.target, req.Method, code).Observe(time.Since(start).Seconds())
	return resp, err
}

// NewHTTPClient returns a client for one upstream. With followRedirects false
// 3xx responses are handed back to the caller untouched. A zero timeout keeps
// the transport default.
func NewHTTPClient(target string, followRedirects bool, timeout time.Duration) *http.Client {
	c := &http.Client{
		Transport: instrumentedTransport{target: target, next: http.DefaultTransport},
		Timeout:   timeout,
	}
	if !followRedirects {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}

// ErrBodyTooLarge is returned by ReadBody when the upstream sends more than
// it is allowed to.
var ErrBodyTooLarge = errors.New("upstream response body too large")

// ReadBody drains and closes the response body. A body over the size cap is
// an error, never a silently truncated document.
func ReadBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxBodyBytes {
		return "", fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, maxBodyBytes)
	}
	return string(b), nil
}
