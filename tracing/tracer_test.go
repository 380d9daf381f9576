package tracing

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func attr(kvs []attribute.KeyValue, key string) attribute.Value {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestMiddlewareRecordsRouteSpans(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exporter := tracetest.NewInMemoryExporter()
	tr := NewTracer("storefront-test", exporter)

	r := gin.New()
	r.Use(Middleware(tr))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, target := range []string{"/items/42", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Contains(t, w.Header().Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
	}
	// the in-memory exporter forgets its spans on Shutdown, so flush first
	require.NoError(t, tr.(tracer).tp.ForceFlush(context.Background()))
	t.Cleanup(func() { _ = tr.Shutdown() })

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "GET /items/:id", spans[0].Name)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.EqualValues(t, 200, attr(spans[0].Attributes, "http.status_code").AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	assert.Equal(t, "GET /boom", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestFromConfig(t *testing.T) {
	tr, err := FromConfig("storefront-test", "", nil)
	require.NoError(t, err)
	_, span := tr.Start(context.Background(), "ignored")
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, tr.Shutdown())

	var out bytes.Buffer
	tr, err = FromConfig("storefront-test", "stdout", &out)
	require.NoError(t, err)
	_, span = tr.Start(context.Background(), "checkout")
	span.End()
	require.NoError(t, tr.Shutdown())
	assert.Contains(t, out.String(), `"Name": "checkout"`)
}
