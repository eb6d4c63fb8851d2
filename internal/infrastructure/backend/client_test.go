package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/api", srv.Client(), 3, logger.Discard())
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c, srv
}

type product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestGetUnwrapsEnvelopeAndRawShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"envelope", `{"success":true,"data":{"id":"p1","name":"Tee"}}`},
		{"message envelope", `{"message":"ok","data":{"id":"p1","name":"Tee"}}`},
		{"raw object", `{"id":"p1","name":"Tee"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/products/p1", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			var got product
			require.NoError(t, c.Get(context.Background(), "/products/p1", nil, "", &got))
			assert.Equal(t, product{ID: "p1", Name: "Tee"}, got)
		})
	}
}

func TestBearerTokenAndQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "shirts", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`[]`))
	})

	var got []product
	err := c.Get(context.Background(), "products", url.Values{"category": {"shirts"}}, "tok-1", &got)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNoTokenNoHeader(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Post(context.Background(), "/auth/logout", "", nil, nil))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Order already shipped"}`, "Order already shipped"},
		{"error field", http.StatusConflict, `{"error":"Duplicate review"}`, "Duplicate review"},
		{"nested error", http.StatusBadRequest, `{"error":{"message":"Bad phone"}}`, "Bad phone"},
		{"no body", http.StatusBadRequest, ``, DefaultErrorMessage},
		{"success false", http.StatusOK, `{"success":false,"message":"Invalid credentials"}`, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.Post(context.Background(), "/auth/login", "", map[string]string{"email": "a"}, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"p1"}`))
	})

	var got product
	require.NoError(t, c.Get(context.Background(), "/products/p1", nil, "", &got))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "p1", got.ID)
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.Get(context.Background(), "/products", nil, "", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryUnauthorizedOrNotFound(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound} {
		var calls int32
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(status)
		})

		err := c.Get(context.Background(), "/auth/me", nil, "expired", nil)
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "status %d", status)
	}
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.Post(context.Background(), "/orders/1/cancel", "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := New(srv.URL, nil, 0, logger.Discard())
	err := c.Get(context.Background(), "/products", nil, "", nil)

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, "Something went wrong", MessageOf(err, "Something went wrong"))
}

func TestRawMessageDestination(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"abc"}}`))
	})

	var raw json.RawMessage
	require.NoError(t, c.Post(context.Background(), "/auth/login", "", nil, &raw))
	assert.JSONEq(t, `{"token":"abc"}`, string(raw))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.True(t, IsNotFound(&APIError{StatusCode: 404}))
	assert.False(t, IsNotFound(assert.AnError))
	assert.Equal(t, "fallback", MessageOf(&APIError{StatusCode: 500, Message: DefaultErrorMessage}, "fallback"))
	assert.Equal(t, "Nope", MessageOf(&APIError{StatusCode: 400, Message: "Nope"}, "fallback"))
	assert.Equal(t, "/orders/:id/cancel", routeLabel("orders/TL2025001/cancel"))
	assert.Equal(t, "/orders/track/:id", routeLabel("/orders/track/AWB998877"))
}
