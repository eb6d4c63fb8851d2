package order

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

const shippedOrder = `{
	"success": true,
	"data": {
		"_id": "665f1c",
		"orderId": "TL2025001",
		"customer": {"name": "Asha", "email": "asha@example.com", "phone": "9999999999"},
		"items": [{"productId": "tee-01", "name": "Linen Tee", "size": "M", "quantity": 2, "price": 499}],
		"shipping": {"address": "12 MG Road", "city": "Pune", "state": "MH", "postalCode": "411001", "country": "IN"},
		"orderStatus": "shipped",
		"paymentStatus": "paid",
		"paymentMethod": "upi",
		"trackingId": "AWB998877",
		"total": 998,
		"statusHistory": [
			{"status": "pending", "note": "Order placed", "timestamp": "2025-01-02T10:00:00Z"},
			{"status": "shipped", "note": "Handed to courier", "timestamp": "2025-01-04T09:30:00Z"}
		],
		"createdAt": "2025-01-02T10:00:00Z"
	}
}`

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := backend.New(srv.URL, srv.Client(), 0, logger.Discard())
	return NewService(client, logger.Discard())
}

func TestTrackByOrderID(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/TL2025001", r.URL.Path)
		_, _ = w.Write([]byte(shippedOrder))
	})

	o, err := svc.Track(context.Background(), LookupRequest{Mode: LookupByOrderID, Identifier: " TL2025001 "})
	require.NoError(t, err)

	assert.Equal(t, "TL2025001", o.OrderID)
	assert.Equal(t, StatusShipped, o.OrderStatus)
	assert.Equal(t, "AWB998877", o.TrackingID)
	assert.Len(t, o.StatusHistory, 2)
	assert.Equal(t, 998.0, o.Total)

	v := BuildView(o)
	assert.Equal(t, StepCompleted, v.Steps[0].State)
	assert.Equal(t, StepCompleted, v.Steps[1].State)
	assert.Equal(t, StepCurrent, v.Steps[2].State)
	assert.Equal(t, StepPending, v.Steps[3].State)
	assert.False(t, v.CanCancel)
}

func TestTrackByTrackingID(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/track/AWB998877", r.URL.Path)
		_, _ = w.Write([]byte(`{"order": {"id": "TL2025001", "status": "processing", "totalAmount": 450}}`))
	})

	o, err := svc.Track(context.Background(), LookupRequest{Mode: LookupByTrackingID, Identifier: "AWB998877"})
	require.NoError(t, err)

	assert.Equal(t, "TL2025001", o.OrderID)
	assert.Equal(t, StatusProcessing, o.OrderStatus)
	assert.Equal(t, 450.0, o.Total)
	assert.NotNil(t, o.StatusHistory)
}

func TestTrackErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrOrderNotFound},
		{"server error", http.StatusInternalServerError, ErrFetchFailed},
		{"forbidden", http.StatusForbidden, ErrFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := svc.Track(context.Background(), LookupRequest{Mode: LookupByOrderID, Identifier: "X1"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTrackBlankIdentifierMakesNoCall(t *testing.T) {
	var calls int32
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := svc.Track(context.Background(), LookupRequest{Mode: LookupByOrderID, Identifier: "   "})
	assert.ErrorIs(t, err, ErrIdentifierRequired)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestGuestCancelWithoutVerificationMakesNoCall(t *testing.T) {
	var calls int32
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := svc.Cancel(context.Background(), CancelRequest{OrderID: "TL2025001", Email: " ", Phone: ""})
	assert.ErrorIs(t, err, ErrVerificationRequired)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestGuestCancelSendsVerificationAndRefetches(t *testing.T) {
	var cancelled int32
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/orders/TL2025001/cancel":
			assert.Empty(t, r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			var got map[string]string
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, "9999999999", got["phone"])
			assert.Equal(t, "Changed my mind", got["reason"])
			atomic.StoreInt32(&cancelled, 1)
			_, _ = w.Write([]byte(`{"success":true,"message":"Order cancelled"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/orders/TL2025001":
			status := "pending"
			if atomic.LoadInt32(&cancelled) == 1 {
				status = "cancelled"
			}
			_, _ = w.Write([]byte(`{"orderId":"TL2025001","orderStatus":"` + status + `"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	o, err := svc.Cancel(context.Background(), CancelRequest{
		OrderID: "TL2025001",
		Reason:  "Changed my mind",
		Phone:   "9999999999",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.OrderStatus)
	assert.False(t, BuildView(o).CanCancel)
}

func TestAuthenticatedCancelUsesToken(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(`{"orderId":"TL2025001","orderStatus":"cancelled"}`))
	})

	o, err := svc.Cancel(context.Background(), CancelRequest{OrderID: "TL2025001", Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.OrderStatus)
}

func TestCancelRejectedSurfacesBackendMessage(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Order has already been shipped"}`))
	})

	_, err := svc.Cancel(context.Background(), CancelRequest{OrderID: "TL2025001", Email: "asha@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelFailed)
	assert.Equal(t, "Order has already been shipped", backend.MessageOf(err, "fallback"))
}

func TestCancelAcceptedButRefetchFails(t *testing.T) {
	var cancelled int32
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			atomic.AddInt32(&cancelled, 1)
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	o, err := svc.Cancel(context.Background(), CancelRequest{OrderID: "TL1", Email: "asha@example.com"})
	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrCancelledStale)
	assert.NotErrorIs(t, err, ErrCancelFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&cancelled))
}
