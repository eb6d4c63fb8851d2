// internal/domain/order/service.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
)

var (
	// ErrIdentifierRequired is returned before any call when the lookup is blank
	ErrIdentifierRequired = errors.New("please enter an order ID or tracking ID")
	// ErrOrderNotFound maps a backend 404 on lookup
	ErrOrderNotFound = errors.New("order not found")
	// ErrFetchFailed covers every other lookup failure
	ErrFetchFailed = errors.New("failed to fetch order details")
	// ErrVerificationRequired is returned when a guest cancels without email or phone
	ErrVerificationRequired = errors.New("please provide the email or phone number used for the order")
	// ErrCancelFailed wraps a rejected cancellation
	ErrCancelFailed = errors.New("failed to cancel order")
	// ErrCancelledStale is returned when the backend accepted a cancellation
	// but the order could not be re-fetched afterwards
	ErrCancelledStale = errors.New("order cancelled but its latest status is unavailable")
)

// LookupMode selects which identifier the customer typed
type LookupMode string

const (
	LookupByOrderID    LookupMode = "order"
	LookupByTrackingID LookupMode = "tracking"
)

// LookupRequest describes a tracking lookup
type LookupRequest struct {
	Mode       LookupMode
	Identifier string
	Token      string
}

// CancelRequest describes a cancellation. Guests must supply Email or Phone.
type CancelRequest struct {
	OrderID string `json:"-"`
	Reason  string `json:"reason,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Token   string `json:"-"`
}

// Service fetches order projections and forwards cancellations
type Service struct {
	backend *backend.Client
	log     *logrus.Logger
}

// NewService creates a new order service
func NewService(backendClient *backend.Client, log *logrus.Logger) *Service {
	return &Service{
		backend: backendClient,
		log:     log,
	}
}

// Track fetches the order projection for an order id or carrier tracking id
func (s *Service) Track(ctx context.Context, req LookupRequest) (*Order, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, ErrIdentifierRequired
	}

	path := "/orders/" + url.PathEscape(identifier)
	if req.Mode == LookupByTrackingID {
		path = "/orders/track/" + url.PathEscape(identifier)
	}

	var raw json.RawMessage
	if err := s.backend.Get(ctx, path, nil, req.Token, &raw); err != nil {
		if backend.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		s.log.WithFields(logrus.Fields{
			"mode":       req.Mode,
			"identifier": identifier,
		}).WithError(err).Warn("Order lookup failed")
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	o, err := decodeOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order payload: %v", ErrFetchFailed, err)
	}
	return o, nil
}

// Cancel asks the backend to cancel an order and returns the re-fetched
// projection. Nothing is changed locally when the backend refuses. When the
// cancellation went through but the re-fetch did not, ErrCancelledStale is
// returned with a nil order.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (*Order, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Reason = strings.TrimSpace(req.Reason)

	if req.OrderID == "" {
		return nil, ErrIdentifierRequired
	}
	if req.Token == "" && req.Email == "" && req.Phone == "" {
		return nil, ErrVerificationRequired
	}

	path := "/orders/" + url.PathEscape(req.OrderID) + "/cancel"
	if err := s.backend.Post(ctx, path, req.Token, req, nil); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": req.OrderID,
			"guest":    req.Token == "",
		}).WithError(err).Warn("Order cancellation rejected")
		return nil, fmt.Errorf("%w: %w", ErrCancelFailed, err)
	}

	s.log.WithField("order_id", req.OrderID).Info("Order cancelled")

	o, err := s.Track(ctx, LookupRequest{Mode: LookupByOrderID, Identifier: req.OrderID, Token: req.Token})
	if err != nil {
		s.log.WithField("order_id", req.OrderID).WithError(err).Warn("Cancelled order could not be re-fetched")
		return nil, fmt.Errorf("%w: %w", ErrCancelledStale, err)
	}
	return o, nil
}

// Create forwards a checkout payload and returns the new order's id
func (s *Service) Create(ctx context.Context, token string, payload interface{}) (*Order, error) {
	var raw json.RawMessage
	if err := s.backend.Post(ctx, "/orders", token, payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	o, err := decodeOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read created order: %w", err)
	}
	return o, nil
}
