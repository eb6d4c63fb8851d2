// internal/domain/order/entity.go
package order

import (
	"encoding/json"
	"time"
)

// Status represents the order status reported by the backend
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Order is the read-only projection of an order as reported by the backend.
// It is never constructed locally.
type Order struct {
	OrderID           string        `json:"orderId"`
	Customer          Customer      `json:"customer"`
	Items             []Item        `json:"items"`
	Shipping          Shipping      `json:"shipping"`
	OrderStatus       Status        `json:"orderStatus"`
	PaymentStatus     string        `json:"paymentStatus"`
	PaymentMethod     string        `json:"paymentMethod"`
	TrackingID        string        `json:"trackingId,omitempty"`
	Subtotal          float64       `json:"subtotal,omitempty"`
	Discount          float64       `json:"discount,omitempty"`
	ShippingFee       float64       `json:"shippingFee,omitempty"`
	Total             float64       `json:"total"`
	EstimatedDelivery *time.Time    `json:"estimatedDelivery,omitempty"`
	StatusHistory     []StatusEvent `json:"statusHistory"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// Customer holds the buyer's contact details
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Item represents one ordered line
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// LineTotal returns price times quantity
func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Shipping is the delivery address
type Shipping struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// StatusEvent is one entry of the backend's status history, shown verbatim
type StatusEvent struct {
	Status    Status    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// wireOrder accepts the field spellings the backend has been seen to use
type wireOrder struct {
	Order
	MongoID      string          `json:"_id"`
	ID           string          `json:"id"`
	Status       Status          `json:"status"`
	TotalAmount  float64         `json:"totalAmount"`
	ShippingInfo *Shipping       `json:"shippingAddress"`
	Tracking     string          `json:"trackingNumber"`
	Nested       json.RawMessage `json:"order"`
}

// decodeOrder normalizes a backend payload into an Order. The payload may
// be the order itself or an object wrapping it under "order".
func decodeOrder(raw json.RawMessage) (*Order, error) {
	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if len(w.Nested) > 0 && string(w.Nested) != "null" {
		return decodeOrder(w.Nested)
	}

	o := w.Order
	if o.OrderID == "" {
		o.OrderID = w.ID
	}
	if o.OrderID == "" {
		o.OrderID = w.MongoID
	}
	if o.OrderStatus == "" {
		o.OrderStatus = w.Status
	}
	if o.Total == 0 {
		o.Total = w.TotalAmount
	}
	if o.TrackingID == "" {
		o.TrackingID = w.Tracking
	}
	if o.Shipping == (Shipping{}) && w.ShippingInfo != nil {
		o.Shipping = *w.ShippingInfo
	}
	if o.StatusHistory == nil {
		o.StatusHistory = []StatusEvent{}
	}
	return &o, nil
}
