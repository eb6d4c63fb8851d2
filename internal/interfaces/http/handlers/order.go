// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/pkg/pdf"
)

// OrderHandler handles order tracking endpoints
type OrderHandler struct {
	orders *order.Service
	pdf    *pdf.Service
	log    *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, pdfService *pdf.Service, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orderService,
		pdf:    pdfService,
		log:    log,
	}
}

// TrackOrder handles GET /orders/track?orderId= or ?trackingId=
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	req := order.LookupRequest{
		Mode:       order.LookupByOrderID,
		Identifier: c.Query("orderId"),
		Token:      sessionToken(c),
	}
	if strings.TrimSpace(req.Identifier) == "" {
		req.Mode = order.LookupByTrackingID
		req.Identifier = c.Query("trackingId")
	}

	o, err := h.orders.Track(c.Request.Context(), req)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order retrieved successfully", order.BuildView(o))
}

// CancelOrder handles POST /orders/:id/cancel. Signed-in shoppers are
// identified by their token; guests must give the order's email or phone.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req order.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}
	}
	req.OrderID = c.Param("id")
	req.Token = sessionToken(c)

	o, err := h.orders.Cancel(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrIdentifierRequired), errors.Is(err, order.ErrVerificationRequired):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, order.ErrCancelledStale):
			respondNotify(c, http.StatusOK, "Order cancelled successfully", nil, Notification{
				Type:    NotifySuccess,
				Message: "Your order has been cancelled. Refresh to see its latest status.",
			})
		case errors.Is(err, order.ErrCancelFailed):
			respondSessionBackendError(c, err, "Failed to cancel order")
		default:
			h.respondLookupError(c, err)
		}
		return
	}

	respondNotify(c, http.StatusOK, "Order cancelled successfully", order.BuildView(o),
		Notification{Type: NotifySuccess, Message: "Your order has been cancelled"})
}

// DownloadReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) DownloadReceipt(c *gin.Context) {
	o, err := h.orders.Track(c.Request.Context(), order.LookupRequest{
		Mode:       order.LookupByOrderID,
		Identifier: c.Param("id"),
		Token:      sessionToken(c),
	})
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	buf, err := h.pdf.GenerateReceipt(o)
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"order_id":  o.OrderID,
			"client_id": middleware.ClientIDFromContext(c),
		}).Error("Failed to generate receipt")
		respondError(c, http.StatusInternalServerError, "Failed to generate receipt")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, o.OrderID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *OrderHandler) respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrIdentifierRequired):
		respondError(c, http.StatusBadRequest, "Please enter an order ID or tracking ID")
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "Order not found")
	case backend.IsUnauthorized(err) && sessionToken(c) != "":
		respondSessionBackendError(c, err, "Failed to fetch order details")
	default:
		respondError(c, http.StatusBadGateway, "Failed to fetch order details")
	}
}
