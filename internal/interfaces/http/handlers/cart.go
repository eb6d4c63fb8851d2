// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	catalog *catalog.Service
	orders  *order.Service
	rules   cart.Rules
}

// NewCartHandler creates a new cart handler
func NewCartHandler(catalogService *catalog.Service, orderService *order.Service, rules cart.Rules) *CartHandler {
	return &CartHandler{
		catalog: catalogService,
		orders:  orderService,
		rules:   rules,
	}
}

// CartView is the cart page model
type CartView struct {
	Items     []cart.Item  `json:"items"`
	Summary   cart.Summary `json:"summary"`
	UpdatedAt *time.Time   `json:"updatedAt,omitempty"`
}

// CheckoutRequest represents the checkout form
type CheckoutRequest struct {
	Customer      order.Customer `json:"customer"`
	Shipping      order.Shipping `json:"shipping"`
	PaymentMethod string         `json:"paymentMethod"`
	Notes         string         `json:"notes"`
}

type checkoutItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}

type checkoutPayload struct {
	Items         []checkoutItem `json:"items"`
	Customer      order.Customer `json:"customer"`
	Shipping      order.Shipping `json:"shippingAddress"`
	PaymentMethod string         `json:"paymentMethod"`
	Notes         string         `json:"notes,omitempty"`
	Subtotal      float64        `json:"subtotal"`
	Discount      float64        `json:"discount"`
	ShippingFee   float64        `json:"shippingFee"`
	Total         float64        `json:"total"`
}

func (h *CartHandler) view(c *gin.Context) CartView {
	store := middleware.CartFromContext(c)
	items := store.Items()
	view := CartView{
		Items:   items,
		Summary: h.rules.Summarize(items, customerOf(middleware.SessionFromContext(c))),
	}
	if updated := store.UpdatedAt(); !updated.IsZero() {
		view.UpdatedAt = &updated
	}
	return view
}

func customerOf(store *session.Store) cart.Customer {
	if store == nil || !store.IsAuthenticated() {
		return cart.Customer{}
	}
	c := cart.Customer{Authenticated: true}
	if u := store.User(); u != nil {
		c.OrderCount = u.OrderCount
	}
	return c
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	respondOK(c, http.StatusOK, "Cart retrieved successfully", h.view(c))
}

// AddToCart handles POST /cart/items. Name, price, image and stock come
// from the catalog, never from the request.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondBackendError(c, err, "Failed to add item to cart")
		return
	}

	size, ok := product.CanonicalSize(req.Size)
	if !ok {
		respondError(c, http.StatusBadRequest, "Please select a valid size")
		return
	}
	if !product.InStock() {
		respondError(c, http.StatusBadRequest, "This product is out of stock")
		return
	}

	store := middleware.CartFromContext(c)
	before := 0
	for _, item := range store.Items() {
		if item.ProductID == product.ID && strings.EqualFold(item.Size, size) {
			before = item.Quantity
		}
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}

	quantity := store.Add(c.Request.Context(), cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Size:      size,
		Quantity:  req.Quantity,
		Image:     image,
		Category:  product.Category,
		MaxStock:  product.Stock,
	})

	if quantity < before+req.Quantity {
		respondNotify(c, http.StatusOK, "Item added to cart successfully", h.view(c), Notification{
			Type:    NotifyWarning,
			Message: fmt.Sprintf("Only %d of %s available", product.Stock, product.Name),
		})
		return
	}

	respondNotify(c, http.StatusOK, "Item added to cart successfully", h.view(c), Notification{
		Type:    NotifySuccess,
		Message: fmt.Sprintf("%s added to cart", product.Name),
	})
}

// UpdateCartItem handles PUT /cart/items/:productId?size=
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	store := middleware.CartFromContext(c)
	if _, err := store.UpdateQuantity(c.Request.Context(), c.Param("productId"), c.Query("size"), *req.Quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(c, http.StatusNotFound, "Item not found in cart")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update cart item")
		return
	}

	respondOK(c, http.StatusOK, "Cart item updated successfully", h.view(c))
}

// RemoveFromCart handles DELETE /cart/items/:productId?size=
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	store := middleware.CartFromContext(c)
	if err := store.Remove(c.Request.Context(), c.Param("productId"), c.Query("size")); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(c, http.StatusNotFound, "Item not found in cart")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to remove item from cart")
		return
	}

	respondOK(c, http.StatusOK, "Item removed from cart successfully", h.view(c))
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	middleware.CartFromContext(c).Clear(c.Request.Context())
	respondOK(c, http.StatusOK, "Cart cleared successfully", h.view(c))
}

// Checkout handles POST /cart/checkout. The priced cart is handed to the
// backend, which owns payment; the local cart is cleared only once the
// order exists.
func (h *CartHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Email = strings.TrimSpace(req.Customer.Email)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)
	if req.Customer.Name == "" || (req.Customer.Email == "" && req.Customer.Phone == "") {
		respondError(c, http.StatusBadRequest, "Please enter your name and an email or phone number")
		return
	}
	if strings.TrimSpace(req.Shipping.Address) == "" || strings.TrimSpace(req.Shipping.City) == "" {
		respondError(c, http.StatusBadRequest, "Please enter a shipping address")
		return
	}

	view := h.view(c)
	if len(view.Items) == 0 {
		respondError(c, http.StatusBadRequest, "Your cart is empty")
		return
	}

	payload := checkoutPayload{
		Items:         make([]checkoutItem, 0, len(view.Items)),
		Customer:      req.Customer,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		Notes:         strings.TrimSpace(req.Notes),
		Subtotal:      view.Summary.Subtotal,
		Discount:      view.Summary.Discount,
		ShippingFee:   view.Summary.Shipping,
		Total:         view.Summary.Total,
	}
	if payload.PaymentMethod == "" {
		payload.PaymentMethod = "cod"
	}
	for _, item := range view.Items {
		payload.Items = append(payload.Items, checkoutItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Image:     item.Image,
		})
	}

	created, err := h.orders.Create(c.Request.Context(), sessionToken(c), payload)
	if err != nil {
		respondSessionBackendError(c, err, "Failed to place order")
		return
	}

	middleware.CartFromContext(c).Clear(c.Request.Context())

	respondNotify(c, http.StatusCreated, "Order placed successfully", gin.H{
		"orderId": created.OrderID,
		"order":   created,
	}, Notification{Type: NotifySuccess, Message: fmt.Sprintf("Order %s placed", created.OrderID)})
}
