// internal/domain/cart/entity.go
package cart

import (
	"strings"
	"time"
)

// StorageSlot is the per-client key the cart blob is persisted under
const StorageSlot = "cart-storage"

// Item represents one cart line. (ProductID, Size) is unique within a cart.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	MaxStock  int     `json:"maxStock"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// LineTotal returns price times quantity
func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// matches compares sizes case-insensitively so "M" and "m" share a line
func (i Item) matches(productID, size string) bool {
	return i.ProductID == productID && strings.EqualFold(i.Size, strings.TrimSpace(size))
}

// persistedCart is the blob written to storage
type persistedCart struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Customer describes who the cart is being priced for
type Customer struct {
	Authenticated bool
	OrderCount    int
}

// Summary represents calculated cart totals
type Summary struct {
	ItemCount     int     `json:"itemCount"`     // Number of distinct lines
	TotalQuantity int     `json:"totalQuantity"` // Sum of all quantities
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Shipping      float64 `json:"shipping"`
	Total         float64 `json:"total"`
}
