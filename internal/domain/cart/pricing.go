// internal/domain/cart/pricing.go
package cart

import (
	"math"

	"github.com/your-org/ecommerce-storefront/internal/config"
)

// Rules holds the storefront's display pricing rules. The backend remains
// the authority on what is actually charged.
type Rules struct {
	DiscountThreshold      float64
	DiscountRate           float64
	ShippingFee            float64
	FreeShippingOrderLimit int
}

// DefaultRules are 10% off at 500 and free shipping for a customer's first five orders
var DefaultRules = Rules{
	DiscountThreshold:      500,
	DiscountRate:           0.10,
	ShippingFee:            99,
	FreeShippingOrderLimit: 5,
}

// RulesFromConfig builds pricing rules from configuration
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		DiscountThreshold:      cfg.Pricing.DiscountThreshold,
		DiscountRate:           cfg.Pricing.DiscountRate,
		ShippingFee:            cfg.Pricing.ShippingFee,
		FreeShippingOrderLimit: cfg.Pricing.FreeShippingOrderLimit,
	}
}

// Discount returns round(subtotal × rate) once the threshold is reached
func (r Rules) Discount(subtotal float64) float64 {
	if subtotal < r.DiscountThreshold {
		return 0
	}
	return math.Round(subtotal * r.DiscountRate)
}

// Shipping is waived for signed-in customers below the order-count limit
func (r Rules) Shipping(c Customer) float64 {
	if c.Authenticated && c.OrderCount < r.FreeShippingOrderLimit {
		return 0
	}
	return r.ShippingFee
}

// Summarize calculates the cart summary for a customer
func (r Rules) Summarize(items []Item, c Customer) Summary {
	var s Summary

	s.ItemCount = len(items)
	for _, item := range items {
		s.TotalQuantity += item.Quantity
		s.Subtotal += item.LineTotal()
	}

	s.Discount = r.Discount(s.Subtotal)
	s.Shipping = r.Shipping(c)
	s.Total = s.Subtotal - s.Discount + s.Shipping

	return s
}
