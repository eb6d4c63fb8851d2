// internal/domain/catalog/entity.go
package catalog

import (
	"encoding/json"
	"strings"
)

// Product represents a product as shown in the storefront
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Category      string   `json:"category"`
	Images        []string `json:"images"`
	Sizes         []string `json:"sizes,omitempty"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	NumReviews    int      `json:"numReviews"`
	IsFeatured    bool     `json:"isFeatured"`
}

// InStock reports whether any unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// HasSize reports whether size is valid for the product. Products without
// sizes accept only the empty size.
func (p *Product) HasSize(size string) bool {
	_, ok := p.CanonicalSize(size)
	return ok
}

// CanonicalSize returns the product's own spelling of size, matched
// case-insensitively
func (p *Product) CanonicalSize(size string) (string, bool) {
	size = strings.TrimSpace(size)
	if len(p.Sizes) == 0 {
		return "", size == ""
	}
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return s, true
		}
	}
	return "", false
}

// DiscountPercent returns the markdown against the original price
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice <= p.Price || p.OriginalPrice == 0 {
		return 0
	}
	return int((p.OriginalPrice - p.Price) / p.OriginalPrice * 100)
}

// Category represents a product category
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Image        string `json:"image,omitempty"`
	ProductCount int    `json:"productCount,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Filter holds the catalog query parameters
type Filter struct {
	Category    string `form:"category"`
	Search      string `form:"search"`
	Sort        string `form:"sort"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
	FocusSearch bool   `form:"-"`
}

// Listing is the product list view
type Listing struct {
	Products    []Product  `json:"products"`
	Categories  []Category `json:"categories"`
	Pagination  Pagination `json:"pagination"`
	Category    string     `json:"category,omitempty"`
	Search      string     `json:"search,omitempty"`
	FocusSearch bool       `json:"focusSearch"`
}

// ReviewRequest represents a product review submission
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title"`
	Comment string `json:"comment" binding:"required"`
}

// wireProduct accepts the field spellings the backend has been seen to use
type wireProduct struct {
	MongoID       string          `json:"_id"`
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"`
	OriginalPrice float64         `json:"originalPrice"`
	MRP           float64         `json:"mrp"`
	Category      json.RawMessage `json:"category"`
	Images        []string        `json:"images"`
	Image         string          `json:"image"`
	Sizes         []string        `json:"sizes"`
	Stock         *int            `json:"stock"`
	CountInStock  *int            `json:"countInStock"`
	Rating        float64         `json:"rating"`
	NumReviews    int             `json:"numReviews"`
	IsFeatured    bool            `json:"isFeatured"`
}

func (w wireProduct) toProduct() Product {
	p := Product{
		ID:            firstNonEmpty(w.ID, w.MongoID),
		Name:          w.Name,
		Description:   w.Description,
		Price:         w.Price,
		OriginalPrice: w.OriginalPrice,
		Category:      categoryName(w.Category),
		Images:        w.Images,
		Sizes:         w.Sizes,
		Rating:        w.Rating,
		NumReviews:    w.NumReviews,
		IsFeatured:    w.IsFeatured,
	}
	if p.OriginalPrice == 0 {
		p.OriginalPrice = w.MRP
	}
	if len(p.Images) == 0 && w.Image != "" {
		p.Images = []string{w.Image}
	}
	switch {
	case w.Stock != nil:
		p.Stock = *w.Stock
	case w.CountInStock != nil:
		p.Stock = *w.CountInStock
	}
	return p
}

type wireCategory struct {
	MongoID      string `json:"_id"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Image        string `json:"image"`
	ProductCount int    `json:"productCount"`
}

func (w wireCategory) toCategory() Category {
	c := Category{
		ID:           firstNonEmpty(w.ID, w.MongoID),
		Name:         w.Name,
		Slug:         w.Slug,
		Image:        w.Image,
		ProductCount: w.ProductCount,
	}
	if c.Slug == "" {
		c.Slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(c.Name), " ", "-"))
	}
	return c
}

// categoryName accepts either a plain string or an object with a name
func categoryName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return firstNonEmpty(obj.Name, obj.Slug)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
