// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/pkg/imageurl"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

var (
	// ErrProductNotFound is returned when the backend has no such product
	ErrProductNotFound = errors.New("product not found")
	// ErrLoginRequired is returned when an anonymous visitor tries to review
	ErrLoginRequired = errors.New("please log in to write a review")
	// ErrInvalidRating is returned for ratings outside 1..5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrCommentRequired is returned for an empty review comment
	ErrCommentRequired = errors.New("please write a comment")
)

var allowedSorts = map[string]bool{
	"newest":     true,
	"price_asc":  true,
	"price_desc": true,
	"rating":     true,
	"popular":    true,
}

// Service builds catalog views from the backend
type Service struct {
	backend     *backend.Client
	placeholder string
	log         *logrus.Logger
}

// NewService creates a new catalog service
func NewService(backendClient *backend.Client, placeholder string, log *logrus.Logger) *Service {
	return &Service{
		backend:     backendClient,
		placeholder: placeholder,
		log:         log,
	}
}

// Browse loads one page of products together with the category list
func (s *Service) Browse(ctx context.Context, filter Filter) (*Listing, error) {
	filter = filter.normalized()

	var (
		products   []Product
		pagination Pagination
		categories []Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, pagination, err = s.ListProducts(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.ListCategories(gctx)
		if err != nil {
			// The listing still renders without the category sidebar
			s.log.WithError(err).Warn("Failed to load categories")
			categories = []Category{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Listing{
		Products:    products,
		Categories:  categories,
		Pagination:  pagination,
		Category:    filter.Category,
		Search:      filter.Search,
		FocusSearch: filter.FocusSearch,
	}, nil
}

// ListProducts fetches one page of products matching filter
func (s *Service) ListProducts(ctx context.Context, filter Filter) ([]Product, Pagination, error) {
	filter = filter.normalized()

	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("limit", strconv.Itoa(filter.Limit))
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Sort != "" {
		query.Set("sort", filter.Sort)
	}

	var raw json.RawMessage
	if err := s.backend.Get(ctx, "/products", query, "", &raw); err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to load products: %w", err)
	}

	wire, pagination, err := decodeProductPage(raw)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to load products: %w", err)
	}

	products := make([]Product, 0, len(wire))
	for _, w := range wire {
		products = append(products, s.present(w.toProduct()))
	}

	if pagination.Limit == 0 {
		pagination.Page = filter.Page
		pagination.Limit = filter.Limit
		pagination.Total = len(products)
	}
	pagination.fill()

	return products, pagination, nil
}

// ListCategories fetches every category
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var raw json.RawMessage
	if err := s.backend.Get(ctx, "/categories", nil, "", &raw); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	var wire []wireCategory
	if err := decodeList(raw, "categories", &wire); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	categories := make([]Category, 0, len(wire))
	for _, w := range wire {
		c := w.toCategory()
		if c.Image != "" {
			c.Image = imageurl.Normalize(c.Image, s.placeholder)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// GetProduct fetches a single product
func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrProductNotFound
	}

	var raw json.RawMessage
	if err := s.backend.Get(ctx, "/products/"+url.PathEscape(id), nil, "", &raw); err != nil {
		if backend.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var envelope struct {
		Product *wireProduct `json:"product"`
	}
	var w wireProduct
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Product != nil {
		w = *envelope.Product
	} else if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to load product: invalid payload: %w", err)
	}

	p := s.present(w.toProduct())
	if p.ID == "" {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// SubmitReview validates and forwards a product review
func (s *Service) SubmitReview(ctx context.Context, token, productID string, req ReviewRequest) error {
	if token == "" {
		return ErrLoginRequired
	}
	if req.Rating < 1 || req.Rating > 5 {
		return ErrInvalidRating
	}
	req.Comment = strings.TrimSpace(req.Comment)
	req.Title = strings.TrimSpace(req.Title)
	if req.Comment == "" {
		return ErrCommentRequired
	}

	path := "/products/" + url.PathEscape(productID) + "/reviews"
	if err := s.backend.Post(ctx, path, token, req, nil); err != nil {
		if backend.IsNotFound(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to submit review: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"rating":     req.Rating,
	}).Info("Review submitted")
	return nil
}

func (s *Service) present(p Product) Product {
	p.Images = imageurl.NormalizeAll(p.Images, s.placeholder)
	return p
}

func (f Filter) normalized() Filter {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	if !allowedSorts[f.Sort] {
		f.Sort = ""
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return f
}

func (p *Pagination) fill() {
	if p.Limit > 0 {
		p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
	}
	p.HasNext = p.Page < p.TotalPages
	p.HasPrev = p.Page > 1
}

// decodeProductPage accepts a bare array or {products, pagination}
func decodeProductPage(raw json.RawMessage) ([]wireProduct, Pagination, error) {
	var list []wireProduct
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, Pagination{}, nil
	}

	var page struct {
		Products   []wireProduct `json:"products"`
		Pagination *Pagination   `json:"pagination"`
		Total      int           `json:"total"`
		Page       int           `json:"page"`
		Limit      int           `json:"limit"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, Pagination{}, fmt.Errorf("invalid product list: %w", err)
	}

	if page.Pagination != nil {
		return page.Products, *page.Pagination, nil
	}
	return page.Products, Pagination{Page: page.Page, Limit: page.Limit, Total: page.Total}, nil
}

// decodeList accepts a bare array or an object holding it under key
func decodeList(raw json.RawMessage, key string, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err == nil {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("invalid %s list: %w", key, err)
	}
	inner, ok := obj[key]
	if !ok {
		return fmt.Errorf("invalid %s list: missing %q", key, key)
	}
	return json.Unmarshal(inner, dest)
}
