// internal/domain/pages/service.go
package pages

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/pkg/email"
	"gopkg.in/yaml.v3"
)

//go:embed content/pages.yaml
var pagesYAML []byte

const maxMessageLength = 5000

var (
	// ErrPageNotFound is returned for an unknown slug
	ErrPageNotFound = errors.New("page not found")
	// ErrInvalidContact wraps contact form validation failures
	ErrInvalidContact = errors.New("invalid contact request")
)

// Section is one heading and paragraph of a page
type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
}

// Page is an informational page
type Page struct {
	Slug     string    `yaml:"slug" json:"slug"`
	Title    string    `yaml:"title" json:"title"`
	Summary  string    `yaml:"summary" json:"summary"`
	Sections []Section `yaml:"sections" json:"sections"`
	Contact  *Contact  `yaml:"-" json:"contact,omitempty"`
}

// Contact is the shop's contact block shown on the contact page
type Contact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
	OrderID string `json:"orderId"`
}

// Service serves informational pages and the contact form
type Service struct {
	pages   map[string]Page
	order   []string
	contact Contact
	mailer  *email.EmailService
	log     *logrus.Logger
}

// NewService loads the embedded page content
func NewService(cfg *config.Config, mailer *email.EmailService, log *logrus.Logger) (*Service, error) {
	var list []Page
	if err := yaml.Unmarshal(pagesYAML, &list); err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}

	s := &Service{
		pages:  make(map[string]Page, len(list)),
		mailer: mailer,
		log:    log,
		contact: Contact{
			Email:   cfg.Store.Email,
			Phone:   cfg.Store.Phone,
			Address: cfg.Store.Address,
		},
	}
	for _, p := range list {
		if p.Slug == "" {
			return nil, fmt.Errorf("page %q has no slug", p.Title)
		}
		s.pages[p.Slug] = p
		s.order = append(s.order, p.Slug)
	}
	return s, nil
}

// Get returns the page for slug
func (s *Service) Get(slug string) (*Page, error) {
	p, ok := s.pages[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, ErrPageNotFound
	}
	if p.Slug == "contact" {
		contact := s.contact
		p.Contact = &contact
	}
	return &p, nil
}

// List returns every page in content order, without sections
func (s *Service) List() []Page {
	out := make([]Page, 0, len(s.order))
	for _, slug := range s.order {
		p := s.pages[slug]
		p.Sections = nil
		out = append(out, p)
	}
	return out
}

// SubmitContact validates a contact request and emails it to the shop
func (s *Service) SubmitContact(ctx context.Context, req ContactRequest) error {
	if err := req.normalize(); err != nil {
		return err
	}

	err := s.mailer.SendContactMessage(ctx, email.ContactMessageData{
		EmailTemplateData: email.EmailTemplateData{
			UserName:  req.Name,
			UserEmail: req.Email,
		},
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		OrderID: req.OrderID,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"email":    req.Email,
		"order_id": req.OrderID,
	}).Info("Contact message received")
	return nil
}

func (r *ContactRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
	r.OrderID = strings.TrimSpace(r.OrderID)

	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidContact)
	}
	if r.Message == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidContact)
	}
	if len(r.Message) > maxMessageLength {
		return fmt.Errorf("%w: message is too long", ErrInvalidContact)
	}
	if r.Subject == "" {
		r.Subject = "General enquiry"
	}
	return nil
}
