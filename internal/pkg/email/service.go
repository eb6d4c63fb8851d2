// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
)

// EmailService handles all email operations
type EmailService struct {
	config    config.EmailConfig
	store     config.StoreConfig
	templates map[string]*template.Template
	log       *logrus.Logger
	send      func(email *Email) error
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, log *logrus.Logger) *EmailService {
	service := &EmailService{
		config:    cfg.Email,
		store:     cfg.Store,
		templates: make(map[string]*template.Template),
		log:       log,
	}
	service.send = service.sendSMTPEmail

	for name, body := range templateSources {
		service.templates[name] = template.Must(template.New(name).Parse(body))
	}

	return service
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch s.config.Provider {
	case "smtp":
		return s.send(email)
	case "log", "":
		s.log.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("📧 Email (log provider)")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

// SendContactMessage forwards a contact form submission to the shop inbox
// and sends the customer an acknowledgement
func (s *EmailService) SendContactMessage(ctx context.Context, data ContactMessageData) error {
	data.EmailTemplateData = GetBaseTemplateData(s.store.Name, s.store.Website, data.UserName, data.UserEmail)
	if data.Received == "" {
		data.Received = time.Now().Format("02 Jan 2006 15:04")
	}

	htmlContent, err := s.renderTemplate("contact_message", data)
	if err != nil {
		return fmt.Errorf("failed to render contact message template: %w", err)
	}

	inbox := s.config.ContactInbox
	if inbox == "" {
		inbox = s.store.Email
	}

	message := &Email{
		To:          []string{inbox},
		ReplyTo:     data.UserEmail,
		Subject:     fmt.Sprintf("[Contact] %s", data.Subject),
		HTMLContent: htmlContent,
		Type:        EmailTypeContactMessage,
		Data: map[string]interface{}{
			"from":     data.UserEmail,
			"order_id": data.OrderID,
		},
	}
	if err := s.SendEmail(ctx, message); err != nil {
		return fmt.Errorf("failed to send contact message: %w", err)
	}

	ackContent, err := s.renderTemplate("contact_acknowledgement", data)
	if err != nil {
		return fmt.Errorf("failed to render acknowledgement template: %w", err)
	}

	ack := &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("We received your message - %s", s.store.Name),
		HTMLContent: ackContent,
		Type:        EmailTypeContactAcknowledge,
	}
	if err := s.SendEmail(ctx, ack); err != nil {
		// The shop already has the message
		s.log.WithError(err).WithField("to", data.UserEmail).Warn("Failed to send contact acknowledgement")
	}

	return nil
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

var templateSources = map[string]string{
	"contact_message": `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.SiteName}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h2 style="color: #333;">New contact message</h2>
        <p><strong>From:</strong> {{.UserName}} &lt;{{.UserEmail}}&gt;</p>
        {{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
        {{if .OrderID}}<p><strong>Order:</strong> {{.OrderID}}</p>{{end}}
        <p><strong>Subject:</strong> {{.Subject}}</p>
        <p><strong>Received:</strong> {{.Received}}</p>
        <hr>
        <p style="white-space: pre-wrap;">{{.Message}}</p>
    </div>
</body>
</html>`,
	"contact_acknowledgement": `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.SiteName}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.UserName}},</p>
        <p>Thanks for getting in touch. We received your message about "{{.Subject}}" and will reply within two working days.</p>
        <p>Best regards,<br>{{.SiteName}} Team</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. <a href="{{.SiteURL}}">{{.SiteURL}}</a></p>
    </div>
</body>
</html>`,
}
