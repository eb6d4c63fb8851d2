// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeContactMessage     EmailType = "contact_message"
	EmailTypeContactAcknowledge EmailType = "contact_acknowledgement"
)

// Email represents an email message
type Email struct {
	To          []string               `json:"to"`
	ReplyTo     string                 `json:"reply_to,omitempty"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string `json:"site_name"`
	SiteURL   string `json:"site_url"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Year      int    `json:"year"`
}

// ContactMessageData contains data for the contact form emails
type ContactMessageData struct {
	EmailTemplateData
	Phone    string `json:"phone,omitempty"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	OrderID  string `json:"order_id,omitempty"`
	Received string `json:"received"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		SiteURL:   siteURL,
		UserName:  userName,
		UserEmail: userEmail,
		Year:      time.Now().Year(),
	}
}
