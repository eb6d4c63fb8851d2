// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	store config.StoreConfig
	now   func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		store: cfg.Store,
		now:   time.Now,
	}
}

// GenerateReceipt generates a PDF receipt for an order
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.ReceiptHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// ReceiptHTML renders the receipt markup that GenerateReceipt converts
func (s *Service) ReceiptHTML(o *order.Order) (string, error) {
	data := ReceiptData{
		ReceiptNumber: "RCPT-" + o.OrderID,
		IssuedOn:      s.now().Format("January 2, 2006"),
		Order:         o,
		Lines:         make([]ReceiptLine, 0, len(o.Items)),
		Store:         s.store,
	}
	if !o.CreatedAt.IsZero() {
		data.OrderDate = o.CreatedAt.Format("January 2, 2006")
	}

	subtotal := o.Subtotal
	for _, item := range o.Items {
		data.Lines = append(data.Lines, ReceiptLine{
			Name:     item.Name,
			Size:     item.Size,
			Quantity: item.Quantity,
			Price:    s.money(item.Price),
			Total:    s.money(item.LineTotal()),
		})
		if o.Subtotal == 0 {
			subtotal += item.LineTotal()
		}
	}
	data.Subtotal = s.money(subtotal)
	data.Discount = s.money(o.Discount)
	data.Shipping = s.money(o.ShippingFee)
	data.Total = s.money(o.Total)
	data.HasDiscount = o.Discount > 0

	tmpl := template.Must(template.New("receipt").Parse(receiptTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (s *Service) money(amount float64) string {
	symbol := s.store.Currency
	if symbol == "INR" || symbol == "" {
		symbol = "₹"
	} else {
		symbol += " "
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedOn      string
	OrderDate     string
	Order         *order.Order
	Lines         []ReceiptLine
	Subtotal      string
	Discount      string
	Shipping      string
	Total         string
	HasDiscount   bool
	Store         config.StoreConfig
}

// ReceiptLine is one formatted item row
type ReceiptLine struct {
	Name     string
	Size     string
	Quantity int
	Price    string
	Total    string
}

// Receipt HTML template
const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .title { font-size: 28px; font-weight: bold; color: #2563eb; }
        .muted { color: #666; font-size: 13px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th { background: #f8fafc; text-align: left; padding: 10px; border-bottom: 1px solid #e5e7eb; }
        td { padding: 10px; border-bottom: 1px solid #f1f5f9; }
        .right { text-align: right; }
        .totals td { border: none; padding: 4px 10px; }
        .grand td { font-weight: bold; font-size: 16px; border-top: 2px solid #333; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.Store.Name}}</div>
        {{if .Store.Address}}<div class="muted">{{.Store.Address}}</div>{{end}}
        <div class="muted">{{.Store.Email}}{{if .Store.Phone}} | {{.Store.Phone}}{{end}}</div>
    </div>

    <h2>Receipt {{.ReceiptNumber}}</h2>
    <p class="muted">
        Order {{.Order.OrderID}}{{if .OrderDate}} placed on {{.OrderDate}}{{end}}<br>
        Issued {{.IssuedOn}}<br>
        Status: {{.Order.OrderStatus}}{{if .Order.PaymentStatus}} | Payment: {{.Order.PaymentStatus}}{{end}}
        {{if .Order.TrackingID}}<br>Tracking ID: {{.Order.TrackingID}}{{end}}
    </p>

    <p>
        <strong>{{.Order.Customer.Name}}</strong><br>
        {{.Order.Shipping.Address}}<br>
        {{.Order.Shipping.City}} {{.Order.Shipping.State}} {{.Order.Shipping.PostalCode}}
    </p>

    <table>
        <tr><th>Item</th><th>Size</th><th class="right">Qty</th><th class="right">Price</th><th class="right">Total</th></tr>
        {{range .Lines}}
        <tr><td>{{.Name}}</td><td>{{.Size}}</td><td class="right">{{.Quantity}}</td><td class="right">{{.Price}}</td><td class="right">{{.Total}}</td></tr>
        {{end}}
    </table>

    <table class="totals">
        <tr><td class="right">Subtotal</td><td class="right">{{.Subtotal}}</td></tr>
        {{if .HasDiscount}}<tr><td class="right">Discount</td><td class="right">-{{.Discount}}</td></tr>{{end}}
        <tr><td class="right">Shipping</td><td class="right">{{.Shipping}}</td></tr>
        <tr class="grand"><td class="right">Total</td><td class="right">{{.Total}}</td></tr>
    </table>

    <p class="muted">Thank you for shopping with {{.Store.Name}}.{{if .Store.Website}} {{.Store.Website}}{{end}}</p>
</body>
</html>
`
