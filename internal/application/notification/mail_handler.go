package notification

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

var templateFuncs = template.FuncMap{
	"subtotal": func(i order.Item) string { return i.Subtotal().StringFixed(2) },
}

var orderReceivedTemplate = template.Must(template.New("order_received").Funcs(templateFuncs).Parse(
	`Hi {{.Order.Customer.Name}},

Thank you for shopping with {{.Shop}}. We received your order #{{.Order.ID}}.

{{range .Order.Items}}- {{.Name}} x{{.Quantity}}: {{subtotal .}}
{{end}}
Total: {{.Order.TotalAmount.StringFixed 2}}
Payment method: {{.Order.PaymentMethod}}
Shipping to: {{.Order.Customer.ShippingAddress}}

We will let you know as soon as your parcel is on its way.
`))

var trackingTemplate = template.Must(template.New("tracking").Parse(
	`Hi {{.Order.Customer.Name}},

Your order #{{.Order.ID}} from {{.Shop}} has been handed to {{.Order.Courier}}.

Tracking code: {{.Order.TrackingCode}}
{{if .Order.TrackingLink}}Track your parcel: {{.Order.TrackingLink}}
{{end}}`))

// MailHandler sends the order-received and tracking emails
type MailHandler struct {
	mailer       Mailer
	shopName     string
	adminAddress string
	logger       *zap.Logger
}

// NewMailHandler creates a new MailHandler. A non-empty adminAddress receives a copy of
// every order-received email.
func NewMailHandler(mailer Mailer, shopName, adminAddress string, logger *zap.Logger) *MailHandler {
	return &MailHandler{
		mailer:       mailer,
		shopName:     shopName,
		adminAddress: adminAddress,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *MailHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderConfirmed}
}

// Handle renders and sends the email matching the event
func (h *MailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		subject := fmt.Sprintf("%s: order #%d received", h.shopName, e.Order.ID)
		return h.send(ctx, &e.Order, subject, orderReceivedTemplate, h.adminAddress)
	case *order.OrderConfirmedEvent:
		if e.Order.TrackingCode == "" {
			return nil
		}
		subject := fmt.Sprintf("%s: order #%d is on its way", h.shopName, e.Order.ID)
		return h.send(ctx, &e.Order, subject, trackingTemplate, "")
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *MailHandler) send(ctx context.Context, o *order.Order, subject string, tmpl *template.Template, cc string) error {
	recipients := make([]string, 0, 2)
	if o.Customer.Email != "" {
		recipients = append(recipients, o.Customer.Email)
	}
	if cc != "" {
		recipients = append(recipients, cc)
	}
	if len(recipients) == 0 {
		return nil
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct {
		Shop  string
		Order *order.Order
	}{h.shopName, o}); err != nil {
		return fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}

	if err := h.mailer.Send(ctx, Message{To: recipients, Subject: subject, Body: body.String()}); err != nil {
		return fmt.Errorf("send %s email: %w", tmpl.Name(), err)
	}
	h.logger.Info("email sent",
		zap.Int64("order_id", o.ID),
		zap.String("template", tmpl.Name()),
	)
	return nil
}
