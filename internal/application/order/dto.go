package order

import (
	"html"
	"strings"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// CreateOrderItem is one cart line submitted at checkout
type CreateOrderItem struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

// CreateOrderRequest is the checkout payload. Client totals are never accepted.
type CreateOrderRequest struct {
	UserID          *int64
	Items           []CreateOrderItem
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
	TransactionID   string
	Note            string
}

// toDraft strips markup from customer free text and builds the domain draft
func (r CreateOrderRequest) toDraft(policy *bluemonday.Policy) order.Draft {
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
	}

	items := make([]order.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.Item{
			ProductID: item.ProductID,
			Name:      clean(item.Name),
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     strings.TrimSpace(item.Image),
		}
	}

	return order.Draft{
		UserID: r.UserID,
		Items:  items,
		Customer: order.Customer{
			Name:            clean(r.CustomerName),
			Email:           strings.TrimSpace(r.CustomerEmail),
			Phone:           strings.TrimSpace(r.CustomerPhone),
			ShippingAddress: clean(r.ShippingAddress),
		},
		PaymentMethod: order.PaymentMethod(strings.TrimSpace(r.PaymentMethod)),
		TransactionID: strings.TrimSpace(r.TransactionID),
		Note:          clean(r.Note),
	}
}
