package dto

import (
	"encoding/json"
	"time"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CreateOrderItemRequest is one cart line
type CreateOrderItemRequest struct {
	ProductID int64           `json:"productId" binding:"required,gt=0" example:"12"`
	Name      string          `json:"name" binding:"required,max=200" example:"Pearl Earrings"`
	Price     decimal.Decimal `json:"price" swaggertype:"number" example:"100"`
	Quantity  int             `json:"quantity" binding:"required,gt=0" example:"2"`
	Image     string          `json:"image" binding:"omitempty,max=500"`
}

// CreateOrderRequest is the checkout payload. Any client supplied total is ignored.
// @Description Checkout request
type CreateOrderRequest struct {
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string                   `json:"shippingAddress" binding:"required,max=1000" example:"House 4, Road 7, Dhanmondi, Dhaka"`
	CustomerName    string                   `json:"customerName" binding:"required,max=200" example:"Farhana"`
	CustomerEmail   string                   `json:"customerEmail" binding:"omitempty,email,max=200" example:"farhana@example.com"`
	CustomerPhone   string                   `json:"customerPhone" binding:"required,max=30" example:"01712345678"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required,oneof=cash_on_delivery bkash nagad bank_transfer" example:"cash_on_delivery"`
	TransactionID   string                   `json:"transactionId" binding:"required_unless=PaymentMethod cash_on_delivery,max=100"`
	Note            string                   `json:"note" binding:"max=1000"`
	UserID          *int64                   `json:"userId" binding:"omitempty,gt=0"`
}

// ToCommand converts the request into the checkout command
func (r CreateOrderRequest) ToCommand() apporder.CreateOrderRequest {
	items := make([]apporder.CreateOrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = apporder.CreateOrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
	}
	return apporder.CreateOrderRequest{
		UserID:          r.UserID,
		Items:           items,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		TransactionID:   r.TransactionID,
		Note:            r.Note,
	}
}

// UpdateStatusRequest sets the fulfillment status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled" example:"shipped"`
}

// UpdatePaymentStatusRequest sets the payment status
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=pending paid failed refunded" example:"paid"`
}

// OrderItemResponse is a line item snapshot
type OrderItemResponse struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price" swaggertype:"number"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image,omitempty"`
}

// OrderResponse is the public representation of an order
// @Description Order
type OrderResponse struct {
	ID                   int64               `json:"id"`
	UserID               *int64              `json:"userId,omitempty"`
	Items                []OrderItemResponse `json:"items"`
	TotalAmount          json.Number         `json:"totalAmount" swaggertype:"number"`
	Status               string              `json:"status"`
	PaymentStatus        string              `json:"paymentStatus"`
	PaymentMethod        string              `json:"paymentMethod"`
	TransactionID        string              `json:"transactionId,omitempty"`
	CustomerName         string              `json:"customerName"`
	CustomerEmail        string              `json:"customerEmail,omitempty"`
	CustomerPhone        string              `json:"customerPhone"`
	ShippingAddress      string              `json:"shippingAddress"`
	Note                 string              `json:"note,omitempty"`
	Courier              string              `json:"courier,omitempty"`
	CourierConsignmentID string              `json:"courierConsignmentId,omitempty"`
	TrackingCode         string              `json:"trackingCode,omitempty"`
	TrackingLink         string              `json:"trackingLink,omitempty"`
	CourierStatus        string              `json:"courierStatus,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     Money(item.Price),
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
	}
	return OrderResponse{
		ID:                   o.ID,
		UserID:               o.UserID,
		Items:                items,
		TotalAmount:          Money(o.TotalAmount),
		Status:               string(o.Status),
		PaymentStatus:        string(o.PaymentStatus),
		PaymentMethod:        string(o.PaymentMethod),
		TransactionID:        o.TransactionID,
		CustomerName:         o.Customer.Name,
		CustomerEmail:        o.Customer.Email,
		CustomerPhone:        o.Customer.Phone,
		ShippingAddress:      o.Customer.ShippingAddress,
		Note:                 o.Note,
		Courier:              o.Courier,
		CourierConsignmentID: o.CourierConsignmentID,
		TrackingCode:         o.TrackingCode,
		TrackingLink:         o.TrackingLink,
		CourierStatus:        o.CourierStatus,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

// ToOrderResponses converts a list of domain orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// BalanceResponse is the courier merchant balance
type BalanceResponse struct {
	Balance json.Number `json:"balance" swaggertype:"number"`
}

// InvoiceURLResponse is a time-limited link to an archived invoice
type InvoiceURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
