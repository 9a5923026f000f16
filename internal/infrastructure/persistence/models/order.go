package models

import (
	"time"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	ID                   int64            `gorm:"primaryKey;autoIncrement"`
	UserID               *int64           `gorm:"index"`
	Items                []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	TotalAmount          decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Status               string           `gorm:"type:varchar(20);not null;index"`
	PaymentStatus        string           `gorm:"type:varchar(20);not null"`
	PaymentMethod        string           `gorm:"type:varchar(30);not null"`
	TransactionID        *string          `gorm:"type:varchar(100)"`
	CustomerName         string           `gorm:"type:varchar(200);not null"`
	CustomerEmail        string           `gorm:"type:varchar(200)"`
	CustomerPhone        string           `gorm:"type:varchar(30);not null"`
	ShippingAddress      string           `gorm:"type:text;not null"`
	Note                 string           `gorm:"type:text"`
	Courier              *string          `gorm:"type:varchar(30)"`
	CourierConsignmentID *string          `gorm:"type:varchar(50)"`
	TrackingCode         *string          `gorm:"type:varchar(100);index"`
	TrackingLink         *string          `gorm:"type:varchar(500)"`
	CourierStatus        *string          `gorm:"type:varchar(50)"`
	CreatedAt            time.Time        `gorm:"not null;index"`
	UpdatedAt            time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		Items:         make([]order.Item, len(m.Items)),
		TotalAmount:   m.TotalAmount,
		Status:        order.Status(m.Status),
		PaymentStatus: order.PaymentStatus(m.PaymentStatus),
		PaymentMethod: order.PaymentMethod(m.PaymentMethod),
		TransactionID: stringValue(m.TransactionID),
		Customer: order.Customer{
			Name:            m.CustomerName,
			Email:           m.CustomerEmail,
			Phone:           m.CustomerPhone,
			ShippingAddress: m.ShippingAddress,
		},
		Note:                 m.Note,
		Courier:              stringValue(m.Courier),
		CourierConsignmentID: stringValue(m.CourierConsignmentID),
		TrackingCode:         stringValue(m.TrackingCode),
		TrackingLink:         stringValue(m.TrackingLink),
		CourierStatus:        stringValue(m.CourierStatus),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	for i, item := range m.Items {
		o.Items[i] = item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.UserID = o.UserID
	m.TotalAmount = o.TotalAmount
	m.Status = string(o.Status)
	m.PaymentStatus = string(o.PaymentStatus)
	m.PaymentMethod = string(o.PaymentMethod)
	m.TransactionID = nullableString(o.TransactionID)
	m.CustomerName = o.Customer.Name
	m.CustomerEmail = o.Customer.Email
	m.CustomerPhone = o.Customer.Phone
	m.ShippingAddress = o.Customer.ShippingAddress
	m.Note = o.Note
	m.Courier = nullableString(o.Courier)
	m.CourierConsignmentID = nullableString(o.CourierConsignmentID)
	m.TrackingCode = nullableString(o.TrackingCode)
	m.TrackingLink = nullableString(o.TrackingLink)
	m.CourierStatus = nullableString(o.CourierStatus)
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.ID, i, item)
	}
}

// OrderUpdateColumns maps the named fields of o onto their column values.
// updated_at is always included.
func OrderUpdateColumns(o *order.Order, fields ...order.Field) map[string]any {
	cols := map[string]any{"updated_at": o.UpdatedAt}
	for _, f := range fields {
		switch f {
		case order.FieldStatus:
			cols["status"] = string(o.Status)
		case order.FieldPaymentStatus:
			cols["payment_status"] = string(o.PaymentStatus)
		case order.FieldCourierStatus:
			cols["courier_status"] = nullableString(o.CourierStatus)
		case order.FieldConsignment:
			cols["courier"] = nullableString(o.Courier)
			cols["courier_consignment_id"] = nullableString(o.CourierConsignmentID)
			cols["tracking_code"] = nullableString(o.TrackingCode)
			cols["tracking_link"] = nullableString(o.TrackingLink)
		}
	}
	return cols
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line item snapshot.
type OrderItemModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"not null;index"`
	Position  int             `gorm:"not null"`
	ProductID int64           `gorm:"not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	Image     string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ProductID: m.ProductID,
		Name:      m.Name,
		Price:     m.Price,
		Quantity:  m.Quantity,
		Image:     m.Image,
	}
}

// OrderItemModelFromDomain creates a persistence model for the item at position pos.
func OrderItemModelFromDomain(orderID int64, pos int, item order.Item) OrderItemModel {
	return OrderItemModel{
		OrderID:   orderID,
		Position:  pos,
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Image:     item.Image,
	}
}
