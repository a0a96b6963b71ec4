// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Order is an immutable snapshot of purchased lines. Product fields are copied
// at creation time so later catalog edits never rewrite order history; only
// Status changes after creation.
type Order struct {
	BaseModel
	UserID          *uuid.UUID      `json:"user,omitempty" gorm:"type:uuid;index"`
	Items           []OrderItem     `json:"products" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(10);not null"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `json:"-" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"product" gorm:"type:uuid;not null"`
	Title       string          `json:"title" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"size:1000;not null"`
	Size        string          `json:"size" gorm:"size:50;not null"`
	Color       string          `json:"color" gorm:"size:50;not null"`
	Quantity    int             `json:"quantity" gorm:"not null;check:quantity >= 1"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Images      pq.StringArray  `json:"images" gorm:"type:text[];not null"`
}

type ShippingAddress struct {
	Street     string `json:"street" gorm:"size:255"`
	City       string `json:"city" gorm:"size:100"`
	State      string `json:"state" gorm:"size:100"`
	PostalCode string `json:"postalCode" gorm:"size:20"`
}

// orderTransitions is the single table of legal status moves. Both the status
// update and the cancel entry points consult it, so the two paths cannot drift.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable is true until the order has shipped.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}
