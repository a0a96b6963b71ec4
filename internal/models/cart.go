// internal/models/cart.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the per-user aggregate of pending line items. One cart per user; it
// is created lazily on the first add and deleted when an order is placed or
// the user clears it.
type Cart struct {
	BaseModel
	UserID      uuid.UUID       `json:"user" gorm:"type:uuid;uniqueIndex;not null"`
	Items       []CartItem      `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null;default:0"`
}

type CartItem struct {
	BaseModel
	CartID    uuid.UUID  `json:"-" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `json:"product" gorm:"type:uuid;not null"`
	Quantity  int        `json:"quantity" gorm:"not null;check:quantity >= 1"`
	Variant   VariantRef `json:"variant" gorm:"embedded;embeddedPrefix:variant_"`
}

// FindItem locates the line with the same identity: product and variant
// descriptor must both match exactly.
func (c *Cart) FindItem(productID uuid.UUID, ref VariantRef) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Variant.Equal(ref) {
			return &c.Items[i]
		}
	}
	return nil
}

// ItemByID locates a line by its row id.
func (c *Cart) ItemByID(itemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}
