// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Title         string           `json:"title" gorm:"size:100;not null"`
	Description   string           `json:"description" gorm:"size:1000;not null"`
	Price         decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty" gorm:"type:decimal(10,2)"`
	SKU           string           `json:"sku" gorm:"uniqueIndex;size:100;not null"`
	Material      string           `json:"material" gorm:"size:100"`
	Images        pq.StringArray   `json:"images" gorm:"type:text[];not null"`

	Variants   []Variant  `json:"variants" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Categories []Category `json:"categories" gorm:"many2many:product_categories"`
}

// Variant is a specific size/color combination of a product with its own stock.
type Variant struct {
	BaseModel
	ProductID uuid.UUID `json:"-" gorm:"type:uuid;not null;index;uniqueIndex:idx_variants_product_variant,priority:1"`
	VariantID string    `json:"variantId" gorm:"size:100;not null;uniqueIndex:idx_variants_product_variant,priority:2"`
	Color     string    `json:"color" gorm:"size:50;not null"`
	Size      string    `json:"size" gorm:"size:50;not null"`
	Stock     int       `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
}

// VariantRef identifies one variant of one product as the client describes it.
// Matching is exact on all three fields; a partial match is no match, so a
// stale client descriptor can never silently land on a different SKU.
type VariantRef struct {
	VariantID string `json:"variantId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (r VariantRef) Matches(v Variant) bool {
	return v.VariantID == r.VariantID && v.Size == r.Size && v.Color == r.Color
}

func (r VariantRef) Equal(o VariantRef) bool {
	return r.VariantID == o.VariantID && r.Size == o.Size && r.Color == o.Color
}

// MatchVariant finds the variant exactly matching ref, or nil.
func (p *Product) MatchVariant(ref VariantRef) *Variant {
	for i := range p.Variants {
		if ref.Matches(p.Variants[i]) {
			return &p.Variants[i]
		}
	}
	return nil
}

// FindVariant looks up a variant by its variantId alone.
func (p *Product) FindVariant(variantID string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].VariantID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// UnitPrice is the discounted price when one is set, the regular price otherwise.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
