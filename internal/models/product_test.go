package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() *Product {
	return &Product{
		Title: "Linen Shirt",
		Price: decimal.NewFromInt(50),
		Variants: []Variant{
			{VariantID: "shirt-m-white", Size: "M", Color: "white", Stock: 10},
			{VariantID: "shirt-l-white", Size: "L", Color: "white", Stock: 0},
			{VariantID: "shirt-m-black", Size: "M", Color: "black", Stock: 3},
		},
	}
}

func TestMatchVariantExact(t *testing.T) {
	p := testProduct()

	v := p.MatchVariant(VariantRef{VariantID: "shirt-m-white", Size: "M", Color: "white"})
	require.NotNil(t, v)
	assert.Equal(t, 10, v.Stock)
}

func TestMatchVariantPartialMatchIsNoMatch(t *testing.T) {
	p := testProduct()

	// Right variant id, wrong size.
	assert.Nil(t, p.MatchVariant(VariantRef{VariantID: "shirt-m-white", Size: "L", Color: "white"}))
	// Right variant id, wrong color.
	assert.Nil(t, p.MatchVariant(VariantRef{VariantID: "shirt-m-white", Size: "M", Color: "black"}))
	// Unknown variant id with otherwise valid attributes.
	assert.Nil(t, p.MatchVariant(VariantRef{VariantID: "shirt-s-white", Size: "M", Color: "white"}))
	// Empty descriptor.
	assert.Nil(t, p.MatchVariant(VariantRef{}))
}

func TestFindVariantByIDOnly(t *testing.T) {
	p := testProduct()

	v := p.FindVariant("shirt-m-black")
	require.NotNil(t, v)
	assert.Equal(t, "black", v.Color)

	assert.Nil(t, p.FindVariant("missing"))
}

func TestUnitPrice(t *testing.T) {
	p := testProduct()
	assert.True(t, p.UnitPrice().Equal(decimal.NewFromInt(50)))

	discount := decimal.NewFromInt(35)
	p.DiscountPrice = &discount
	assert.True(t, p.UnitPrice().Equal(discount))
}
