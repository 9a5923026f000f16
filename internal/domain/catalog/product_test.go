package catalog

import (
	"testing"

	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(stock int) *Product {
	return &Product{
		ID:       7,
		Name:     "Pearl Necklace",
		Price:    decimal.NewFromInt(1200),
		Stock:    stock,
		Category: CategoryJewelry,
	}
}

func TestProduct_DecreaseStock(t *testing.T) {
	t.Run("decrements available stock", func(t *testing.T) {
		p := newTestProduct(5)
		require.NoError(t, p.DecreaseStock(3))
		assert.Equal(t, 2, p.Stock)
	})

	t.Run("allows draining to zero", func(t *testing.T) {
		p := newTestProduct(2)
		require.NoError(t, p.DecreaseStock(2))
		assert.Equal(t, 0, p.Stock)
	})

	t.Run("rejects oversell and reports availability", func(t *testing.T) {
		p := newTestProduct(1)
		err := p.DecreaseStock(2)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
		assert.Contains(t, err.Error(), "1 available")
		assert.Equal(t, 1, p.Stock)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		p := newTestProduct(3)
		assert.Error(t, p.DecreaseStock(0))
		assert.Equal(t, 3, p.Stock)
	})
}

func TestProduct_SetStock(t *testing.T) {
	p := newTestProduct(3)
	require.NoError(t, p.SetStock(10))
	assert.Equal(t, 10, p.Stock)

	assert.ErrorIs(t, p.SetStock(-1), shared.ErrInvalidRequest)
	assert.Equal(t, 10, p.Stock)
}
