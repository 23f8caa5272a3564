package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	taxRate := decimal.NewFromFloat(0.05)

	t.Run("single line item", func(t *testing.T) {
		item, err := NewLineItem(testProduct(1, "Groundnut Oil 1L", 250), 3)
		require.NoError(t, err)

		totals := ComputeTotals([]LineItem{*item}, taxRate)

		assert.Equal(t, "750.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "37.50", totals.TaxAmount.StringFixed(2))
		assert.Equal(t, "787.50", totals.GrandTotal.StringFixed(2))
	})

	t.Run("empty items yield zero totals", func(t *testing.T) {
		totals := ComputeTotals(nil, taxRate)
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.TaxAmount.IsZero())
		assert.True(t, totals.GrandTotal.IsZero())
	})

	t.Run("grand total equals subtotal plus tax exactly", func(t *testing.T) {
		items := []LineItem{}
		for i, price := range []int64{250, 180, 320, 145, 110} {
			item, err := NewLineItem(testProduct(i+1, "p", price), int64(i+1))
			require.NoError(t, err)
			items = append(items, *item)
		}

		for _, rate := range []string{"0", "0.05", "0.12", "0.1825"} {
			taxRate, err := decimal.NewFromString(rate)
			require.NoError(t, err)

			totals := ComputeTotals(items, taxRate)
			assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.TaxAmount)), "rate %s", rate)
			assert.True(t, totals.TaxAmount.Equal(totals.Subtotal.Mul(taxRate)), "rate %s", rate)
		}
	})

	t.Run("no intermediate rounding", func(t *testing.T) {
		product := testProduct(1, "p", 1)
		product.Price = decimal.RequireFromString("33.33")
		item, err := NewLineItem(product, 3)
		require.NoError(t, err)

		totals := ComputeTotals([]LineItem{*item}, decimal.RequireFromString("0.0725"))

		// 99.99 * 0.0725 = 7.249275 kept exact, not 7.25
		assert.Equal(t, "7.249275", totals.TaxAmount.String())
		assert.Equal(t, "107.239275", totals.GrandTotal.String())
	})

	t.Run("is deterministic", func(t *testing.T) {
		item, err := NewLineItem(testProduct(1, "p", 180), 2)
		require.NoError(t, err)
		items := []LineItem{*item}

		first := ComputeTotals(items, taxRate)
		second := ComputeTotals(items, taxRate)
		assert.Equal(t, first, second)
	})
}
