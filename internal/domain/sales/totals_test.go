package sales_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/branch-pos-api/internal/domain/sales"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute_Widget(t *testing.T) {
	got := sales.Compute([]sales.Line{{Quantity: 3, UnitSellPrice: dec("15"), UnitCostPrice: dec("10")}})

	assert.Equal(t, "45.00", sales.FormatMoney(got.Total))
	assert.Equal(t, "30.00", sales.FormatMoney(got.TotalCost))
	assert.Equal(t, "15.00", sales.FormatMoney(got.TotalProfit))
	assert.Equal(t, "33.3", sales.FormatPercent(got.ProfitMargin))
}

func TestCompute_VariasLineas(t *testing.T) {
	got := sales.Compute([]sales.Line{
		{Quantity: 2, UnitSellPrice: dec("9.99"), UnitCostPrice: dec("5.50")},
		{Quantity: 1, UnitSellPrice: dec("4"), UnitCostPrice: dec("4.25")},
	})
	assert.True(t, dec("23.98").Equal(got.Total))
	assert.True(t, dec("15.25").Equal(got.TotalCost))
	assert.True(t, got.Total.Sub(got.TotalCost).Equal(got.TotalProfit))
}

func TestMargin_TotalCeroEsCero(t *testing.T) {
	assert.True(t, sales.Margin(decimal.Zero, decimal.Zero).IsZero())
	got := sales.Compute([]sales.Line{{Quantity: 2, UnitSellPrice: decimal.Zero, UnitCostPrice: decimal.Zero}})
	assert.True(t, got.ProfitMargin.IsZero())
}

func TestFormatMoney_RedondeoMitadLejosDeCero(t *testing.T) {
	assert.Equal(t, "2.35", sales.FormatMoney(dec("2.345")))
	assert.Equal(t, "-2.35", sales.FormatMoney(dec("-2.345")))
	assert.Equal(t, "10.00", sales.FormatMoney(dec("10")))
}
