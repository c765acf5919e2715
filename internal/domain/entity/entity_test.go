package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
)

func TestNormalizeProductName(t *testing.T) {
	assert.Equal(t, "widget", entity.NormalizeProductName("  Widget "))
	assert.Equal(t, "café ñandú", entity.NormalizeProductName("CAFÉ ÑANDÚ"))
	assert.Equal(t, "", entity.NormalizeProductName("   "))
}

func TestProduct_StockStatusYNivel(t *testing.T) {
	cases := []struct {
		stock  int
		status string
		level  string
	}{
		{0, entity.StockStatusLow, "0"},
		{1, entity.StockStatusLow, "50"},
		{2, entity.StockStatusInStock, "100"},
		{7, entity.StockStatusInStock, "350"},
	}
	for _, tc := range cases {
		p := entity.Product{Stock: tc.stock}
		assert.Equal(t, tc.status, p.StockStatus(), "stock %d", tc.stock)
		assert.True(t, decimal.RequireFromString(tc.level).Equal(p.StockLevel()), "stock %d", tc.stock)
	}
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ana", (&entity.User{Name: "Ana", Email: "ana@pos.co"}).DisplayName())
	assert.Equal(t, "jane.doe", (&entity.User{Email: "jane.doe@pos.co"}).DisplayName())
}

func TestIsValidPaymentMethod(t *testing.T) {
	assert.True(t, entity.IsValidPaymentMethod("Cash"))
	assert.True(t, entity.IsValidPaymentMethod("Mobile Pay"))
	assert.False(t, entity.IsValidPaymentMethod("Bitcoin"))
}
