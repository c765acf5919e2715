package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LowStockThreshold stock por debajo del cual un producto se considera en alerta.
const LowStockThreshold = 2

// Estados de stock mostrados en los listados.
const (
	StockStatusLow     = "Low"
	StockStatusInStock = "In Stock"
)

// Product representa un producto del catálogo de una sucursal.
// Name se guarda normalizado (sin espacios extremos y en minúsculas) y es único por sucursal.
type Product struct {
	ID         string
	BranchID   string
	Name       string
	CostPrice  decimal.Decimal
	SellPrice  decimal.Decimal
	Stock      int
	SalesCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsLowStock indica si el producto está por debajo del umbral de alerta.
func (p *Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// StockStatus devuelve "Low" o "In Stock".
func (p *Product) StockStatus() string {
	if p.IsLowStock() {
		return StockStatusLow
	}
	return StockStatusInStock
}

// StockLevel porcentaje del stock respecto al umbral (0 y 50 para stock 0 y 1).
func (p *Product) StockLevel() decimal.Decimal {
	return decimal.NewFromInt(int64(p.Stock)).
		Div(decimal.NewFromInt(LowStockThreshold)).
		Mul(decimal.NewFromInt(100))
}

// NormalizeProductName recorta y pasa a minúsculas con reglas Unicode.
func NormalizeProductName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}
