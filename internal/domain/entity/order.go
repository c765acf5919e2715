package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago aceptados en caja.
const (
	PaymentCash       = "Cash"
	PaymentCreditCard = "Credit Card"
	PaymentMobilePay  = "Mobile Pay"
)

// WalkInCustomer etiqueta usada cuando una orden no tiene cliente.
const WalkInCustomer = "Walk-in Customer"

// IsValidPaymentMethod indica si el medio de pago es uno de los aceptados.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentMobilePay:
		return true
	}
	return false
}

// Order venta registrada en el checkout. Inmutable una vez creada.
type Order struct {
	ID            string
	UserID        string // vacío si no se conoce el cajero
	BranchID      string
	CustomerName  string
	PaymentMethod string
	Items         []OrderItem
	Total         decimal.Decimal
	TotalCost     decimal.Decimal
	TotalProfit   decimal.Decimal
	ProfitMargin  decimal.Decimal // porcentaje
	CreatedAt     time.Time
}

// OrderItem línea de la orden con la foto del producto al momento de la venta.
type OrderItem struct {
	ID            string
	OrderID       string
	ProductID     string
	ProductName   string
	Quantity      int
	UnitSellPrice decimal.Decimal
	UnitCostPrice decimal.Decimal
	LineCost      decimal.Decimal
	LineProfit    decimal.Decimal
}
