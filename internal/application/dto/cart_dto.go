package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectBranchRequest fija la sucursal del carrito.
type SelectBranchRequest struct {
	BranchID string `json:"branch_id" validate:"required"`
}

// AddCartLineRequest agrega una unidad del producto al carrito.
type AddCartLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// UpdateCartLineRequest cambia cantidad y/o precio de una línea.
type UpdateCartLineRequest struct {
	Quantity  *int             `json:"quantity"`
	SellPrice *decimal.Decimal `json:"sell_price"`
}

// CheckoutRequest datos de cierre de la venta.
type CheckoutRequest struct {
	CustomerName  string `json:"customer_name"`
	PaymentMethod string `json:"payment_method"`
}

// CartLineResponse línea del carrito.
type CartLineResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitSellPrice  string `json:"unit_sell_price"`
	UnitCostPrice  string `json:"unit_cost_price"`
	Quantity       int    `json:"quantity"`
	AvailableStock int    `json:"available_stock"`
	Subtotal       string `json:"subtotal"`
	BelowCost      bool   `json:"below_cost"`
}

// CartResponse estado del carrito. Total siempre se recalcula desde las líneas.
type CartResponse struct {
	BranchID string             `json:"branch_id"`
	State    string             `json:"state"`
	Lines    []CartLineResponse `json:"lines"`
	Items    int                `json:"items"`
	Total    string             `json:"total"`
}

// OrderItemResponse línea de una orden.
type OrderItemResponse struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	UnitSellPrice string `json:"unit_sell_price"`
	UnitCostPrice string `json:"unit_cost_price"`
	LineCost      string `json:"line_cost"`
	LineProfit    string `json:"line_profit"`
}

// OrderResponse orden registrada.
type OrderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id,omitempty"`
	BranchID      string              `json:"branch_id"`
	CustomerName  string              `json:"customer_name"`
	PaymentMethod string              `json:"payment_method"`
	Items         []OrderItemResponse `json:"items"`
	Total         string              `json:"total"`
	TotalCost     string              `json:"total_cost"`
	TotalProfit   string              `json:"total_profit"`
	ProfitMargin  string              `json:"profit_margin"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ProductStockResponse stock vigente de un producto tras el checkout.
type ProductStockResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Stock  int    `json:"stock"`
	Status string `json:"status"`
}

// CheckoutResponse resultado de un checkout exitoso.
type CheckoutResponse struct {
	State    string                 `json:"state"`
	Order    OrderResponse          `json:"order"`
	Products []ProductStockResponse `json:"products"`
}
