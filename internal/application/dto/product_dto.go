package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	BranchID  string           `json:"branch_id" validate:"required"`
	Name      string           `json:"name" validate:"required,min=1,max=200"`
	CostPrice *decimal.Decimal `json:"cost_price" validate:"required"`
	SellPrice *decimal.Decimal `json:"sell_price" validate:"required"`
	Stock     *int             `json:"stock" validate:"required,min=0"`
}

// UpdateProductRequest sobrescribe todos los campos editables (incluida la sucursal).
type UpdateProductRequest struct {
	BranchID  string           `json:"branch_id" validate:"required"`
	Name      string           `json:"name" validate:"required,min=1,max=200"`
	CostPrice *decimal.Decimal `json:"cost_price" validate:"required"`
	SellPrice *decimal.Decimal `json:"sell_price" validate:"required"`
	Stock     *int             `json:"stock" validate:"required,min=0"`
}

// ProductFilter parámetros de listado.
type ProductFilter struct {
	BranchID string `query:"branch_id"`
	Search   string `query:"search"`
}

// ProductResponse salida de un producto. Los importes van con 2 decimales.
type ProductResponse struct {
	ID         string    `json:"id"`
	BranchID   string    `json:"branch_id"`
	Name       string    `json:"name"`
	CostPrice  string    `json:"cost_price"`
	SellPrice  string    `json:"sell_price"`
	Stock      int       `json:"stock"`
	SalesCount int       `json:"sales_count"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
