package repository

import (
	"context"

	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Create y Update devuelven domain.ErrDuplicate si el nombre ya existe en la sucursal.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// List devuelve los productos de la sucursal; branchID vacío lista todas.
	List(ctx context.Context, branchID string) ([]*entity.Product, error)
	// ListLowStock devuelve los productos con stock < threshold de todas las sucursales.
	ListLowStock(ctx context.Context, threshold int) ([]*entity.Product, error)
	// ApplySale descuenta qty del stock y suma qty a sales_count.
	// Devuelve domain.ErrInsufficientStock si el stock actual es menor que qty.
	ApplySale(ctx context.Context, productID string, qty int) error
	Delete(ctx context.Context, id string) error
}
