package repository

import (
	"context"

	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order y sus líneas.
type OrderRepository interface {
	// Create inserta la cabecera y todas las líneas de la orden.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// List devuelve las órdenes con sus líneas, más recientes primero; branchID vacío lista todas.
	List(ctx context.Context, branchID string) ([]*entity.Order, error)
}
