package repository

import (
	"context"

	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail busca sin distinguir mayúsculas.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// List devuelve los usuarios de la sucursal; branchID vacío lista todos.
	List(ctx context.Context, branchID string) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
}
