package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en el caso de uso).
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	LastName string `json:"last_name" validate:"max=200"`
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	BranchID string `json:"branch_id" validate:"required"`
}

// UpdateUserRequest sobrescribe nombre, email, rol, sucursal y, si viene, la contraseña.
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	LastName string `json:"last_name" validate:"max=200"`
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
	BranchID string `json:"branch_id"`
	Password string `json:"password"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	BranchID  string    `json:"branch_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
