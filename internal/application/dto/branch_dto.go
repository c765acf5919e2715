package dto

import "time"

// CreateBranchRequest entrada para crear una sucursal.
type CreateBranchRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Location string `json:"location" validate:"max=300"`
}

// UpdateBranchRequest entrada para actualizar una sucursal.
type UpdateBranchRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Location string `json:"location" validate:"max=300"`
}

// BranchResponse salida de una sucursal.
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
