package entity

import "time"

// Branch representa una sucursal; es la dimensión que acota productos, usuarios y órdenes.
type Branch struct {
	ID        string
	Name      string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
