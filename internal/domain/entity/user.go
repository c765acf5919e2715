package entity

import (
	"strings"
	"time"
)

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User representa una cuenta del sistema asignada a una sucursal.
// Los admin no quedan acotados a su sucursal.
type User struct {
	ID           string
	Name         string
	LastName     string
	Email        string
	Phone        string
	Role         string
	BranchID     string
	PasswordHash string // bcrypt; nunca se guarda ni se compara la contraseña en claro
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene rol admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName devuelve el nombre o, si está vacío, la parte local del email.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// IsValidRole indica si role es uno de los roles soportados.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
