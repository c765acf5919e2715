package identity

import (
	"time"

	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
)

// Session identidad resuelta de quien hace la petición. Se construye una vez por
// petición y se pasa explícitamente a cada caso de uso; no se modifica después.
type Session struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	BranchID  string
	TokenID   string
	ExpiresAt time.Time
}

// NewSession arma la sesión a partir del registro de usuario.
func NewSession(u *entity.User, tokenID string, expiresAt time.Time) *Session {
	role := u.Role
	if role == "" {
		role = entity.RoleUser
	}
	return &Session{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.DisplayName(),
		Role:      role,
		BranchID:  u.BranchID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}
}

// IsAdmin indica si la sesión tiene rol admin.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == entity.RoleAdmin
}

// ScopeBranch devuelve la sucursal efectiva de una consulta: un admin usa el filtro
// pedido (vacío = todas); cualquier otro rol queda en su propia sucursal.
func (s *Session) ScopeBranch(requested string) string {
	if s.IsAdmin() {
		return requested
	}
	return s.BranchID
}

// CanAccessBranch indica si la sesión puede leer o escribir datos de branchID.
func (s *Session) CanAccessBranch(branchID string) bool {
	return s.IsAdmin() || (s != nil && s.BranchID != "" && s.BranchID == branchID)
}
