package identity

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
	"github.com/jhoicas/branch-pos-api/pkg/jwt"
)

// TokenRevoker lista de tokens cerrados con logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Resolver convierte un token de acceso en una Session consultando la tabla de usuarios.
type Resolver struct {
	users   repository.UserRepository
	revoker TokenRevoker
	secret  string
}

// NewResolver construye el resolver. revoker puede ser nil.
func NewResolver(users repository.UserRepository, revoker TokenRevoker, secret string) *Resolver {
	return &Resolver{users: users, revoker: revoker, secret: secret}
}

// Resolve valida el token y busca el usuario. Un token válido sin usuario, un token
// revocado o cualquier fallo de consulta se tratan como no autenticado (ErrUnauthorized).
func (r *Resolver) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := jwt.Parse(r.secret, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if r.revoker != nil {
		revoked, err := r.revoker.IsRevoked(ctx, claims.TokenID())
		if err != nil || revoked {
			return nil, domain.ErrUnauthorized
		}
	}
	user, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, domain.ErrUnauthorized
	}
	return NewSession(user, claims.TokenID(), claims.Expiry()), nil
}

// MemoryRevoker TokenRevoker en memoria para una sola instancia.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker construye el revocador en memoria.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke marca el token como cerrado hasta until.
func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	m.purgeLocked()
	return nil
}

// IsRevoked indica si el token fue cerrado y sigue vigente.
func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[tokenID]
	return ok && m.now().Before(until), nil
}

func (m *MemoryRevoker) purgeLocked() {
	now := m.now()
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
}
