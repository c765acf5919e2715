package checkout

import (
	"context"
	"sync"

	"github.com/jhoicas/branch-pos-api/internal/domain"
)

var _ CartStore = (*MemoryStore)(nil)

// MemoryStore CartStore en memoria del proceso. Los carritos se pierden al reiniciar.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
	locks map[string]*sync.Mutex
}

// NewMemoryStore construye el almacén en memoria.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*Cart), locks: make(map[string]*sync.Mutex)}
}

// Load devuelve una copia del carrito guardado.
func (s *MemoryStore) Load(_ context.Context, key string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[key]
	if !ok {
		return NewCart(), nil
	}
	return c.clone(), nil
}

// Save guarda una copia del carrito.
func (s *MemoryStore) Save(_ context.Context, key string, cart *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = cart.clone()
	return nil
}

// Delete descarta el carrito.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}

// Lock toma el mutex del carrito sin bloquear.
func (s *MemoryStore) Lock(_ context.Context, key string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	if !l.TryLock() {
		return func() {}, domain.ErrConflict
	}
	return l.Unlock, nil
}

func (c *Cart) clone() *Cart {
	out := &Cart{BranchID: c.BranchID}
	if len(c.Lines) > 0 {
		out.Lines = append([]Line(nil), c.Lines...)
	}
	return out
}
