// Package memtest implementa los puertos de persistencia en memoria para las pruebas,
// con la misma semántica que el adaptador PostgreSQL: unicidad, guardas de stock y
// transacciones. No lo importa ningún binario.
package memtest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/branch-pos-api/internal/application/checkout"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
)

var (
	_ repository.BranchRepository    = (*BranchRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.UserRepository      = (*UserRepo)(nil)
	_ repository.OrderRepository     = (*OrderRepo)(nil)
	_ repository.DashboardRepository = (*DashboardRepo)(nil)
	_ checkout.TxRunner              = (*Store)(nil)
)

type state struct {
	branches map[string]entity.Branch
	products map[string]entity.Product
	users    map[string]entity.User
	orders   []entity.Order
}

func newState() *state {
	return &state{
		branches: make(map[string]entity.Branch),
		products: make(map[string]entity.Product),
		users:    make(map[string]entity.User),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.branches {
		out.branches[k] = v
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	out.orders = append(out.orders, s.orders...)
	return out
}

// Store base de datos en memoria. Las escrituras dentro de RunCheckout se aplican
// sobre una copia que solo reemplaza al estado vigente si fn termina sin error.
type Store struct {
	mu   sync.Mutex
	data *state

	// FailCommit, si no es nil, hace fallar el siguiente RunCheckout después de fn.
	FailCommit error
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Branches devuelve el repositorio de sucursales.
func (s *Store) Branches() *BranchRepo { return &BranchRepo{s: s} }

// Products devuelve el repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Orders devuelve el repositorio de órdenes.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Dashboard devuelve el repositorio de conteos.
func (s *Store) Dashboard() *DashboardRepo { return &DashboardRepo{s: s} }

// RunCheckout ejecuta fn con repositorios atados a una copia del estado.
func (s *Store) RunCheckout(ctx context.Context, fn func(repository.OrderRepository, repository.ProductRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.data.clone()
	if err := fn(&OrderRepo{s: s, tx: tx}, &ProductRepo{s: s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.FailCommit != nil {
		err := s.FailCommit
		s.FailCommit = nil
		return err
	}
	s.data = tx
	return nil
}

// with ejecuta fn sobre el estado de la tx o, fuera de ella, sobre el vigente bajo lock.
func (s *Store) with(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// ── Branches ──────────────────────────────────────────────────────────────────

// BranchRepo BranchRepository en memoria.
type BranchRepo struct {
	s *Store
}

func (r *BranchRepo) Create(_ context.Context, b *entity.Branch) error {
	return r.s.with(nil, func(st *state) error {
		if _, ok := st.branches[b.ID]; ok {
			return domain.ErrDuplicate
		}
		st.branches[b.ID] = *b
		return nil
	})
}

func (r *BranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	var out *entity.Branch
	err := r.s.with(nil, func(st *state) error {
		if b, ok := st.branches[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *BranchRepo) Update(_ context.Context, b *entity.Branch) error {
	return r.s.with(nil, func(st *state) error {
		if _, ok := st.branches[b.ID]; !ok {
			return domain.ErrNotFound
		}
		st.branches[b.ID] = *b
		return nil
	})
}

func (r *BranchRepo) List(_ context.Context) ([]*entity.Branch, error) {
	var out []*entity.Branch
	err := r.s.with(nil, func(st *state) error {
		for _, b := range st.branches {
			b := b
			out = append(out, &b)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *BranchRepo) Delete(_ context.Context, id string) error {
	return r.s.with(nil, func(st *state) error {
		if _, ok := st.branches[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.branches, id)
		return nil
	})
}

// ── Products ──────────────────────────────────────────────────────────────────

// ProductRepo ProductRepository en memoria; replica el índice único (branch_id, name).
type ProductRepo struct {
	s  *Store
	tx *state
}

func nameTaken(st *state, p *entity.Product) bool {
	for id, other := range st.products {
		if id != p.ID && other.BranchID == p.BranchID && other.Name == p.Name {
			return true
		}
	}
	return false
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.s.with(r.tx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok || nameTaken(st, p) {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.with(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.s.with(r.tx, func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		if nameTaken(st, p) {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, branchID string) ([]*entity.Product, error) {
	return r.filter(func(p entity.Product) bool { return branchID == "" || p.BranchID == branchID })
}

func (r *ProductRepo) ListLowStock(_ context.Context, threshold int) ([]*entity.Product, error) {
	return r.filter(func(p entity.Product) bool { return p.Stock < threshold })
}

func (r *ProductRepo) filter(keep func(entity.Product) bool) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.with(r.tx, func(st *state) error {
		for _, p := range st.products {
			if keep(p) {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].BranchID != out[j].BranchID {
			return out[i].BranchID < out[j].BranchID
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r *ProductRepo) ApplySale(_ context.Context, productID string, qty int) error {
	return r.s.with(r.tx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok || p.Stock < qty {
			return domain.ErrInsufficientStock
		}
		p.Stock -= qty
		p.SalesCount += qty
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.s.with(r.tx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		return nil
	})
}

// ── Users ─────────────────────────────────────────────────────────────────────

// UserRepo UserRepository en memoria; el email es único sin distinguir mayúsculas.
type UserRepo struct {
	s *Store
}

func emailTaken(st *state, u *entity.User) bool {
	for id, other := range st.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.s.with(nil, func(st *state) error {
		if _, ok := st.users[u.ID]; ok || emailTaken(st, u) {
			return domain.ErrDuplicate
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.with(nil, func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.s.with(nil, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.s.with(nil, func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrNotFound
		}
		if emailTaken(st, u) {
			return domain.ErrDuplicate
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return r.s.with(nil, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		u.PasswordHash = hash
		st.users[id] = u
		return nil
	})
}

func (r *UserRepo) List(_ context.Context, branchID string) ([]*entity.User, error) {
	var out []*entity.User
	err := r.s.with(nil, func(st *state) error {
		for _, u := range st.users {
			if branchID == "" || u.BranchID == branchID {
				u := u
				out = append(out, &u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, err
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	return r.s.with(nil, func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.users, id)
		return nil
	})
}

// ── Orders ────────────────────────────────────────────────────────────────────

// OrderRepo OrderRepository en memoria.
type OrderRepo struct {
	s  *Store
	tx *state
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.s.with(r.tx, func(st *state) error {
		for _, existing := range st.orders {
			if existing.ID == o.ID {
				return domain.ErrDuplicate
			}
		}
		cp := *o
		cp.Items = append([]entity.OrderItem(nil), o.Items...)
		st.orders = append(st.orders, cp)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.s.with(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if o.ID == id {
				o := o
				out = &o
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) List(_ context.Context, branchID string) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.s.with(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if branchID == "" || o.BranchID == branchID {
				o := o
				out = append(out, &o)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

// DashboardRepo DashboardRepository en memoria.
type DashboardRepo struct {
	s *Store
}

func (r *DashboardRepo) Counts(_ context.Context, branchID string, threshold int) (*repository.DashboardCounts, error) {
	out := &repository.DashboardCounts{}
	err := r.s.with(nil, func(st *state) error {
		in := func(b string) bool { return branchID == "" || b == branchID }
		for _, p := range st.products {
			if in(p.BranchID) {
				out.Products++
				if p.Stock < threshold {
					out.LowStockProducts++
				}
			}
		}
		for _, u := range st.users {
			if in(u.BranchID) {
				out.Users++
			}
		}
		for _, o := range st.orders {
			if in(o.BranchID) {
				out.Orders++
			}
		}
		return nil
	})
	return out, err
}
