package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
// La unicidad (branch_id, name) la aplica el índice products_branch_name_key.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, branch_id, name, cost_price, sell_price, stock, sales_count, created_at, updated_at`

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.BranchID, &p.Name, &p.CostPrice, &p.SellPrice,
		&p.Stock, &p.SalesCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.BranchID, p.Name, p.CostPrice, p.SellPrice, p.Stock, p.SalesCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE products
		SET branch_id = $2, name = $3, cost_price = $4, sell_price = $5, stock = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.BranchID, p.Name, p.CostPrice, p.SellPrice, p.Stock, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, branchID string) ([]*entity.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE ($1 = '' OR branch_id = $1)
		ORDER BY branch_id, name`, branchID)
}

func (r *ProductRepo) ListLowStock(ctx context.Context, threshold int) ([]*entity.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE stock < $1
		ORDER BY stock, name`, threshold)
}

func (r *ProductRepo) list(ctx context.Context, query string, arg any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ApplySale descuenta stock solo si alcanza; cero filas afectadas es stock insuficiente.
func (r *ProductRepo) ApplySale(ctx context.Context, productID string, qty int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, sales_count = sales_count + $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("apply sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
