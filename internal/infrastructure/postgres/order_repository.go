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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes y sus líneas (order_items) sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Create debe correr dentro de una tx.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, user_id, branch_id, customer_name, payment_method,
	total, total_cost, total_profit, profit_margin, created_at`

const orderItemColumns = `id, order_id, product_id, product_name, quantity,
	unit_sell_price, unit_cost_price, line_cost, line_profit`

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.UserID, o.BranchID, o.CustomerName, o.PaymentMethod,
		o.Total, o.TotalCost, o.TotalProfit, o.ProfitMargin, o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(
			`INSERT INTO order_items (`+orderItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, o.ID, it.ProductID, it.ProductName, it.Quantity,
			it.UnitSellPrice, it.UnitCostPrice, it.LineCost, it.LineProfit,
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	br := r.q.SendBatch(ctx, batch)
	for range o.Items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return br.Close()
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.UserID, &o.BranchID, &o.CustomerName, &o.PaymentMethod,
		&o.Total, &o.TotalCost, &o.TotalProfit, &o.ProfitMargin, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(ctx, map[string]*entity.Order{o.ID: o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) List(ctx context.Context, branchID string) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1 = '' OR branch_id = $1)
		ORDER BY created_at DESC`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var out []*entity.Order
	byID := make(map[string]*entity.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
		byID[o.ID] = o
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := r.loadItems(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems completa las líneas de las órdenes indicadas con una sola consulta.
func (r *OrderRepo) loadItems(ctx context.Context, byID map[string]*entity.Order) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, product_name`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitSellPrice, &it.UnitCostPrice, &it.LineCost, &it.LineProfit); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}
