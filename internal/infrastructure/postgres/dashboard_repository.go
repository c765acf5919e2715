package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo conteos del panel en una sola consulta.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

func (r *DashboardRepo) Counts(ctx context.Context, branchID string, threshold int) (*repository.DashboardCounts, error) {
	var c repository.DashboardCounts
	err := r.q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE $1 = '' OR branch_id = $1),
			(SELECT COUNT(*) FROM products WHERE ($1 = '' OR branch_id = $1) AND stock < $2),
			(SELECT COUNT(*) FROM users    WHERE $1 = '' OR branch_id = $1),
			(SELECT COUNT(*) FROM orders   WHERE $1 = '' OR branch_id = $1)`,
		branchID, threshold,
	).Scan(&c.Products, &c.LowStockProducts, &c.Users, &c.Orders)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &c, nil
}
