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

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación de BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador. Pasar pool o tx.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

const branchColumns = `id, name, location, created_at, updated_at`

func scanBranch(row rowScanner) (*entity.Branch, error) {
	var b entity.Branch
	if err := row.Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BranchRepo) Create(ctx context.Context, b *entity.Branch) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO branches (`+branchColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.Name, b.Location, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	b, err := scanBranch(r.q.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return b, nil
}

func (r *BranchRepo) Update(ctx context.Context, b *entity.Branch) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE branches SET name = $2, location = $3, updated_at = $4 WHERE id = $1`,
		b.ID, b.Name, b.Location, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BranchRepo) List(ctx context.Context) ([]*entity.Branch, error) {
	rows, err := r.q.Query(ctx, `SELECT `+branchColumns+` FROM branches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()
	var out []*entity.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BranchRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
