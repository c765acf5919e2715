package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
)

// DashboardUseCase conteos del panel principal.
type DashboardUseCase struct {
	repo repository.DashboardRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// Stats cuenta productos, productos en alerta, usuarios y órdenes. Quien no es admin
// solo ve su sucursal; un admin puede filtrar por branchID (vacío = todas).
func (uc *DashboardUseCase) Stats(ctx context.Context, sess *identity.Session, branchID string) (*dto.DashboardStatsResponse, error) {
	branchID = sess.ScopeBranch(branchID)
	c, err := uc.repo.Counts(ctx, branchID, entity.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &dto.DashboardStatsResponse{
		Products:         c.Products,
		LowStockProducts: c.LowStockProducts,
		Users:            c.Users,
		Orders:           c.Orders,
		BranchID:         branchID,
	}, nil
}
