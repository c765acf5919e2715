package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
)

// BranchUseCase casos de uso CRUD para sucursales. Solo List está abierto a cualquier sesión.
type BranchUseCase struct {
	repo repository.BranchRepository
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(repo repository.BranchRepository) *BranchUseCase {
	return &BranchUseCase{repo: repo}
}

// Create crea una nueva sucursal.
func (uc *BranchUseCase) Create(ctx context.Context, sess *identity.Session, in dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "el nombre es obligatorio")
	}
	now := time.Now()
	branch := &entity.Branch{
		ID:        uuid.New().String(),
		Name:      name,
		Location:  strings.TrimSpace(in.Location),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, branch); err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// GetByID obtiene una sucursal por ID.
func (uc *BranchUseCase) GetByID(ctx context.Context, sess *identity.Session, id string) (*dto.BranchResponse, error) {
	if !sess.CanAccessBranch(id) {
		return nil, domain.ErrForbidden
	}
	branch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	return toBranchResponse(branch), nil
}

// Update sobrescribe nombre y ubicación.
func (uc *BranchUseCase) Update(ctx context.Context, sess *identity.Session, id string, in dto.UpdateBranchRequest) (*dto.BranchResponse, error) {
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	branch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "el nombre es obligatorio")
	}
	branch.Name = name
	branch.Location = strings.TrimSpace(in.Location)
	branch.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, branch); err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// List lista todas las sucursales (alimenta los selectores).
func (uc *BranchUseCase) List(ctx context.Context) (*dto.ListResponse[dto.BranchResponse], error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BranchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBranchResponse(b))
	}
	out := dto.NewList(items)
	return &out, nil
}

// Delete elimina una sucursal sin tocar sus productos, usuarios ni órdenes.
func (uc *BranchUseCase) Delete(ctx context.Context, sess *identity.Session, id string) error {
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(ctx, id)
}

func toBranchResponse(b *entity.Branch) *dto.BranchResponse {
	return &dto.BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Location:  b.Location,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
