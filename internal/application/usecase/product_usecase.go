package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
	"github.com/jhoicas/branch-pos-api/internal/domain/sales"
)

// ProductUseCase casos de uso del catálogo por sucursal.
// La unicidad del nombre la garantiza el índice (branch_id, name): no hay lectura previa.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// productFields campos comunes de alta y edición ya validados.
type productFields struct {
	branchID  string
	name      string
	costPrice decimal.Decimal
	sellPrice decimal.Decimal
	stock     int
}

const moneyFormatMessage = "el importe admite hasta 2 decimales y debe ser menor a 1.000.000.000.000"

func validateProduct(branchID, name string, cost, sell *decimal.Decimal, stock *int) (*productFields, error) {
	f := &productFields{branchID: strings.TrimSpace(branchID), name: entity.NormalizeProductName(name)}
	switch {
	case f.branchID == "":
		return nil, domain.NewValidationError("branch_id", "la sucursal es obligatoria")
	case f.name == "":
		return nil, domain.NewValidationError("name", "el nombre es obligatorio")
	case cost == nil:
		return nil, domain.NewValidationError("cost_price", "el precio de costo es obligatorio")
	case sell == nil:
		return nil, domain.NewValidationError("sell_price", "el precio de venta es obligatorio")
	case stock == nil:
		return nil, domain.NewValidationError("stock", "el stock es obligatorio")
	case cost.IsNegative():
		return nil, domain.NewValidationError("cost_price", "el precio de costo no puede ser negativo")
	case sell.IsNegative():
		return nil, domain.NewValidationError("sell_price", "el precio de venta no puede ser negativo")
	case !sales.ValidMoney(*cost):
		return nil, domain.NewValidationError("cost_price", moneyFormatMessage)
	case !sales.ValidMoney(*sell):
		return nil, domain.NewValidationError("sell_price", moneyFormatMessage)
	case *stock < 0:
		return nil, domain.NewValidationError("stock", "el stock no puede ser negativo")
	}
	f.costPrice, f.sellPrice, f.stock = cost.Round(2), sell.Round(2), *stock
	return f, nil
}

// Create crea un producto. El precio de venta debe superar al de costo.
func (uc *ProductUseCase) Create(ctx context.Context, sess *identity.Session, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	f, err := validateProduct(in.BranchID, in.Name, in.CostPrice, in.SellPrice, in.Stock)
	if err != nil {
		return nil, err
	}
	if !f.sellPrice.GreaterThan(f.costPrice) {
		return nil, domain.NewValidationError("sell_price", "el precio de venta debe ser mayor que el de costo")
	}
	if !sess.CanAccessBranch(f.branchID) {
		return nil, domain.ErrForbidden
	}
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		BranchID:  f.branchID,
		Name:      f.name,
		CostPrice: f.costPrice,
		SellPrice: f.sellPrice,
		Stock:     f.stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto visible para la sesión.
func (uc *ProductUseCase) GetByID(ctx context.Context, sess *identity.Session, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || !sess.CanAccessBranch(product.BranchID) {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update sobrescribe todos los campos editables; gana la última escritura.
func (uc *ProductUseCase) Update(ctx context.Context, sess *identity.Session, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	f, err := validateProduct(in.BranchID, in.Name, in.CostPrice, in.SellPrice, in.Stock)
	if err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || !sess.CanAccessBranch(product.BranchID) {
		return nil, domain.ErrNotFound
	}
	if !sess.CanAccessBranch(f.branchID) {
		return nil, domain.ErrForbidden
	}
	product.BranchID = f.branchID
	product.Name = f.name
	product.CostPrice = f.costPrice
	product.SellPrice = f.sellPrice
	product.Stock = f.stock
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos; un admin sin filtro ve todas las sucursales. Search busca en
// nombre, id o precio de venta con 2 decimales.
func (uc *ProductUseCase) List(ctx context.Context, sess *identity.Session, filter dto.ProductFilter) (*dto.ListResponse[dto.ProductResponse], error) {
	list, err := uc.repo.List(ctx, sess.ScopeBranch(filter.BranchID))
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		if search != "" && !matchesProduct(p, search) {
			continue
		}
		items = append(items, *toProductResponse(p))
	}
	out := dto.NewList(items)
	return &out, nil
}

func matchesProduct(p *entity.Product, search string) bool {
	return strings.Contains(p.Name, search) ||
		strings.Contains(strings.ToLower(p.ID), search) ||
		strings.Contains(sales.FormatMoney(p.SellPrice), search)
}

// Delete elimina un producto sin condiciones.
func (uc *ProductUseCase) Delete(ctx context.Context, sess *identity.Session, id string) error {
	if !sess.IsAdmin() {
		product, err := uc.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil || !sess.CanAccessBranch(product.BranchID) {
			return domain.ErrNotFound
		}
	}
	return uc.repo.Delete(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:         p.ID,
		BranchID:   p.BranchID,
		Name:       p.Name,
		CostPrice:  sales.FormatMoney(p.CostPrice),
		SellPrice:  sales.FormatMoney(p.SellPrice),
		Stock:      p.Stock,
		SalesCount: p.SalesCount,
		Status:     p.StockStatus(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
