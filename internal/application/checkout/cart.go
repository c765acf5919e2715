package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/sales"
)

// State estado del carrito en el flujo de venta.
type State string

const (
	StateEmpty           State = "empty"
	StateBuilding        State = "building"          // hay líneas con precio bajo el costo
	StateReadyToCheckout State = "ready_to_checkout"
	StateCommitting      State = "committing"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// Line línea del carrito con la foto del producto al agregarlo.
type Line struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	UnitSellPrice  decimal.Decimal `json:"unit_sell_price"`
	UnitCostPrice  decimal.Decimal `json:"unit_cost_price"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"available_stock"`
}

// BelowCost indica si el precio de venta quedó por debajo del costo.
func (l Line) BelowCost() bool {
	return l.UnitSellPrice.LessThan(l.UnitCostPrice)
}

// Subtotal precio × cantidad.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitSellPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart carrito de una sesión, atado a una sucursal. No es seguro para uso concurrente;
// el Engine serializa el acceso con el lock del CartStore.
type Cart struct {
	BranchID   string `json:"branch_id"`
	Lines      []Line `json:"lines"`
	committing bool
}

// NewCart devuelve un carrito vacío sin sucursal.
func NewCart() *Cart {
	return &Cart{}
}

// State deriva el estado a partir de las líneas.
func (c *Cart) State() State {
	switch {
	case c.committing:
		return StateCommitting
	case len(c.Lines) == 0:
		return StateEmpty
	case c.HasBelowCost():
		return StateBuilding
	default:
		return StateReadyToCheckout
	}
}

// SelectBranch ata el carrito a branchID. Cambiar de sucursal descarta las líneas.
func (c *Cart) SelectBranch(branchID string) error {
	if c.committing {
		return domain.ErrConflict
	}
	if c.BranchID != branchID {
		c.Lines = nil
	}
	c.BranchID = branchID
	return nil
}

// AddLine agrega una unidad de p, o incrementa la línea existente.
// Devuelve ErrOutOfStock si p no tiene stock y ErrStockLimit si ya se pidió todo el stock.
func (c *Cart) AddLine(p *entity.Product) error {
	if c.committing {
		return domain.ErrConflict
	}
	if c.BranchID == "" {
		return domain.NewValidationError("branch_id", "seleccione una sucursal antes de agregar productos")
	}
	if p.BranchID != c.BranchID {
		return domain.NewValidationError("product_id", "el producto no pertenece a la sucursal del carrito")
	}
	if p.Stock <= 0 {
		return domain.ErrOutOfStock
	}
	if i := c.indexOf(p.ID); i >= 0 {
		line := &c.Lines[i]
		if line.Quantity >= p.Stock {
			return domain.StockLimitError(p.Stock)
		}
		line.Quantity++
		line.AvailableStock = p.Stock
		return nil
	}
	c.Lines = append(c.Lines, Line{
		ProductID:      p.ID,
		Name:           p.Name,
		UnitSellPrice:  p.SellPrice,
		UnitCostPrice:  p.CostPrice,
		Quantity:       1,
		AvailableStock: p.Stock,
	})
	return nil
}

// SetQuantity fija la cantidad exacta. q < 1 elimina la línea; q mayor al stock se rechaza
// con ErrStockLimit sin cambiar la cantidad.
func (c *Cart) SetQuantity(productID string, q int) error {
	if c.committing {
		return domain.ErrConflict
	}
	i := c.indexOf(productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	if q < 1 {
		c.removeAt(i)
		return nil
	}
	if q > c.Lines[i].AvailableStock {
		return domain.StockLimitError(c.Lines[i].AvailableStock)
	}
	c.Lines[i].Quantity = q
	return nil
}

// RemoveLine quita la línea del producto.
func (c *Cart) RemoveLine(productID string) error {
	if c.committing {
		return domain.ErrConflict
	}
	i := c.indexOf(productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	c.removeAt(i)
	return nil
}

// OverridePrice cambia el precio de venta de la línea. Un precio bajo el costo se permite
// aquí y solo bloquea el checkout.
func (c *Cart) OverridePrice(productID string, price decimal.Decimal) error {
	if c.committing {
		return domain.ErrConflict
	}
	if price.IsNegative() {
		return domain.NewValidationError("sell_price", "el precio no puede ser negativo")
	}
	if !sales.ValidMoney(price) {
		return domain.NewValidationError("sell_price", "el precio admite hasta 2 decimales y debe ser menor a 1.000.000.000.000")
	}
	i := c.indexOf(productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	c.Lines[i].UnitSellPrice = price.Round(2)
	return nil
}

// Total Σ precio × cantidad, recalculado en cada llamada.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Items unidades totales en el carrito.
func (c *Cart) Items() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// HasBelowCost indica si alguna línea tiene precio bajo el costo.
func (c *Cart) HasBelowCost() bool {
	for _, l := range c.Lines {
		if l.BelowCost() {
			return true
		}
	}
	return false
}

// CheckReady valida las precondiciones del checkout sin modificar el carrito.
func (c *Cart) CheckReady(customerName string) error {
	switch {
	case c.committing:
		return domain.ErrConflict
	case c.BranchID == "":
		return domain.NewValidationError("branch_id", "seleccione una sucursal")
	case len(c.Lines) == 0:
		return domain.NewValidationError("lines", "el carrito está vacío")
	case c.HasBelowCost():
		return domain.NewValidationError("lines", "hay productos con precio de venta menor al costo")
	case strings.TrimSpace(customerName) == "":
		return domain.NewValidationError("customer_name", "el nombre del cliente es obligatorio")
	}
	return nil
}

// SalesLines convierte las líneas al formato del cálculo de totales.
func (c *Cart) SalesLines() []sales.Line {
	out := make([]sales.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		out = append(out, sales.Line{Quantity: l.Quantity, UnitSellPrice: l.UnitSellPrice, UnitCostPrice: l.UnitCostPrice})
	}
	return out
}

// Clear vacía las líneas y conserva la sucursal.
func (c *Cart) Clear() {
	c.Lines = nil
	c.committing = false
}

func (c *Cart) beginCommit() { c.committing = true }
func (c *Cart) endCommit()   { c.committing = false }

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}
