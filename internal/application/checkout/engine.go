package checkout

import (
	"context"
	"errors"
	"fmt"
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
	"github.com/jhoicas/branch-pos-api/pkg/logger"
	"github.com/jhoicas/branch-pos-api/pkg/metrics"
)

// Engine caso de uso de carrito y checkout. Cada operación toma el lock del carrito
// de la sesión, así que mientras un checkout confirma la transacción las demás
// operaciones sobre ese carrito reciben domain.ErrConflict.
type Engine struct {
	store    CartStore
	products repository.ProductRepository
	tx       TxRunner
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewEngine construye el motor de checkout. log y m pueden ser nil.
func NewEngine(store CartStore, products repository.ProductRepository, tx TxRunner, log *logger.Logger, m *metrics.Metrics) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{store: store, products: products, tx: tx, log: log, metrics: m, now: time.Now}
}

// Cart devuelve el carrito de la sesión.
func (e *Engine) Cart(ctx context.Context, sess *identity.Session) (*dto.CartResponse, error) {
	return e.mutate(ctx, sess, func(*Cart) error { return nil })
}

// SelectBranch ata el carrito a una sucursal; cambiar de sucursal vacía el carrito.
// Solo un admin puede elegir una sucursal distinta a la propia.
func (e *Engine) SelectBranch(ctx context.Context, sess *identity.Session, branchID string) (*dto.CartResponse, error) {
	if branchID == "" {
		return nil, domain.NewValidationError("branch_id", "la sucursal es obligatoria")
	}
	if !sess.CanAccessBranch(branchID) {
		return nil, domain.ErrForbidden
	}
	return e.mutate(ctx, sess, func(c *Cart) error { return c.SelectBranch(branchID) })
}

// AddLine agrega una unidad del producto con su stock vigente.
func (e *Engine) AddLine(ctx context.Context, sess *identity.Session, productID string) (*dto.CartResponse, error) {
	return e.mutate(ctx, sess, func(c *Cart) error {
		p, err := e.products.GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if p == nil {
			return domain.ErrNotFound
		}
		return c.AddLine(p)
	})
}

// SetQuantity fija la cantidad de una línea; menos de 1 la elimina.
func (e *Engine) SetQuantity(ctx context.Context, sess *identity.Session, productID string, q int) (*dto.CartResponse, error) {
	return e.mutate(ctx, sess, func(c *Cart) error { return c.SetQuantity(productID, q) })
}

// OverridePrice cambia el precio de venta de una línea.
func (e *Engine) OverridePrice(ctx context.Context, sess *identity.Session, productID string, price decimal.Decimal) (*dto.CartResponse, error) {
	return e.mutate(ctx, sess, func(c *Cart) error { return c.OverridePrice(productID, price) })
}

// RemoveLine quita una línea.
func (e *Engine) RemoveLine(ctx context.Context, sess *identity.Session, productID string) (*dto.CartResponse, error) {
	return e.mutate(ctx, sess, func(c *Cart) error { return c.RemoveLine(productID) })
}

// Discard descarta el carrito completo.
func (e *Engine) Discard(ctx context.Context, sess *identity.Session) error {
	release, err := e.store.Lock(ctx, sess.UserID)
	if err != nil {
		return err
	}
	defer release()
	return e.store.Delete(ctx, sess.UserID)
}

// Checkout valida el carrito y registra la venta: inserta la orden y descuenta el stock
// de cada línea en una única transacción. Si algo falla el carrito queda intacto y se
// puede reintentar; si confirma, el carrito se vacía y se devuelve el stock vigente.
func (e *Engine) Checkout(ctx context.Context, sess *identity.Session, customerName, paymentMethod string) (*dto.CheckoutResponse, error) {
	release, err := e.store.Lock(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	cart, err := e.loadCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := cart.CheckReady(customerName); err != nil {
		e.metrics.ObserveCheckout("rejected", 0)
		return nil, err
	}
	if paymentMethod == "" {
		paymentMethod = entity.PaymentCash
	}
	if !entity.IsValidPaymentMethod(paymentMethod) {
		e.metrics.ObserveCheckout("rejected", 0)
		return nil, domain.NewValidationError("payment_method", "medio de pago no soportado")
	}

	order := e.buildOrder(sess, cart, strings.TrimSpace(customerName), paymentMethod)

	cart.beginCommit()
	start := e.now()
	err = e.tx.RunCheckout(ctx, func(orders repository.OrderRepository, products repository.ProductRepository) error {
		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := products.ApplySale(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	cart.endCommit()
	elapsed := e.now().Sub(start)

	if err != nil {
		e.metrics.ObserveCheckout("failed", elapsed)
		e.log.Warn().Err(err).
			Str("user_id", sess.UserID).
			Str("branch_id", cart.BranchID).
			Str("state", string(StateFailed)).
			Msg("checkout rechazado por la base de datos")
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, err
		}
		return nil, fmt.Errorf("checkout: %w", err)
	}
	e.metrics.ObserveCheckout("success", elapsed)
	e.log.Info().
		Str("order_id", order.ID).
		Str("branch_id", order.BranchID).
		Str("total", sales.FormatMoney(order.Total)).
		Int("lines", len(order.Items)).
		Msg("venta registrada")

	cart.Clear()
	if err := e.store.Save(ctx, sess.UserID, cart); err != nil {
		e.log.Error().Err(err).Str("user_id", sess.UserID).Msg("no se pudo vaciar el carrito tras el checkout")
	}

	out := &dto.CheckoutResponse{State: string(StateCompleted), Order: ToOrderResponse(order)}
	refreshed, err := e.products.List(ctx, order.BranchID)
	if err != nil {
		e.log.Warn().Err(err).Str("branch_id", order.BranchID).Msg("no se pudo releer el stock tras el checkout")
		return out, nil
	}
	out.Products = make([]dto.ProductStockResponse, 0, len(refreshed))
	for _, p := range refreshed {
		out.Products = append(out.Products, dto.ProductStockResponse{ID: p.ID, Name: p.Name, Stock: p.Stock, Status: p.StockStatus()})
	}
	return out, nil
}

func (e *Engine) buildOrder(sess *identity.Session, cart *Cart, customerName, paymentMethod string) *entity.Order {
	orderID := uuid.New().String()
	items := make([]entity.OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		a := sales.Amounts(sales.Line{Quantity: l.Quantity, UnitSellPrice: l.UnitSellPrice, UnitCostPrice: l.UnitCostPrice})
		items = append(items, entity.OrderItem{
			ID:            uuid.New().String(),
			OrderID:       orderID,
			ProductID:     l.ProductID,
			ProductName:   l.Name,
			Quantity:      l.Quantity,
			UnitSellPrice: l.UnitSellPrice,
			UnitCostPrice: l.UnitCostPrice,
			LineCost:      a.Cost,
			LineProfit:    a.Profit,
		})
	}
	t := sales.Compute(cart.SalesLines())
	return &entity.Order{
		ID:            orderID,
		UserID:        sess.UserID,
		BranchID:      cart.BranchID,
		CustomerName:  customerName,
		PaymentMethod: paymentMethod,
		Items:         items,
		Total:         t.Total,
		TotalCost:     t.TotalCost,
		TotalProfit:   t.TotalProfit,
		ProfitMargin:  t.ProfitMargin,
		CreatedAt:     e.now(),
	}
}

// mutate aplica fn al carrito bajo lock y lo guarda solo si fn no falla.
func (e *Engine) mutate(ctx context.Context, sess *identity.Session, fn func(*Cart) error) (*dto.CartResponse, error) {
	release, err := e.store.Lock(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	cart, err := e.loadCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := e.store.Save(ctx, sess.UserID, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return toCartResponse(cart), nil
}

// loadCart lee el carrito y, para quien no es admin, lo ata a su sucursal.
func (e *Engine) loadCart(ctx context.Context, sess *identity.Session) (*Cart, error) {
	cart, err := e.store.Load(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !sess.IsAdmin() && cart.BranchID != sess.BranchID {
		_ = cart.SelectBranch(sess.BranchID)
	}
	return cart, nil
}

func toCartResponse(c *Cart) *dto.CartResponse {
	lines := make([]dto.CartLineResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, dto.CartLineResponse{
			ProductID:      l.ProductID,
			Name:           l.Name,
			UnitSellPrice:  sales.FormatMoney(l.UnitSellPrice),
			UnitCostPrice:  sales.FormatMoney(l.UnitCostPrice),
			Quantity:       l.Quantity,
			AvailableStock: l.AvailableStock,
			Subtotal:       sales.FormatMoney(l.Subtotal()),
			BelowCost:      l.BelowCost(),
		})
	}
	return &dto.CartResponse{
		BranchID: c.BranchID,
		State:    string(c.State()),
		Lines:    lines,
		Items:    c.Items(),
		Total:    sales.FormatMoney(c.Total()),
	}
}

// ToOrderResponse mapea una orden a su DTO con importes a 2 decimales.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitSellPrice: sales.FormatMoney(it.UnitSellPrice),
			UnitCostPrice: sales.FormatMoney(it.UnitCostPrice),
			LineCost:      sales.FormatMoney(it.LineCost),
			LineProfit:    sales.FormatMoney(it.LineProfit),
		})
	}
	return dto.OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		BranchID:      o.BranchID,
		CustomerName:  o.CustomerName,
		PaymentMethod: o.PaymentMethod,
		Items:         items,
		Total:         sales.FormatMoney(o.Total),
		TotalCost:     sales.FormatMoney(o.TotalCost),
		TotalProfit:   sales.FormatMoney(o.TotalProfit),
		ProfitMargin:  sales.FormatMoney(o.ProfitMargin),
		CreatedAt:     o.CreatedAt,
	}
}
