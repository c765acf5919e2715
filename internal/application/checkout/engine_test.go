package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-pos-api/internal/application/checkout"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/memtest"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	db      *memtest.Store
	store   *checkout.MemoryStore
	engine  *checkout.Engine
	cashier *identity.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memtest.NewStore()
	store := checkout.NewMemoryStore()
	return &fixture{
		db:      db,
		store:   store,
		engine:  checkout.NewEngine(store, db.Products(), db, nil, nil),
		cashier: &identity.Session{UserID: "u-1", Role: entity.RoleUser, BranchID: branchA},
	}
}

func (f *fixture) seed(t *testing.T, p *entity.Product) {
	t.Helper()
	require.NoError(t, f.db.Products().Create(context.Background(), p))
}

func (f *fixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	p, err := f.db.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) orders(t *testing.T) []*entity.Order {
	t.Helper()
	list, err := f.db.Orders().List(context.Background(), "")
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Checkout
// ──────────────────────────────────────────────────────────────────────────────

// Escenario: widget costo 10, venta 15, stock 5; 3 unidades a Jane.
func TestCheckout_WidgetTresUnidades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, product("widget", "10", "15", 5))

	for i := 0; i < 3; i++ {
		_, err := f.engine.AddLine(ctx, f.cashier, "widget")
		require.NoError(t, err)
	}

	out, err := f.engine.Checkout(ctx, f.cashier, "Jane", "")
	require.NoError(t, err)

	assert.Equal(t, string(checkout.StateCompleted), out.State)
	assert.Equal(t, "45.00", out.Order.Total)
	assert.Equal(t, "30.00", out.Order.TotalCost)
	assert.Equal(t, "15.00", out.Order.TotalProfit)
	assert.Equal(t, "33.33", out.Order.ProfitMargin)
	assert.Equal(t, entity.PaymentCash, out.Order.PaymentMethod)
	assert.Equal(t, branchA, out.Order.BranchID)
	require.Len(t, out.Order.Items, 1)
	assert.Equal(t, "15.00", out.Order.Items[0].LineProfit)

	assert.Equal(t, 2, f.stockOf(t, "widget"))
	require.Len(t, out.Products, 1)
	assert.Equal(t, 2, out.Products[0].Stock, "se devuelve el stock releído")

	cart, err := f.engine.Cart(ctx, f.cashier)
	require.NoError(t, err)
	assert.Equal(t, string(checkout.StateEmpty), cart.State)
	assert.Equal(t, branchA, cart.BranchID)

	p, _ := f.db.Products().GetByID(ctx, "widget")
	assert.Equal(t, 3, p.SalesCount)
	assert.Len(t, f.orders(t), 1)
}

// Escenario: precio bajo el costo bloquea el checkout; al corregirlo, procede.
func TestCheckout_PrecioBajoCostoRechazaSinMutar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, product("widget", "10", "15", 5))

	_, err := f.engine.AddLine(ctx, f.cashier, "widget")
	require.NoError(t, err)
	_, err = f.engine.OverridePrice(ctx, f.cashier, "widget", dec("8"))
	require.NoError(t, err)

	_, err = f.engine.Checkout(ctx, f.cashier, "Jane", "Cash")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.orders(t))
	assert.Equal(t, 5, f.stockOf(t, "widget"))

	_, err = f.engine.OverridePrice(ctx, f.cashier, "widget", dec("12"))
	require.NoError(t, err)
	out, err := f.engine.Checkout(ctx, f.cashier, "Jane", "Cash")
	require.NoError(t, err)
	assert.Equal(t, "12.00", out.Order.Total)
	assert.Equal(t, 4, f.stockOf(t, "widget"))
}

func TestCheckout_RechazosNoCreanOrden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, product("widget", "10", "15", 5))

	_, err := f.engine.Checkout(ctx, f.cashier, "Jane", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "carrito vacío")

	_, err = f.engine.AddLine(ctx, f.cashier, "widget")
	require.NoError(t, err)
	_, err = f.engine.Checkout(ctx, f.cashier, "  ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cliente en blanco")

	_, err = f.engine.Checkout(ctx, f.cashier, "Jane", "Bitcoin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "medio de pago desconocido")

	assert.Empty(t, f.orders(t))
	assert.Equal(t, 5, f.stockOf(t, "widget"))
}

// Si cualquier descuento de stock falla, ni la orden ni los demás descuentos quedan aplicados.
func TestCheckout_EsTodoONada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, product("a", "1", "2", 5))
	f.seed(t, product("b", "1", "2", 3))

	_, err := f.engine.AddLine(ctx, f.cashier, "a")
	require.NoError(t, err)
	_, err = f.engine.AddLine(ctx, f.cashier, "b")
	require.NoError(t, err)
	_, err = f.engine.SetQuantity(ctx, f.cashier, "b", 3)
	require.NoError(t, err)

	// Otra caja vende el stock de b antes del checkout.
	require.NoError(t, f.db.Products().ApplySale(ctx, "b", 2))

	_, err = f.engine.Checkout(ctx, f.cashier, "Jane", "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, f.orders(t))
	assert.Equal(t, 5, f.stockOf(t, "a"))
	assert.Equal(t, 1, f.stockOf(t, "b"))

	cart, err := f.engine.Cart(ctx, f.cashier)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2, "el carrito queda intacto para reintentar")
}

func TestCheckout_FalloDeCommitDejaCarritoParaReintentar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, product("widget", "10", "15", 5))
	_, err := f.engine.AddLine(ctx, f.cashier, "widget")
	require.NoError(t, err)

	f.db.FailCommit = errors.New("conexión perdida")
	_, err = f.engine.Checkout(ctx, f.cashier, "Jane", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.orders(t))
	assert.Equal(t, 5, f.stockOf(t, "widget"))

	out, err := f.engine.Checkout(ctx, f.cashier, "Jane", "")
	require.NoError(t, err)
	assert.Equal(t, "15.00", out.Order.Total)
	assert.Equal(t, 4, f.stockOf(t, "widget"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Sucursal y lock de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_CajeroQuedaEnSuSucursal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.SelectBranch(ctx, f.cashier, "branch-b")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	cart, err := f.engine.Cart(ctx, f.cashier)
	require.NoError(t, err)
	assert.Equal(t, branchA, cart.BranchID)
}

func TestEngine_AdminDebeElegirSucursal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, product("widget", "10", "15", 5))
	admin := &identity.Session{UserID: "admin-1", Role: entity.RoleAdmin}

	_, err := f.engine.AddLine(ctx, admin, "widget")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.SelectBranch(ctx, admin, branchA)
	require.NoError(t, err)
	cart, err := f.engine.AddLine(ctx, admin, "widget")
	require.NoError(t, err)
	assert.Equal(t, "15.00", cart.Total)

	cart, err = f.engine.SelectBranch(ctx, admin, "branch-b")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines, "cambiar de sucursal descarta el carrito")
}

func TestEngine_CarritoOcupadoDevuelveConflicto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, product("widget", "10", "15", 5))

	release, err := f.store.Lock(ctx, f.cashier.UserID)
	require.NoError(t, err)

	_, err = f.engine.AddLine(ctx, f.cashier, "widget")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.engine.Checkout(ctx, f.cashier, "Jane", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	release()
	_, err = f.engine.AddLine(ctx, f.cashier, "widget")
	assert.NoError(t, err)
}

func TestEngine_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.AddLine(context.Background(), f.cashier, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
