package lowstock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/application/lowstock"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/memtest"
	"github.com/jhoicas/branch-pos-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type chanFeed struct{ ch chan struct{} }

func (f *chanFeed) Changes() <-chan struct{} { return f.ch }

// failingProducts falla ListLowStock mientras err no sea nil.
type failingProducts struct {
	repository.ProductRepository
	err error
}

func (f *failingProducts) ListLowStock(ctx context.Context, threshold int) ([]*entity.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ProductRepository.ListLowStock(ctx, threshold)
}

var admin = &identity.Session{UserID: "admin", Role: entity.RoleAdmin}

func seed(t *testing.T, db *memtest.Store, id, branch string, stock int) {
	t.Helper()
	require.NoError(t, db.Products().Create(context.Background(), &entity.Product{
		ID: id, BranchID: branch, Name: id,
		CostPrice: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(2), Stock: stock,
	}))
}

func setStock(t *testing.T, db *memtest.Store, id string, stock int) {
	t.Helper()
	ctx := context.Background()
	p, err := db.Products().GetByID(ctx, id)
	require.NoError(t, err)
	p.Stock = stock
	require.NoError(t, db.Products().Update(ctx, p))
}

func ids(t *testing.T, m *lowstock.Monitor, sess *identity.Session, branch string) []string {
	t.Helper()
	out, err := m.List(context.Background(), sess, branch)
	require.NoError(t, err)
	list := make([]string, 0, len(out.Items))
	for _, it := range out.Items {
		list = append(list, it.ProductID)
	}
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

func TestList_UmbralYNivelDeStock(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db, "agotado", "b-1", 0)
	seed(t, db, "uno", "b-1", 1)
	seed(t, db, "dos", "b-1", 2)
	m := lowstock.NewMonitor(db.Products(), nil, time.Hour, nil, nil)

	out, err := m.List(context.Background(), admin, "")
	require.NoError(t, err)

	require.Len(t, out.Items, 2, "stock 2 no está en alerta")
	assert.Equal(t, "agotado", out.Items[0].ProductID)
	assert.Equal(t, "0.0", out.Items[0].StockLevel)
	assert.Equal(t, "uno", out.Items[1].ProductID)
	assert.Equal(t, "50.0", out.Items[1].StockLevel)
	assert.Equal(t, 2, out.Threshold)
	assert.NotEmpty(t, out.RefreshedAt, "el primer List recalcula en el momento")
}

func TestList_FiltroDeSucursal(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db, "a", "b-1", 0)
	seed(t, db, "b", "b-2", 1)
	m := lowstock.NewMonitor(db.Products(), nil, time.Hour, nil, nil)
	cashier := &identity.Session{UserID: "u", Role: entity.RoleUser, BranchID: "b-2"}

	assert.ElementsMatch(t, []string{"a", "b"}, ids(t, m, admin, ""))
	assert.Equal(t, []string{"a"}, ids(t, m, admin, "b-1"))
	assert.Equal(t, []string{"b"}, ids(t, m, cashier, "b-1"), "el filtro del cajero se ignora")
}

// ──────────────────────────────────────────────────────────────────────────────
// Refresh
// ──────────────────────────────────────────────────────────────────────────────

func TestRefresh_EsIdempotente(t *testing.T) {
	ctx := context.Background()
	db := memtest.NewStore()
	seed(t, db, "a", "b-1", 1)
	seed(t, db, "b", "b-1", 0)
	m := lowstock.NewMonitor(db.Products(), nil, time.Hour, nil, nil)

	require.NoError(t, m.Refresh(ctx, lowstock.TriggerTimer))
	first := ids(t, m, admin, "")
	require.NoError(t, m.Refresh(ctx, lowstock.TriggerPush))
	require.NoError(t, m.Refresh(ctx, lowstock.TriggerTimer))
	assert.Equal(t, first, ids(t, m, admin, ""))
}

func TestRefresh_FalloConservaListaAnterior(t *testing.T) {
	ctx := context.Background()
	db := memtest.NewStore()
	seed(t, db, "a", "b-1", 1)
	repo := &failingProducts{ProductRepository: db.Products()}
	reg := prometheus.NewRegistry()
	m := lowstock.NewMonitor(repo, nil, time.Hour, nil, metrics.New(reg))

	require.NoError(t, m.Refresh(ctx, lowstock.TriggerTimer))
	repo.err = errors.New("db caída")
	assert.Error(t, m.Refresh(ctx, lowstock.TriggerTimer))
	assert.Equal(t, []string{"a"}, ids(t, m, admin, ""))
	assert.Equal(t, 1, m.Count())
}

func TestList_SinRecalculoPrevioPropagaError(t *testing.T) {
	repo := &failingProducts{ProductRepository: memtest.NewStore().Products(), err: errors.New("db caída")}
	m := lowstock.NewMonitor(repo, nil, time.Hour, nil, nil)

	_, err := m.List(context.Background(), admin, "")
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Run
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_NotificacionRecalcula(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db, "a", "b-1", 5)
	feed := &chanFeed{ch: make(chan struct{}, 1)}
	m := lowstock.NewMonitor(db.Products(), feed, time.Hour, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { m.Run(ctx); close(done) }()

	require.Eventually(t, func() bool {
		out, err := m.List(ctx, admin, "")
		return err == nil && out.RefreshedAt != "" && out.Total == 0
	}, time.Second, 5*time.Millisecond)

	setStock(t, db, "a", 1)
	feed.ch <- struct{}{}

	assert.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó al cancelar el contexto")
	}
}

func TestRun_TimerRecalculaSinNotificaciones(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db, "a", "b-1", 5)
	m := lowstock.NewMonitor(db.Products(), nil, 10*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	setStock(t, db, "a", 0)
	assert.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRun_FeedCerradoSigueConTimer(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db, "a", "b-1", 5)
	feed := &chanFeed{ch: make(chan struct{})}
	close(feed.ch)
	m := lowstock.NewMonitor(db.Products(), feed, 10*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	setStock(t, db, "a", 1)
	assert.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 5*time.Millisecond)
}
