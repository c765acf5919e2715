// Package lowstock mantiene la lista de productos con stock bajo el umbral de alerta.
//
// La lista se recalcula completa (no hay deltas) desde dos disparadores: un timer y las
// notificaciones de cambio de la tabla de productos. Ambos llaman a Refresh, que es
// idempotente; el último recálculo en terminar es el que queda publicado.
package lowstock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
	"github.com/jhoicas/branch-pos-api/internal/domain/sales"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
	"github.com/jhoicas/branch-pos-api/pkg/metrics"
)

// DefaultInterval intervalo del recálculo periódico.
const DefaultInterval = 10 * time.Second

// Disparadores de Refresh, usados como etiqueta de métricas y logs.
const (
	TriggerStart = "start"
	TriggerTimer = "timer"
	TriggerPush  = "push"
	TriggerLazy  = "lazy"
)

// ChangeFeed emite una señal cada vez que cambia la tabla de productos.
type ChangeFeed interface {
	Changes() <-chan struct{}
}

// Monitor caso de uso de alertas de stock bajo.
type Monitor struct {
	products repository.ProductRepository
	feed     ChangeFeed
	interval time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu          sync.RWMutex
	items       []*entity.Product
	refreshedAt time.Time
}

// NewMonitor construye el monitor. feed, log y m pueden ser nil; interval <= 0 usa DefaultInterval.
func NewMonitor(products repository.ProductRepository, feed ChangeFeed, interval time.Duration, log *logger.Logger, m *metrics.Metrics) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Monitor{
		products: products,
		feed:     feed,
		interval: interval,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// Run recalcula al arrancar, en cada tick y en cada notificación hasta que ctx se cancele.
// Un fallo de recálculo se registra y conserva la lista anterior.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var changes <-chan struct{}
	if m.feed != nil {
		changes = m.feed.Changes()
	}

	m.refreshLogged(ctx, TriggerStart)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refreshLogged(ctx, TriggerTimer)
		case _, ok := <-changes:
			if !ok {
				// el listener terminó; queda el timer
				changes = nil
				continue
			}
			m.refreshLogged(ctx, TriggerPush)
		}
	}
}

func (m *Monitor) refreshLogged(ctx context.Context, trigger string) {
	if err := m.Refresh(ctx, trigger); err != nil && ctx.Err() == nil {
		m.log.Warn().Err(err).Str("trigger", trigger).Msg("no se pudo recalcular el stock bajo")
	}
}

// Refresh vuelve a leer todos los productos bajo el umbral y reemplaza la lista publicada.
func (m *Monitor) Refresh(ctx context.Context, trigger string) error {
	items, err := m.products.ListLowStock(ctx, entity.LowStockThreshold)
	m.metrics.IncStockRefresh(trigger, err)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Stock != items[j].Stock {
			return items[i].Stock < items[j].Stock
		}
		return items[i].Name < items[j].Name
	})

	m.mu.Lock()
	m.items = items
	m.refreshedAt = m.now()
	m.mu.Unlock()

	m.metrics.SetLowStock(len(items))
	m.log.Debug().Str("trigger", trigger).Int("count", len(items)).Msg("stock bajo recalculado")
	return nil
}

// List devuelve las alertas visibles para la sesión. Un admin puede filtrar por sucursal
// (vacío = todas); los demás roles ven solo su sucursal. Si aún no hubo ningún recálculo,
// se hace uno en el momento.
func (m *Monitor) List(ctx context.Context, sess *identity.Session, branchFilter string) (*dto.StockAlertListResponse, error) {
	m.mu.RLock()
	ready := !m.refreshedAt.IsZero()
	m.mu.RUnlock()
	if !ready {
		if err := m.Refresh(ctx, TriggerLazy); err != nil {
			return nil, err
		}
	}

	branchID := sess.ScopeBranch(branchFilter)

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := &dto.StockAlertListResponse{
		Items:       make([]dto.StockAlertResponse, 0, len(m.items)),
		Threshold:   entity.LowStockThreshold,
		RefreshedAt: m.refreshedAt.UTC().Format(time.RFC3339),
	}
	for _, p := range m.items {
		if branchID != "" && p.BranchID != branchID {
			continue
		}
		out.Items = append(out.Items, dto.StockAlertResponse{
			ProductID:  p.ID,
			Name:       p.Name,
			BranchID:   p.BranchID,
			Stock:      p.Stock,
			StockLevel: sales.FormatPercent(p.StockLevel()),
			SellPrice:  sales.FormatMoney(p.SellPrice),
		})
	}
	out.Total = len(out.Items)
	return out, nil
}

// Count cantidad de productos en alerta en la última lista publicada.
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
