package repository

import "context"

// DashboardCounts conteos del panel principal.
type DashboardCounts struct {
	Products         int
	LowStockProducts int
	Users            int
	Orders           int
}

// DashboardRepository puerto de lectura de conteos agregados.
type DashboardRepository interface {
	// Counts calcula los conteos; branchID vacío cuenta todas las sucursales.
	Counts(ctx context.Context, branchID string, lowStockThreshold int) (*DashboardCounts, error)
}
