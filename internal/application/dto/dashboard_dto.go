package dto

// DashboardStatsResponse conteos del panel principal.
type DashboardStatsResponse struct {
	Products         int    `json:"products"`
	LowStockProducts int    `json:"low_stock_products"`
	Users            int    `json:"users"`
	Orders           int    `json:"orders"`
	BranchID         string `json:"branch_id,omitempty"`
}

// MenuItemResponse entrada de navegación visible para el rol.
type MenuItemResponse struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Path  string `json:"path"`
}
