package dto

// StockAlertResponse producto en stock bajo.
type StockAlertResponse struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	BranchID   string `json:"branch_id"`
	Stock      int    `json:"stock"`
	StockLevel string `json:"stock_level"` // porcentaje respecto al umbral
	SellPrice  string `json:"sell_price"`
}

// StockAlertListResponse alertas con la hora del último recálculo.
type StockAlertListResponse struct {
	Items       []StockAlertResponse `json:"items"`
	Total       int                  `json:"total"`
	Threshold   int                  `json:"threshold"`
	RefreshedAt string               `json:"refreshed_at"`
}
