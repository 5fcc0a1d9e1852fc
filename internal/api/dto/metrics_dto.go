package dto

// ==================== 经营看板 ====================

// DashboardResponse 当日经营概览
type DashboardResponse struct {
	TotalOrders   int64            `json:"total_orders"`
	TotalRevenue  float64          `json:"total_revenue"`
	AverageTicket float64          `json:"average_ticket"`
	ByStatus      map[string]int64 `json:"by_status"`
	ByOrderType   map[string]int64 `json:"by_order_type"`
	ByCategory    map[string]int64 `json:"by_category"`
	ActiveOrders  int64            `json:"active_orders"`
	Cancelled     int64            `json:"cancelled"`
}

// DailySummary 单日经营汇总
type DailySummary struct {
	Date      string  `json:"date"`
	Orders    int64   `json:"orders"`
	Revenue   float64 `json:"revenue"`
	Cancelled int64   `json:"cancelled"`
}

// SummaryResponse 最近 N 天经营汇总
type SummaryResponse struct {
	PeriodDays int            `json:"period_days"`
	Daily      []DailySummary `json:"daily_summary"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	MerchantID     string `json:"merchant_id"`
	PollingActive  bool   `json:"polling_active"`
	HasCredentials bool   `json:"has_credentials"`
}
