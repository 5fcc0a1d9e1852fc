package dto

import "time"

// ==================== 轮询控制 ====================

// PollingStatusResponse 轮询器运行状态
type PollingStatusResponse struct {
	Running          bool       `json:"running"`
	MerchantID       string     `json:"merchant_id"`
	IntervalSeconds  int        `json:"interval_seconds"`
	LastPollAt       *time.Time `json:"last_poll_at,omitempty"`
	EventsReceived   int        `json:"events_received"`
	ErrorsCount      int        `json:"errors_count"`
	LastError        string     `json:"last_error,omitempty"`
	ConnectionStatus string     `json:"connection_status"`
}

// ==================== 事件存档查询 ====================

// ListEventsRequest 事件存档查询请求
type ListEventsRequest struct {
	Processed *bool `form:"processed"`
	Limit     int   `form:"limit,default=50"`
}

// EventVO 事件视图对象
type EventVO struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	EventType   string     `json:"event_type"`
	OrderID     string     `json:"order_id"`
	MerchantID  string     `json:"merchant_id"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
