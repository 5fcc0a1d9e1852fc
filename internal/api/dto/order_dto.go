package dto

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单列表查询 ====================

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	MerchantID string `form:"merchant_id"`
	Status     string `form:"status"`     // PLACED / CONFIRMED / DISPATCHED / ...
	OrderType  string `form:"order_type"` // DELIVERY / TAKEOUT / DINE_IN
	Category   string `form:"category"`   // FOOD / GROCERY
	StartDate  string `form:"start_date"` // 2024-01-01
	EndDate    string `form:"end_date"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64           `json:"total"`
	List  []OrderListItem `json:"list"`
}

// OrderListItem 订单列表项
type OrderListItem struct {
	ID           string     `json:"id"`
	IfoodID      string     `json:"ifood_id"`
	DisplayID    string     `json:"display_id"`
	MerchantID   string     `json:"merchant_id"`
	Status       string     `json:"status"`
	OrderType    string     `json:"order_type"`
	Category     string     `json:"category"`
	CustomerName string     `json:"customer_name"`
	ItemCount    int        `json:"item_count"`
	Total        float64    `json:"total"`
	CreatedAt    time.Time  `json:"created_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}

// ==================== 订单详情 ====================

// OrderVO 订单视图对象
// 远端的不透明子结构 (customer/items/...) 原样透出，前端自行展开
type OrderVO struct {
	ID         string `json:"id"`
	IfoodID    string `json:"ifood_id"`
	DisplayID  string `json:"display_id"`
	MerchantID string `json:"merchant_id"`
	Status     string `json:"status"`
	OrderType  string `json:"order_type"`
	Category   string `json:"category"`
	Moment     string `json:"moment"`

	Customer   datatypes.JSONMap `json:"customer,omitempty"`
	Address    datatypes.JSONMap `json:"address,omitempty"`
	Delivery   datatypes.JSONMap `json:"delivery,omitempty"`
	Scheduling datatypes.JSONMap `json:"scheduling,omitempty"`
	Driver     datatypes.JSONMap `json:"driver,omitempty"`
	Items      datatypes.JSON    `json:"items,omitempty"`
	Payments   datatypes.JSON    `json:"payments,omitempty"`

	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`

	Observations       string `json:"observations,omitempty"`
	CancellationCode   string `json:"cancellation_code,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	ConcludedAt  *time.Time `json:"concluded_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}

// ==================== 订单指令 ====================

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	CancellationCode string `json:"cancellation_code" binding:"required"`
	Reason           string `json:"reason"`
}

// CommandResponse 指令结果响应
type CommandResponse struct {
	Outcome string `json:"outcome"` // success / pending / not_found
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
}
