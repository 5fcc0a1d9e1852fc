package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// OrderStatus 本地订单生命周期状态
const (
	StatusPlaced             = "PLACED"              // 新订单
	StatusConfirmed          = "CONFIRMED"           // 已接单
	StatusPreparationStarted = "PREPARATION_STARTED" // 备餐中
	StatusSeparationStarted  = "SEPARATION_STARTED"  // 分拣中 (仅商超)
	StatusSeparationEnded    = "SEPARATION_ENDED"    // 分拣完成 (仅商超)
	StatusReadyToPickup      = "READY_TO_PICKUP"     // 待取餐
	StatusDispatched         = "DISPATCHED"          // 配送中
	StatusArrived            = "ARRIVED"             // 已到达
	StatusConcluded          = "CONCLUDED"           // 已完成 (终态)
	StatusCancelled          = "CANCELLED"           // 已取消 (终态)
)

// statusRank 状态在生命周期中的次序
// 状态只能前进或跳转到 CANCELLED，禁止回退
var statusRank = map[string]int{
	StatusPlaced:             1,
	StatusConfirmed:          2,
	StatusPreparationStarted: 3,
	StatusSeparationStarted:  4,
	StatusSeparationEnded:    5,
	StatusReadyToPickup:      6,
	StatusDispatched:         7,
	StatusArrived:            8,
	StatusConcluded:          9,
}

// StatusRank 返回状态次序，未知状态返回 0
func StatusRank(status string) int {
	return statusRank[status]
}

// IsTerminalStatus 是否终态
func IsTerminalStatus(status string) bool {
	return status == StatusConcluded || status == StatusCancelled
}

// CanAdvance 判断能否从 from 前进到 to
// CANCELLED 可从任何非终态进入；其余状态必须严格前进
func CanAdvance(from, to string) bool {
	if to == StatusCancelled {
		return !IsTerminalStatus(from)
	}
	return StatusRank(to) > StatusRank(from)
}

// ==================== 订单类型常量 ====================

// OrderType 订单类型
const (
	OrderTypeDelivery = "DELIVERY"
	OrderTypeTakeout  = "TAKEOUT"
	OrderTypeDineIn   = "DINE_IN"
)

// OrderCategory 订单品类
const (
	CategoryFood    = "FOOD"
	CategoryGrocery = "GROCERY"
)

// OrderMoment 下单时机
const (
	MomentImmediate = "IMMEDIATE"
	MomentTimeSlot  = "TIME_SLOT"
)

// ==================== Order 订单主表 ====================

// Order 本地订单 (iFood 订单的物化视图)
type Order struct {
	ID         string `gorm:"primaryKey;size:36"`
	IfoodID    string `gorm:"uniqueIndex;size:64;not null"`
	DisplayID  string `gorm:"size:32"`
	MerchantID string `gorm:"index;size:64"`

	// 状态
	Status    string `gorm:"size:32;index;default:PLACED"`
	OrderType string `gorm:"size:16;default:DELIVERY"`
	Category  string `gorm:"size:32;default:FOOD"`
	Moment    string `gorm:"size:16;default:IMMEDIATE"`

	// 远端返回的不透明子结构 (PostgreSQL JSONB)
	Customer   datatypes.JSONMap `gorm:"type:jsonb"`
	Address    datatypes.JSONMap `gorm:"type:jsonb"`
	Items      datatypes.JSON    `gorm:"type:jsonb"`
	Payments   datatypes.JSON    `gorm:"type:jsonb"`
	Delivery   datatypes.JSONMap `gorm:"type:jsonb"`
	Scheduling datatypes.JSONMap `gorm:"type:jsonb"`
	Driver     datatypes.JSONMap `gorm:"type:jsonb"`

	// 金额
	Subtotal    float64
	DeliveryFee float64
	Discount    float64
	Total       float64

	Observations string `gorm:"type:text"`

	// 取消信息 (仅操作员主动取消时填写 code/reason)
	CancellationCode   string `gorm:"size:8"`
	CancellationReason string `gorm:"size:255"`

	// 生命周期时间戳
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
	ConfirmedAt  *time.Time
	DispatchedAt *time.Time
	ConcludedAt  *time.Time
	CancelledAt  *time.Time

	PreparationStartAt *time.Time
}

// TableName 表名
func (Order) TableName() string { return "orders" }
