package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 事件类型常量 ====================

// EventType iFood 事件类型词表
// 未列出的类型同样会被存档，但不会触发任何订单变更
const (
	EventPlaced       = "PLACED"
	EventConfirmed    = "CONFIRMED"
	EventCancelled    = "CANCELLED"
	EventDispatched   = "DISPATCHED"
	EventConcluded    = "CONCLUDED"
	EventAssignDriver = "ASSIGN_DRIVER"

	// 以下类型平台有定义，但目前没有对应的本地状态变更规则，
	// 仅入库存档 (审计用途)
	EventPreparationStarted    = "PREPARATION_STARTED"
	EventReadyToPickup         = "READY_TO_PICKUP"
	EventOrderPatched          = "ORDER_PATCHED"
	EventHandshakeDispute      = "HANDSHAKE_DISPUTE"
	EventHandshakeSettlement   = "HANDSHAKE_SETTLEMENT"
	EventDeliveryGroupAssigned = "DELIVERY_GROUP_ASSIGNED"
	EventRecommendedPrepStart  = "RECOMMENDED_PREPARATION_START"
)

// ==================== Event 事件存档表 ====================

// Event 远端事件记录
// EventID 全局唯一，是幂等去重的依据；记录只增不删
type Event struct {
	ID         string `gorm:"primaryKey;size:36"`
	EventID    string `gorm:"uniqueIndex;size:64;not null"`
	EventType  string `gorm:"size:64;index"`
	OrderID    string `gorm:"index;size:64"` // iFood 订单 ID
	MerchantID string `gorm:"size:64"`

	Processed   bool `gorm:"default:false;index"`
	ProcessedAt *time.Time

	// 原始事件负载，原样存档
	Payload datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"index"`
}

// TableName 表名
func (Event) TableName() string { return "events" }
