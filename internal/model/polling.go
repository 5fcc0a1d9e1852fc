package model

import "time"

// ==================== PollingStatus 轮询状态表 ====================

// 连接状态
const (
	ConnStatusConnected    = "connected"
	ConnStatusError        = "error"
	ConnStatusDisconnected = "disconnected"
)

// PollingStatus 每个门店的轮询健康记录
// 每个轮询周期结束后更新一次，无论成功与否
type PollingStatus struct {
	ID         string `gorm:"primaryKey;size:36"`
	MerchantID string `gorm:"uniqueIndex;size:64;not null"`

	LastPollAt     time.Time
	EventsReceived int    // 上一周期收到的事件数
	ErrorsCount    int    // 连续失败次数，成功后清零
	LastError      string `gorm:"size:512"`

	IsActive         bool   `gorm:"default:false"`
	ConnectionStatus string `gorm:"size:16;default:disconnected"`

	UpdatedAt time.Time
}

// TableName 表名
func (PollingStatus) TableName() string { return "polling_status" }
