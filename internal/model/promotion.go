package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 促销类型常量 ====================

// PromotionType 促销类型
const (
	PromoPercentage         = "PERCENTAGE"
	PromoLXPY               = "LXPY" // 买 X 送 Y
	PromoPercentagePerUnits = "PERCENTAGE_PER_X_UNITS"
)

// MaxDiscountPercentage 平台允许的最大折扣
const MaxDiscountPercentage = 70.0

// ==================== Promotion 促销表 ====================

// Promotion 促销活动
type Promotion struct {
	ID         string `gorm:"primaryKey;size:36"`
	MerchantID string `gorm:"index;size:64"`

	Name          string `gorm:"size:255;not null"`
	Description   string `gorm:"type:text"`
	PromotionType string `gorm:"size:32;default:PERCENTAGE"`

	DiscountPercentage float64
	BuyQuantity        int
	GetQuantity        int

	// 参与促销的商品 ID 列表
	ItemIDs datatypes.JSON `gorm:"type:jsonb"`

	StartDate time.Time
	EndDate   time.Time
	Active    bool `gorm:"default:true;index"`

	CreatedAt time.Time
}

// TableName 表名
func (Promotion) TableName() string { return "promotions" }
