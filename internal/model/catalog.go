package model

import "time"

// ==================== CatalogItem 商品目录表 ====================

// CatalogItem 本地商品目录条目
// 本地为主，远端同步为尽力而为 (同步失败只记日志)
type CatalogItem struct {
	ID         string `gorm:"primaryKey;size:36"`
	MerchantID string `gorm:"index;size:64"`

	ExternalCode string `gorm:"index;size:64;not null"`
	Name         string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`

	Price         float64
	OriginalPrice float64
	EAN           string `gorm:"size:32"`
	ImageURL      string `gorm:"size:512"`
	Category      string `gorm:"size:64;index"`
	Unit          string `gorm:"size:8;default:un"`

	Available     bool `gorm:"default:true"`
	StockQuantity int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 表名
func (CatalogItem) TableName() string { return "catalog_items" }
