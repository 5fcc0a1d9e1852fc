package dto

import "time"

// ==================== 促销 ====================

// CreatePromotionRequest 新建促销请求
type CreatePromotionRequest struct {
	MerchantID         string   `json:"merchant_id"`
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description"`
	PromotionType      string   `json:"promotion_type"` // PERCENTAGE / LXPY / PERCENTAGE_PER_X_UNITS
	DiscountPercentage float64  `json:"discount_percentage"`
	BuyQuantity        int      `json:"buy_quantity"`
	GetQuantity        int      `json:"get_quantity"`
	ItemIDs            []string `json:"item_ids"`
	StartDate          string   `json:"start_date"` // 2024-01-01
	EndDate            string   `json:"end_date"`
}

// PromotionVO 促销视图对象
type PromotionVO struct {
	ID                 string    `json:"id"`
	MerchantID         string    `json:"merchant_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	PromotionType      string    `json:"promotion_type"`
	DiscountPercentage float64   `json:"discount_percentage,omitempty"`
	BuyQuantity        int       `json:"buy_quantity,omitempty"`
	GetQuantity        int       `json:"get_quantity,omitempty"`
	ItemIDs            []string  `json:"item_ids,omitempty"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
}
