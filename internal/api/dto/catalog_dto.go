package dto

import "time"

// ==================== 商品目录 ====================

// ListCatalogRequest 商品目录查询请求
type ListCatalogRequest struct {
	MerchantID string `form:"merchant_id"`
	Category   string `form:"category"`
	Available  *bool  `form:"available"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
}

// CreateCatalogItemRequest 新增商品请求
type CreateCatalogItemRequest struct {
	MerchantID    string  `json:"merchant_id"`
	ExternalCode  string  `json:"external_code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	OriginalPrice float64 `json:"original_price"`
	EAN           string  `json:"ean"`
	ImageURL      string  `json:"image_url"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit"`
	StockQuantity int     `json:"stock_quantity"`
}

// UpdateCatalogItemRequest 修改商品请求 (字段为空则不变)
type UpdateCatalogItemRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	ImageURL      *string  `json:"image_url"`
	Category      *string  `json:"category"`
	Available     *bool    `json:"available"`
	StockQuantity *int     `json:"stock_quantity"`
}

// CatalogItemVO 商品视图对象
type CatalogItemVO struct {
	ID            string    `json:"id"`
	MerchantID    string    `json:"merchant_id"`
	ExternalCode  string    `json:"external_code"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	EAN           string    `json:"ean,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Category      string    `json:"category,omitempty"`
	Unit          string    `json:"unit"`
	Available     bool      `json:"available"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListCatalogResponse 商品目录查询响应
type ListCatalogResponse struct {
	Total int64           `json:"total"`
	List  []CatalogItemVO `json:"list"`
}
