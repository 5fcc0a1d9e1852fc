package repository

import (
	"context"

	"ifood_partner_v1/internal/model"

	"gorm.io/gorm"
)

// ==================== CatalogFilter 过滤条件 ====================

// CatalogFilter 商品目录过滤条件
type CatalogFilter struct {
	MerchantID string
	Category   string
	Available  *bool
	Limit      int
	Offset     int
}

// ==================== CatalogRepository 商品目录仓库 ====================

// CatalogRepository 商品目录仓库接口
type CatalogRepository interface {
	Create(ctx context.Context, item *model.CatalogItem) error
	GetByID(ctx context.Context, id string) (*model.CatalogItem, error)
	List(ctx context.Context, filter CatalogFilter) ([]model.CatalogItem, int64, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// catalogRepo GORM 实现
type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepository 创建商品目录仓库
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

// Create 新增商品
func (r *catalogRepo) Create(ctx context.Context, item *model.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID 商品详情
func (r *catalogRepo) GetByID(ctx context.Context, id string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List 条件查询
func (r *catalogRepo) List(ctx context.Context, filter CatalogFilter) ([]model.CatalogItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.CatalogItem{})

	if filter.MerchantID != "" {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var items []model.CatalogItem
	err := query.Offset(filter.Offset).Limit(limit).Find(&items).Error
	return items, total, err
}

// UpdateFields 更新指定字段
func (r *catalogRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CatalogItem{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// Delete 删除商品
func (r *catalogRepo) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.CatalogItem{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
