package repository

import (
	"context"

	"ifood_partner_v1/internal/model"

	"gorm.io/gorm"
)

// ==================== PromotionRepository 促销仓库 ====================

// PromotionRepository 促销仓库接口
type PromotionRepository interface {
	Create(ctx context.Context, promotion *model.Promotion) error
	GetByID(ctx context.Context, id string) (*model.Promotion, error)
	List(ctx context.Context, merchantID string, active *bool, limit int) ([]model.Promotion, error)
	SetActive(ctx context.Context, id string, active bool) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// promotionRepo GORM 实现
type promotionRepo struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepo{db: db}
}

// Create 新增促销
func (r *promotionRepo) Create(ctx context.Context, promotion *model.Promotion) error {
	return r.db.WithContext(ctx).Create(promotion).Error
}

// GetByID 促销详情
func (r *promotionRepo) GetByID(ctx context.Context, id string) (*model.Promotion, error) {
	var promotion model.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

// List 条件查询
func (r *promotionRepo) List(ctx context.Context, merchantID string, active *bool, limit int) ([]model.Promotion, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&model.Promotion{})
	if merchantID != "" {
		query = query.Where("merchant_id = ?", merchantID)
	}
	if active != nil {
		query = query.Where("active = ?", *active)
	}

	var promotions []model.Promotion
	err := query.Limit(limit).Find(&promotions).Error
	return promotions, err
}

// SetActive 启停促销
func (r *promotionRepo) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Promotion{}).
		Where("id = ?", id).
		Update("active", active)
	return result.RowsAffected, result.Error
}

// Delete 删除促销
func (r *promotionRepo) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Promotion{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
