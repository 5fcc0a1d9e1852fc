package repository

import (
	"context"
	"errors"
	"time"

	"ifood_partner_v1/internal/model"

	"gorm.io/gorm"
)

// ==================== EventRepository 事件仓库 ====================

// EventRepository 事件仓库接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error

	// Exists 事件是否已入库 (幂等去重依据)
	Exists(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed 应用完成后置位 processed 标记
	MarkProcessed(ctx context.Context, eventID string) error

	List(ctx context.Context, processed *bool, limit int) ([]model.Event, error)
}

// eventRepo GORM 实现
type eventRepo struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓库
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

// Create 入库存档
func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Exists 事件是否已入库
func (r *eventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	var event model.Event
	err := r.db.WithContext(ctx).Select("id").First(&event, "event_id = ?", eventID).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// MarkProcessed 置位 processed 标记
func (r *eventRepo) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": &now,
		}).Error
}

// List 事件列表，按接收时间倒序
func (r *eventRepo) List(ctx context.Context, processed *bool, limit int) ([]model.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&model.Event{})
	if processed != nil {
		query = query.Where("processed = ?", *processed)
	}

	var events []model.Event
	err := query.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
