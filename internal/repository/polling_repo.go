package repository

import (
	"context"
	"errors"
	"time"

	"ifood_partner_v1/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ==================== PollingStatusRepository 轮询状态仓库 ====================

// PollingStatusRepository 轮询状态仓库接口
// 每个门店一行，按 merchant_id upsert
type PollingStatusRepository interface {
	GetByMerchant(ctx context.Context, merchantID string) (*model.PollingStatus, error)

	// RecordSuccess 记录一次成功的轮询周期：清零错误计数
	RecordSuccess(ctx context.Context, merchantID string, eventsReceived int) error

	// RecordFailure 记录一次失败的轮询周期：错误计数 +1
	RecordFailure(ctx context.Context, merchantID string, lastError string) error

	// SetActive 更新轮询开关状态
	SetActive(ctx context.Context, merchantID string, active bool) error
}

// pollingRepo GORM 实现
type pollingRepo struct {
	db *gorm.DB
}

// NewPollingStatusRepository 创建轮询状态仓库
func NewPollingStatusRepository(db *gorm.DB) PollingStatusRepository {
	return &pollingRepo{db: db}
}

// GetByMerchant 查询门店轮询状态
// 还没轮询过的门店返回 (nil, nil)
func (r *pollingRepo) GetByMerchant(ctx context.Context, merchantID string) (*model.PollingStatus, error) {
	var status model.PollingStatus
	err := r.db.WithContext(ctx).First(&status, "merchant_id = ?", merchantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// RecordSuccess 记录成功周期
func (r *pollingRepo) RecordSuccess(ctx context.Context, merchantID string, eventsReceived int) error {
	return r.upsert(ctx, merchantID, func(status *model.PollingStatus) {
		status.LastPollAt = time.Now().UTC()
		status.EventsReceived = eventsReceived
		status.ErrorsCount = 0
		status.LastError = ""
		status.IsActive = true
		status.ConnectionStatus = model.ConnStatusConnected
	})
}

// RecordFailure 记录失败周期
func (r *pollingRepo) RecordFailure(ctx context.Context, merchantID string, lastError string) error {
	return r.upsert(ctx, merchantID, func(status *model.PollingStatus) {
		status.LastPollAt = time.Now().UTC()
		status.ErrorsCount++
		status.LastError = lastError
		status.ConnectionStatus = model.ConnStatusError
	})
}

// SetActive 更新开关状态
func (r *pollingRepo) SetActive(ctx context.Context, merchantID string, active bool) error {
	return r.upsert(ctx, merchantID, func(status *model.PollingStatus) {
		status.IsActive = active
		if !active {
			status.ConnectionStatus = model.ConnStatusDisconnected
		}
	})
}

// upsert 读取-修改-保存
// 轮询状态只有单一写入方 (轮询任务本身)，不需要数据库级原子操作
func (r *pollingRepo) upsert(ctx context.Context, merchantID string, mutate func(*model.PollingStatus)) error {
	var status model.PollingStatus
	err := r.db.WithContext(ctx).First(&status, "merchant_id = ?", merchantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		status = model.PollingStatus{
			ID:         uuid.NewString(),
			MerchantID: merchantID,
		}
	} else if err != nil {
		return err
	}

	mutate(&status)
	return r.db.WithContext(ctx).Save(&status).Error
}
