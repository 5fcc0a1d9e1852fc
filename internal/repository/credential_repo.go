package repository

import (
	"context"
	"errors"

	"ifood_partner_v1/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ==================== CredentialRepository 凭证快照仓库 ====================

// CredentialRepository 凭证快照仓库接口
// 仅用于进程重启后的热恢复，内存中的凭证状态才是权威
type CredentialRepository interface {
	GetByClientID(ctx context.Context, clientID string) (*model.CredentialSnapshot, error)
	Save(ctx context.Context, snapshot *model.CredentialSnapshot) error
}

// credentialRepo GORM 实现
type credentialRepo struct {
	db *gorm.DB
}

// NewCredentialRepository 创建凭证快照仓库
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepo{db: db}
}

// GetByClientID 读取快照，不存在时返回 nil
func (r *credentialRepo) GetByClientID(ctx context.Context, clientID string) (*model.CredentialSnapshot, error) {
	var snapshot model.CredentialSnapshot
	err := r.db.WithContext(ctx).First(&snapshot, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Save 按 client_id upsert
func (r *credentialRepo) Save(ctx context.Context, snapshot *model.CredentialSnapshot) error {
	existing, err := r.GetByClientID(ctx, snapshot.ClientID)
	if err != nil {
		return err
	}
	if existing != nil {
		snapshot.ID = existing.ID
	} else if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Save(snapshot).Error
}
