package model

import "time"

// ==================== 授权模式常量 ====================

// GrantType 授权模式
const (
	GrantClientCredentials = "client_credentials" // 集中式应用：直接换取 token，无 refresh token
	GrantAuthorizationCode = "authorization_code" // 分布式应用：用户码 + PKCE，有 refresh token
)

// ==================== CredentialSnapshot 凭证快照表 ====================

// CredentialSnapshot token 状态的落库快照，用于进程重启后热恢复
// 内存中的凭证状态才是权威，快照只在认证成功后写入
type CredentialSnapshot struct {
	ID       string `gorm:"primaryKey;size:36"`
	ClientID string `gorm:"uniqueIndex;size:64;not null"`

	GrantType    string `gorm:"size:32"`
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	Verifier     string `gorm:"size:128"` // PKCE verifier (仅 authorization_code 流程)

	ExpiresAt time.Time
	UpdatedAt time.Time
}

// TableName 表名
func (CredentialSnapshot) TableName() string { return "credential_snapshots" }
