package dto

// ==================== 授权流程 ====================

// UserCodeResponse 授权码流程第一步响应
type UserCodeResponse struct {
	UserCode                string `json:"user_code"`
	VerificationURL         string `json:"verification_url"`
	VerificationURLComplete string `json:"verification_url_complete"`
	ExpiresIn               int    `json:"expires_in"`
}

// CompleteAuthRequest 授权码流程第二步请求
// authorization_code 由商家在 iFood 后台人工确认后获得
type CompleteAuthRequest struct {
	UserCode          string `json:"user_code" binding:"required"`
	AuthorizationCode string `json:"authorization_code" binding:"required"`
}
