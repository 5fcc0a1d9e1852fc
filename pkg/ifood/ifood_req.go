package ifood

// ==========================================
// DTO: 发送到 iFood API 的请求体
// ==========================================

// TokenReq 认证请求 (application/x-www-form-urlencoded)
// 注意：iFood 要求参数为 camelCase (grantType / clientId / clientSecret)，
// 与标准 OAuth 的 snake_case 不同
type TokenReq struct {
	GrantType                 string // client_credentials / authorization_code / refresh_token
	ClientID                  string
	ClientSecret              string
	AuthorizationCode         string
	AuthorizationCodeVerifier string
	RefreshToken              string
}

// CancellationReq 取消订单请求
// POST /order/v1.0/orders/{id}/requestCancellation
type CancellationReq struct {
	Reason           string `json:"reason,omitempty"`
	CancellationCode string `json:"cancellationCode"`
}

// PickingItemReq 分拣新增/替换商品请求
// POST /picking/v1.0/orders/{id}/items
type PickingItemReq struct {
	EAN          string  `json:"ean,omitempty"`
	ExternalCode string  `json:"externalCode,omitempty"`
	Name         string  `json:"name,omitempty"`
	Quantity     float64 `json:"quantity,omitempty"`
	UnitPrice    float64 `json:"unitPrice,omitempty"`
}

// PickingModifyReq 分拣修改商品请求 (数量或重量)
// PATCH /picking/v1.0/orders/{id}/items/{uniqueId}
type PickingModifyReq struct {
	Quantity float64 `json:"quantity,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
}

// DisputeRejectReq 拒绝协商请求
// POST /order/v1.0/disputes/{disputeId}/reject
type DisputeRejectReq struct {
	Reason string `json:"reason,omitempty"`
}
