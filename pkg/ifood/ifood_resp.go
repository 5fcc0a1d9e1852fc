package ifood

// ==========================================
// DTO: 用于接收 iFood API 返回的原始 JSON 数据
// ==========================================

// TokenResp 认证接口响应
// POST /authentication/v1.0/oauth/token
type TokenResp struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Type         string `json:"type"`
	ExpiresIn    int    `json:"expiresIn"`
}

// UserCodeResp 分布式应用授权码响应
// POST /authentication/v1.0/oauth/userCode
type UserCodeResp struct {
	UserCode                  string `json:"userCode"`
	AuthorizationCodeVerifier string `json:"authorizationCodeVerifier"`
	VerificationURL           string `json:"verificationUrl"`
	VerificationURLComplete   string `json:"verificationUrlComplete"`
	ExpiresIn                 int    `json:"expiresIn"`
}

// EventResp 轮询事件响应
// GET /order/v1.0/events:polling
type EventResp struct {
	ID         string      `json:"id"`
	Code       string      `json:"code"`
	FullCode   string      `json:"fullCode"`
	OrderID    string      `json:"orderId"`
	MerchantID string      `json:"merchantId"`
	CreatedAt  string      `json:"createdAt"`
	Driver     *DriverResp `json:"driver,omitempty"`
}

// DriverResp 骑手信息 (ASSIGN_DRIVER 事件附带)
type DriverResp struct {
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	PhotoURL            string `json:"photoUrl"`
	VehicleType         string `json:"vehicleType"`
	VehicleLicensePlate string `json:"vehicleLicensePlate"`
}

// OrderDetailResp 订单详情响应
// GET /order/v1.0/orders/{id} (Groceries 走 /virtual-bag)
type OrderDetailResp struct {
	ID           string             `json:"id"`
	DisplayID    string             `json:"displayId"`
	OrderType    string             `json:"orderType"`
	OrderTiming  string             `json:"orderTiming"`
	SalesChannel string             `json:"salesChannel"`
	Category     string             `json:"category"`
	Merchant     *OrderMerchantResp `json:"merchant,omitempty"`
	Customer     *CustomerResp      `json:"customer,omitempty"`
	Delivery     *DeliveryResp      `json:"delivery,omitempty"`
	Schedule     map[string]any     `json:"schedule,omitempty"`
	Items        []OrderItemResp    `json:"items"`
	Payments     []map[string]any   `json:"payments"`
	Total        *OrderTotalResp    `json:"total,omitempty"`
	ExtraInfo    string             `json:"extraInfo"`
}

// OrderMerchantResp 订单归属门店
type OrderMerchantResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerResp 下单客户
type CustomerResp struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	DocumentNumber string `json:"documentNumber"`
}

// DeliveryResp 配送信息
type DeliveryResp struct {
	Mode            string       `json:"mode"`
	DeliveredBy     string       `json:"deliveredBy"`
	DeliveryAddress *AddressResp `json:"deliveryAddress,omitempty"`
	PickupCode      string       `json:"pickupCode"`
	Observations    string       `json:"observations"`
}

// AddressResp 收货地址
type AddressResp struct {
	StreetName   string             `json:"streetName"`
	StreetNumber string             `json:"streetNumber"`
	Complement   string             `json:"complement"`
	Neighborhood string             `json:"neighborhood"`
	City         string             `json:"city"`
	State        string             `json:"state"`
	PostalCode   string             `json:"postalCode"`
	Reference    string             `json:"reference"`
	Coordinates  map[string]float64 `json:"coordinates,omitempty"`
}

// OrderItemResp 订单商品行
type OrderItemResp struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Quantity     int              `json:"quantity"`
	UnitPrice    float64          `json:"unitPrice"`
	TotalPrice   float64          `json:"totalPrice"`
	ExternalCode string           `json:"externalCode"`
	Observations string           `json:"observations"`
	GarnishItems []map[string]any `json:"garnishItems,omitempty"`
}

// OrderTotalResp 订单金额汇总
type OrderTotalResp struct {
	SubTotal    float64 `json:"subTotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Benefits    float64 `json:"benefits"`
	OrderAmount float64 `json:"orderAmount"`
}

// MerchantResp 门店信息
// GET /merchant/v1.0/merchants / GET /merchant/v1.0/merchants/{id}
type MerchantResp struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CorporateName string `json:"corporateName"`
}

// MerchantStatusResp 门店营业状态
// GET /merchant/v1.0/merchants/{id}/status
// State: OK / WARNING / CLOSED / ERROR
type MerchantStatusResp struct {
	Operation    string `json:"operation"`
	SalesChannel string `json:"salesChannel"`
	Available    bool   `json:"available"`
	State        string `json:"state"`
	Message      any    `json:"message,omitempty"`
}

// CancellationReasonResp 取消原因
// GET /order/v1.0/orders/{id}/cancellationReasons
type CancellationReasonResp struct {
	CancelCodeID string `json:"cancelCodeId"`
	Description  string `json:"description"`
}

// ErrorResp iFood 通用错误响应
type ErrorResp struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message,omitempty"`
}
