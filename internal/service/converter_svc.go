package service

import (
	"encoding/json"

	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/pkg/ifood"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ToOrderModel 将 iFood 订单详情打平为本地订单
// 新订单统一以 PLACED 状态入库，后续状态由事件驱动
func ToOrderModel(dto *ifood.OrderDetailResp) *model.Order {
	order := &model.Order{
		ID: uuid.NewString(),

		// 核心身份
		IfoodID:   dto.ID,
		DisplayID: dto.DisplayID,

		// 基础信息
		Status:    model.StatusPlaced,
		OrderType: orDefault(dto.OrderType, model.OrderTypeDelivery),
		Category:  orDefault(dto.Category, model.CategoryFood),
		Moment:    orDefault(dto.OrderTiming, model.MomentImmediate),

		Observations: dto.ExtraInfo,
	}

	if dto.Merchant != nil {
		order.MerchantID = dto.Merchant.ID
	}

	// 金额打平处理
	if dto.Total != nil {
		order.Subtotal = dto.Total.SubTotal
		order.DeliveryFee = dto.Total.DeliveryFee
		order.Discount = dto.Total.Benefits
		order.Total = dto.Total.OrderAmount
	}

	// 不透明子结构原样转 JSONB，查询端不展开
	order.Customer = toJSONMap(dto.Customer)
	order.Scheduling = datatypes.JSONMap(dto.Schedule)
	if dto.Delivery != nil {
		order.Delivery = toJSONMap(dto.Delivery)
		order.Address = toJSONMap(dto.Delivery.DeliveryAddress)
		if dto.Delivery.Observations != "" {
			order.Observations = dto.Delivery.Observations
		}
	}
	order.Items = toJSON(dto.Items)
	order.Payments = toJSON(dto.Payments)

	return order
}

// ToDriverMap 骑手信息转 JSONB (ASSIGN_DRIVER 事件附带)
func ToDriverMap(dto *ifood.DriverResp) datatypes.JSONMap {
	return toJSONMap(dto)
}

// toJSONMap 任意结构体经 JSON 中转为 map
// 入参为 nil 指针时返回 nil，JSONB 列落 NULL
func toJSONMap(v any) datatypes.JSONMap {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return datatypes.JSONMap(m)
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
