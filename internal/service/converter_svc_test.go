package service

import (
	"testing"

	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/pkg/ifood"
)

func TestToOrderModel(t *testing.T) {
	dto := &ifood.OrderDetailResp{
		ID:          "order-conv",
		DisplayID:   "8765",
		OrderType:   "TAKEOUT",
		OrderTiming: "TIME_SLOT",
		Category:    "GROCERY",
		Merchant:    &ifood.OrderMerchantResp{ID: "merchant-9", Name: "Mercado Central"},
		Customer:    &ifood.CustomerResp{ID: "cust-1", Name: "Maria", Phone: "+55 11 98888-0000"},
		Delivery: &ifood.DeliveryResp{
			Mode:        "DEFAULT",
			DeliveredBy: "IFOOD",
			DeliveryAddress: &ifood.AddressResp{
				StreetName: "Av. Paulista",
				City:       "São Paulo",
			},
			Observations: "Portão azul",
		},
		Items: []ifood.OrderItemResp{
			{ID: "item-1", Name: "Arroz", Quantity: 2, UnitPrice: 10, TotalPrice: 20},
		},
		Total:     &ifood.OrderTotalResp{SubTotal: 20, DeliveryFee: 7.5, Benefits: 2, OrderAmount: 25.5},
		ExtraInfo: "extra",
	}

	order := ToOrderModel(dto)

	if order.ID == "" {
		t.Error("本地 ID 应自动生成")
	}
	if order.IfoodID != "order-conv" || order.DisplayID != "8765" {
		t.Errorf("身份字段错误: %s / %s", order.IfoodID, order.DisplayID)
	}
	if order.Status != model.StatusPlaced {
		t.Errorf("status = %s, 新订单应为 PLACED", order.Status)
	}
	if order.OrderType != "TAKEOUT" || order.Category != "GROCERY" || order.Moment != "TIME_SLOT" {
		t.Errorf("分类字段错误: %s / %s / %s", order.OrderType, order.Category, order.Moment)
	}
	if order.MerchantID != "merchant-9" {
		t.Errorf("merchant_id = %s, want merchant-9", order.MerchantID)
	}

	// 金额打平
	if order.Subtotal != 20 || order.DeliveryFee != 7.5 || order.Discount != 2 || order.Total != 25.5 {
		t.Errorf("金额错误: %v / %v / %v / %v", order.Subtotal, order.DeliveryFee, order.Discount, order.Total)
	}

	// 子结构转 JSONB
	if order.Customer["name"] != "Maria" {
		t.Errorf("customer.name = %v, want Maria", order.Customer["name"])
	}
	if order.Address["city"] != "São Paulo" {
		t.Errorf("address.city = %v", order.Address["city"])
	}
	if order.Items == nil {
		t.Error("items 不应为空")
	}

	// 配送备注覆盖 extraInfo
	if order.Observations != "Portão azul" {
		t.Errorf("observations = %s, want Portão azul", order.Observations)
	}
}

func TestToOrderModel_Defaults(t *testing.T) {
	// 最小详情：缺失字段落默认值
	order := ToOrderModel(&ifood.OrderDetailResp{ID: "order-min"})

	if order.OrderType != model.OrderTypeDelivery {
		t.Errorf("order_type = %s, want DELIVERY", order.OrderType)
	}
	if order.Category != model.CategoryFood {
		t.Errorf("category = %s, want FOOD", order.Category)
	}
	if order.Moment != model.MomentImmediate {
		t.Errorf("moment = %s, want IMMEDIATE", order.Moment)
	}
	if order.Customer != nil {
		t.Error("没有客户信息时应落 NULL")
	}
	if order.Total != 0 {
		t.Errorf("total = %v, want 0", order.Total)
	}
}

func TestToDriverMap(t *testing.T) {
	m := ToDriverMap(&ifood.DriverResp{
		Name:        "Carlos",
		VehicleType: "MOTORCYCLE",
	})
	if m["name"] != "Carlos" || m["vehicleType"] != "MOTORCYCLE" {
		t.Errorf("driver map = %v", m)
	}
}
