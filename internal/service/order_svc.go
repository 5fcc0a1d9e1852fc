package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/pkg/ifood"
)

// ErrOrderNotFound 本地不存在该订单
var ErrOrderNotFound = errors.New("订单不存在")

// ==================== 依赖接口 ====================

// CommandGateway 远程订单指令通道
// 收窄到订单编排需要的操作，方便测试替换
type CommandGateway interface {
	ConfirmOrder(ctx context.Context, orderID string) (ifood.CommandResult, error)
	StartPreparation(ctx context.Context, orderID string) (ifood.CommandResult, error)
	ReadyToPickup(ctx context.Context, orderID string) (ifood.CommandResult, error)
	DispatchOrder(ctx context.Context, orderID string) (ifood.CommandResult, error)
	StartSeparation(ctx context.Context, orderID string) (ifood.CommandResult, error)
	EndSeparation(ctx context.Context, orderID string) (ifood.CommandResult, error)
	RequestCancellation(ctx context.Context, orderID, code, reason string) (ifood.CommandResult, error)
	CancellationReasons(ctx context.Context, orderID string) ([]ifood.CancellationReasonResp, error)
	OrderTracking(ctx context.Context, orderID string) (map[string]any, error)
}

// ==================== OrderService 订单编排 ====================

// OrderService 订单查询与指令编排
// 指令先发远端，远端受理后才推进本地镜像；远端才是事实来源，
// 本地推进只是乐观更新，最终状态以事件回流为准
type OrderService struct {
	orderRepo repository.OrderRepository
	gateway   CommandGateway
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, gateway CommandGateway) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		gateway:   gateway,
	}
}

// ==================== 订单查询 ====================

// ListOrders 订单列表
func (s *OrderService) ListOrders(ctx context.Context, req *dto.ListOrdersRequest) (*dto.ListOrdersResponse, error) {
	filter := repository.OrderFilter{
		MerchantID: req.MerchantID,
		Status:     req.Status,
		OrderType:  req.OrderType,
		Category:   req.Category,
		Limit:      req.PageSize,
		Offset:     (req.Page - 1) * req.PageSize,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// 解析日期
	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filter.DateFrom = &t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.DateTo = &endOfDay
		}
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询订单列表失败: %w", err)
	}

	list := make([]dto.OrderListItem, len(orders))
	for i, order := range orders {
		list[i] = toOrderListItem(&order)
	}
	return &dto.ListOrdersResponse{Total: total, List: list}, nil
}

// ListTodayOrders 今日订单 (UTC 当日 0 点起)
func (s *OrderService) ListTodayOrders(ctx context.Context) (*dto.ListOrdersResponse, error) {
	orders, err := s.orderRepo.ListToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询今日订单失败: %w", err)
	}

	list := make([]dto.OrderListItem, len(orders))
	for i, order := range orders {
		list[i] = toOrderListItem(&order)
	}
	return &dto.ListOrdersResponse{Total: int64(len(list)), List: list}, nil
}

// GetOrder 订单详情
// id 可以是本地 ID，也可以是 iFood 订单 ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (*dto.OrderVO, error) {
	order, err := s.resolveOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderVO(order), nil
}

// resolveOrder 先按本地 ID 查，查不到再按 iFood ID 查
func (s *OrderService) resolveOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if order == nil {
		order, err = s.orderRepo.GetByIfoodID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("查询订单失败: %w", err)
		}
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ==================== 订单指令 ====================

// Confirm 接单
func (s *OrderService) Confirm(ctx context.Context, id string) (ifood.CommandResult, error) {
	return s.execute(ctx, id, s.gateway.ConfirmOrder)
}

// StartPreparation 开始备餐
func (s *OrderService) StartPreparation(ctx context.Context, id string) (ifood.CommandResult, error) {
	return s.execute(ctx, id, s.gateway.StartPreparation)
}

// ReadyToPickup 出餐完成
func (s *OrderService) ReadyToPickup(ctx context.Context, id string) (ifood.CommandResult, error) {
	return s.execute(ctx, id, s.gateway.ReadyToPickup)
}

// Dispatch 发起配送
func (s *OrderService) Dispatch(ctx context.Context, id string) (ifood.CommandResult, error) {
	return s.execute(ctx, id, s.gateway.DispatchOrder)
}

// StartSeparation 开始分拣 (商超)
func (s *OrderService) StartSeparation(ctx context.Context, id string) (ifood.CommandResult, error) {
	return s.execute(ctx, id, s.gateway.StartSeparation)
}

// EndSeparation 结束分拣 (商超)
func (s *OrderService) EndSeparation(ctx context.Context, id string) (ifood.CommandResult, error) {
	return s.execute(ctx, id, s.gateway.EndSeparation)
}

// execute 通用指令流程：定位订单 -> 发远端 -> 受理后乐观推进本地
func (s *OrderService) execute(ctx context.Context, id string, command func(context.Context, string) (ifood.CommandResult, error)) (ifood.CommandResult, error) {
	order, err := s.resolveOrder(ctx, id)
	if err != nil {
		return ifood.CommandResult{}, err
	}

	result, err := command(ctx, order.IfoodID)
	if err != nil {
		return ifood.CommandResult{}, err
	}
	if result.OK() {
		s.advanceLocal(ctx, order, result.Status, nil)
	}
	return result, nil
}

// Cancel 取消订单
// code 必须是远端认可的取消代码 (佐证接口 CancellationReasons)
func (s *OrderService) Cancel(ctx context.Context, id string, req *dto.CancelOrderRequest) (ifood.CommandResult, error) {
	order, err := s.resolveOrder(ctx, id)
	if err != nil {
		return ifood.CommandResult{}, err
	}
	if model.IsTerminalStatus(order.Status) {
		return ifood.CommandResult{}, fmt.Errorf("订单已是终态 %s，不能取消", order.Status)
	}

	result, err := s.gateway.RequestCancellation(ctx, order.IfoodID, req.CancellationCode, req.Reason)
	if err != nil {
		return ifood.CommandResult{}, err
	}
	if result.OK() {
		s.advanceLocal(ctx, order, model.StatusCancelled, map[string]interface{}{
			"cancellation_code":   req.CancellationCode,
			"cancellation_reason": req.Reason,
		})
	}
	return result, nil
}

// CancellationReasons 当前可用的取消原因
func (s *OrderService) CancellationReasons(ctx context.Context, id string) ([]ifood.CancellationReasonResp, error) {
	order, err := s.resolveOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.gateway.CancellationReasons(ctx, order.IfoodID)
}

// Tracking 骑手位置
func (s *OrderService) Tracking(ctx context.Context, id string) (map[string]any, error) {
	order, err := s.resolveOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.gateway.OrderTracking(ctx, order.IfoodID)
}

// advanceLocal 乐观推进本地状态
// 推不动 (乱序/重复) 不算错误，事件回流会把状态对齐
func (s *OrderService) advanceLocal(ctx context.Context, order *model.Order, target string, extra map[string]interface{}) {
	fields := map[string]interface{}{}
	for k, v := range extra {
		fields[k] = v
	}

	if target != "" && model.CanAdvance(order.Status, target) {
		fields["status"] = target
		if tsField, ok := statusTimestampField[target]; ok {
			now := time.Now()
			fields[tsField] = &now
		}
	}
	if len(fields) == 0 {
		return
	}

	if _, err := s.orderRepo.UpdateFieldsByIfoodID(ctx, order.IfoodID, fields); err != nil {
		log.Printf("推进本地订单 %s 失败: %v", order.IfoodID, err)
	}
}

// statusTimestampField 状态对应的时间戳列
var statusTimestampField = map[string]string{
	model.StatusConfirmed:          "confirmed_at",
	model.StatusPreparationStarted: "preparation_start_at",
	model.StatusDispatched:         "dispatched_at",
	model.StatusConcluded:          "concluded_at",
	model.StatusCancelled:          "cancelled_at",
}

// ==================== 视图转换 ====================

func toOrderListItem(order *model.Order) dto.OrderListItem {
	customerName := ""
	if name, ok := order.Customer["name"].(string); ok {
		customerName = name
	}

	itemCount := 0
	if len(order.Items) > 0 {
		var items []json.RawMessage
		if err := json.Unmarshal(order.Items, &items); err == nil {
			itemCount = len(items)
		}
	}

	return dto.OrderListItem{
		ID:           order.ID,
		IfoodID:      order.IfoodID,
		DisplayID:    order.DisplayID,
		MerchantID:   order.MerchantID,
		Status:       order.Status,
		OrderType:    order.OrderType,
		Category:     order.Category,
		CustomerName: customerName,
		ItemCount:    itemCount,
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
		ConfirmedAt:  order.ConfirmedAt,
	}
}

func toOrderVO(order *model.Order) *dto.OrderVO {
	return &dto.OrderVO{
		ID:         order.ID,
		IfoodID:    order.IfoodID,
		DisplayID:  order.DisplayID,
		MerchantID: order.MerchantID,
		Status:     order.Status,
		OrderType:  order.OrderType,
		Category:   order.Category,
		Moment:     order.Moment,

		Customer:   order.Customer,
		Address:    order.Address,
		Delivery:   order.Delivery,
		Scheduling: order.Scheduling,
		Driver:     order.Driver,
		Items:      order.Items,
		Payments:   order.Payments,

		Subtotal:    order.Subtotal,
		DeliveryFee: order.DeliveryFee,
		Discount:    order.Discount,
		Total:       order.Total,

		Observations:       order.Observations,
		CancellationCode:   order.CancellationCode,
		CancellationReason: order.CancellationReason,

		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
		ConfirmedAt:  order.ConfirmedAt,
		DispatchedAt: order.DispatchedAt,
		ConcludedAt:  order.ConcludedAt,
		CancelledAt:  order.CancelledAt,
	}
}
