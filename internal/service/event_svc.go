package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/pkg/ifood"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ==================== 依赖接口 ====================

// OrderFetcher 订单详情提供者
// 收窄到事件处理需要的两个操作，方便测试替换
type OrderFetcher interface {
	GetOrderDetail(ctx context.Context, orderID string) (*ifood.OrderDetailResp, error)
	GetVirtualBag(ctx context.Context, orderID string) (*ifood.OrderDetailResp, error)
}

// ==================== EventService 事件应用 ====================

// EventService 把远端事件应用到本地订单
// 核心约束：
//  1. 幂等 —— 同一 EventID 永远只生效一次
//  2. 只进不退 —— 乱序到达的事件可以补时间戳，但不能让状态回退
//  3. 先存档后应用 —— 任何事件先原样入库，应用失败不丢审计记录
type EventService struct {
	eventRepo repository.EventRepository
	orderRepo repository.OrderRepository
	fetcher   OrderFetcher
}

// NewEventService 创建事件应用服务
func NewEventService(eventRepo repository.EventRepository, orderRepo repository.OrderRepository, fetcher OrderFetcher) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		orderRepo: orderRepo,
		fetcher:   fetcher,
	}
}

// Apply 应用单个事件
// 返回 nil 表示事件可以安全 ACK (包括重复事件和无规则的陌生类型)
func (s *EventService) Apply(ctx context.Context, ev ifood.EventResp) error {
	// 1. 幂等去重：见过的事件直接放行去 ACK
	exists, err := s.eventRepo.Exists(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("查询事件去重失败: %w", err)
	}
	if exists {
		log.Printf("事件 %s 重复下发，跳过", ev.ID)
		return nil
	}

	eventType := normalizeEventType(ev)

	// 2. 原样存档
	payload, _ := json.Marshal(ev)
	record := &model.Event{
		ID:         uuid.NewString(),
		EventID:    ev.ID,
		EventType:  eventType,
		OrderID:    ev.OrderID,
		MerchantID: ev.MerchantID,
		Payload:    datatypes.JSON(payload),
	}
	if err := s.eventRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("事件存档失败: %w", err)
	}

	// 3. 按类型应用
	if err := s.dispatch(ctx, eventType, ev); err != nil {
		// 存档已落库，应用失败留待下次下发重试 (Processed 仍为 false)
		return err
	}

	// 4. 标记已处理
	if err := s.eventRepo.MarkProcessed(ctx, ev.ID); err != nil {
		log.Printf("标记事件 %s 已处理失败: %v", ev.ID, err)
	}
	return nil
}

// dispatch 事件类型路由
// 没有对应规则的类型仅存档，不是错误
func (s *EventService) dispatch(ctx context.Context, eventType string, ev ifood.EventResp) error {
	switch eventType {
	case model.EventPlaced:
		return s.handlePlaced(ctx, ev)
	case model.EventConfirmed:
		return s.advance(ctx, ev.OrderID, model.StatusConfirmed, "confirmed_at")
	case model.EventDispatched:
		return s.advance(ctx, ev.OrderID, model.StatusDispatched, "dispatched_at")
	case model.EventConcluded:
		return s.advance(ctx, ev.OrderID, model.StatusConcluded, "concluded_at")
	case model.EventCancelled:
		return s.handleCancelled(ctx, ev)
	case model.EventAssignDriver:
		return s.handleAssignDriver(ctx, ev)
	default:
		log.Printf("事件类型 %s 无变更规则，仅存档 (事件 %s)", eventType, ev.ID)
		return nil
	}
}

// handlePlaced 新订单落地
// 重复的 PLACED (本地已有该订单) 按幂等处理直接放行
func (s *EventService) handlePlaced(ctx context.Context, ev ifood.EventResp) error {
	existing, err := s.orderRepo.GetByIfoodID(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("查询本地订单失败: %w", err)
	}
	if existing != nil {
		log.Printf("订单 %s 已存在，跳过 PLACED", ev.OrderID)
		return nil
	}

	// 拉取完整详情；普通接口查不到时回落 virtual-bag (商超订单)
	detail, err := s.fetcher.GetOrderDetail(ctx, ev.OrderID)
	if errors.Is(err, ErrRemoteNotFound) {
		detail, err = s.fetcher.GetVirtualBag(ctx, ev.OrderID)
	}
	if err != nil {
		return fmt.Errorf("拉取订单 %s 详情失败: %w", ev.OrderID, err)
	}

	order := ToOrderModel(detail)
	if order.IfoodID == "" {
		order.IfoodID = ev.OrderID
	}
	if order.MerchantID == "" {
		order.MerchantID = ev.MerchantID
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("订单 %s 入库失败: %w", ev.OrderID, err)
	}
	log.Printf("新订单 %s (#%s) 已落地", order.IfoodID, order.DisplayID)
	return nil
}

// advance 推进订单状态
// 状态不满足前进条件时只补时间戳 (乱序事件)，状态保持不动
func (s *EventService) advance(ctx context.Context, ifoodID, target, timestampField string) error {
	order, err := s.orderRepo.GetByIfoodID(ctx, ifoodID)
	if err != nil {
		return fmt.Errorf("查询本地订单失败: %w", err)
	}
	if order == nil {
		// 本地没见过这个订单 (PLACED 丢失或跨实例)，存档即可
		log.Printf("订单 %s 本地不存在，事件 %s 仅存档", ifoodID, target)
		return nil
	}

	now := time.Now()
	fields := map[string]interface{}{timestampField: &now}

	if model.CanAdvance(order.Status, target) {
		fields["status"] = target
	} else {
		log.Printf("订单 %s 状态 %s 不能前进到 %s，仅补时间戳", ifoodID, order.Status, target)
	}

	if _, err := s.orderRepo.UpdateFieldsByIfoodID(ctx, ifoodID, fields); err != nil {
		return fmt.Errorf("更新订单 %s 失败: %w", ifoodID, err)
	}
	return nil
}

// handleCancelled 订单取消
// 终态订单收到 CANCELLED 是正常竞态 (本地刚好 CONCLUDED)，记日志放行
func (s *EventService) handleCancelled(ctx context.Context, ev ifood.EventResp) error {
	order, err := s.orderRepo.GetByIfoodID(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("查询本地订单失败: %w", err)
	}
	if order == nil {
		log.Printf("订单 %s 本地不存在，CANCELLED 仅存档", ev.OrderID)
		return nil
	}
	if model.IsTerminalStatus(order.Status) {
		log.Printf("订单 %s 已是终态 %s，忽略 CANCELLED", ev.OrderID, order.Status)
		return nil
	}

	now := time.Now()
	fields := map[string]interface{}{
		"status":       model.StatusCancelled,
		"cancelled_at": &now,
	}
	if _, err := s.orderRepo.UpdateFieldsByIfoodID(ctx, ev.OrderID, fields); err != nil {
		return fmt.Errorf("取消订单 %s 失败: %w", ev.OrderID, err)
	}
	return nil
}

// handleAssignDriver 骑手指派
// 只合并骑手信息，不改订单状态
func (s *EventService) handleAssignDriver(ctx context.Context, ev ifood.EventResp) error {
	if ev.Driver == nil {
		log.Printf("事件 %s 未携带骑手信息，跳过", ev.ID)
		return nil
	}

	fields := map[string]interface{}{
		"driver": ToDriverMap(ev.Driver),
	}
	rows, err := s.orderRepo.UpdateFieldsByIfoodID(ctx, ev.OrderID, fields)
	if err != nil {
		return fmt.Errorf("更新订单 %s 骑手信息失败: %w", ev.OrderID, err)
	}
	if rows == 0 {
		log.Printf("订单 %s 本地不存在，骑手信息仅存档", ev.OrderID)
	}
	return nil
}

// ListEvents 事件存档查询 (运维排障)
func (s *EventService) ListEvents(ctx context.Context, processed *bool, limit int) ([]model.Event, error) {
	return s.eventRepo.List(ctx, processed, limit)
}

// normalizeEventType 事件类型归一化
// 优先使用 fullCode (如 PLACED)，旧版事件只有缩写 code (如 PLC)
func normalizeEventType(ev ifood.EventResp) string {
	if ev.FullCode != "" {
		return ev.FullCode
	}
	switch ev.Code {
	case "PLC":
		return model.EventPlaced
	case "CFM":
		return model.EventConfirmed
	case "CAN":
		return model.EventCancelled
	case "DSP":
		return model.EventDispatched
	case "CON":
		return model.EventConcluded
	case "ADR":
		return model.EventAssignDriver
	default:
		return ev.Code
	}
}
