package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ifood_partner_v1/internal/config"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/pkg/ifood"
	"ifood_partner_v1/pkg/net"
)

// ErrRemoteNotFound 远端不存在该实体 (HTTP 404)
var ErrRemoteNotFound = errors.New("远端未找到对应资源")

// ==================== IfoodService 远程指令网关 ====================

// IfoodService 封装全部对 iFood 开放平台的调用
// 鉴权与 401 重试由 Dispatcher 托管，这里只关心业务语义：
// 把各种 HTTP 状态归一化为 CommandResult / 明确错误
type IfoodService struct {
	cfg        *config.Config
	dispatcher net.Dispatcher
}

// NewIfoodService 创建远程指令网关
func NewIfoodService(cfg *config.Config, dispatcher net.Dispatcher) *IfoodService {
	return &IfoodService{
		cfg:        cfg,
		dispatcher: dispatcher,
	}
}

// ==================== 基础请求辅助 ====================

// send 构建请求并托管发送
// body 非空时序列化为 JSON (bytes.Reader 保证 401 重试可重读)
func (s *IfoodService) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := net.BuildIfoodRequest(ctx, method, s.cfg.IfoodBaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := s.dispatcher.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("请求 iFood API 失败: %w", err)
	}
	return resp, nil
}

// getJSON GET 并解析响应到 out
// 404 统一转为 ErrRemoteNotFound
func (s *IfoodService) getJSON(ctx context.Context, path string, out any) error {
	resp, err := s.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRemoteNotFound
	}
	if resp.StatusCode >= 400 {
		return remoteError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// command 发送指令并把状态码归一化为 CommandResult
// 202 = 异步受理 (pending)，404 = 远端无此实体，2xx = 成功
func (s *IfoodService) command(ctx context.Context, method, path string, body any, orderID, nextStatus string) (ifood.CommandResult, error) {
	resp, err := s.send(ctx, method, path, body)
	if err != nil {
		return ifood.CommandResult{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ifood.CommandResult{Outcome: ifood.OutcomeNotFound, OrderID: orderID}, nil
	case resp.StatusCode == http.StatusAccepted:
		return ifood.CommandResult{Outcome: ifood.OutcomePending, OrderID: orderID, Status: nextStatus}, nil
	case resp.StatusCode >= 400:
		return ifood.CommandResult{}, remoteError(resp)
	default:
		return ifood.CommandResult{Outcome: ifood.OutcomeSuccess, OrderID: orderID, Status: nextStatus}, nil
	}
}

// remoteError 读出响应体拼装错误信息
func remoteError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("iFood API 错误 [%d]: %s", resp.StatusCode, string(body))
}

// ==================== 事件轮询 ====================

// PollEvents 拉取新事件
// GET /order/v1.0/events:polling
// x-polling-merchants 头限定门店范围；204 表示没有新事件
func (s *IfoodService) PollEvents(ctx context.Context, categories []string) ([]ifood.EventResp, error) {
	path := "/order/v1.0/events:polling"
	if len(categories) > 0 {
		params := url.Values{}
		params.Set("categories", strings.Join(categories, ","))
		path += "?" + params.Encode()
	}

	req, err := net.BuildIfoodGetRequest(ctx, s.cfg.IfoodBaseURL+path)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	if s.cfg.MerchantID != "" {
		req.Header.Set("x-polling-merchants", s.cfg.MerchantID)
	}

	resp, err := s.dispatcher.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("轮询请求失败: %w", err)
	}
	defer resp.Body.Close()

	// 204 = 没有新事件，不是错误
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, remoteError(resp)
	}

	var events []ifood.EventResp
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("解析事件列表失败: %w", err)
	}
	return events, nil
}

// AcknowledgeEvents 批量确认事件
// POST /order/v1.0/events/acknowledgment，请求体为事件 ID 列表
// 确认过的事件不会再被下发；未确认的事件会重复出现 (至少一次投递)
func (s *IfoodService) AcknowledgeEvents(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	resp, err := s.send(ctx, http.MethodPost, "/order/v1.0/events/acknowledgment", eventIDs)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return remoteError(resp)
	}
	return nil
}

// ==================== 订单详情与指令 ====================

// GetOrderDetail 拉取订单完整详情
// GET /order/v1.0/orders/{id}
func (s *IfoodService) GetOrderDetail(ctx context.Context, orderID string) (*ifood.OrderDetailResp, error) {
	var detail ifood.OrderDetailResp
	if err := s.getJSON(ctx, "/order/v1.0/orders/"+orderID, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetVirtualBag 商超订单 (Groceries) 走 virtual-bag 拉详情
// GET /order/v1.0/orders/{id}/virtual-bag
func (s *IfoodService) GetVirtualBag(ctx context.Context, orderID string) (*ifood.OrderDetailResp, error) {
	var detail ifood.OrderDetailResp
	if err := s.getJSON(ctx, "/order/v1.0/orders/"+orderID+"/virtual-bag", &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ConfirmOrder 接单
// POST /order/v1.0/orders/{id}/confirm (截止时间：createdAt 后 8 分钟)
func (s *IfoodService) ConfirmOrder(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/order/v1.0/orders/"+orderID+"/confirm", nil, orderID, model.StatusConfirmed)
}

// StartPreparation 开始备餐
// POST /order/v1.0/orders/{id}/startPreparation
func (s *IfoodService) StartPreparation(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/order/v1.0/orders/"+orderID+"/startPreparation", nil, orderID, model.StatusPreparationStarted)
}

// ReadyToPickup 出餐完成，等待取货
// POST /order/v1.0/orders/{id}/readyToPickup
func (s *IfoodService) ReadyToPickup(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/order/v1.0/orders/"+orderID+"/readyToPickup", nil, orderID, model.StatusReadyToPickup)
}

// DispatchOrder 发起配送
// POST /order/v1.0/orders/{id}/dispatch
func (s *IfoodService) DispatchOrder(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/order/v1.0/orders/"+orderID+"/dispatch", nil, orderID, model.StatusDispatched)
}

// RequestCancellation 发起取消
// POST /order/v1.0/orders/{id}/requestCancellation
// code 必须取自 CancellationReasons 返回的合法列表 (501~510)
func (s *IfoodService) RequestCancellation(ctx context.Context, orderID, code, reason string) (ifood.CommandResult, error) {
	body := ifood.CancellationReq{
		Reason:           reason,
		CancellationCode: code,
	}
	return s.command(ctx, http.MethodPost, "/order/v1.0/orders/"+orderID+"/requestCancellation", body, orderID, model.StatusCancelled)
}

// CancellationReasons 查询该订单当前可用的取消原因
// GET /order/v1.0/orders/{id}/cancellationReasons
func (s *IfoodService) CancellationReasons(ctx context.Context, orderID string) ([]ifood.CancellationReasonResp, error) {
	var reasons []ifood.CancellationReasonResp
	if err := s.getJSON(ctx, "/order/v1.0/orders/"+orderID+"/cancellationReasons", &reasons); err != nil {
		return nil, err
	}
	return reasons, nil
}

// OrderTracking 骑手位置追踪
// GET /order/v1.0/orders/{id}/tracking
// 只有平台配送 (deliveredBy=IFOOD) 的在途订单才有数据
func (s *IfoodService) OrderTracking(ctx context.Context, orderID string) (map[string]any, error) {
	var tracking map[string]any
	if err := s.getJSON(ctx, "/order/v1.0/orders/"+orderID+"/tracking", &tracking); err != nil {
		return nil, err
	}
	return tracking, nil
}

// ==================== 分拣 (商超订单) ====================

// StartSeparation 开始分拣
// POST /picking/v1.0/orders/{id}/startSeparation
func (s *IfoodService) StartSeparation(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/picking/v1.0/orders/"+orderID+"/startSeparation", nil, orderID, model.StatusSeparationStarted)
}

// EndSeparation 结束分拣
// POST /picking/v1.0/orders/{id}/endSeparation
func (s *IfoodService) EndSeparation(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/picking/v1.0/orders/"+orderID+"/endSeparation", nil, orderID, model.StatusSeparationEnded)
}

// AddPickingItem 分拣期间追加商品
// POST /picking/v1.0/orders/{id}/items
func (s *IfoodService) AddPickingItem(ctx context.Context, orderID string, item ifood.PickingItemReq) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/picking/v1.0/orders/"+orderID+"/items", item, orderID, "")
}

// ModifyPickingItem 分拣期间修改商品数量/重量
// PATCH /picking/v1.0/orders/{id}/items/{uniqueId}
func (s *IfoodService) ModifyPickingItem(ctx context.Context, orderID, uniqueID string, mod ifood.PickingModifyReq) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPatch, "/picking/v1.0/orders/"+orderID+"/items/"+uniqueID, mod, orderID, "")
}

// ReplacePickingItem 分拣期间替换商品
// POST /picking/v1.0/orders/{id}/items/{uniqueId}/replace
func (s *IfoodService) ReplacePickingItem(ctx context.Context, orderID, uniqueID string, item ifood.PickingItemReq) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/picking/v1.0/orders/"+orderID+"/items/"+uniqueID+"/replace", item, orderID, "")
}

// RemovePickingItem 分拣期间移除商品 (缺货)
// DELETE /picking/v1.0/orders/{id}/items/{uniqueId}
func (s *IfoodService) RemovePickingItem(ctx context.Context, orderID, uniqueID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodDelete, "/picking/v1.0/orders/"+orderID+"/items/"+uniqueID, nil, orderID, "")
}

// ==================== 协商 (Handshake) ====================

// AcceptDispute 接受协商
// POST /order/v1.0/disputes/{disputeId}/accept
func (s *IfoodService) AcceptDispute(ctx context.Context, disputeID string) (ifood.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/order/v1.0/disputes/"+disputeID+"/accept", nil, "", "")
}

// RejectDispute 拒绝协商
// POST /order/v1.0/disputes/{disputeId}/reject
func (s *IfoodService) RejectDispute(ctx context.Context, disputeID, reason string) (ifood.CommandResult, error) {
	var body any
	if reason != "" {
		body = ifood.DisputeRejectReq{Reason: reason}
	}
	return s.command(ctx, http.MethodPost, "/order/v1.0/disputes/"+disputeID+"/reject", body, "", "")
}

// ==================== 门店 ====================

// ListMerchants 列出应用名下全部门店
// GET /merchant/v1.0/merchants
func (s *IfoodService) ListMerchants(ctx context.Context) ([]ifood.MerchantResp, error) {
	var merchants []ifood.MerchantResp
	if err := s.getJSON(ctx, "/merchant/v1.0/merchants", &merchants); err != nil {
		return nil, err
	}
	return merchants, nil
}

// MerchantDetails 门店详情 (原样透传远端结构)
// GET /merchant/v1.0/merchants/{id}
func (s *IfoodService) MerchantDetails(ctx context.Context, merchantID string) (map[string]any, error) {
	mid := s.resolveMerchant(merchantID)
	var detail map[string]any
	if err := s.getJSON(ctx, "/merchant/v1.0/merchants/"+mid, &detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// MerchantStatus 门店营业状态
// GET /merchant/v1.0/merchants/{id}/status
func (s *IfoodService) MerchantStatus(ctx context.Context, merchantID string) ([]ifood.MerchantStatusResp, error) {
	mid := s.resolveMerchant(merchantID)
	var status []ifood.MerchantStatusResp
	if err := s.getJSON(ctx, "/merchant/v1.0/merchants/"+mid+"/status", &status); err != nil {
		return nil, err
	}
	return status, nil
}

// ==================== 目录与促销 (远端侧) ====================

// ListCatalogs 列出门店目录
// GET /catalog/v2.0/merchants/{merchantId}/catalogs
func (s *IfoodService) ListCatalogs(ctx context.Context, merchantID string) ([]map[string]any, error) {
	mid := s.resolveMerchant(merchantID)
	var catalogs []map[string]any
	if err := s.getJSON(ctx, "/catalog/v2.0/merchants/"+mid+"/catalogs", &catalogs); err != nil {
		return nil, err
	}
	return catalogs, nil
}

// CreateRemoteProduct 在远端目录创建商品
// POST /catalog/v2.0/merchants/{merchantId}/products
func (s *IfoodService) CreateRemoteProduct(ctx context.Context, merchantID string, product map[string]any) (ifood.CommandResult, error) {
	mid := s.resolveMerchant(merchantID)
	return s.command(ctx, http.MethodPost, "/catalog/v2.0/merchants/"+mid+"/products", product, "", "")
}

// UpdateRemoteProductStatus 批量上下架远端商品
// PATCH /catalog/v2.0/merchants/{merchantId}/products/status
func (s *IfoodService) UpdateRemoteProductStatus(ctx context.Context, merchantID string, updates []map[string]any) (ifood.CommandResult, error) {
	mid := s.resolveMerchant(merchantID)
	return s.command(ctx, http.MethodPatch, "/catalog/v2.0/merchants/"+mid+"/products/status", updates, "", "")
}

// CreateRemotePromotion 在远端创建促销
// POST /promotion/v1.0/merchants/{merchantId}/promotions
func (s *IfoodService) CreateRemotePromotion(ctx context.Context, merchantID string, promotion map[string]any) (ifood.CommandResult, error) {
	mid := s.resolveMerchant(merchantID)
	return s.command(ctx, http.MethodPost, "/promotion/v1.0/merchants/"+mid+"/promotions", promotion, "", "")
}

// DeleteRemotePromotion 删除远端促销
// DELETE /promotion/v1.0/merchants/{merchantId}/promotions/{promotionId}
func (s *IfoodService) DeleteRemotePromotion(ctx context.Context, merchantID, promotionID string) (ifood.CommandResult, error) {
	mid := s.resolveMerchant(merchantID)
	return s.command(ctx, http.MethodDelete, "/promotion/v1.0/merchants/"+mid+"/promotions/"+promotionID, nil, "", "")
}

// resolveMerchant 参数为空时回落到配置的默认门店
func (s *IfoodService) resolveMerchant(merchantID string) string {
	if merchantID != "" {
		return merchantID
	}
	return s.cfg.MerchantID
}
