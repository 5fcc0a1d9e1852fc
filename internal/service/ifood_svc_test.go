package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ifood_partner_v1/internal/config"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/pkg/ifood"
	"ifood_partner_v1/pkg/net"
)

// ==================== 测试辅助 ====================

// staticAuth 固定授权头，不会触发刷新
type staticAuth struct{}

func (staticAuth) Authorization(ctx context.Context) (string, error) { return "Bearer test", nil }
func (staticAuth) ForceReauthorize(ctx context.Context) error        { return nil }

func newTestGateway(serverURL string) *IfoodService {
	cfg := &config.Config{
		IfoodBaseURL: serverURL,
		MerchantID:   "merchant-1",
	}
	return NewIfoodService(cfg, net.NewDispatcher(staticAuth{}, 5*time.Second))
}

// ==================== 单元测试 ====================

func TestIfoodService_PollEventsNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order/v1.0/events:polling" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-polling-merchants") != "merchant-1" {
			t.Errorf("x-polling-merchants = %s, want merchant-1", r.Header.Get("x-polling-merchants"))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	events, err := newTestGateway(server.URL).PollEvents(context.Background(), nil)
	if err != nil {
		t.Fatalf("PollEvents() error = %v", err)
	}
	// 204 = 没有新事件，不是错误
	if events != nil {
		t.Errorf("events = %v, want nil", events)
	}
}

func TestIfoodService_PollEventsReturnsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("categories"); got != "FOOD,GROCERY" {
			t.Errorf("categories = %s, want FOOD,GROCERY", got)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "evt-1", "fullCode": "PLACED", "orderId": "order-1"},
			{"id": "evt-2", "fullCode": "CONFIRMED", "orderId": "order-1"},
		})
	}))
	defer server.Close()

	events, err := newTestGateway(server.URL).PollEvents(context.Background(), []string{"FOOD", "GROCERY"})
	if err != nil {
		t.Fatalf("PollEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ID != "evt-1" || events[0].FullCode != "PLACED" {
		t.Errorf("事件解析错误: %+v", events[0])
	}
}

func TestIfoodService_AcknowledgeEvents(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order/v1.0/events/acknowledgment" {
			t.Errorf("path = %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestGateway(server.URL).AcknowledgeEvents(context.Background(), []string{"evt-1", "evt-2"})
	if err != nil {
		t.Fatalf("AcknowledgeEvents() error = %v", err)
	}

	// 请求体是事件 ID 的裸数组
	var ids []string
	if err := json.Unmarshal([]byte(gotBody), &ids); err != nil {
		t.Fatalf("请求体不是 JSON 数组: %s", gotBody)
	}
	if len(ids) != 2 || ids[0] != "evt-1" || ids[1] != "evt-2" {
		t.Errorf("ids = %v", ids)
	}
}

func TestIfoodService_AcknowledgeEmptyListSkipsRequest(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	if err := newTestGateway(server.URL).AcknowledgeEvents(context.Background(), nil); err != nil {
		t.Fatalf("AcknowledgeEvents() error = %v", err)
	}
	if requests != 0 {
		t.Errorf("空列表不应发起请求, requests = %d", requests)
	}
}

func TestIfoodService_ConfirmOrderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order/v1.0/orders/order-1/confirm" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result, err := newTestGateway(server.URL).ConfirmOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("ConfirmOrder() error = %v", err)
	}
	if result.Outcome != ifood.OutcomeSuccess {
		t.Errorf("outcome = %s, want success", result.Outcome)
	}
	if result.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", result.Status)
	}
	if !result.OK() {
		t.Error("success 应视为 OK")
	}
}

func TestIfoodService_CancellationIsAsync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body ifood.CancellationReq
		json.NewDecoder(r.Body).Decode(&body)
		if body.CancellationCode != "501" {
			t.Errorf("cancellationCode = %s, want 501", body.CancellationCode)
		}
		// 取消是异步受理
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	result, err := newTestGateway(server.URL).RequestCancellation(context.Background(), "order-1", "501", "缺货")
	if err != nil {
		t.Fatalf("RequestCancellation() error = %v", err)
	}
	if result.Outcome != ifood.OutcomePending {
		t.Errorf("outcome = %s, want pending (202)", result.Outcome)
	}
	if !result.OK() {
		t.Error("pending 应视为 OK")
	}
}

func TestIfoodService_CommandNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := newTestGateway(server.URL).DispatchOrder(context.Background(), "order-missing")
	if err != nil {
		t.Fatalf("DispatchOrder() error = %v", err)
	}
	if result.Outcome != ifood.OutcomeNotFound {
		t.Errorf("outcome = %s, want not_found", result.Outcome)
	}
	if result.OK() {
		t.Error("not_found 不应视为 OK")
	}
}

func TestIfoodService_CommandRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"Conflict","message":"order already confirmed"}}`))
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).ConfirmOrder(context.Background(), "order-1")
	if err == nil {
		t.Fatal("4xx 应返回错误")
	}
}

func TestIfoodService_GetOrderDetailNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).GetOrderDetail(context.Background(), "order-ghost")
	if !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("err = %v, want ErrRemoteNotFound", err)
	}
}

func TestIfoodService_GetOrderDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order/v1.0/orders/order-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "order-1",
			"displayId": "4321",
			"total":     map[string]any{"subTotal": 30.5, "deliveryFee": 5, "orderAmount": 35.5},
		})
	}))
	defer server.Close()

	detail, err := newTestGateway(server.URL).GetOrderDetail(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("GetOrderDetail() error = %v", err)
	}
	if detail.DisplayID != "4321" {
		t.Errorf("displayId = %s, want 4321", detail.DisplayID)
	}
	if detail.Total == nil || detail.Total.OrderAmount != 35.5 {
		t.Errorf("total 解析错误: %+v", detail.Total)
	}
}

func TestIfoodService_SeparationCommands(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	if _, err := gw.StartSeparation(context.Background(), "order-1"); err != nil {
		t.Fatalf("StartSeparation() error = %v", err)
	}
	if _, err := gw.EndSeparation(context.Background(), "order-1"); err != nil {
		t.Fatalf("EndSeparation() error = %v", err)
	}

	want := []string{
		"/picking/v1.0/orders/order-1/startSeparation",
		"/picking/v1.0/orders/order-1/endSeparation",
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], p)
		}
	}
}

func TestIfoodService_MerchantFallsBackToDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/merchant/v1.0/merchants/merchant-1/status" {
			t.Errorf("path = %s, 应回落到配置的默认门店", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"operation": "delivery", "available": true, "state": "OK"},
		})
	}))
	defer server.Close()

	status, err := newTestGateway(server.URL).MerchantStatus(context.Background(), "")
	if err != nil {
		t.Fatalf("MerchantStatus() error = %v", err)
	}
	if len(status) != 1 || status[0].State != "OK" {
		t.Errorf("status = %+v", status)
	}
}
