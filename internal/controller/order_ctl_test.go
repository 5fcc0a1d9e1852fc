package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/internal/service"
	"ifood_partner_v1/pkg/ifood"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 请求构造辅助 ====================

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// stubGateway 固定返回成功的远程指令通道
type stubGateway struct{}

func (stubGateway) ConfirmOrder(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return ifood.CommandResult{Outcome: ifood.OutcomeSuccess, OrderID: orderID, Status: model.StatusConfirmed}, nil
}

func (stubGateway) StartPreparation(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return ifood.CommandResult{Outcome: ifood.OutcomeSuccess, OrderID: orderID, Status: model.StatusPreparationStarted}, nil
}

func (stubGateway) ReadyToPickup(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return ifood.CommandResult{Outcome: ifood.OutcomeSuccess, OrderID: orderID, Status: model.StatusReadyToPickup}, nil
}

func (stubGateway) DispatchOrder(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return ifood.CommandResult{Outcome: ifood.OutcomeSuccess, OrderID: orderID, Status: model.StatusDispatched}, nil
}

func (stubGateway) StartSeparation(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return ifood.CommandResult{Outcome: ifood.OutcomeSuccess, OrderID: orderID, Status: model.StatusSeparationStarted}, nil
}

func (stubGateway) EndSeparation(ctx context.Context, orderID string) (ifood.CommandResult, error) {
	return ifood.CommandResult{Outcome: ifood.OutcomeSuccess, OrderID: orderID, Status: model.StatusSeparationEnded}, nil
}

func (stubGateway) RequestCancellation(ctx context.Context, orderID, code, reason string) (ifood.CommandResult, error) {
	return ifood.CommandResult{Outcome: ifood.OutcomePending, OrderID: orderID, Status: model.StatusCancelled}, nil
}

func (stubGateway) CancellationReasons(ctx context.Context, orderID string) ([]ifood.CancellationReasonResp, error) {
	return []ifood.CancellationReasonResp{{CancelCodeID: "501", Description: "缺货"}}, nil
}

func (stubGateway) OrderTracking(ctx context.Context, orderID string) (map[string]any, error) {
	return map[string]any{"latitude": -23.55, "longitude": -46.63}, nil
}

func setupOrderCtlRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	svc := service.NewOrderService(repository.NewOrderRepository(db), stubGateway{})
	ctl := NewOrderController(svc)

	r := gin.New()
	orders := r.Group("/api/orders")
	{
		orders.GET("", ctl.List)
		orders.GET("/:id", ctl.GetByID)
		orders.POST("/:id/confirm", ctl.Confirm)
		orders.POST("/:id/cancel", ctl.Cancel)
		orders.GET("/:id/cancellationReasons", ctl.CancellationReasons)
	}
	return r, db
}

func seedCtlOrder(t *testing.T, db *gorm.DB, ifoodID, status string) {
	if err := db.Create(&model.Order{
		ID:      uuid.NewString(),
		IfoodID: ifoodID,
		Status:  status,
	}).Error; err != nil {
		t.Fatalf("写入测试订单失败: %v", err)
	}
}

// ==================== 接口测试 ====================

func TestOrderController_List(t *testing.T) {
	router, db := setupOrderCtlRouter(t)
	seedCtlOrder(t, db, "order-1", model.StatusPlaced)
	seedCtlOrder(t, db, "order-2", model.StatusConfirmed)

	w := performRequest(router, "GET", "/api/orders?status=CONFIRMED", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Total)
}

func TestOrderController_GetByID(t *testing.T) {
	router, db := setupOrderCtlRouter(t)
	seedCtlOrder(t, db, "order-1", model.StatusPlaced)

	w := performRequest(router, "GET", "/api/orders/order-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/api/orders/no-such-order", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_Confirm(t *testing.T) {
	router, db := setupOrderCtlRouter(t)
	seedCtlOrder(t, db, "order-1", model.StatusPlaced)

	w := performRequest(router, "POST", "/api/orders/order-1/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Outcome string `json:"outcome"`
			Status  string `json:"status"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Data.Outcome)
	assert.Equal(t, model.StatusConfirmed, resp.Data.Status)

	// 不存在的订单
	w = performRequest(router, "POST", "/api/orders/ghost/confirm", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_CancelValidation(t *testing.T) {
	router, db := setupOrderCtlRouter(t)
	seedCtlOrder(t, db, "order-1", model.StatusConfirmed)

	// 缺少必填的 cancellation_code
	w := performRequest(router, "POST", "/api/orders/order-1/cancel", map[string]string{"reason": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, "POST", "/api/orders/order-1/cancel", map[string]string{
		"cancellation_code": "501",
		"reason":            "缺货",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Outcome string `json:"outcome"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Data.Outcome)
}

func TestOrderController_CancellationReasons(t *testing.T) {
	router, db := setupOrderCtlRouter(t)
	seedCtlOrder(t, db, "order-1", model.StatusConfirmed)

	w := performRequest(router, "GET", "/api/orders/order-1/cancellationReasons", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "501")
}
