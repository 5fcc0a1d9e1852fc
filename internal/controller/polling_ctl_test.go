package controller

import (
	"context"
	"net/http"
	"testing"

	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/internal/service"
	"ifood_partner_v1/internal/task"
	"ifood_partner_v1/pkg/ifood"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// noopSource 空事件通道：轮询永远没有新事件
type noopSource struct{}

func (noopSource) PollEvents(ctx context.Context, categories []string) ([]ifood.EventResp, error) {
	return nil, nil
}

func (noopSource) AcknowledgeEvents(ctx context.Context, eventIDs []string) error { return nil }

func setupPollingCtlRouter(t *testing.T) (*gin.Engine, *task.PollTask) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}, &model.Event{}, &model.PollingStatus{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	eventSvc := service.NewEventService(
		repository.NewEventRepository(db),
		repository.NewOrderRepository(db),
		nil,
	)
	pollTask := task.NewPollTask(noopSource{}, eventSvc, repository.NewPollingStatusRepository(db), "merchant-1")
	ctl := NewPollingController(pollTask, eventSvc)

	r := gin.New()
	polling := r.Group("/api/polling")
	{
		polling.GET("/status", ctl.Status)
		polling.POST("/start", ctl.Start)
		polling.POST("/stop", ctl.Stop)
		polling.POST("/now", ctl.PollNow)
	}
	r.GET("/api/events", ctl.ListEvents)
	return r, pollTask
}

// ==================== 接口测试 ====================

func TestPollingController_Lifecycle(t *testing.T) {
	router, pollTask := setupPollingCtlRouter(t)
	defer pollTask.Stop()

	w := performRequest(router, "GET", "/api/polling/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"running":false`)

	w = performRequest(router, "POST", "/api/polling/start", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 重复启动返回 409
	w = performRequest(router, "POST", "/api/polling/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, "GET", "/api/polling/status", nil)
	assert.Contains(t, w.Body.String(), `"running":true`)

	w = performRequest(router, "POST", "/api/polling/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/api/polling/status", nil)
	assert.Contains(t, w.Body.String(), `"running":false`)
}

func TestPollingController_PollNowAndEvents(t *testing.T) {
	router, _ := setupPollingCtlRouter(t)

	w := performRequest(router, "POST", "/api/polling/now", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/api/events", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 参数校验
	w = performRequest(router, "GET", "/api/events?processed=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
