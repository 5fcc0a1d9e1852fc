package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/service"
	"ifood_partner_v1/internal/task"
)

// PollingController 轮询控制器
type PollingController struct {
	pollTask *task.PollTask
	eventSvc *service.EventService
}

// NewPollingController 创建轮询控制器
func NewPollingController(pollTask *task.PollTask, eventSvc *service.EventService) *PollingController {
	return &PollingController{
		pollTask: pollTask,
		eventSvc: eventSvc,
	}
}

// Status 轮询器状态
// @Summary 轮询器状态
// @Description 运行开关 + 最近一次轮询的健康记录
// @Tags Polling (事件轮询)
// @Produce json
// @Success 200 {object} dto.PollingStatusResponse "轮询状态"
// @Router /api/polling/status [get]
func (c *PollingController) Status(ctx *gin.Context) {
	status, err := c.pollTask.Status(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": status})
}

// Start 启动轮询
// @Summary 启动轮询
// @Tags Polling (事件轮询)
// @Produce json
// @Success 200 {object} map[string]string "已启动"
// @Failure 409 {object} map[string]string "已在运行"
// @Router /api/polling/start [post]
func (c *PollingController) Start(ctx *gin.Context) {
	if err := c.pollTask.Start(); err != nil {
		if errors.Is(err, task.ErrPollerAlreadyRunning) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "事件轮询已启动"})
}

// Stop 停止轮询
// @Summary 停止轮询
// @Description 等正在进行的周期跑完再停，保证不丢已拉取的事件
// @Tags Polling (事件轮询)
// @Produce json
// @Success 200 {object} map[string]string "已停止"
// @Router /api/polling/stop [post]
func (c *PollingController) Stop(ctx *gin.Context) {
	c.pollTask.Stop()
	ctx.JSON(http.StatusOK, gin.H{"message": "事件轮询已停止"})
}

// PollNow 立即执行一轮
// @Summary 立即执行一轮轮询
// @Description 不等周期，马上拉一次事件 (排障用)
// @Tags Polling (事件轮询)
// @Produce json
// @Success 200 {object} map[string]string "已执行"
// @Router /api/polling/now [post]
func (c *PollingController) PollNow(ctx *gin.Context) {
	c.pollTask.RunOnce(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"message": "已执行一轮轮询"})
}

// ListEvents 事件存档
// @Summary 事件存档查询
// @Description 查询收到过的远端事件 (排障/审计)
// @Tags Polling (事件轮询)
// @Produce json
// @Param processed query bool false "是否已处理"
// @Param limit query int false "返回条数" default(50)
// @Success 200 {array} dto.EventVO "事件列表"
// @Router /api/events [get]
func (c *PollingController) ListEvents(ctx *gin.Context) {
	var req dto.ListEventsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	events, err := c.eventSvc.ListEvents(ctx.Request.Context(), req.Processed, req.Limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.EventVO, len(events))
	for i, ev := range events {
		list[i] = dto.EventVO{
			ID:          ev.ID,
			EventID:     ev.EventID,
			EventType:   ev.EventType,
			OrderID:     ev.OrderID,
			MerchantID:  ev.MerchantID,
			Processed:   ev.Processed,
			ProcessedAt: ev.ProcessedAt,
			CreatedAt:   ev.CreatedAt,
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"data": list})
}
