package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/config"
	"ifood_partner_v1/internal/service"
	"ifood_partner_v1/internal/task"
)

// MetricsController 经营看板控制器
type MetricsController struct {
	metricsSvc *service.MetricsService
	pollTask   *task.PollTask
	cfg        *config.Config
}

// NewMetricsController 创建看板控制器
func NewMetricsController(metricsSvc *service.MetricsService, pollTask *task.PollTask, cfg *config.Config) *MetricsController {
	return &MetricsController{
		metricsSvc: metricsSvc,
		pollTask:   pollTask,
		cfg:        cfg,
	}
}

// Dashboard 当日经营概览
// @Summary 当日经营概览
// @Description 当日订单量、营收、客单价、状态/类型/品类分布
// @Tags Metrics (看板)
// @Produce json
// @Success 200 {object} dto.DashboardResponse "看板数据"
// @Router /api/metrics/dashboard [get]
func (c *MetricsController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.metricsSvc.Dashboard(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dashboard})
}

// Summary 最近 N 天逐日汇总
// @Summary 最近 N 天逐日汇总
// @Description 按日的订单量、营收、取消数，默认 7 天
// @Tags Metrics (看板)
// @Produce json
// @Param days query int false "统计天数" default(7)
// @Success 200 {object} dto.SummaryResponse "逐日汇总"
// @Router /api/metrics/summary [get]
func (c *MetricsController) Summary(ctx *gin.Context) {
	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "7"))

	summary, err := c.metricsSvc.Summary(ctx.Request.Context(), days)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": summary})
}

// Health 健康检查
// @Summary 健康检查
// @Description 服务、数据库、凭证与轮询器的整体状态
// @Tags Metrics (看板)
// @Produce json
// @Success 200 {object} dto.HealthResponse "健康状态"
// @Router /api/health [get]
func (c *MetricsController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{
		Status:         "healthy",
		Database:       "connected",
		MerchantID:     c.cfg.MerchantID,
		PollingActive:  c.pollTask.Running(),
		HasCredentials: c.cfg.ClientID != "",
	})
}
