package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/service"
	"ifood_partner_v1/pkg/ifood"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// ==================== 订单列表与详情 ====================

// List 订单列表
// @Summary 订单列表
// @Description 分页查询本地订单，支持按门店、状态、类型、品类、日期筛选
// @Tags Order (订单)
// @Produce json
// @Param merchant_id query string false "门店ID"
// @Param status query string false "订单状态"
// @Param order_type query string false "订单类型"
// @Param category query string false "品类"
// @Param start_date query string false "开始日期 2024-01-01"
// @Param end_date query string false "结束日期"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListOrdersResponse "订单列表"
// @Router /api/orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.ListOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	resp, err := c.svc.ListOrders(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListToday 今日订单
// @Summary 今日订单
// @Description UTC 当日 0 点至今创建的订单，按时间倒序
// @Tags Order (订单)
// @Produce json
// @Success 200 {object} dto.ListOrdersResponse "今日订单"
// @Router /api/orders/today [get]
func (c *OrderController) ListToday(ctx *gin.Context) {
	resp, err := c.svc.ListTodayOrders(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetByID 订单详情
// @Summary 订单详情
// @Description 按本地 ID 或 iFood 订单 ID 查询
// @Tags Order (订单)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} dto.OrderVO "订单详情"
// @Failure 404 {object} map[string]string "订单不存在"
// @Router /api/orders/{id} [get]
func (c *OrderController) GetByID(ctx *gin.Context) {
	order, err := c.svc.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": order})
}

// ==================== 订单指令 ====================

// Confirm 接单
// @Summary 接单
// @Description 确认接收订单 (deadline: 下单后 8 分钟)
// @Tags Order (订单)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/orders/{id}/confirm [post]
func (c *OrderController) Confirm(ctx *gin.Context) {
	c.command(ctx, c.svc.Confirm)
}

// StartPreparation 开始备餐
// @Summary 开始备餐
// @Tags Order (订单)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/orders/{id}/startPreparation [post]
func (c *OrderController) StartPreparation(ctx *gin.Context) {
	c.command(ctx, c.svc.StartPreparation)
}

// ReadyToPickup 出餐完成
// @Summary 出餐完成
// @Tags Order (订单)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/orders/{id}/readyToPickup [post]
func (c *OrderController) ReadyToPickup(ctx *gin.Context) {
	c.command(ctx, c.svc.ReadyToPickup)
}

// Dispatch 发起配送
// @Summary 发起配送
// @Tags Order (订单)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/orders/{id}/dispatch [post]
func (c *OrderController) Dispatch(ctx *gin.Context) {
	c.command(ctx, c.svc.Dispatch)
}

// StartSeparation 开始分拣 (商超订单)
// @Summary 开始分拣
// @Tags Picking (分拣)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/orders/{id}/startSeparation [post]
func (c *OrderController) StartSeparation(ctx *gin.Context) {
	c.command(ctx, c.svc.StartSeparation)
}

// EndSeparation 结束分拣 (商超订单)
// @Summary 结束分拣
// @Tags Picking (分拣)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/orders/{id}/endSeparation [post]
func (c *OrderController) EndSeparation(ctx *gin.Context) {
	c.command(ctx, c.svc.EndSeparation)
}

// Cancel 取消订单
// @Summary 取消订单
// @Description 取消代码必须取自 cancellationReasons 接口返回的合法列表
// @Tags Order (订单)
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param body body dto.CancelOrderRequest true "取消原因"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/orders/{id}/cancel [post]
func (c *OrderController) Cancel(ctx *gin.Context) {
	var req dto.CancelOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	result, err := c.svc.Cancel(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	c.respondCommand(ctx, result)
}

// CancellationReasons 可用取消原因
// @Summary 可用取消原因
// @Tags Order (订单)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {array} ifood.CancellationReasonResp "取消原因列表"
// @Router /api/orders/{id}/cancellationReasons [get]
func (c *OrderController) CancellationReasons(ctx *gin.Context) {
	reasons, err := c.svc.CancellationReasons(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": reasons})
}

// Tracking 骑手位置
// @Summary 骑手位置追踪
// @Description 仅平台配送且在途的订单有数据
// @Tags Order (订单)
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} map[string]any "位置数据"
// @Failure 404 {object} map[string]string "暂无追踪数据"
// @Router /api/orders/{id}/tracking [get]
func (c *OrderController) Tracking(ctx *gin.Context) {
	tracking, err := c.svc.Tracking(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": tracking})
}

// ==================== 响应辅助 ====================

// command 无请求体指令的通用处理
func (c *OrderController) command(ctx *gin.Context, fn func(ctx context.Context, id string) (ifood.CommandResult, error)) {
	result, err := fn(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	c.respondCommand(ctx, result)
}

func (c *OrderController) respondCommand(ctx *gin.Context, result ifood.CommandResult) {
	resp := dto.CommandResponse{
		Outcome: string(result.Outcome),
		OrderID: result.OrderID,
		Status:  result.Status,
	}
	if result.Outcome == ifood.OutcomeNotFound {
		ctx.JSON(http.StatusNotFound, gin.H{"data": resp, "error": "远端不存在该订单"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}

func (c *OrderController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrRemoteNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrReauthorizationRequired):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
