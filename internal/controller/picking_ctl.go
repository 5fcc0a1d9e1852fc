package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/service"
	"ifood_partner_v1/pkg/ifood"
)

// PickingController 分拣与协商控制器
// 商超订单分拣期间的商品调整，以及客诉协商的接受/拒绝
type PickingController struct {
	ifoodSvc *service.IfoodService
}

// NewPickingController 创建分拣控制器
func NewPickingController(ifoodSvc *service.IfoodService) *PickingController {
	return &PickingController{ifoodSvc: ifoodSvc}
}

// ==================== 分拣商品调整 ====================

// AddItem 追加商品
// @Summary 分拣期间追加商品
// @Tags Picking (分拣)
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param body body ifood.PickingItemReq true "商品信息"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/picking/orders/{id}/items [post]
func (c *PickingController) AddItem(ctx *gin.Context) {
	var req ifood.PickingItemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	result, err := c.ifoodSvc.AddPickingItem(ctx.Request.Context(), ctx.Param("id"), req)
	c.respond(ctx, result, err)
}

// ModifyItem 修改商品数量/重量
// @Summary 分拣期间修改商品
// @Tags Picking (分拣)
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param uniqueId path string true "商品行唯一ID"
// @Param body body ifood.PickingModifyReq true "修改内容"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/picking/orders/{id}/items/{uniqueId} [patch]
func (c *PickingController) ModifyItem(ctx *gin.Context) {
	var req ifood.PickingModifyReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	result, err := c.ifoodSvc.ModifyPickingItem(ctx.Request.Context(), ctx.Param("id"), ctx.Param("uniqueId"), req)
	c.respond(ctx, result, err)
}

// ReplaceItem 替换商品
// @Summary 分拣期间替换商品
// @Tags Picking (分拣)
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param uniqueId path string true "商品行唯一ID"
// @Param body body ifood.PickingItemReq true "替换商品"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/picking/orders/{id}/items/{uniqueId}/replace [post]
func (c *PickingController) ReplaceItem(ctx *gin.Context) {
	var req ifood.PickingItemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	result, err := c.ifoodSvc.ReplacePickingItem(ctx.Request.Context(), ctx.Param("id"), ctx.Param("uniqueId"), req)
	c.respond(ctx, result, err)
}

// RemoveItem 移除商品 (缺货)
// @Summary 分拣期间移除商品
// @Tags Picking (分拣)
// @Produce json
// @Param id path string true "订单ID"
// @Param uniqueId path string true "商品行唯一ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/picking/orders/{id}/items/{uniqueId} [delete]
func (c *PickingController) RemoveItem(ctx *gin.Context) {
	result, err := c.ifoodSvc.RemovePickingItem(ctx.Request.Context(), ctx.Param("id"), ctx.Param("uniqueId"))
	c.respond(ctx, result, err)
}

// ==================== 协商 (Handshake) ====================

// AcceptDispute 接受协商
// @Summary 接受协商
// @Tags Dispute (协商)
// @Produce json
// @Param disputeId path string true "协商ID"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/disputes/{disputeId}/accept [post]
func (c *PickingController) AcceptDispute(ctx *gin.Context) {
	result, err := c.ifoodSvc.AcceptDispute(ctx.Request.Context(), ctx.Param("disputeId"))
	c.respond(ctx, result, err)
}

// RejectDispute 拒绝协商
// @Summary 拒绝协商
// @Tags Dispute (协商)
// @Accept json
// @Produce json
// @Param disputeId path string true "协商ID"
// @Param body body ifood.DisputeRejectReq false "拒绝原因"
// @Success 200 {object} dto.CommandResponse "指令结果"
// @Router /api/disputes/{disputeId}/reject [post]
func (c *PickingController) RejectDispute(ctx *gin.Context) {
	var req ifood.DisputeRejectReq
	// 请求体可以为空
	_ = ctx.ShouldBindJSON(&req)

	result, err := c.ifoodSvc.RejectDispute(ctx.Request.Context(), ctx.Param("disputeId"), req.Reason)
	c.respond(ctx, result, err)
}

// respond 指令结果统一响应
func (c *PickingController) respond(ctx *gin.Context, result ifood.CommandResult, err error) {
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := dto.CommandResponse{
		Outcome: string(result.Outcome),
		OrderID: result.OrderID,
		Status:  result.Status,
	}
	if result.Outcome == ifood.OutcomeNotFound {
		ctx.JSON(http.StatusNotFound, gin.H{"data": resp, "error": "远端不存在该资源"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}
