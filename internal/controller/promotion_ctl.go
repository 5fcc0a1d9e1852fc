package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/service"
)

// PromotionController 促销控制器
type PromotionController struct {
	promotionSvc *service.PromotionService
}

// NewPromotionController 创建促销控制器
func NewPromotionController(promotionSvc *service.PromotionService) *PromotionController {
	return &PromotionController{promotionSvc: promotionSvc}
}

// List 促销列表
// @Summary 促销列表
// @Tags Promotion (促销)
// @Produce json
// @Param merchant_id query string false "门店ID"
// @Param active query bool false "是否启用"
// @Param limit query int false "返回条数" default(50)
// @Success 200 {array} dto.PromotionVO "促销列表"
// @Router /api/promotions [get]
func (c *PromotionController) List(ctx *gin.Context) {
	var active *bool
	if raw := ctx.Query("active"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			active = &v
		}
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	list, err := c.promotionSvc.List(ctx.Request.Context(), ctx.Query("merchant_id"), active, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": list})
}

// GetByID 促销详情
// @Summary 促销详情
// @Tags Promotion (促销)
// @Produce json
// @Param id path string true "促销ID"
// @Success 200 {object} dto.PromotionVO "促销详情"
// @Failure 404 {object} map[string]string "促销不存在"
// @Router /api/promotions/{id} [get]
func (c *PromotionController) GetByID(ctx *gin.Context) {
	promotion, err := c.promotionSvc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": promotion})
}

// Create 新建促销
// @Summary 新建促销
// @Description 折扣上限 70%，本地入库后尽力同步远端
// @Tags Promotion (促销)
// @Accept json
// @Produce json
// @Param body body dto.CreatePromotionRequest true "促销信息"
// @Success 201 {object} dto.PromotionVO "已创建"
// @Failure 400 {object} map[string]string "规则校验失败"
// @Router /api/promotions [post]
func (c *PromotionController) Create(ctx *gin.Context) {
	var req dto.CreatePromotionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	promotion, err := c.promotionSvc.Create(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": promotion, "message": "促销已创建"})
}

// SetActive 启停促销
// @Summary 启停促销
// @Tags Promotion (促销)
// @Produce json
// @Param id path string true "促销ID"
// @Param active query bool true "是否启用"
// @Success 200 {object} map[string]string "已更新"
// @Router /api/promotions/{id}/active [patch]
func (c *PromotionController) SetActive(ctx *gin.Context) {
	active, err := strconv.ParseBool(ctx.Query("active"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "active 参数必须是 true/false"})
		return
	}

	if err := c.promotionSvc.SetActive(ctx.Request.Context(), ctx.Param("id"), active); err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "促销状态已更新"})
}

// Delete 删除促销
// @Summary 删除促销
// @Tags Promotion (促销)
// @Produce json
// @Param id path string true "促销ID"
// @Success 200 {object} map[string]string "已删除"
// @Failure 404 {object} map[string]string "促销不存在"
// @Router /api/promotions/{id} [delete]
func (c *PromotionController) Delete(ctx *gin.Context) {
	if err := c.promotionSvc.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "促销已删除"})
}

func (c *PromotionController) respondError(ctx *gin.Context, err error) {
	if errors.Is(err, service.ErrPromotionNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
