package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/service"
)

// MerchantController 门店控制器
// 门店数据不落地，直接透传远端
type MerchantController struct {
	ifoodSvc *service.IfoodService
}

// NewMerchantController 创建门店控制器
func NewMerchantController(ifoodSvc *service.IfoodService) *MerchantController {
	return &MerchantController{ifoodSvc: ifoodSvc}
}

// List 门店列表
// @Summary 门店列表
// @Description 应用名下全部门店
// @Tags Merchant (门店)
// @Produce json
// @Success 200 {array} ifood.MerchantResp "门店列表"
// @Router /api/merchants [get]
func (c *MerchantController) List(ctx *gin.Context) {
	merchants, err := c.ifoodSvc.ListMerchants(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": merchants})
}

// Details 门店详情
// @Summary 门店详情
// @Tags Merchant (门店)
// @Produce json
// @Param id path string true "门店ID (传 default 使用配置的门店)"
// @Success 200 {object} map[string]any "门店详情"
// @Router /api/merchants/{id} [get]
func (c *MerchantController) Details(ctx *gin.Context) {
	detail, err := c.ifoodSvc.MerchantDetails(ctx.Request.Context(), c.merchantParam(ctx))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": detail})
}

// Status 门店营业状态
// @Summary 门店营业状态
// @Tags Merchant (门店)
// @Produce json
// @Param id path string true "门店ID (传 default 使用配置的门店)"
// @Success 200 {array} ifood.MerchantStatusResp "营业状态"
// @Router /api/merchants/{id}/status [get]
func (c *MerchantController) Status(ctx *gin.Context) {
	status, err := c.ifoodSvc.MerchantStatus(ctx.Request.Context(), c.merchantParam(ctx))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": status})
}

// merchantParam 路径参数 default 表示使用配置的默认门店
func (c *MerchantController) merchantParam(ctx *gin.Context) string {
	id := ctx.Param("id")
	if id == "default" {
		return ""
	}
	return id
}

func (c *MerchantController) respondError(ctx *gin.Context, err error) {
	if errors.Is(err, service.ErrRemoteNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
