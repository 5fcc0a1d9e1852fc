package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/service"
)

// CatalogController 商品目录控制器
type CatalogController struct {
	catalogSvc *service.CatalogService
}

// NewCatalogController 创建商品目录控制器
func NewCatalogController(catalogSvc *service.CatalogService) *CatalogController {
	return &CatalogController{catalogSvc: catalogSvc}
}

// List 商品列表
// @Summary 商品列表
// @Tags Catalog (商品目录)
// @Produce json
// @Param merchant_id query string false "门店ID"
// @Param category query string false "分类"
// @Param available query bool false "是否上架"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListCatalogResponse "商品列表"
// @Router /api/catalog/items [get]
func (c *CatalogController) List(ctx *gin.Context) {
	var req dto.ListCatalogRequest
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

	resp, err := c.catalogSvc.ListItems(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetByID 商品详情
// @Summary 商品详情
// @Tags Catalog (商品目录)
// @Produce json
// @Param id path string true "商品ID"
// @Success 200 {object} dto.CatalogItemVO "商品详情"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/catalog/items/{id} [get]
func (c *CatalogController) GetByID(ctx *gin.Context) {
	item, err := c.catalogSvc.GetItem(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": item})
}

// Create 新增商品
// @Summary 新增商品
// @Description 本地入库后尽力同步到远端目录
// @Tags Catalog (商品目录)
// @Accept json
// @Produce json
// @Param body body dto.CreateCatalogItemRequest true "商品信息"
// @Success 201 {object} dto.CatalogItemVO "已创建"
// @Router /api/catalog/items [post]
func (c *CatalogController) Create(ctx *gin.Context) {
	var req dto.CreateCatalogItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	item, err := c.catalogSvc.CreateItem(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": item, "message": "商品已创建"})
}

// Update 修改商品
// @Summary 修改商品
// @Tags Catalog (商品目录)
// @Accept json
// @Produce json
// @Param id path string true "商品ID"
// @Param body body dto.UpdateCatalogItemRequest true "修改内容"
// @Success 200 {object} map[string]string "已更新"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/catalog/items/{id} [patch]
func (c *CatalogController) Update(ctx *gin.Context) {
	var req dto.UpdateCatalogItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if err := c.catalogSvc.UpdateItem(ctx.Request.Context(), ctx.Param("id"), &req); err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "商品已更新"})
}

// Delete 删除商品
// @Summary 删除商品
// @Tags Catalog (商品目录)
// @Produce json
// @Param id path string true "商品ID"
// @Success 200 {object} map[string]string "已删除"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/catalog/items/{id} [delete]
func (c *CatalogController) Delete(ctx *gin.Context) {
	if err := c.catalogSvc.DeleteItem(ctx.Request.Context(), ctx.Param("id")); err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "商品已删除"})
}

func (c *CatalogController) respondError(ctx *gin.Context, err error) {
	if errors.Is(err, service.ErrCatalogItemNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
