package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/service"
)

// AuthController 授权控制器
type AuthController struct {
	authSvc *service.AuthService
}

// NewAuthController 创建授权控制器
func NewAuthController(authSvc *service.AuthService) *AuthController {
	return &AuthController{authSvc: authSvc}
}

// Status 查询凭证状态
// @Summary 查询凭证状态
// @Description 返回当前 Token 是否有效、授权模式、到期时间。只读操作，不触发刷新
// @Tags Auth (授权)
// @Produce json
// @Success 200 {object} service.AuthStatus "凭证状态"
// @Router /api/auth/status [get]
func (c *AuthController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": c.authSvc.Status()})
}

// StartUserCode 发起授权码流程
// @Summary 发起授权码流程 (分布式应用)
// @Description 向 iFood 申请 userCode，返回的链接需要商家在 iFood 后台人工确认
// @Tags Auth (授权)
// @Produce json
// @Success 200 {object} dto.UserCodeResponse "授权码信息"
// @Failure 500 {object} map[string]string "申请失败"
// @Router /api/auth/userCode [post]
func (c *AuthController) StartUserCode(ctx *gin.Context) {
	resp, err := c.authSvc.StartUserCodeFlow(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.UserCodeResponse{
			UserCode:                resp.UserCode,
			VerificationURL:         resp.VerificationURL,
			VerificationURLComplete: resp.VerificationURLComplete,
			ExpiresIn:               resp.ExpiresIn,
		},
		"message": "请在链接中完成授权，然后提交 authorization_code",
	})
}

// Complete 完成授权码流程
// @Summary 完成授权码流程
// @Description 用人工确认后获得的 authorization_code 换取 Token
// @Tags Auth (授权)
// @Accept json
// @Produce json
// @Param body body dto.CompleteAuthRequest true "授权码"
// @Success 200 {object} map[string]string "授权成功"
// @Failure 400 {object} map[string]string "参数错误或授权码无效"
// @Router /api/auth/confirm [post]
func (c *AuthController) Complete(ctx *gin.Context) {
	var req dto.CompleteAuthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	err := c.authSvc.CompleteUserCodeFlow(ctx.Request.Context(), req.UserCode, req.AuthorizationCode)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrReauthorizationRequired) {
			status = http.StatusUnauthorized
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "授权成功"})
}

// Refresh 强制刷新 Token
// @Summary 强制刷新 Token
// @Description 作废当前 Token 并立即换新 (排障用)
// @Tags Auth (授权)
// @Produce json
// @Success 200 {object} service.AuthStatus "刷新后的凭证状态"
// @Failure 401 {object} map[string]string "刷新链路断裂，需要重新授权"
// @Router /api/auth/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	if err := c.authSvc.ForceReauthorize(ctx.Request.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrReauthorizationRequired) {
			status = http.StatusUnauthorized
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": c.authSvc.Status(), "message": "Token 已刷新"})
}
