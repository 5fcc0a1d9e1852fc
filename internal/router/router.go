package router

import (
	"ifood_partner_v1/internal/controller"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Controllers 全部控制器集合
type Controllers struct {
	Auth      *controller.AuthController
	Order     *controller.OrderController
	Polling   *controller.PollingController
	Merchant  *controller.MerchantController
	Picking   *controller.PickingController
	Metrics   *controller.MetricsController
	Catalog   *controller.CatalogController
	Promotion *controller.PromotionController
}

// SetupRouter 创建引擎并注册全部路由
func SetupRouter(c Controllers) *gin.Engine {
	r := gin.Default()
	InitRoutes(r, c)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, c Controllers) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// auth 授权组
		auth := api.Group("/auth")
		{
			auth.GET("/status", c.Auth.Status)
			auth.POST("/userCode", c.Auth.StartUserCode)
			auth.POST("/confirm", c.Auth.Complete)
			auth.POST("/refresh", c.Auth.Refresh)
		}

		// orders 订单组
		orders := api.Group("/orders")
		{
			orders.GET("", c.Order.List)
			orders.GET("/today", c.Order.ListToday)
			orders.GET("/:id", c.Order.GetByID)

			// 订单指令
			orders.POST("/:id/confirm", c.Order.Confirm)
			orders.POST("/:id/startPreparation", c.Order.StartPreparation)
			orders.POST("/:id/readyToPickup", c.Order.ReadyToPickup)
			orders.POST("/:id/dispatch", c.Order.Dispatch)
			orders.POST("/:id/cancel", c.Order.Cancel)
			orders.GET("/:id/cancellationReasons", c.Order.CancellationReasons)
			orders.GET("/:id/tracking", c.Order.Tracking)

			// 商超分拣
			orders.POST("/:id/startSeparation", c.Order.StartSeparation)
			orders.POST("/:id/endSeparation", c.Order.EndSeparation)
		}

		// polling 轮询组
		polling := api.Group("/polling")
		{
			polling.GET("/status", c.Polling.Status)
			polling.POST("/start", c.Polling.Start)
			polling.POST("/stop", c.Polling.Stop)
			polling.POST("/now", c.Polling.PollNow)
		}

		// events 事件存档
		api.GET("/events", c.Polling.ListEvents)

		// merchants 门店组
		merchants := api.Group("/merchants")
		{
			merchants.GET("", c.Merchant.List)
			merchants.GET("/:id", c.Merchant.Details)
			merchants.GET("/:id/status", c.Merchant.Status)
		}

		// picking 分拣商品调整
		picking := api.Group("/picking/orders/:id/items")
		{
			picking.POST("", c.Picking.AddItem)
			picking.PATCH("/:uniqueId", c.Picking.ModifyItem)
			picking.POST("/:uniqueId/replace", c.Picking.ReplaceItem)
			picking.DELETE("/:uniqueId", c.Picking.RemoveItem)
		}

		// disputes 协商组
		disputes := api.Group("/disputes")
		{
			disputes.POST("/:disputeId/accept", c.Picking.AcceptDispute)
			disputes.POST("/:disputeId/reject", c.Picking.RejectDispute)
		}

		// metrics 看板
		api.GET("/metrics/dashboard", c.Metrics.Dashboard)
		api.GET("/metrics/summary", c.Metrics.Summary)

		// health 健康检查
		api.GET("/health", c.Metrics.Health)

		// catalog 商品目录组
		catalog := api.Group("/catalog/items")
		{
			catalog.GET("", c.Catalog.List)
			catalog.GET("/:id", c.Catalog.GetByID)
			catalog.POST("", c.Catalog.Create)
			catalog.PATCH("/:id", c.Catalog.Update)
			catalog.DELETE("/:id", c.Catalog.Delete)
		}

		// promotions 促销组
		promotions := api.Group("/promotions")
		{
			promotions.GET("", c.Promotion.List)
			promotions.GET("/:id", c.Promotion.GetByID)
			promotions.POST("", c.Promotion.Create)
			promotions.PATCH("/:id/active", c.Promotion.SetActive)
			promotions.DELETE("/:id", c.Promotion.Delete)
		}
	}
}
