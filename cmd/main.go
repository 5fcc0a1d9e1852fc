package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ifood_partner_v1/internal/config"
	"ifood_partner_v1/internal/controller"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/internal/router"
	"ifood_partner_v1/internal/service"
	"ifood_partner_v1/internal/task"
	"ifood_partner_v1/pkg/database"
	"ifood_partner_v1/pkg/net"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db)

	// 4. 启动后台任务
	initTasks(cfg, deps)

	// 5. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 6. 启动服务
	startServer(cfg, r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Dispatcher  net.Dispatcher
	Services    *Services
	Controllers router.Controllers
	PollTask    *task.PollTask
	TokenTask   *task.TokenTask
}

// Repositories 仓库集合
type Repositories struct {
	Order      repository.OrderRepository
	Event      repository.EventRepository
	Polling    repository.PollingStatusRepository
	Credential repository.CredentialRepository
	Catalog    repository.CatalogRepository
	Promotion  repository.PromotionRepository
}

// Services 服务集合
type Services struct {
	Auth      *service.AuthService
	Ifood     *service.IfoodService
	Event     *service.EventService
	Order     *service.OrderService
	Metrics   *service.MetricsService
	Catalog   *service.CatalogService
	Promotion *service.PromotionService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		// Order
		&model.Order{}, &model.Event{},
		// Polling / Auth
		&model.PollingStatus{}, &model.CredentialSnapshot{},
		// Catalog
		&model.CatalogItem{}, &model.Promotion{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Order:      repository.NewOrderRepository(db),
		Event:      repository.NewEventRepository(db),
		Polling:    repository.NewPollingStatusRepository(db),
		Credential: repository.NewCredentialRepository(db),
		Catalog:    repository.NewCatalogRepository(db),
		Promotion:  repository.NewPromotionRepository(db),
	}

	// -------- 基础服务 --------
	// AuthService 提供授权头，Dispatcher 托管 401 重试
	authSvc := service.NewAuthService(cfg, repos.Credential)
	dispatcher := net.NewDispatcher(authSvc, 30*time.Second)

	// -------- 业务服务 --------
	ifoodSvc := service.NewIfoodService(cfg, dispatcher)
	services := &Services{
		Auth:      authSvc,
		Ifood:     ifoodSvc,
		Event:     service.NewEventService(repos.Event, repos.Order, ifoodSvc),
		Order:     service.NewOrderService(repos.Order, ifoodSvc),
		Metrics:   service.NewMetricsService(repos.Order),
		Catalog:   service.NewCatalogService(repos.Catalog, ifoodSvc),
		Promotion: service.NewPromotionService(repos.Promotion, ifoodSvc),
	}

	// -------- 后台任务 --------
	pollTask := task.NewPollTask(ifoodSvc, services.Event, repos.Polling, cfg.MerchantID)
	tokenTask := task.NewTokenTask(authSvc)

	// -------- Controller 层 --------
	controllers := router.Controllers{
		Auth:      controller.NewAuthController(services.Auth),
		Order:     controller.NewOrderController(services.Order),
		Polling:   controller.NewPollingController(pollTask, services.Event),
		Merchant:  controller.NewMerchantController(services.Ifood),
		Picking:   controller.NewPickingController(services.Ifood),
		Metrics:   controller.NewMetricsController(services.Metrics, pollTask, cfg),
		Catalog:   controller.NewCatalogController(services.Catalog),
		Promotion: controller.NewPromotionController(services.Promotion),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Dispatcher:  dispatcher,
		Services:    services,
		Controllers: controllers,
		PollTask:    pollTask,
		TokenTask:   tokenTask,
	}
}

// ==================== 后台任务 ====================

// initTasks 启动后台任务
func initTasks(cfg *config.Config, deps *Dependencies) {
	if err := cfg.ValidateCredentials(); err != nil {
		log.Printf("警告: %v，后台任务不启动 (仅本地功能可用)", err)
		return
	}

	// Token 保活
	deps.TokenTask.Start()

	// 事件轮询
	if cfg.PollingAutoStart {
		if err := deps.PollTask.Start(); err != nil {
			log.Printf("事件轮询启动失败: %v", err)
		}
	} else {
		log.Println("事件轮询未自动启动 (POLLING_AUTO_START=false)")
	}

	log.Println("后台任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, r *gin.Engine, deps *Dependencies) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停轮询，保证正在处理的事件批次跑完
	deps.PollTask.Stop()
	deps.TokenTask.Stop()

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
