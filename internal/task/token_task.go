package task

import (
	"context"
	"log"
	"time"

	"ifood_partner_v1/internal/service"

	"github.com/robfig/cron/v3"
)

// ==================== TokenTask Token 保活 ====================

// TokenTask 周期性预热凭证
// AuthService 本身是惰性刷新的，这里提前触发换新，
// 保证轮询循环拿到的永远是热 Token，不在轮询路径上付刷新开销
type TokenTask struct {
	AuthService *service.AuthService
	Cron        *cron.Cron
}

// NewTokenTask 创建保活任务
func NewTokenTask(authService *service.AuthService) *TokenTask {
	return &TokenTask{
		AuthService: authService,
		Cron:        cron.New(cron.WithSeconds()), // 支持秒级控制
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次 Token 检查...")
		t.refreshJob(ctx)
	}()

	// 定时策略：iFood Token 有效期 6 小时，每 15 分钟检查一次足够
	_, err := t.Cron.AddFunc("0 0/15 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		t.refreshJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动 Token 定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("Token 保活任务已启动 (每15分钟检查一次)")
}

// Stop 停止定时任务
func (t *TokenTask) Stop() {
	t.Cron.Stop()
}

// refreshJob 触发一次凭证检查
// Authorization 内部判断安全边界，未临期时是零开销调用
func (t *TokenTask) refreshJob(ctx context.Context) {
	if _, err := t.AuthService.Authorization(ctx); err != nil {
		log.Printf("[Cron] Token 保活失败: %v", err)
	}
}
