package task

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/pkg/ifood"
)

// PollInterval 官方要求的轮询周期：30 秒
// 快于 30s 有被限流的风险，慢于 30s 事件会积压
const PollInterval = 30 * time.Second

// ErrPollerAlreadyRunning 轮询器已在运行
var ErrPollerAlreadyRunning = errors.New("轮询器已在运行")

// ==================== 依赖接口 ====================

// EventPoller 事件拉取与确认通道
type EventPoller interface {
	PollEvents(ctx context.Context, categories []string) ([]ifood.EventResp, error)
	AcknowledgeEvents(ctx context.Context, eventIDs []string) error
}

// EventApplier 事件应用器
type EventApplier interface {
	Apply(ctx context.Context, ev ifood.EventResp) error
}

// ==================== PollTask 事件轮询循环 ====================

// PollTask 30 秒事件轮询监督器
// 生命周期可控：Start 启动循环，Stop 等当前周期跑完再退出
// 周期内流程：拉取 -> 逐个应用 -> 批量 ACK 应用成功的 -> 更新健康记录
type PollTask struct {
	poller      EventPoller
	applier     EventApplier
	pollingRepo repository.PollingStatusRepository
	merchantID  string

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewPollTask 创建轮询任务
func NewPollTask(poller EventPoller, applier EventApplier, pollingRepo repository.PollingStatusRepository, merchantID string) *PollTask {
	return &PollTask{
		poller:      poller,
		applier:     applier,
		pollingRepo: pollingRepo,
		merchantID:  merchantID,
	}
}

// Start 启动轮询循环
// 重复启动返回 ErrPollerAlreadyRunning
func (t *PollTask) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrPollerAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	if err := t.pollingRepo.SetActive(ctx, t.merchantID, true); err != nil {
		log.Printf("更新轮询激活状态失败: %v", err)
	}

	go t.run(ctx, t.done)
	log.Printf("事件轮询已启动 (周期 %s)", PollInterval)
	return nil
}

// Stop 停止轮询循环
// 阻塞到正在进行的周期跑完，保证不丢已拉取的事件
func (t *PollTask) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	cancel()
	<-done

	t.mu.Lock()
	t.running = false
	t.mu.Unlock()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	if err := t.pollingRepo.SetActive(ctx, t.merchantID, false); err != nil {
		log.Printf("更新轮询激活状态失败: %v", err)
	}
	log.Println("事件轮询已停止")
}

// Running 轮询器是否在运行
func (t *PollTask) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// run 主循环
// 启动后立即执行一轮，之后按固定周期触发
// 取消信号只拦截下一个周期：周期一旦开始，已拉取的事件必须应用并 ACK 完
func (t *PollTask) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	cycleCtx := context.WithoutCancel(ctx)
	t.RunOnce(cycleCtx)

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.RunOnce(cycleCtx)
		}
	}
}

// RunOnce 执行一个完整的轮询周期
// 对外暴露是为了运维手动触发 (立即拉一次，不用等周期)
func (t *PollTask) RunOnce(ctx context.Context) {
	events, err := t.poller.PollEvents(ctx, nil)
	if err != nil {
		// 进程退出导致的取消不算故障
		if ctx.Err() != nil {
			return
		}
		log.Printf("轮询失败: %v", err)
		t.recordFailure(ctx, err)
		return
	}

	if len(events) == 0 {
		t.recordSuccess(ctx, 0)
		return
	}
	log.Printf("轮询收到 %d 个事件", len(events))

	// 逐个应用，失败的不 ACK，等下一轮重复下发
	ackIDs := make([]string, 0, len(events))
	for _, ev := range events {
		if err := t.applier.Apply(ctx, ev); err != nil {
			log.Printf("事件 %s 应用失败，等待重新下发: %v", ev.ID, err)
			continue
		}
		ackIDs = append(ackIDs, ev.ID)
	}

	// 批量 ACK；ACK 失败同样靠重复下发 + 幂等兜底
	if err := t.poller.AcknowledgeEvents(ctx, ackIDs); err != nil {
		log.Printf("事件确认失败: %v", err)
		t.recordFailure(ctx, err)
		return
	}

	t.recordSuccess(ctx, len(events))
}

func (t *PollTask) recordSuccess(ctx context.Context, eventsReceived int) {
	if err := t.pollingRepo.RecordSuccess(ctx, t.merchantID, eventsReceived); err != nil {
		log.Printf("更新轮询健康记录失败: %v", err)
	}
}

func (t *PollTask) recordFailure(ctx context.Context, cause error) {
	if err := t.pollingRepo.RecordFailure(ctx, t.merchantID, cause.Error()); err != nil {
		log.Printf("更新轮询健康记录失败: %v", err)
	}
}

// Status 轮询器运行状态 (含数据库里的健康记录)
func (t *PollTask) Status(ctx context.Context) (*dto.PollingStatusResponse, error) {
	resp := &dto.PollingStatusResponse{
		Running:          t.Running(),
		MerchantID:       t.merchantID,
		IntervalSeconds:  int(PollInterval.Seconds()),
		ConnectionStatus: "disconnected",
	}

	record, err := t.pollingRepo.GetByMerchant(ctx, t.merchantID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		lastPoll := record.LastPollAt
		if !lastPoll.IsZero() {
			resp.LastPollAt = &lastPoll
		}
		resp.EventsReceived = record.EventsReceived
		resp.ErrorsCount = record.ErrorsCount
		resp.LastError = record.LastError
		resp.ConnectionStatus = record.ConnectionStatus
	}
	return resp, nil
}
