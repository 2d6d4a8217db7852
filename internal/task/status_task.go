package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bambufarm_v1_202608/internal/service"
)

// ==================== StatusRefreshTask 状态刷新任务 ====================

// StatusRefreshTask 定时向全部打印机请求一次全量遥测上报
// 打印机平时只做增量上报，周期性的 pushall 保证快照不漂移
type StatusRefreshTask struct {
	printerSvc *service.PrinterService
	logger     *zap.Logger
	cron       *cron.Cron
}

// NewStatusRefreshTask 创建状态刷新任务
func NewStatusRefreshTask(printerSvc *service.PrinterService, logger *zap.Logger) *StatusRefreshTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusRefreshTask{
		printerSvc: printerSvc,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Start 启动定时任务
func (t *StatusRefreshTask) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := t.cron.AddFunc(spec, t.execute); err != nil {
		return fmt.Errorf("注册状态刷新任务失败: %w", err)
	}
	t.cron.Start()

	t.logger.Info("状态刷新任务已启动", zap.Duration("interval", interval))
	return nil
}

// Stop 停止定时任务，等待正在执行的一轮结束
func (t *StatusRefreshTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.logger.Info("状态刷新任务已停止")
}

// execute 执行一轮刷新
func (t *StatusRefreshTask) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	t.printerSvc.RefreshAll(ctx)
}
