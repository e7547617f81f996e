package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/hello/logging"
	"github.com/robfig/cron/v3"
)

// options Cron 服务配置选项
type options struct {
	// Location 时区设置，默认 UTC
	Location *time.Location
	// EnableSeconds 是否启用秒级精度（默认分钟级）
	EnableSeconds bool
	// Logger 自定义日志记录器
	Logger logging.Logger
	// EnableCronLogger 是否启用 cron 库的内部调度日志（默认 false）
	EnableCronLogger bool
}

// Service Cron 定时任务托管服务
// 实现 core.HostedService 接口
type Service struct {
	cron   *cron.Cron
	logger logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	jobs   map[string]cron.EntryID // 任务名称到任务ID的映射
}

// newService 创建 Cron 托管服务
func newService(opt options) *Service {
	if opt.Logger == nil {
		opt.Logger = logging.NewNopLogger()
	}
	if opt.Location == nil {
		opt.Location = time.UTC
	}

	cronOpts := []cron.Option{
		cron.WithLocation(opt.Location),
		cron.WithChain(cron.Recover(newCronLogger(opt.Logger))),
	}

	// 只在启用时添加 cron 库的日志记录器
	if opt.EnableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(newCronLogger(opt.Logger)))
	}
	if opt.EnableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cron:   cron.New(cronOpts...),
		logger: opt.Logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]cron.EntryID),
	}
}

// AddJob 添加定时任务
// spec: cron 表达式，如 "@every 1h" 或 "0 0 2 * * *" (启用秒级时，每天凌晨2点)
// name: 任务名称（用于管理和日志），重复的名称会替换旧任务
func (s *Service) AddJob(spec, name string, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug(fmt.Sprintf("Cron job '%s' started", name))
		if err := job(s.ctx); err != nil {
			s.logger.Error(fmt.Sprintf("Cron job '%s' failed", name),
				logging.Field{Key: "error", Value: err.Error()})
			return
		}
		s.logger.Debug(fmt.Sprintf("Cron job '%s' completed", name))
	})
	if err != nil {
		return fmt.Errorf("cron: failed to add job '%s': %w", name, err)
	}

	if old, exists := s.jobs[name]; exists {
		s.cron.Remove(old)
	}
	s.jobs[name] = entryID
	s.logger.Debug(fmt.Sprintf("Cron job '%s' registered with spec '%s'", name, spec))
	return nil
}

// RemoveJob 移除定时任务
func (s *Service) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}
}

// Next 返回任务的下一次执行时间，任务不存在或调度器未启动时为零值
func (s *Service) Next(name string) time.Time {
	s.mu.RLock()
	entryID, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return time.Time{}
	}
	return s.cron.Entry(entryID).Next
}

// Start 实现 HostedService.Start，启动调度器后立即返回
func (s *Service) Start(ctx context.Context) error {
	s.mu.RLock()
	count := len(s.jobs)
	s.mu.RUnlock()

	s.logger.Info("CronService starting", logging.Field{Key: "jobs", Value: count})
	s.cron.Start()
	return nil
}

// Stop 实现 HostedService.Stop，等待正在执行的任务完成
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("CronService stopping")
	s.cancel()

	stopCtx := s.cron.Stop()

	// 等待停止完成或 ctx 超时
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger 适配器：将框架日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.Field{Key: "error", Value: fmt.Sprint(err)})
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Field{
			Key:   fmt.Sprintf("%v", keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return fields
}
