package core

import (
	"context"
	"fmt"
	"sync"
)

// WithHostedService 注册一个托管服务
// factory 在启动时调用，此时所有 Option 均已应用。
// 框架会在 OnStart 时启动 Goroutine 调用 Start，在 OnStop 时调用 Stop。
func WithHostedService(factory func(rt *Runtime) (HostedService, error)) Option {
	return func(rt *Runtime) error {
		if factory == nil {
			return fmt.Errorf("WithHostedService: factory is nil")
		}

		var (
			mu            sync.Mutex
			service       HostedService
			serviceCancel context.CancelFunc
		)

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			svc, err := factory(rt)
			if err != nil {
				return fmt.Errorf("failed to create hosted service: %w", err)
			}

			// 服务上下文伴随应用运行，不受启动上下文取消影响
			serviceCtx, cancel := context.WithCancel(context.Background())

			mu.Lock()
			service, serviceCancel = svc, cancel
			mu.Unlock()

			// 异步调用 Start，允许 Start 方法阻塞
			go func() {
				if err := svc.Start(serviceCtx); err != nil {
					// 触发应用退出 (Fail Fast)
					rt.Fail(fmt.Errorf("HostedService %T exited with error: %w", svc, err))
				}
			}()
			return nil
		})

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			mu.Lock()
			svc, cancel := service, serviceCancel
			mu.Unlock()

			if svc == nil {
				return nil
			}
			cancel()
			return svc.Stop(ctx)
		})

		return nil
	}
}

// WorkerFunc 定义简单的后台任务函数
// 这是一个阻塞函数，通过 ctx.Done() 判断退出。
type WorkerFunc func(ctx context.Context) error

// WithWorker 将一个阻塞的函数注册为后台服务
// 框架会自动将其适配为 HostedService (异步启动，Cancel停止)
func WithWorker(fn WorkerFunc) Option {
	return WithHostedService(func(*Runtime) (HostedService, error) {
		return &workerService{fn: fn, done: make(chan struct{})}, nil
	})
}

type workerService struct {
	fn   WorkerFunc
	done chan struct{}
}

func (w *workerService) Start(ctx context.Context) error {
	defer close(w.done)
	return w.fn(ctx)
}

// Stop 等待工作函数在上下文取消后返回
func (w *workerService) Stop(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
