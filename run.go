package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocrud/hello/core"
)

// ShutdownTimeout 优雅关闭的超时时间
const ShutdownTimeout = 5 * time.Second

// Run 启动应用程序，直到收到 SIGINT/SIGTERM 或运行时请求退出
// 这是基于微内核架构的唯一入口
func Run(opts ...core.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RunContext(ctx, opts...)
}

// RunContext 启动应用程序，直到 ctx 被取消或运行时请求退出
func RunContext(ctx context.Context, opts ...core.Option) error {
	rt := core.NewRuntime()

	// 1. Bootstrap (应用所有选项)
	// 这一步会配置 Feature、注册日志提供者、添加生命周期钩子等
	if err := rt.Apply(opts...); err != nil {
		return errors.Join(err, rt.Close())
	}

	// 2. Start Lifecycle (启动生命周期)
	if err := rt.Lifecycle.Start(ctx); err != nil {
		return errors.Join(err, shutdown(rt), rt.Close())
	}

	// 3. 阻塞等待退出
	// 支持外部取消 (信号) 和 Runtime 内部触发的退出 (rt.Shutdown)
	select {
	case <-ctx.Done():
	case <-rt.Done():
	}

	// 4. Graceful Shutdown (优雅关闭)，最后关闭日志提供者
	return errors.Join(rt.Err(), shutdown(rt), rt.Close())
}

func shutdown(rt *core.Runtime) error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	return rt.Lifecycle.Stop(ctx)
}
