package core

import "context"

// HostedService 随 Runtime 生命周期启停的后台服务，如 web.Host、cron.Service
type HostedService interface {
	// Start 在独立 goroutine 中调用，可以阻塞到服务结束
	// 返回的错误交给 Runtime.Fail，触发关闭
	Start(ctx context.Context) error

	// Stop 在关闭阶段调用，需遵守 ctx 的超时
	Stop(ctx context.Context) error
}
