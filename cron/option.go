package cron

import (
	"github.com/gocrud/hello/core"
)

// BuilderOption 用于配置 Cron Builder
type BuilderOption func(*Builder)

// WithSeconds 启用秒级精度
func WithSeconds() BuilderOption {
	return func(b *Builder) {
		b.WithSeconds()
	}
}

// WithLocation 设置时区
func WithLocation(location string) BuilderOption {
	return func(b *Builder) {
		b.WithLocation(location)
	}
}

// EnableCronLogger 启用 cron 库的内部调度日志
func EnableCronLogger() BuilderOption {
	return func(b *Builder) {
		b.EnableCronLogger()
	}
}

// AddJob 添加任务
func AddJob(spec, name string, handler JobFunc) BuilderOption {
	return func(b *Builder) {
		b.AddJob(spec, name, handler)
	}
}

// New 启用 Cron 能力
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		// 注册为特性，其他 Option 可以继续添加任务
		rt.Features.Set(builder)

		return core.WithHostedService(func(rt *core.Runtime) (core.HostedService, error) {
			svc, err := builder.Build(rt.Logger("cron"))
			if err != nil {
				return nil, err
			}
			rt.Features.Set(svc)
			return svc, nil
		})(rt)
	}
}
