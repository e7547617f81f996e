package web

import (
	"github.com/gin-gonic/gin"
	"github.com/gocrud/hello/core"
)

// BuilderOption 用于配置 Web Builder
type BuilderOption func(*Builder)

// WithPort 设置端口
func WithPort(port int) BuilderOption {
	return func(b *Builder) {
		b.UsePort(port)
	}
}

// WithRoutes 添加路由
func WithRoutes(mappers ...RouteMapper) BuilderOption {
	return func(b *Builder) {
		b.MapRoutes(mappers...)
	}
}

// WithMiddleware 添加全局中间件
func WithMiddleware(middleware ...gin.HandlerFunc) BuilderOption {
	return func(b *Builder) {
		b.Use(middleware...)
	}
}

// WithCategory 设置请求日志类别
func WithCategory(category string) BuilderOption {
	return func(b *Builder) {
		b.UseCategory(category)
	}
}

// New 启用 Web 能力
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		// 注册为 Feature，其他 Option 可以继续添加路由
		rt.Features.Set(builder)

		// 延迟创建 Host，确保所有日志提供者都已注册
		return core.WithHostedService(func(rt *core.Runtime) (core.HostedService, error) {
			host := builder.Build(rt.LoggerFactory())
			// 注册为 Feature，以便测试或其他组件获取
			rt.Features.Set(host)
			return host, nil
		})(rt)
	}
}
