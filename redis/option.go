package redis

import (
	"github.com/gocrud/hello/core"
)

// New 添加 Redis 日志后端
func New(configure ...func(*Options)) core.Option {
	return func(rt *core.Runtime) error {
		opts := NewDefaultOptions()
		for _, fn := range configure {
			fn(opts)
		}

		provider, err := NewLoggerProvider(*opts)
		if err != nil {
			return err
		}

		// 提供者随日志工厂关闭
		rt.Logging.AddProvider(provider)
		rt.Features.Set(provider)
		return nil
	}
}
