package mongodb

import (
	"github.com/gocrud/hello/core"
)

// New 添加 MongoDB 日志后端
func New(uri string, configure ...func(*Options)) core.Option {
	return func(rt *core.Runtime) error {
		opts := NewDefaultOptions(uri)
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
