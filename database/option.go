package database

import (
	"github.com/gocrud/hello/core"
	"gorm.io/gorm"
)

// New 添加数据库日志后端
// dialector: GORM 驱动 (e.g. sqlite.Open(dsn))
func New(dialector gorm.Dialector, configure ...func(*Options)) core.Option {
	return func(rt *core.Runtime) error {
		opts := NewDefaultOptions(dialector)
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
