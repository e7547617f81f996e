package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gocrud/hello/core"
	"github.com/gocrud/hello/cron"
	"github.com/gocrud/hello/database"
	"github.com/gocrud/hello/logging"
	"github.com/gocrud/hello/mongodb"
	"github.com/gocrud/hello/redis"
	"github.com/gocrud/hello/web"
	"gorm.io/driver/sqlite"
)

// RotateJob 日志轮转任务名称
const RotateJob = "log-rotate"

// HelloWorld 组装 Hello World 应用
// 必须放在配置源 Option 之后，配置在此时构建
func HelloWorld() core.Option {
	return func(rt *core.Runtime) error {
		cfg, err := rt.Configuration()
		if err != nil {
			return fmt.Errorf("hello: %w", err)
		}

		settings, err := LoadSettings(cfg)
		if err != nil {
			return fmt.Errorf("hello: failed to bind settings: %w", err)
		}
		rt.Features.Set(&settings)

		opts, err := settings.options(rt)
		if err != nil {
			return err
		}
		return rt.Apply(opts...)
	}
}

// options 根据配置生成需要应用的 Option
func (s Settings) options(rt *core.Runtime) ([]core.Option, error) {
	path, err := s.LogPath()
	if err != nil {
		return nil, fmt.Errorf("hello: failed to resolve log path: %w", err)
	}

	// 请求日志文件只接收请求记录，主机和后台任务的日志交给其他后端
	file := logging.NewFileLoggerProvider(logging.FileLoggerOptions{
		Path:       path,
		Formatter:  s.LogFormatter(),
		Gate:       web.IsRequestInfo,
		Locks:      rt.Logging.FileLocks(),
		MaxSize:    s.Log.Size,
		MaxBackups: s.Log.Backups,
	})
	rt.Features.Set(file)

	opts := []core.Option{
		core.WithLogging(func(b *logging.LoggingBuilder) {
			b.SetMinimumLevel(s.LogLevel())
			if s.Log.Console {
				b.AddConsole()
			}
			if s.Log.Structured {
				b.AddStructured(os.Stdout)
			}
			b.AddProvider(file)
		}),
	}

	if s.Redis.Addr != "" {
		opts = append(opts, redis.New(func(o *redis.Options) {
			o.Addr = s.Redis.Addr
			o.Password = s.Redis.Password
			o.DB = s.Redis.DB
			o.MaxEntries = s.Redis.Max
			if s.Redis.Key != "" {
				o.Key = s.Redis.Key
			}
		}))
	}

	if s.Database.DSN != "" {
		opts = append(opts, database.New(sqlite.Open(s.Database.DSN)))
	}

	if s.Mongo.URI != "" {
		opts = append(opts, mongodb.New(s.Mongo.URI, func(o *mongodb.Options) {
			if s.Mongo.Database != "" {
				o.Database = s.Mongo.Database
			}
			if s.Mongo.Collection != "" {
				o.Collection = s.Mongo.Collection
			}
		}))
	}

	if s.Log.Rotate != "" {
		opts = append(opts, cron.New(
			cron.AddJob(s.Log.Rotate, RotateJob, func(context.Context) error {
				return file.Rotate()
			}),
		))
	}

	opts = append(opts, web.New(
		web.WithPort(s.Port),
		web.WithRoutes(web.MountHello),
	))
	return opts, nil
}
