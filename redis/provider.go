package redis

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/gocrud/hello/logging"
	"github.com/redis/go-redis/v9"
)

// LoggerProvider 将日志以 JSON 行的形式 RPUSH 到 Redis 列表
type LoggerProvider struct {
	client    *redis.Client
	options   Options
	formatter logging.Formatter
}

// NewLoggerProvider 创建 Redis 日志提供者，不会立即连接
func NewLoggerProvider(opts Options) (*LoggerProvider, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("redis: invalid configuration: %w", err)
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = func(err error) {
			fmt.Fprintf(os.Stderr, "redis logger: %v\n", err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		WriteTimeout: opts.WriteTimeout,
		ReadTimeout:  opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
		MaxRetries:   opts.MaxRetries,
	})

	return &LoggerProvider{
		client:    client,
		options:   opts,
		formatter: logging.NewJsonFormatter(),
	}, nil
}

// Ping 检查 Redis 连接
func (p *LoggerProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Client 返回底层客户端
func (p *LoggerProvider) Client() *redis.Client {
	return p.client
}

// CreateLogger 创建指定类别的后端
func (p *LoggerProvider) CreateLogger(category string) logging.Backend {
	return &backend{provider: p, category: category}
}

// Close 关闭 Redis 客户端
func (p *LoggerProvider) Close() error {
	return p.client.Close()
}

// push 写入一条记录，MaxEntries 大于 0 时在同一事务中裁剪列表
func (p *LoggerProvider) push(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.options.WriteTimeout)
	defer cancel()

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, p.options.Key, data)
		if p.options.MaxEntries > 0 {
			pipe.LTrim(ctx, p.options.Key, -p.options.MaxEntries, -1)
		}
		return nil
	})
	return err
}

type backend struct {
	provider *LoggerProvider
	category string
}

func (b *backend) IsEnabled(level logging.LogLevel) bool {
	return level >= b.provider.options.MinimumLevel
}

func (b *backend) Log(level logging.LogLevel, eventID logging.EventID, state any, err error, formatter logging.MessageFormatter) {
	if !b.IsEnabled(level) {
		return
	}

	entry := logging.NewEntry(b.category, level, eventID, state, err, formatter)
	data, ferr := b.provider.formatter.Format(entry)
	if ferr != nil {
		b.provider.options.ErrorHandler(fmt.Errorf("format entry: %w", ferr))
		return
	}

	if perr := b.provider.push(bytes.TrimRight(data, "\n")); perr != nil {
		b.provider.options.ErrorHandler(fmt.Errorf("push to %s: %w", b.provider.options.Key, perr))
	}
}

func (b *backend) BeginScope(any) logging.Scope {
	return logging.NoopScope
}
