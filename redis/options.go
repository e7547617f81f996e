package redis

import (
	"fmt"
	"time"

	"github.com/gocrud/hello/logging"
)

// Options Redis 日志后端配置选项
type Options struct {
	Addr         string           // Redis 服务器地址 (host:port)
	Password     string           // 密码（可选）
	DB           int              // 数据库编号
	Key          string           // 日志列表的键
	MaxEntries   int64            // 列表保留的最大条数，0 表示不裁剪
	MinimumLevel logging.LogLevel // 最低日志级别
	DialTimeout  time.Duration    // 连接超时时间
	WriteTimeout time.Duration    // 单次写入的超时时间
	PoolSize     int              // 连接池大小
	MaxRetries   int              // 最大重试次数，-1 表示不重试
	ErrorHandler func(error)      // 处理写入失败，默认输出到 stderr
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions() *Options {
	return &Options{
		Addr:         "localhost:6379",
		Key:          "hello:logs",
		MinimumLevel: logging.LogLevelInfo,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Addr == "" {
		return fmt.Errorf("redis address is required")
	}
	if o.Key == "" {
		return fmt.Errorf("redis key is required")
	}
	if o.DB < 0 {
		return fmt.Errorf("redis database number must be non-negative")
	}
	if o.MaxEntries < 0 {
		return fmt.Errorf("redis max entries must be non-negative")
	}
	if o.DialTimeout <= 0 {
		return fmt.Errorf("redis dial timeout must be positive")
	}
	if o.WriteTimeout <= 0 {
		return fmt.Errorf("redis write timeout must be positive")
	}
	return nil
}
