package mongodb

import (
	"fmt"
	"time"

	"github.com/gocrud/hello/logging"
)

// Options MongoDB 日志后端配置选项
type Options struct {
	Uri          string
	Username     string
	Password     string
	Database     string
	Collection   string
	MaxPoolSize  uint64
	MinimumLevel logging.LogLevel
	// ServerSelectionTimeout 选择服务器的超时时间
	ServerSelectionTimeout time.Duration
	// WriteTimeout 单次写入的超时时间
	WriteTimeout time.Duration
	ErrorHandler func(error)
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(uri string) *Options {
	return &Options{
		Uri:                    uri,
		Database:               "hello",
		Collection:             "logs",
		MaxPoolSize:            20,
		MinimumLevel:           logging.LogLevelInfo,
		ServerSelectionTimeout: 5 * time.Second,
		WriteTimeout:           3 * time.Second,
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Uri == "" {
		return fmt.Errorf("mongo uri is required")
	}
	if o.Database == "" {
		return fmt.Errorf("mongo database is required")
	}
	if o.Collection == "" {
		return fmt.Errorf("mongo collection is required")
	}
	if o.WriteTimeout <= 0 {
		return fmt.Errorf("mongo write timeout must be positive")
	}
	return nil
}
