package database

import (
	"fmt"
	"time"

	"github.com/gocrud/hello/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options 数据库日志后端配置选项
type Options struct {
	Dialector    gorm.Dialector
	GormConfig   *gorm.Config
	MaxIdleConns int
	MaxOpenConns int
	MaxLifetime  time.Duration
	MinimumLevel logging.LogLevel
	WriteTimeout time.Duration
	ErrorHandler func(error)
}

// NewDefaultOptions 创建默认配置
// gorm 自身的日志保持静默，避免日志写入再次产生日志
func NewDefaultOptions(dialector gorm.Dialector) *Options {
	return &Options{
		Dialector: dialector,
		GormConfig: &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		},
		MaxIdleConns: 2,
		MaxOpenConns: 10,
		MaxLifetime:  time.Hour,
		MinimumLevel: logging.LogLevelInfo,
		WriteTimeout: 3 * time.Second,
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Dialector == nil {
		return fmt.Errorf("database dialector is required")
	}
	if o.WriteTimeout <= 0 {
		return fmt.Errorf("database write timeout must be positive")
	}
	return nil
}
