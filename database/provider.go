package database

import (
	"context"
	"fmt"
	"os"

	"github.com/gocrud/hello/logging"
	"gorm.io/gorm"
)

// LoggerProvider 将日志写入数据库表 log_records
type LoggerProvider struct {
	db      *gorm.DB
	options Options
}

// NewLoggerProvider 打开数据库并迁移日志表
func NewLoggerProvider(opts Options) (*LoggerProvider, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("database: invalid configuration: %w", err)
	}
	if opts.GormConfig == nil {
		opts.GormConfig = &gorm.Config{}
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = func(err error) {
			fmt.Fprintf(os.Stderr, "database logger: %v\n", err)
		}
	}

	db, err := gorm.Open(opts.Dialector, opts.GormConfig)
	if err != nil {
		return nil, fmt.Errorf("database: failed to open %s: %w", opts.Dialector.Name(), err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.MaxLifetime)

	if err := db.AutoMigrate(&LogRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database: auto migrate failed: %w", err)
	}

	return &LoggerProvider{db: db, options: opts}, nil
}

// DB 返回底层 gorm 实例
func (p *LoggerProvider) DB() *gorm.DB {
	return p.db
}

// CreateLogger 创建指定类别的后端
func (p *LoggerProvider) CreateLogger(category string) logging.Backend {
	return &backend{provider: p, category: category}
}

// Close 关闭数据库连接
func (p *LoggerProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("database: failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func (p *LoggerProvider) insert(record *LogRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.options.WriteTimeout)
	defer cancel()
	return p.db.WithContext(ctx).Create(record).Error
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

	record := newRecord(logging.NewEntry(b.category, level, eventID, state, err, formatter))
	if ierr := b.provider.insert(&record); ierr != nil {
		b.provider.options.ErrorHandler(fmt.Errorf("insert log record: %w", ierr))
	}
}

func (b *backend) BeginScope(any) logging.Scope {
	return logging.NoopScope
}
