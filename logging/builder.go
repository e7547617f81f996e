package logging

import (
	"io"
	"os"
	"sync"
)

// LoggingBuilder 日志构建器
// 构建器持有一个路径锁注册表，通过它添加的所有文件提供者按路径共享锁
type LoggingBuilder struct {
	providers    []LoggerProvider
	minimumLevel LogLevel
	fileLocks    *FileLockRegistry
	mu           sync.RWMutex
}

// NewLoggingBuilder 创建日志构建器
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{
		providers:    make([]LoggerProvider, 0),
		minimumLevel: LogLevelInfo,
		fileLocks:    NewFileLockRegistry(),
	}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimumLevel = level
	return b
}

// MinimumLevel 返回当前最小日志级别
func (b *LoggingBuilder) MinimumLevel() LogLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.minimumLevel
}

// FileLocks 返回构建器共享的路径锁注册表
func (b *LoggingBuilder) FileLocks() *FileLockRegistry {
	return b.fileLocks
}

// AddProvider 添加日志提供者
func (b *LoggingBuilder) AddProvider(provider LoggerProvider) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = append(b.providers, provider)
	return b
}

// Providers 返回已注册提供者的副本
func (b *LoggingBuilder) Providers() []LoggerProvider {
	b.mu.RLock()
	defer b.mu.RUnlock()

	providers := make([]LoggerProvider, len(b.providers))
	copy(providers, b.providers)
	return providers
}

// ClearProviders 移除所有已注册的提供者
func (b *LoggingBuilder) ClearProviders() *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = b.providers[:0]
	return b
}

// AddConsole 添加控制台日志
func (b *LoggingBuilder) AddConsole(options ...ConsoleLoggerOptions) *LoggingBuilder {
	opts := ConsoleLoggerOptions{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
		ColorOutput:      true,
		Output:           os.Stdout,
		MinimumLevel:     LogLevelTrace,
	}
	if len(options) > 0 {
		opts = options[0]
	}
	return b.AddProvider(NewConsoleLoggerProvider(opts))
}

// AddFile 添加文件日志，返回同一个构建器以便链式调用
// 多次调用会注册多个独立的提供者；指向同一文件时共享构建器的路径锁
func (b *LoggingBuilder) AddFile(path string, options ...FileLoggerOptions) *LoggingBuilder {
	opts := FileLoggerOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	opts.Path = path
	if opts.Locks == nil {
		opts.Locks = b.fileLocks
	}
	return b.AddProvider(NewFileLoggerProvider(opts))
}

// AddStructured 添加结构化 JSON 日志
func (b *LoggingBuilder) AddStructured(output io.Writer) *LoggingBuilder {
	return b.AddProvider(NewStructuredLoggerProvider(StructuredLoggerOptions{
		Output:       output,
		MinimumLevel: LogLevelTrace,
	}))
}

// Build 构建日志工厂
func (b *LoggingBuilder) Build() LoggerFactory {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return NewLoggerFactory(b.minimumLevel, b.providers...)
}
