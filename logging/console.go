package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleLoggerOptions 控制台日志选项
type ConsoleLoggerOptions struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
	Output           io.Writer
	// MinimumLevel 控制台自身的最低级别
	MinimumLevel LogLevel
	// BufferSize 大于 0 时通过 AsyncWriter 异步输出
	BufferSize int
}

// ConsoleLoggerProvider 控制台日志提供者
type ConsoleLoggerProvider struct {
	options   ConsoleLoggerOptions
	formatter Formatter
	async     *AsyncWriter
	mu        sync.Mutex
}

// NewConsoleLoggerProvider 创建控制台日志提供者
func NewConsoleLoggerProvider(options ConsoleLoggerOptions) *ConsoleLoggerProvider {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.TimestampFormat == "" {
		options.TimestampFormat = "2006-01-02 15:04:05"
	}

	formatter := &TextFormatter{
		IncludeTimestamp: options.IncludeTimestamp,
		TimestampFormat:  options.TimestampFormat,
		ColorOutput:      options.ColorOutput,
	}

	p := &ConsoleLoggerProvider{
		options:   options,
		formatter: formatter,
	}
	if options.BufferSize > 0 {
		p.async = NewAsyncWriter(options.Output, formatter, options.BufferSize)
	}
	return p
}

func (p *ConsoleLoggerProvider) CreateLogger(category string) Backend {
	return &consoleLogger{
		provider: p,
		category: category,
	}
}

// Close 刷新异步队列
func (p *ConsoleLoggerProvider) Close() error {
	if p.async != nil {
		return p.async.Close()
	}
	return nil
}

func (p *ConsoleLoggerProvider) write(entry *LogEntry) {
	if p.async != nil {
		p.async.WriteLog(entry)
		return
	}

	data, err := p.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console logger: format: %v\n", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.options.Output.Write(data)
}

// consoleLogger 控制台日志实现
type consoleLogger struct {
	provider *ConsoleLoggerProvider
	category string
}

func (l *consoleLogger) IsEnabled(level LogLevel) bool {
	return level >= l.provider.options.MinimumLevel
}

func (l *consoleLogger) Log(level LogLevel, eventID EventID, state any, err error, formatter MessageFormatter) {
	if !l.IsEnabled(level) {
		return
	}
	l.provider.write(NewEntry(l.category, level, eventID, state, err, formatter))
}

func (l *consoleLogger) BeginScope(state any) Scope {
	return NoopScope
}
