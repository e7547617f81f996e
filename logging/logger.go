package logging

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String 返回日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 从配置字符串解析日志级别，无法识别时返回 Info
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LogLevelTrace
	case "DEBUG":
		return LogLevelDebug
	case "INFO", "INFORMATION":
		return LogLevelInfo
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	case "FATAL", "CRITICAL":
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

// Field 日志字段
type Field struct {
	Key   string
	Value any
}

// EventID 日志事件标识
type EventID struct {
	ID   int
	Name string
}

// MessageFormatter 将日志状态和错误渲染为一行文本
type MessageFormatter func(state any, err error) string

// Message 便捷方法（Info、Error 等）使用的日志状态
type Message struct {
	Text   string
	Fields []Field
}

// FormatMessage 默认的 MessageFormatter
// Message 渲染为 "text {k=v, ...}"，其他状态使用 %v
func FormatMessage(state any, err error) string {
	msg, ok := state.(Message)
	if !ok {
		if state == nil {
			return ""
		}
		return fmt.Sprintf("%v", state)
	}
	if len(msg.Fields) == 0 {
		return msg.Text
	}

	var sb strings.Builder
	sb.WriteString(msg.Text)
	sb.WriteString(" {")
	for i, field := range msg.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", field.Key, field.Value)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Logger 日志接口（类似于 .NET Core ILogger）
type Logger interface {
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	Log(level LogLevel, msg string, fields ...Field)
	// LogEvent 以原始形式写入：状态与错误由 formatter 渲染
	// WithFields 的字段只合并进 Message 状态，其他状态原样交给后端
	LogEvent(level LogLevel, eventID EventID, state any, err error, formatter MessageFormatter)
	IsEnabled(level LogLevel) bool
	BeginScope(state any) Scope
	WithFields(fields ...Field) Logger
	WithCategory(category string) Logger
}

// Backend 日志后端的能力集合，由 LoggerProvider 按类别创建
type Backend interface {
	// IsEnabled 判断该级别是否需要写入
	IsEnabled(level LogLevel) bool
	// Log 写入一条日志，formatter 负责把 state 和 err 渲染为文本
	Log(level LogLevel, eventID EventID, state any, err error, formatter MessageFormatter)
	// BeginScope 开始一个日志作用域
	BeginScope(state any) Scope
}

// LoggerProvider 日志提供者接口（类似于 .NET Core ILoggerProvider）
type LoggerProvider interface {
	CreateLogger(category string) Backend
	Close() error
}

// LoggerFactory 日志工厂接口
type LoggerFactory interface {
	CreateLogger(category string) Logger
	AddProvider(provider LoggerProvider)
	SetMinimumLevel(level LogLevel)
	// Close 释放所有提供者
	Close() error
}

// loggerFactory 日志工厂实现
type loggerFactory struct {
	providers    []LoggerProvider
	minimumLevel LogLevel
	closed       bool
	mu           sync.RWMutex
}

// NewLoggerFactory 创建空的日志工厂
func NewLoggerFactory(minimumLevel LogLevel, providers ...LoggerProvider) LoggerFactory {
	f := &loggerFactory{
		providers:    make([]LoggerProvider, 0, len(providers)),
		minimumLevel: minimumLevel,
	}
	f.providers = append(f.providers, providers...)
	return f
}

func (f *loggerFactory) CreateLogger(category string) Logger {
	f.mu.RLock()
	defer f.mu.RUnlock()

	backends := make([]Backend, 0, len(f.providers))
	for _, provider := range f.providers {
		backends = append(backends, provider.CreateLogger(category))
	}

	return &compositeLogger{
		factory:      f,
		backends:     backends,
		minimumLevel: f.minimumLevel,
		category:     category,
	}
}

func (f *loggerFactory) AddProvider(provider LoggerProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers = append(f.providers, provider)
}

func (f *loggerFactory) SetMinimumLevel(level LogLevel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minimumLevel = level
}

func (f *loggerFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	// 倒序释放，与注册顺序相反
	for i := len(f.providers) - 1; i >= 0; i-- {
		if err := f.providers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// compositeLogger 组合日志记录器（将日志发送到多个后端）
type compositeLogger struct {
	factory      *loggerFactory
	backends     []Backend
	minimumLevel LogLevel
	category     string
	fields       []Field
}

// NewCompositeLogger 创建组合日志记录器（用于外部包构建）
func NewCompositeLogger(backends []Backend, minimumLevel LogLevel, category string) Logger {
	return &compositeLogger{
		backends:     backends,
		minimumLevel: minimumLevel,
		category:     category,
		fields:       make([]Field, 0),
	}
}

func (l *compositeLogger) Trace(msg string, fields ...Field) {
	l.Log(LogLevelTrace, msg, fields...)
}

func (l *compositeLogger) Debug(msg string, fields ...Field) {
	l.Log(LogLevelDebug, msg, fields...)
}

func (l *compositeLogger) Info(msg string, fields ...Field) {
	l.Log(LogLevelInfo, msg, fields...)
}

func (l *compositeLogger) Warn(msg string, fields ...Field) {
	l.Log(LogLevelWarn, msg, fields...)
}

func (l *compositeLogger) Error(msg string, fields ...Field) {
	l.Log(LogLevelError, msg, fields...)
}

// exit 进程退出函数，测试中替换
var exit = os.Exit

func (l *compositeLogger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	// 退出前关闭工厂，异步写入器需要排空队列
	if l.factory != nil {
		_ = l.factory.Close()
	}
	exit(1)
}

func (l *compositeLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.minimumLevel {
		return
	}

	l.LogEvent(level, EventID{}, Message{Text: msg, Fields: fields}, nil, FormatMessage)
}

func (l *compositeLogger) LogEvent(level LogLevel, eventID EventID, state any, err error, formatter MessageFormatter) {
	if level < l.minimumLevel {
		return
	}
	if formatter == nil {
		formatter = FormatMessage
	}
	if msg, ok := state.(Message); ok && len(l.fields) > 0 {
		// 合并字段（复制，避免共享底层数组）
		merged := make([]Field, 0, len(l.fields)+len(msg.Fields))
		merged = append(merged, l.fields...)
		merged = append(merged, msg.Fields...)
		msg.Fields = merged
		state = msg
	}

	for _, backend := range l.backends {
		if backend.IsEnabled(level) {
			backend.Log(level, eventID, state, err, formatter)
		}
	}
}

func (l *compositeLogger) IsEnabled(level LogLevel) bool {
	if level < l.minimumLevel {
		return false
	}
	for _, backend := range l.backends {
		if backend.IsEnabled(level) {
			return true
		}
	}
	return false
}

func (l *compositeLogger) BeginScope(state any) Scope {
	scopes := make([]Scope, 0, len(l.backends))
	for _, backend := range l.backends {
		scopes = append(scopes, backend.BeginScope(state))
	}
	return &compositeScope{scopes: scopes}
}

func (l *compositeLogger) WithFields(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &compositeLogger{
		factory:      l.factory,
		backends:     l.backends,
		minimumLevel: l.minimumLevel,
		category:     l.category,
		fields:       merged,
	}
}

func (l *compositeLogger) WithCategory(category string) Logger {
	// 后端按类别创建，切换类别时需要重新向工厂申请
	if l.factory == nil {
		return &compositeLogger{
			backends:     l.backends,
			minimumLevel: l.minimumLevel,
			category:     category,
			fields:       l.fields,
		}
	}

	next := l.factory.CreateLogger(category).(*compositeLogger)
	next.fields = l.fields
	return next
}
