package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// StructuredLoggerOptions 结构化（JSON）日志选项
type StructuredLoggerOptions struct {
	Output       io.Writer
	MinimumLevel LogLevel
}

// StructuredLoggerProvider 基于 zerolog 的结构化日志提供者，每条日志输出一个 JSON 对象
type StructuredLoggerProvider struct {
	options StructuredLoggerOptions
	base    zerolog.Logger
}

// NewStructuredLoggerProvider 创建结构化日志提供者
func NewStructuredLoggerProvider(options StructuredLoggerOptions) *StructuredLoggerProvider {
	if options.Output == nil {
		options.Output = os.Stderr
	}

	base := zerolog.New(zerolog.SyncWriter(options.Output)).With().Timestamp().Logger()
	return &StructuredLoggerProvider{
		options: options,
		base:    base,
	}
}

func (p *StructuredLoggerProvider) CreateLogger(category string) Backend {
	return &structuredLogger{
		log:          p.base.With().Str("category", category).Logger(),
		minimumLevel: p.options.MinimumLevel,
	}
}

func (p *StructuredLoggerProvider) Close() error {
	return nil
}

type structuredLogger struct {
	log          zerolog.Logger
	minimumLevel LogLevel
}

func (l *structuredLogger) IsEnabled(level LogLevel) bool {
	return level >= l.minimumLevel
}

func (l *structuredLogger) Log(level LogLevel, eventID EventID, state any, err error, formatter MessageFormatter) {
	if !l.IsEnabled(level) {
		return
	}
	if formatter == nil {
		formatter = FormatMessage
	}

	// WithLevel 不会像 Fatal() 那样退出进程
	event := l.log.WithLevel(zerologLevel(level))
	if eventID.ID != 0 || eventID.Name != "" {
		event = event.Int("event_id", eventID.ID).Str("event", eventID.Name)
	}
	if msg, ok := state.(Message); ok {
		for _, field := range msg.Fields {
			event = event.Interface(field.Key, field.Value)
		}
	}
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(formatter(state, err))
}

func (l *structuredLogger) BeginScope(state any) Scope {
	return NoopScope
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelTrace:
		return zerolog.TraceLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}
