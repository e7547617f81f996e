package logging

import (
	"time"
)

// Formatter 日志格式化接口
type Formatter interface {
	// Format 格式化日志条目
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry 日志条目
type LogEntry struct {
	Time     time.Time
	Level    LogLevel
	Category string
	EventID  EventID
	Message  string
	Fields   []Field
	Err      error
}

// NewEntry 渲染一次日志调用，供各后端复用
// Message 为 formatter(state, err) 的结果；当 state 为 Message 时附带其字段
func NewEntry(category string, level LogLevel, eventID EventID, state any, err error, formatter MessageFormatter) *LogEntry {
	if formatter == nil {
		formatter = FormatMessage
	}

	entry := &LogEntry{
		Time:     time.Now(),
		Level:    level,
		Category: category,
		EventID:  eventID,
		Message:  formatter(state, err),
		Err:      err,
	}
	if msg, ok := state.(Message); ok {
		entry.Fields = msg.Fields
	}
	return entry
}
