package database

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gocrud/hello/logging"
)

// LogRecord 持久化的日志记录
type LogRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Time      time.Time `gorm:"index"`
	Level     string    `gorm:"size:16;index"`
	Category  string    `gorm:"size:255"`
	EventID   int
	EventName string `gorm:"size:255"`
	Message   string
	Fields    string
	Error     string
}

// TableName 表名
func (LogRecord) TableName() string {
	return "log_records"
}

// newRecord 将日志条目转换为记录，字段序列化为 JSON 对象
func newRecord(entry *logging.LogEntry) LogRecord {
	record := LogRecord{
		Time:      entry.Time,
		Level:     entry.Level.String(),
		Category:  entry.Category,
		EventID:   entry.EventID.ID,
		EventName: entry.EventID.Name,
		Message:   entry.Message,
	}
	if entry.Err != nil {
		record.Error = entry.Err.Error()
	}
	if len(entry.Fields) > 0 {
		fields := make(map[string]any, len(entry.Fields))
		for _, f := range entry.Fields {
			fields[f.Key] = f.Value
		}
		if data, err := json.Marshal(fields); err == nil {
			record.Fields = string(data)
		}
	}
	return record
}
