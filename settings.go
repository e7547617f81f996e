package app

import (
	"os"
	"path/filepath"

	"github.com/gocrud/hello/config"
	"github.com/gocrud/hello/logging"
)

// Settings 应用配置
// 键使用单个单词，环境变量 HELLO_LOG_PATH 对应 log.path
type Settings struct {
	Port     int              `json:"port"`
	Log      LogSettings      `json:"log"`
	Redis    RedisSettings    `json:"redis"`
	Database DatabaseSettings `json:"database"`
	Mongo    MongoSettings    `json:"mongo"`
}

// LogSettings 日志配置
type LogSettings struct {
	// Path 请求日志文件，相对路径基于当前工作目录
	Path  string `json:"path"`
	Level string `json:"level"`
	// Format 为空时每行即请求消息本身，text/json 时带时间、级别等包装
	Format     string `json:"format"`
	Console    bool   `json:"console"`
	Structured bool   `json:"structured"`
	// Rotate 轮转任务的 cron 表达式，为空时不轮转
	Rotate  string `json:"rotate"`
	Backups int    `json:"backups"`
	Size    int64  `json:"size"`
}

// RedisSettings Redis 日志后端配置，Addr 为空时不启用
type RedisSettings struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Key      string `json:"key"`
	Max      int64  `json:"max"`
}

// DatabaseSettings 数据库日志后端配置，DSN 为空时不启用
type DatabaseSettings struct {
	DSN string `json:"dsn"`
}

// MongoSettings MongoDB 日志后端配置，URI 为空时不启用
type MongoSettings struct {
	URI        string `json:"uri"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

// DefaultSettings 默认配置
func DefaultSettings() Settings {
	return Settings{
		Port: 8080,
		Log: LogSettings{
			Path:    "logger.txt",
			Level:   "info",
			Console: true,
		},
	}
}

// LoadSettings 在默认配置上覆盖配置源中的值
func LoadSettings(cfg config.Configuration) (Settings, error) {
	return config.LoadInto(cfg, "", DefaultSettings())
}

// LogPath 返回日志文件的绝对路径
func (s Settings) LogPath() (string, error) {
	if filepath.IsAbs(s.Log.Path) {
		return s.Log.Path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, s.Log.Path), nil
}

// LogLevel 返回最低日志级别
func (s Settings) LogLevel() logging.LogLevel {
	return logging.ParseLevel(s.Log.Level)
}

// LogFormatter 返回文件日志的包装格式化器
func (s Settings) LogFormatter() logging.Formatter {
	switch s.Log.Format {
	case "text":
		return logging.NewTextFormatter()
	case "json":
		return logging.NewJsonFormatter()
	default:
		return nil
	}
}
