package core

import (
	"github.com/gocrud/hello/config"
	"github.com/gocrud/hello/logging"
)

// Option 定义了修改 Runtime 状态的函数签名
// 这是框架唯一的扩展点
type Option func(rt *Runtime) error

// WithConfiguration 配置配置源
func WithConfiguration(configure func(builder *config.ConfigurationBuilder)) Option {
	return func(rt *Runtime) error {
		configure(rt.Config)
		return nil
	}
}

// WithLogging 配置日志提供者
func WithLogging(configure func(builder *logging.LoggingBuilder)) Option {
	return func(rt *Runtime) error {
		configure(rt.Logging)
		return nil
	}
}

// WithErrorHandler 替换运行时错误处理函数
func WithErrorHandler(handler func(err error)) Option {
	return func(rt *Runtime) error {
		rt.ErrorHandler = handler
		return nil
	}
}
