package core

import (
	"fmt"
	"os"
	"sync"

	"github.com/gocrud/hello/config"
	"github.com/gocrud/hello/logging"
)

// Runtime 是框架的状态容器，所有 Option 都通过它协作
type Runtime struct {
	// Features 存放构建时特性 (web.Builder、cron.Scheduler 等)
	Features FeatureCollection

	// Lifecycle 生命周期管理
	Lifecycle *LifecycleEvents

	// Config 配置构建器，首次调用 Configuration 时构建
	Config *config.ConfigurationBuilder

	// Logging 日志构建器，首次调用 LoggerFactory 时构建
	Logging *logging.LoggingBuilder

	// ErrorHandler 用于记录运行时产生的严重错误
	// 外部可以通过设置此字段来接管错误日志
	ErrorHandler func(err error)

	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	errMu sync.Mutex
	err   error

	configOnce    sync.Once
	configuration config.Configuration
	configErr     error

	factoryOnce sync.Once
	factory     logging.LoggerFactory
}

// NewRuntime 创建一个新的运行时实例
func NewRuntime() *Runtime {
	return &Runtime{
		Lifecycle:  NewLifecycle(),
		Config:     config.NewConfigurationBuilder(),
		Logging:    logging.NewLoggingBuilder(),
		shutdownCh: make(chan struct{}),
		ErrorHandler: func(err error) {
			fmt.Fprintf(os.Stderr, "[Runtime Error] %v\n", err)
		},
	}
}

// Apply 应用多个 Option
func (rt *Runtime) Apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(rt); err != nil {
			return err
		}
	}
	return nil
}

// Configuration 返回构建后的配置，只构建一次
func (rt *Runtime) Configuration() (config.Configuration, error) {
	rt.configOnce.Do(func() {
		rt.configuration, rt.configErr = rt.Config.Build()
	})
	return rt.configuration, rt.configErr
}

// LoggerFactory 返回日志工厂，只构建一次
// 构建之后再向 Logging 添加的提供者不会生效
func (rt *Runtime) LoggerFactory() logging.LoggerFactory {
	rt.factoryOnce.Do(func() {
		rt.factory = rt.Logging.Build()
	})
	return rt.factory
}

// Logger 创建指定类别的日志记录器
func (rt *Runtime) Logger(category string) logging.Logger {
	return rt.LoggerFactory().CreateLogger(category)
}

// Close 释放日志工厂持有的提供者，未构建时不做任何事
func (rt *Runtime) Close() error {
	// 关闭后不再允许构建工厂
	rt.factoryOnce.Do(func() {})
	if rt.factory == nil {
		return nil
	}
	return rt.factory.Close()
}

// Shutdown 请求应用退出，可重复调用
func (rt *Runtime) Shutdown() {
	rt.shutdownOnce.Do(func() {
		close(rt.shutdownCh)
	})
}

// Done 返回一个通道，当应用需要退出时该通道会关闭
func (rt *Runtime) Done() <-chan struct{} {
	return rt.shutdownCh
}

// Err 返回导致运行时退出的第一个错误
func (rt *Runtime) Err() error {
	rt.errMu.Lock()
	defer rt.errMu.Unlock()
	return rt.err
}

// Fail 记录错误并请求退出
func (rt *Runtime) Fail(err error) {
	rt.errMu.Lock()
	if rt.err == nil {
		rt.err = err
	}
	rt.errMu.Unlock()

	if rt.ErrorHandler != nil {
		rt.ErrorHandler(err)
	}
	rt.Shutdown()
}
