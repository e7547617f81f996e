package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/hello/logging"
)

// Host Web 主机
type Host struct {
	port    int
	engine  *gin.Engine
	server  *http.Server
	logger  logging.Logger
	started chan struct{}

	mu      sync.RWMutex
	address string
}

func newHost(port int, engine *gin.Engine, logger logging.Logger) *Host {
	return &Host{
		port:    port,
		engine:  engine,
		logger:  logger,
		started: make(chan struct{}),
		server:  &http.Server{Handler: engine},
	}
}

// Handler 返回处理请求的 Gin 引擎
func (h *Host) Handler() http.Handler {
	return h.engine
}

// Address 获取监听地址 (e.g., "[::]:50234")
// 仅在 Start 后有效
func (h *Host) Address() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.address
}

// Started 返回一个通道，端口监听成功后关闭
func (h *Host) Started() <-chan struct{} {
	return h.started
}

// Start 启动 Web 主机
// 注意：此方法会阻塞，直到服务退出。框架会在独立的 Goroutine 中调用它。
func (h *Host) Start(ctx context.Context) error {
	// 监听端口 (同步，确保端口可用)
	addr := fmt.Sprintf(":%d", h.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", addr, err)
	}

	h.mu.Lock()
	h.address = ln.Addr().String()
	h.mu.Unlock()
	close(h.started)

	h.logger.Info("Web host started", logging.Field{Key: "address", Value: h.Address()})

	// Serve 会一直阻塞直到 Shutdown 被调用或发生错误
	if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Error("Web host error", logging.Field{Key: "error", Value: err.Error()})
		return err
	}
	return nil
}

// Stop 停止 Web 主机，等待正在处理的请求完成
func (h *Host) Stop(ctx context.Context) error {
	h.logger.Info("Stopping web host")

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully",
			logging.Field{Key: "error", Value: err.Error()})
		return err
	}

	h.logger.Info("Web host stopped")
	return nil
}
