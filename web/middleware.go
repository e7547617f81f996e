package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/hello/logging"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestScopeState 请求范围的日志作用域状态
type RequestScopeState struct {
	ID string
}

// RequestID 复用客户端传入的 X-Request-ID，否则生成新的 uuid
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID 获取当前请求的 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestScope 在处理请求期间打开日志作用域，任何退出路径都会关闭它
func RequestScope(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		scope := logger.BeginScope(RequestScopeState{ID: GetRequestID(c)})
		defer scope.Close()

		c.Next()

		if logger.IsEnabled(logging.LogLevelDebug) {
			logger.Debug("Request completed",
				logging.Field{Key: "request_id", Value: GetRequestID(c)},
				logging.Field{Key: "status", Value: c.Writer.Status()},
				logging.Field{Key: "latency", Value: time.Since(start).String()})
		}
	}
}
