package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/hello/logging"
)

// RequestEvent 请求日志事件
var RequestEvent = logging.EventID{ID: 1, Name: "Request"}

// RequestInfo 请求日志的状态
type RequestInfo struct {
	Path string
	Time time.Time
}

// FormatRequest 将 RequestInfo 渲染为 "Path: /foo  Time:12:34:56"
func FormatRequest(state any, _ error) string {
	info, ok := state.(RequestInfo)
	if !ok {
		return fmt.Sprint(state)
	}
	return fmt.Sprintf("Path: %s  Time:%s", info.Path, info.Time.Format("15:04:05"))
}

// IsRequestInfo 判断状态是否为请求日志
func IsRequestInfo(state any) bool {
	_, ok := state.(RequestInfo)
	return ok
}

// MountHello 注册全匹配路由，任何方法、任何路径都返回 Hello World!
// Any 只覆盖标准方法，挂在引擎上时其余方法由 NoRoute 兜底
func MountHello(router gin.IRouter, logger logging.Logger) {
	hello := func(c *gin.Context) {
		logger.LogEvent(logging.LogLevelInfo, RequestEvent, RequestInfo{
			Path: c.Request.URL.Path,
			Time: time.Now(),
		}, nil, FormatRequest)

		c.String(http.StatusOK, "Hello World!")
	}

	router.Any("/*path", hello)
	if engine, ok := router.(*gin.Engine); ok {
		engine.NoRoute(hello)
	}
}
