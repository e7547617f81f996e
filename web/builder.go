package web

import (
	"github.com/gin-gonic/gin"
	"github.com/gocrud/hello/logging"
)

// RouteMapper 注册路由，logger 为请求处理使用的日志记录器
type RouteMapper func(router gin.IRouter, logger logging.Logger)

// Builder Web 主机构建器（基于 Gin）
type Builder struct {
	port          int
	engine        *gin.Engine
	middleware    []gin.HandlerFunc
	routes        []RouteMapper
	routeCategory string
	hostCategory  string
}

// NewBuilder 创建 Web 构建器
func NewBuilder() *Builder {
	// 设置 Gin 为发布模式（默认）
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	// 默认中间件：恢复 panic、请求 ID
	engine.Use(gin.Recovery(), RequestID())

	return &Builder{
		port:          8080,
		engine:        engine,
		routeCategory: "Program",
		hostCategory:  "web.Host",
	}
}

// UsePort 设置端口，0 表示由系统分配
func (b *Builder) UsePort(port int) *Builder {
	b.port = port
	return b
}

// Use 添加全局中间件，在 Build 时按顺序注册到路由之前
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	b.middleware = append(b.middleware, middleware...)
	return b
}

// MapRoutes 添加路由注册函数
func (b *Builder) MapRoutes(mappers ...RouteMapper) *Builder {
	b.routes = append(b.routes, mappers...)
	return b
}

// UseCategory 设置请求处理使用的日志类别
func (b *Builder) UseCategory(category string) *Builder {
	b.routeCategory = category
	return b
}

// Port 返回配置的端口
func (b *Builder) Port() int {
	return b.port
}

// Engine 获取 Gin 引擎（用于高级定制）
func (b *Builder) Engine() *gin.Engine {
	return b.engine
}

// Build 构建 Web 主机
// factory 为空时使用空日志记录器
func (b *Builder) Build(factory logging.LoggerFactory) *Host {
	routeLogger, hostLogger := logging.NewNopLogger(), logging.NewNopLogger()
	if factory != nil {
		routeLogger = factory.CreateLogger(b.routeCategory)
		hostLogger = factory.CreateLogger(b.hostCategory)
	}

	b.engine.Use(b.middleware...)
	b.engine.Use(RequestScope(routeLogger))
	for _, mapRoutes := range b.routes {
		mapRoutes(b.engine, routeLogger)
	}

	return newHost(b.port, b.engine, hostLogger)
}
