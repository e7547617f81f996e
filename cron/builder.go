package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gocrud/hello/logging"
)

// JobFunc 定时任务函数，返回的错误会被记录
type JobFunc func(ctx context.Context) error

// jobDefinition 任务定义
type jobDefinition struct {
	spec    string
	name    string
	handler JobFunc
}

// Builder Cron 配置构建器
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	location         string
	jobs             []jobDefinition
}

// NewBuilder 创建 Cron 构建器
func NewBuilder() *Builder {
	return &Builder{
		location: "UTC",
		jobs:     make([]jobDefinition, 0),
	}
}

// WithSeconds 启用秒级精度
func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

// WithLocation 设置时区
func (b *Builder) WithLocation(location string) *Builder {
	b.location = location
	return b
}

// EnableCronLogger 启用 cron 库的内部调度日志
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob 添加任务
func (b *Builder) AddJob(spec, name string, handler JobFunc) *Builder {
	b.jobs = append(b.jobs, jobDefinition{
		spec:    spec,
		name:    name,
		handler: handler,
	})
	return b
}

// Jobs 返回已添加的任务名称
func (b *Builder) Jobs() []string {
	names := make([]string, 0, len(b.jobs))
	for _, job := range b.jobs {
		names = append(names, job.name)
	}
	return names
}

// Build 构建 Cron 托管服务，任务表达式在此时校验
func (b *Builder) Build(logger logging.Logger) (*Service, error) {
	location, err := time.LoadLocation(b.location)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid location %q: %w", b.location, err)
	}

	svc := newService(options{
		Location:         location,
		EnableSeconds:    b.enableSeconds,
		EnableCronLogger: b.enableCronLogger,
		Logger:           logger,
	})

	for _, job := range b.jobs {
		if err := svc.AddJob(job.spec, job.name, job.handler); err != nil {
			return nil, err
		}
	}
	return svc, nil
}
