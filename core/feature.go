package core

import (
	"reflect"
	"sync"
)

// FeatureCollection 是一个类型安全的特性集合
// 用于存放 web.Builder、cron.Scheduler 等构建时特性
type FeatureCollection struct {
	features sync.Map
}

// Set 注册一个特性
func (fc *FeatureCollection) Set(feature any) {
	typ := reflect.TypeOf(feature)
	fc.features.Store(typ, feature)
}

// Get 获取一个特性
func (fc *FeatureCollection) Get(typ reflect.Type) (any, bool) {
	return fc.features.Load(typ)
}

// GetFeature 按类型从 Runtime 取出特性，未注册时返回零值
// T 可以是接口类型
func GetFeature[T any](rt *Runtime) T {
	if val, ok := rt.Features.Get(reflect.TypeOf((*T)(nil)).Elem()); ok {
		return val.(T)
	}
	var zero T
	return zero
}
