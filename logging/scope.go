package logging

import "errors"

// Scope 日志作用域句柄
// 调用方应在所有退出路径上 Close（通常配合 defer）
type Scope interface {
	Close() error
}

// NoopScope 不携带任何状态的作用域，Close 无副作用
var NoopScope Scope = noopScope{}

type noopScope struct{}

func (noopScope) Close() error { return nil }

// compositeScope 组合作用域，关闭时倒序关闭所有后端作用域
type compositeScope struct {
	scopes []Scope
	closed bool
}

func (s *compositeScope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if err := s.scopes[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
