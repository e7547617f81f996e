package logging

import (
	"path/filepath"
	"sync"
)

// FileLockRegistry 按文件绝对路径分配互斥锁
// 同一个注册表中指向同一文件的所有文件日志后端共享一把锁，写入全序
type FileLockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileLockRegistry 创建锁注册表
func NewFileLockRegistry() *FileLockRegistry {
	return &FileLockRegistry{
		locks: make(map[string]*sync.Mutex),
	}
}

// For 返回路径对应的锁，不存在时创建
func (r *FileLockRegistry) For(path string) *sync.Mutex {
	key := ResolvePath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

// Len 返回已分配的锁数量
func (r *FileLockRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

// ResolvePath 将路径规范化为绝对路径，失败时退回 Clean 结果
func ResolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
