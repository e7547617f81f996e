package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// FileLoggerOptions 文件日志选项
type FileLoggerOptions struct {
	Path string
	// Formatter 为空时每行即 formatter(state, err) 的结果；否则用于包装（文本或 JSON）
	Formatter Formatter
	// Filter 级别过滤谓词，为空时所有级别都启用
	Filter func(level LogLevel) bool
	// Gate 写入前对 state 的校验，返回 false 时静默丢弃
	Gate func(state any) bool
	// ErrorHandler 处理写入失败，默认输出到 stderr；日志失败不会影响调用方
	ErrorHandler func(error)
	// Locks 路径锁注册表，为空时提供者使用私有注册表
	Locks *FileLockRegistry
	// MaxSize 轮转阈值（字节），0 表示每次轮转都执行
	MaxSize int64
	// MaxBackups 保留的备份数量，0 表示轮转时直接截断
	MaxBackups int
}

// FileLoggerProvider 文件日志提供者
// 不持有打开的文件句柄：每次写入都以追加模式打开、写入、关闭
type FileLoggerProvider struct {
	options FileLoggerOptions
	path    string
	lock    *sync.Mutex
}

// NewFileLoggerProvider 创建文件日志提供者，任何路径都能构造成功
func NewFileLoggerProvider(options FileLoggerOptions) *FileLoggerProvider {
	if options.Locks == nil {
		options.Locks = NewFileLockRegistry()
	}
	if options.ErrorHandler == nil {
		options.ErrorHandler = func(err error) {
			fmt.Fprintf(os.Stderr, "file logger: %v\n", err)
		}
	}

	path := ResolvePath(options.Path)
	return &FileLoggerProvider{
		options: options,
		path:    path,
		lock:    options.Locks.For(path),
	}
}

// Path 返回解析后的日志文件路径
func (p *FileLoggerProvider) Path() string {
	return p.path
}

func (p *FileLoggerProvider) CreateLogger(category string) Backend {
	return &fileLogger{
		provider: p,
		category: category,
	}
}

// Close 文件每次写入后即关闭，无需释放
func (p *FileLoggerProvider) Close() error {
	return nil
}

// Rotate 轮转日志文件：path -> path.1 -> ... -> path.MaxBackups
// 与写入共用同一把路径锁，文件不存在时不做任何事
func (p *FileLoggerProvider) Rotate() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	info, err := os.Stat(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("file logger: stat %s: %w", p.path, err)
	}
	if p.options.MaxSize > 0 && info.Size() < p.options.MaxSize {
		return nil
	}

	if p.options.MaxBackups <= 0 {
		if err := os.Truncate(p.path, 0); err != nil {
			return fmt.Errorf("file logger: truncate %s: %w", p.path, err)
		}
		return nil
	}

	oldest := backupName(p.path, p.options.MaxBackups)
	if err := os.Remove(oldest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file logger: remove %s: %w", oldest, err)
	}

	for i := p.options.MaxBackups - 1; i >= 1; i-- {
		from := backupName(p.path, i)
		if err := os.Rename(from, backupName(p.path, i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file logger: rename %s: %w", from, err)
		}
	}

	if err := os.Rename(p.path, backupName(p.path, 1)); err != nil {
		return fmt.Errorf("file logger: rename %s: %w", p.path, err)
	}
	return nil
}

// append 在路径锁内渲染并追加一行
func (p *FileLoggerProvider) append(render func() ([]byte, error)) {
	p.lock.Lock()
	defer p.lock.Unlock()

	data, err := render()
	if err != nil {
		p.options.ErrorHandler(fmt.Errorf("format: %w", err))
		return
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	if err := appendFile(p.path, data); err != nil {
		p.options.ErrorHandler(fmt.Errorf("append %s: %w", p.path, err))
	}
}

func appendFile(path string, data []byte) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = file.Write(data)
	return err
}

func backupName(path string, index int) string {
	return fmt.Sprintf("%s.%d", path, index)
}

// fileLogger 文件日志实现，仅引用提供者的路径和锁
type fileLogger struct {
	provider *FileLoggerProvider
	category string
}

func (l *fileLogger) IsEnabled(level LogLevel) bool {
	if filter := l.provider.options.Filter; filter != nil {
		return filter(level)
	}
	return true
}

func (l *fileLogger) Log(level LogLevel, eventID EventID, state any, err error, formatter MessageFormatter) {
	if gate := l.provider.options.Gate; gate != nil && !gate(state) {
		return
	}
	if formatter == nil {
		formatter = FormatMessage
	}

	l.provider.append(func() ([]byte, error) {
		msg := formatter(state, err)
		framing := l.provider.options.Formatter
		if framing == nil {
			return []byte(msg), nil
		}

		entry := NewEntry(l.category, level, eventID, state, err, func(any, error) string { return msg })
		return framing.Format(entry)
	})
}

func (l *fileLogger) BeginScope(state any) Scope {
	return NoopScope
}
