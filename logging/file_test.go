package logging

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func textFormatter(state any, _ error) string {
	return fmt.Sprint(state)
}

func TestFileLogger_CreatesFileOnDemand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	_, err := os.Stat(path)
	require.True(t, errors.Is(err, os.ErrNotExist))

	provider := NewFileLoggerProvider(FileLoggerOptions{Path: path})
	backend := provider.CreateLogger("Program")
	backend.Log(LogLevelInfo, EventID{}, "first", nil, textFormatter)

	assert.Equal(t, []string{"first"}, readLines(t, path))
}

func TestFileLogger_AppendsFormatterOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	backend := NewFileLoggerProvider(FileLoggerOptions{Path: path}).CreateLogger("Program")
	backend.Log(LogLevelInfo, EventID{ID: 7}, 42, errors.New("boom"), func(state any, err error) string {
		return fmt.Sprintf("state=%v err=%v", state, err)
	})

	assert.Equal(t, []string{"existing", "state=42 err=boom"}, readLines(t, path))
}

func TestFileLogger_ConcurrentWritesAreWholeLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	backend := NewFileLoggerProvider(FileLoggerOptions{Path: path}).CreateLogger("Program")

	const workers, perWorker = 16, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				backend.Log(LogLevelInfo, EventID{}, fmt.Sprintf("worker-%02d message-%03d %s", worker, i, strings.Repeat("x", 256)), nil, textFormatter)
			}
		}(w)
	}
	wg.Wait()

	lines := readLines(t, path)
	require.Len(t, lines, workers*perWorker)

	pattern := regexp.MustCompile(`^worker-\d{2} message-\d{3} x{256}$`)
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		assert.Regexp(t, pattern, line)
		seen[line[:len("worker-00 message-000")]] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestFileLogger_PerWorkerOrderFollowsLockAcquisition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	backend := NewFileLoggerProvider(FileLoggerOptions{Path: path}).CreateLogger("Program")

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				backend.Log(LogLevelInfo, EventID{}, fmt.Sprintf("%d %d", worker, i), nil, textFormatter)
			}
		}(w)
	}
	wg.Wait()

	// 同一协程的写入是顺序获取锁的，因此在文件中保持相对顺序
	last := map[int]int{0: -1, 1: -1, 2: -1, 3: -1}
	for _, line := range readLines(t, path) {
		var worker, seq int
		_, err := fmt.Sscanf(line, "%d %d", &worker, &seq)
		require.NoError(t, err)
		assert.Greater(t, seq, last[worker])
		last[worker] = seq
	}
}

func TestFileLogger_GateRejectsSilently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	var reported []error

	provider := NewFileLoggerProvider(FileLoggerOptions{
		Path:         path,
		Gate:         func(state any) bool { return state != "drop" },
		ErrorHandler: func(err error) { reported = append(reported, err) },
	})
	backend := provider.CreateLogger("Program")

	called := false
	backend.Log(LogLevelInfo, EventID{}, "drop", nil, func(state any, err error) string {
		called = true
		return "never"
	})

	assert.False(t, called, "formatter must not run for rejected state")
	assert.Empty(t, reported)
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	backend.Log(LogLevelInfo, EventID{}, "keep", nil, textFormatter)
	assert.Equal(t, []string{"keep"}, readLines(t, path))
}

func TestFileLogger_IsEnabled(t *testing.T) {
	backend := NewFileLoggerProvider(FileLoggerOptions{Path: filepath.Join(t.TempDir(), "a.txt")}).CreateLogger("c")
	for _, level := range []LogLevel{LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal} {
		for i := 0; i < 3; i++ {
			assert.True(t, backend.IsEnabled(level))
		}
	}

	filtered := NewFileLoggerProvider(FileLoggerOptions{
		Path:   filepath.Join(t.TempDir(), "b.txt"),
		Filter: func(level LogLevel) bool { return level >= LogLevelWarn },
	}).CreateLogger("c")
	assert.False(t, filtered.IsEnabled(LogLevelInfo))
	assert.True(t, filtered.IsEnabled(LogLevelError))
}

func TestFileLogger_ScopeIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	backend := NewFileLoggerProvider(FileLoggerOptions{Path: path}).CreateLogger("Program")

	scope := backend.BeginScope(map[string]string{"request": "abc"})
	require.NotNil(t, scope)
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoError(t, scope.Close())
	assert.NoError(t, scope.Close())

	backend.Log(LogLevelInfo, EventID{}, "after scope", nil, textFormatter)
	assert.Equal(t, []string{"after scope"}, readLines(t, path))
}

func TestFileLogger_WriteFailureIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "logger.txt")
	var reported []error

	backend := NewFileLoggerProvider(FileLoggerOptions{
		Path:         path,
		ErrorHandler: func(err error) { reported = append(reported, err) },
	}).CreateLogger("Program")

	assert.NotPanics(t, func() {
		backend.Log(LogLevelInfo, EventID{}, "lost", nil, textFormatter)
	})
	require.Len(t, reported, 1)
	assert.Contains(t, reported[0].Error(), "logger.txt")
}

func TestFileLogger_FormatterPanicReleasesLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	backend := NewFileLoggerProvider(FileLoggerOptions{Path: path}).CreateLogger("Program")

	assert.Panics(t, func() {
		backend.Log(LogLevelInfo, EventID{}, nil, nil, func(any, error) string { panic("bad formatter") })
	})

	backend.Log(LogLevelInfo, EventID{}, "still works", nil, textFormatter)
	assert.Equal(t, []string{"still works"}, readLines(t, path))
}

func TestFileLogger_JsonFraming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.json")
	backend := NewFileLoggerProvider(FileLoggerOptions{
		Path:      path,
		Formatter: NewJsonFormatter(),
	}).CreateLogger("Program")

	backend.Log(LogLevelWarn, EventID{ID: 3, Name: "Request"}, Message{Text: "hello", Fields: []Field{{Key: "k", Value: "v"}}}, nil, FormatMessage)

	lines := readLines(t, path)
	require.Len(t, lines, 1)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &data))
	assert.Equal(t, "WARN", data["level"])
	assert.Equal(t, "Program", data["category"])
	assert.Equal(t, "Request", data["event"])
	assert.Equal(t, "hello {k=v}", data["msg"])
}

func TestBuilder_FileProvidersShareLockPerPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logger.txt")

	builder := NewLoggingBuilder()
	builder.AddFile(path).AddFile(filepath.Join(dir, ".", "logger.txt"))
	require.Len(t, builder.Providers(), 2)
	assert.Equal(t, 1, builder.FileLocks().Len())

	first := builder.Providers()[0].(*FileLoggerProvider)
	second := builder.Providers()[1].(*FileLoggerProvider)
	assert.Same(t, first.lock, second.lock)

	factory := builder.Build()
	defer factory.Close()
	logger := factory.CreateLogger("Program")

	const calls = 200
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info(fmt.Sprintf("line-%03d %s", i, strings.Repeat("y", 512)))
		}(i)
	}
	wg.Wait()

	// 两个提供者各写一份
	lines := readLines(t, path)
	require.Len(t, lines, 2*calls)
	pattern := regexp.MustCompile(`^line-\d{3} y{512}$`)
	for _, line := range lines {
		assert.Regexp(t, pattern, line)
	}
}

func TestBuilder_ClearProviders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")

	builder := NewLoggingBuilder().AddConsole().AddFile(path)
	builder.ClearProviders()
	assert.Empty(t, builder.Providers())
	// 路径锁归构建器所有，清空提供者后仍保留
	assert.Equal(t, 1, builder.FileLocks().Len())

	factory := builder.Build()
	defer factory.Close()
	factory.CreateLogger("Program").Info("dropped")

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileLoggerProvider_Rotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	provider := NewFileLoggerProvider(FileLoggerOptions{Path: path, MaxBackups: 2})
	backend := provider.CreateLogger("Program")

	// 文件不存在时轮转不报错
	require.NoError(t, provider.Rotate())

	for i := 1; i <= 3; i++ {
		backend.Log(LogLevelInfo, EventID{}, fmt.Sprintf("generation %d", i), nil, textFormatter)
		require.NoError(t, provider.Rotate())
	}

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, []string{"generation 3"}, readLines(t, path+".1"))
	assert.Equal(t, []string{"generation 2"}, readLines(t, path+".2"))
	_, err = os.Stat(path + ".3")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	backend.Log(LogLevelInfo, EventID{}, "fresh", nil, textFormatter)
	assert.Equal(t, []string{"fresh"}, readLines(t, path))
}

func TestFileLoggerProvider_RotateRespectsMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	provider := NewFileLoggerProvider(FileLoggerOptions{Path: path, MaxSize: 1024})
	backend := provider.CreateLogger("Program")

	backend.Log(LogLevelInfo, EventID{}, "small", nil, textFormatter)
	require.NoError(t, provider.Rotate())
	assert.Equal(t, []string{"small"}, readLines(t, path))

	backend.Log(LogLevelInfo, EventID{}, strings.Repeat("z", 2048), nil, textFormatter)
	require.NoError(t, provider.Rotate())

	// MaxBackups 为 0 时直接截断
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
