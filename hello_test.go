package app

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocrud/hello/config"
	"github.com/gocrud/hello/core"
	"github.com/gocrud/hello/cron"
	"github.com/gocrud/hello/logging"
	"github.com/gocrud/hello/web"
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

// startHello 在后台运行应用，返回运行时与退出结果通道
func startHello(t *testing.T, ctx context.Context, values map[string]any) (*core.Runtime, <-chan error) {
	t.Helper()

	runtimes := make(chan *core.Runtime, 1)
	done := make(chan error, 1)
	go func() {
		done <- RunContext(ctx,
			core.WithConfiguration(func(b *config.ConfigurationBuilder) {
				b.AddInMemory(values)
			}),
			HelloWorld(),
			func(rt *core.Runtime) error {
				runtimes <- rt
				return nil
			},
		)
	}()

	var rt *core.Runtime
	select {
	case rt = <-runtimes:
	case err := <-done:
		t.Fatalf("application exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not bootstrap")
	}
	return rt, done
}

func waitForHost(t *testing.T, rt *core.Runtime) string {
	t.Helper()

	var host *web.Host
	require.Eventually(t, func() bool {
		host = core.GetFeature[*web.Host](rt)
		return host != nil
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case <-host.Started():
	case <-time.After(5 * time.Second):
		t.Fatal("web host did not start")
	}

	_, port, err := net.SplitHostPort(host.Address())
	require.NoError(t, err)
	return "http://127.0.0.1:" + port
}

func TestHelloWorld_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, done := startHello(t, ctx, map[string]any{
		"port": 0,
		"log":  map[string]any{"path": path, "console": false},
	})
	base := waitForHost(t, rt)

	resp, err := http.Get(base + "/foo")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello World!", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not stop")
	}

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Regexp(t, `^Path: /foo  Time:\d{2}:\d{2}:\d{2}$`, lines[0])
}

func TestHelloWorld_RegistersRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.txt")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, done := startHello(t, ctx, map[string]any{
		"port": 0,
		"log": map[string]any{
			"path":    path,
			"console": false,
			"format":  "json",
			"rotate":  "@every 1h",
			"backups": 2,
		},
	})
	waitForHost(t, rt)

	builder := core.GetFeature[*cron.Builder](rt)
	require.NotNil(t, builder)
	assert.Equal(t, []string{RotateJob}, builder.Jobs())

	file := core.GetFeature[*logging.FileLoggerProvider](rt)
	require.NotNil(t, file)
	assert.Equal(t, path, file.Path())

	cancel()
	require.NoError(t, <-done)
}

func TestRunContext_OptionError(t *testing.T) {
	boom := errors.New("boom")
	err := RunContext(context.Background(), func(*core.Runtime) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunContext_HostedServiceFailure(t *testing.T) {
	// 先占用端口，使 Web 主机启动失败
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	err = RunContext(context.Background(),
		core.WithErrorHandler(func(error) {}),
		core.WithConfiguration(func(b *config.ConfigurationBuilder) {
			b.AddInMemory(map[string]any{
				"port": port,
				"log":  map[string]any{"path": filepath.Join(t.TempDir(), "logger.txt"), "console": false},
			})
		}),
		HelloWorld(),
	)
	assert.ErrorContains(t, err, "failed to listen")
}

func TestLoadSettings(t *testing.T) {
	cfg := config.NewConfiguration(map[string]any{
		"port":  9000,
		"log":   map[string]any{"level": "warning"},
		"redis": map[string]any{"addr": "localhost:6379", "max": 100},
		"mongo": map[string]any{"uri": "mongodb://localhost:27017"},
	})

	settings, err := LoadSettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, 9000, settings.Port)
	assert.Equal(t, "logger.txt", settings.Log.Path)
	assert.True(t, settings.Log.Console)
	assert.Equal(t, logging.LogLevelWarn, settings.LogLevel())
	assert.Equal(t, "localhost:6379", settings.Redis.Addr)
	assert.Equal(t, int64(100), settings.Redis.Max)
	assert.Equal(t, "mongodb://localhost:27017", settings.Mongo.URI)
	assert.Nil(t, settings.LogFormatter())

	wd, err := os.Getwd()
	require.NoError(t, err)
	path, err := settings.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "logger.txt"), path)
}

func TestLoadSettings_Environment(t *testing.T) {
	t.Setenv("HELLO_PORT", "9191")
	t.Setenv("HELLO_LOG_FORMAT", "text")

	cfg, err := config.NewConfigurationBuilder().AddEnvironmentVariables("HELLO_").Build()
	require.NoError(t, err)

	settings, err := LoadSettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, 9191, settings.Port)
	assert.IsType(t, &logging.TextFormatter{}, settings.LogFormatter())
}
