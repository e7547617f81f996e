package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueStore(t *testing.T) {
	store := NewValueStore()
	store.Store(map[string]any{"key": "value"})
	assert.Equal(t, "value", store.Load()["key"])

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Load()
		}()
	}
	wg.Wait()
}

func TestPathCache(t *testing.T) {
	cache := &PathCache{}

	parts := cache.GetPathSegments("A:b.c")
	assert.Equal(t, []string{"a", "b", "c"}, parts)
	assert.Equal(t, parts, cache.GetPathSegments("A:b.c"))
}

func TestConfiguration_Getters(t *testing.T) {
	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"port": 8080,
			"log": map[string]any{
				"path":    "logger.txt",
				"console": "true",
			},
		}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "logger.txt", cfg.Get("log:path"))
	assert.Equal(t, "logger.txt", cfg.Get("log.path"))
	assert.Equal(t, "", cfg.Get("log:missing"))
	assert.Equal(t, "fallback", cfg.GetWithDefault("log:missing", "fallback"))

	port, err := cfg.GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	console, err := cfg.GetBool("log:console")
	require.NoError(t, err)
	assert.True(t, console)

	_, err = cfg.GetInt("missing")
	assert.Error(t, err)

	assert.Equal(t, "logger.txt", cfg.GetSection("log").Get("path"))
	assert.Empty(t, cfg.GetSection("nothing").GetAll())
}

func TestConfigurationBuilder_LaterSourcesOverride(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "hello.json")
	yamlPath := filepath.Join(dir, "hello.yaml")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"Port": 8000, "Log": {"Path": "a.txt", "Level": "debug"}}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("log:\n  path: b.txt\n"), 0o644))

	cfg, err := NewConfigurationBuilder().
		AddJsonFile(jsonPath).
		AddYamlFile(yamlPath).
		AddJsonFile(filepath.Join(dir, "absent.json"), true).
		AddInMemory(map[string]any{"port": 9000}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Get("port"))
	assert.Equal(t, "b.txt", cfg.Get("log:path"))
	assert.Equal(t, "debug", cfg.Get("log:level"))
}

func TestConfigurationBuilder_MissingRequiredFile(t *testing.T) {
	_, err := NewConfigurationBuilder().
		AddYamlFile(filepath.Join(t.TempDir(), "absent.yaml")).
		Build()
	assert.ErrorContains(t, err, "absent.yaml")
}

func TestEnvironmentVariables(t *testing.T) {
	data := parseEnvironment("HELLO_", []string{
		"HELLO_PORT=9090",
		"HELLO_LOG_PATH=/var/log/hello.txt",
		"HELLO_LOG_CONSOLE=false",
		"OTHER_PORT=1",
		"HELLO_=ignored",
	})

	assert.Equal(t, map[string]any{
		"port": 9090,
		"log": map[string]any{
			"path":    "/var/log/hello.txt",
			"console": false,
		},
	}, data)
}

func TestEnvironmentVariableSource_Load(t *testing.T) {
	t.Setenv("HELLO_TEST_LOG_LEVEL", "warn")

	cfg, err := NewConfigurationBuilder().AddEnvironmentVariables("HELLO_TEST_").Build()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Get("log:level"))
}

func TestDecodeEtcdPairs(t *testing.T) {
	data := decodeEtcdPairs("/hello", map[string]string{
		"/hello/port":       "8081",
		"/hello/log/path":   "/tmp/logger.txt",
		"/hello/redis":      `{"Addr": "localhost:6379", "DB": 2}`,
		"/hello/mongo/uri":  "mongodb://localhost:27017",
		"/hello/":           "skipped",
		"/hello/log/format": "text: plain\n",
	})

	assert.Equal(t, float64(8081), data["port"])
	assert.Equal(t, map[string]any{
		"addr": "localhost:6379",
		"db":   float64(2),
	}, data["redis"])

	log := data["log"].(map[string]any)
	assert.Equal(t, "/tmp/logger.txt", log["path"])
	assert.Equal(t, map[string]any{"text": "plain"}, log["format"])
	assert.Equal(t, "mongodb://localhost:27017", data["mongo"].(map[string]any)["uri"])
}

func TestEtcdSource_RequiresEndpoints(t *testing.T) {
	_, err := NewConfigurationBuilder().AddEtcd(EtcdOptions{}).Build()
	assert.ErrorContains(t, err, "endpoints")
}

type testSettings struct {
	Port int `json:"port"`
	Log  struct {
		Path  string `json:"path"`
		Level string `json:"level"`
	} `json:"log"`
}

func TestLoad(t *testing.T) {
	cfg := NewConfiguration(map[string]any{
		"port": 8080,
		"log":  map[string]any{"path": "logger.txt", "level": "info"},
	})

	settings, err := Load[testSettings](cfg, "")
	require.NoError(t, err)
	assert.Equal(t, 8080, settings.Port)
	assert.Equal(t, "logger.txt", settings.Log.Path)

	_, err = Load[testSettings](cfg, "missing")
	assert.Error(t, err)
}

func TestLoadInto_KeepsDefaults(t *testing.T) {
	defaults := testSettings{Port: 8080}
	defaults.Log.Path = "logger.txt"
	defaults.Log.Level = "info"

	cfg := NewConfiguration(map[string]any{"log": map[string]any{"level": "debug"}})

	settings, err := LoadInto(cfg, "", defaults)
	require.NoError(t, err)
	assert.Equal(t, 8080, settings.Port)
	assert.Equal(t, "logger.txt", settings.Log.Path)
	assert.Equal(t, "debug", settings.Log.Level)

	settings, err = LoadInto(cfg, "absent", defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, settings)
}

func BenchmarkConfigGet(b *testing.B) {
	cfg, _ := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"server": map[string]any{
				"host": "localhost",
				"port": 8080,
			},
		}).
		Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg.Get("server:host")
	}
}
