package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// EtcdOptions etcd 配置选项
type EtcdOptions struct {
	Endpoints   []string      // etcd 服务器地址列表
	Username    string        // 用户名（可选）
	Password    string        // 密码（可选）
	Prefix      string        // 键前缀（可选）
	Timeout     time.Duration // 读取超时时间（默认 5 秒）
	DialTimeout time.Duration // 拨号超时时间（默认 5 秒）
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

// EtcdSource etcd 配置源
// 前缀下的 /hello/log/path 映射为 log:path，值可以是 JSON、YAML 或普通字符串
type EtcdSource struct {
	Options EtcdOptions
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%s)", strings.Join(s.Options.Endpoints, ","))
}

func (s *EtcdSource) Load() (map[string]any, error) {
	if len(s.Options.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints are required")
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   s.Options.Endpoints,
		Username:    s.Options.Username,
		Password:    s.Options.Password,
		DialTimeout: s.Options.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.Timeout)
	defer cancel()

	prefix := s.Options.Prefix
	if prefix == "" {
		prefix = "/"
	}

	resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get config from etcd: %w", err)
	}

	pairs := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		pairs[string(kv.Key)] = string(kv.Value)
	}
	return decodeEtcdPairs(s.Options.Prefix, pairs), nil
}

// decodeEtcdPairs 将 etcd 键值对展开为嵌套配置
func decodeEtcdPairs(prefix string, pairs map[string]string) map[string]any {
	result := make(map[string]any)

	for key, value := range pairs {
		if prefix != "" {
			key = strings.TrimPrefix(key, prefix)
		}
		key = strings.Trim(key, "/")
		if key == "" {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(key), "/", ":")

		setNestedValue(result, key, decodeEtcdValue(value))
	}

	return result
}

// decodeEtcdValue 依次尝试 JSON、YAML，失败时保留原始字符串
func decodeEtcdValue(value string) any {
	var jsonValue any
	if err := json.Unmarshal([]byte(value), &jsonValue); err == nil {
		if m, ok := jsonValue.(map[string]any); ok {
			return normalizeKeys(m)
		}
		return jsonValue
	}

	var yamlValue any
	if err := yaml.Unmarshal([]byte(value), &yamlValue); err == nil {
		if m, ok := yamlValue.(map[string]any); ok {
			return normalizeKeys(m)
		}
		if yamlValue != nil {
			return yamlValue
		}
	}
	return value
}
