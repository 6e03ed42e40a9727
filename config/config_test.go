package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.True(t, cfg.Reachability.Enabled)
	assert.True(t, cfg.Reachability.UseProxy)
	assert.Equal(t, 10*time.Second, cfg.Reachability.ConnectTimeout.Duration())
	assert.Equal(t, 30*time.Second, cfg.Reachability.HTTPTimeout.Duration())
	assert.Equal(t, 5*time.Second, cfg.Watcher.PollInterval.Duration())

	t.Log("✅ NewConfig 测试通过")
}

// TestReachabilityConfig 测试可达性检测配置
func TestReachabilityConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ReachabilityConfig)
	}{
		{"ConnectTimeout", func(c *ReachabilityConfig) { c.ConnectTimeout = 0 }},
		{"HTTPTimeout", func(c *ReachabilityConfig) { c.HTTPTimeout = -1 }},
		{"CacheTTL", func(c *ReachabilityConfig) { c.ResultCacheTTL = -1 }},
		{"CacheSize", func(c *ReachabilityConfig) {
			c.ResultCacheTTL = Duration(time.Second)
			c.ResultCacheSize = 0
		}},
		{"Debounce", func(c *ReachabilityConfig) { c.ChangeDebounce = -1 }},
		{"Concurrency", func(c *ReachabilityConfig) { c.DiagnoseConcurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultReachabilityConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestWatcherAndLogConfig 测试监听与日志配置
func TestWatcherAndLogConfig(t *testing.T) {
	w := DefaultWatcherConfig()
	w.PollInterval = Duration(time.Millisecond)
	assert.Error(t, w.Validate())

	l := DefaultLogConfig()
	l.Format = "xml"
	assert.Error(t, l.Validate())

	m := DefaultMetricsConfig()
	m.ListenAddr = "not-an-address"
	assert.Error(t, m.Validate())
	m.ListenAddr = "127.0.0.1:9100"
	assert.NoError(t, m.Validate())
}

// TestFromJSON 测试 JSON 加载保留未指定字段的默认值
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"reachability": {"connect_timeout": "3s", "use_proxy": false},
		"watcher": {"poll_interval": 2000000000}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Reachability.ConnectTimeout.Duration())
	assert.False(t, cfg.Reachability.UseProxy)
	assert.Equal(t, 30*time.Second, cfg.Reachability.HTTPTimeout.Duration())
	assert.Equal(t, 2*time.Second, cfg.Watcher.PollInterval.Duration())

	_, err = FromJSON([]byte(`{"reachability": {"connect_timeout": "soon"}}`))
	assert.Error(t, err)
}

// TestLoadFile 测试从文件加载
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"log": {"level": "debug"}}`), 0o600))
	cfg, err := LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"reachability": {"diagnose_concurrency": 0}}`), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

// TestApplyEnv 测试环境变量覆盖
func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvConnectTimeout, "2s")
	t.Setenv(EnvUseProxy, "false")
	t.Setenv(EnvWatcherEnabled, "0")
	t.Setenv(EnvMetricsAddr, ":9100")

	cfg := NewConfig()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, 2*time.Second, cfg.Reachability.ConnectTimeout.Duration())
	assert.False(t, cfg.Reachability.UseProxy)
	assert.False(t, cfg.Watcher.Enabled)
	assert.Equal(t, ":9100", cfg.Metrics.ListenAddr)
}

// TestApplyEnv_Errors 测试解析错误被合并返回
func TestApplyEnv_Errors(t *testing.T) {
	env := map[string]string{
		EnvHTTPTimeout: "forever",
		EnvEnabled:     "maybe",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := NewConfig()
	err := applyEnv(cfg, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvHTTPTimeout)
	assert.Contains(t, err.Error(), EnvEnabled)
	assert.True(t, cfg.Reachability.Enabled)
}

// TestDuration_JSON 测试 Duration 编码
func TestDuration_JSON(t *testing.T) {
	data, err := json.Marshal(Duration(1500 * time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(data))

	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}
