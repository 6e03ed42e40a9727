package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/multierr"
)

// 环境变量
const (
	EnvEnabled        = "REACH_ENABLED"
	EnvConnectTimeout = "REACH_CONNECT_TIMEOUT"
	EnvHTTPTimeout    = "REACH_HTTP_TIMEOUT"
	EnvUseProxy       = "REACH_USE_PROXY"
	EnvUserAgent      = "REACH_USER_AGENT"
	EnvCacheTTL       = "REACH_CACHE_TTL"
	EnvChangeDebounce = "REACH_CHANGE_DEBOUNCE"
	EnvWatcherEnabled = "REACH_WATCHER_ENABLED"
	EnvPollInterval   = "REACH_POLL_INTERVAL"
	EnvLogLevel       = "REACH_LOG_LEVEL"
	EnvLogFormat      = "REACH_LOG_FORMAT"
	EnvMetricsAddr    = "REACH_METRICS_ADDR"
)

// ApplyEnv 用 REACH_* 环境变量覆盖配置
//
// 未设置的变量不影响配置；所有解析错误合并后一起返回。
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs error

	setBool := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok {
			d, err := ParseDuration(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	r := &cfg.Reachability
	setBool(EnvEnabled, &r.Enabled)
	setDuration(EnvConnectTimeout, &r.ConnectTimeout)
	setDuration(EnvHTTPTimeout, &r.HTTPTimeout)
	setBool(EnvUseProxy, &r.UseProxy)
	setString(EnvUserAgent, &r.UserAgent)
	setDuration(EnvCacheTTL, &r.ResultCacheTTL)
	setDuration(EnvChangeDebounce, &r.ChangeDebounce)

	setBool(EnvWatcherEnabled, &cfg.Watcher.Enabled)
	setDuration(EnvPollInterval, &cfg.Watcher.PollInterval)

	setString(EnvLogLevel, &cfg.Log.Level)
	setString(EnvLogFormat, &cfg.Log.Format)
	setString(EnvMetricsAddr, &cfg.Metrics.ListenAddr)

	return errs
}
