package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Options{Output: buf, Level: slog.LevelInfo})

	l := Logger("test")
	l.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected log message in buffer, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in buffer, got: %s", output)
	}
	if !strings.Contains(output, "component=test") {
		t.Errorf("expected component=test in buffer, got: %s", output)
	}
}

// TestComponentLevels 测试按组件过滤
func TestComponentLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Options{
		Output:          buf,
		Level:           slog.LevelWarn,
		ComponentLevels: map[string]slog.Level{"core/netmon": slog.LevelDebug},
	})
	defer Setup(Options{Level: slog.LevelInfo})

	Logger("core/netmon").Debug("netmon debug")
	Logger("core/reachability").Info("reachability info")

	output := buf.String()
	if !strings.Contains(output, "netmon debug") {
		t.Errorf("expected netmon debug output, got: %s", output)
	}
	if strings.Contains(output, "reachability info") {
		t.Errorf("reachability info should be filtered, got: %s", output)
	}
	if Logger("core/reachability").Enabled(slog.LevelInfo) {
		t.Error("expected info disabled for core/reachability")
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("REACH_LOG_LEVEL", "core/netmon=debug, warn, bogus=nope")
	t.Setenv("REACH_LOG_FORMAT", "JSON")

	opts := OptionsFromEnv()
	if opts.Level != slog.LevelWarn {
		t.Errorf("expected default level warn, got %v", opts.Level)
	}
	if opts.ComponentLevels["core/netmon"] != slog.LevelDebug {
		t.Errorf("expected core/netmon=debug, got %v", opts.ComponentLevels["core/netmon"])
	}
	if _, ok := opts.ComponentLevels["bogus"]; ok {
		t.Error("invalid level should be ignored")
	}
	if opts.Format != FormatJSON {
		t.Error("expected json format")
	}
}
