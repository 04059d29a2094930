package app

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/searchktools/hidouki/config"
	"github.com/searchktools/hidouki/core"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"

	NewLogger(cfg, &buf).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("Expected JSON log line, got %q", buf.String())
	}

	buf.Reset()
	cfg.LogFormat = "text"
	cfg.LogLevel = "warn"
	logger := NewLogger(cfg, &buf)
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "msg=kept") {
		t.Errorf("Unexpected text log output %q", buf.String())
	}
}

func TestRunBindError(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:99999"

	a := NewWithWriter(cfg, io.Discard)
	err := a.Run()
	if err == nil {
		t.Fatal("Expected startup error")
	}
	if !core.IsKind(err, core.KindBind) {
		t.Errorf("Expected KindBind, got %v", err)
	}
}
