package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/solarb/arbitrage-detector/internal/logger"
)

func TestLogger_LevelFilter(t *testing.T) {
	tests := []struct {
		name     string
		minLevel logger.Level
		log      func(l *logger.Logger)
		wantLine bool
	}{
		{"debug suppressed at info", logger.LevelInfo, func(l *logger.Logger) {
			l.Debug(context.Background(), "hidden")
		}, false},
		{"info passes at info", logger.LevelInfo, func(l *logger.Logger) {
			l.Info(context.Background(), "visible")
		}, true},
		{"warn suppressed at error", logger.LevelError, func(l *logger.Logger) {
			l.Warn(context.Background(), "hidden")
		}, false},
		{"error always passes", logger.LevelError, func(l *logger.Logger) {
			l.Error(context.Background(), "visible")
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.New(&buf, tt.minLevel, "test", nil)
			tt.log(l)

			got := buf.Len() > 0
			if got != tt.wantLine {
				t.Errorf("expected output=%v, got output=%v (%q)", tt.wantLine, got, buf.String())
			}
		})
	}
}

func TestLogger_KeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, logger.LevelDebug, "svc", map[string]any{"env": "test"})

	l.Info(context.Background(), "order placed", "symbol", "SOLUSDC", "qty", 10)

	out := buf.String()
	for _, want := range []string{`"msg":"order placed"`, `"env":"test"`, `"symbol":"SOLUSDC"`, `"qty":10`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log line to contain %q, got %q", want, out)
		}
	}
}

func TestLogger_OddArgsMarksMissing(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, logger.LevelDebug, "svc", nil)

	l.Warn(context.Background(), "dangling arg", "lonely")

	if !strings.Contains(buf.String(), `"lonely":"<missing>"`) {
		t.Errorf("expected dangling key to be marked missing, got %q", buf.String())
	}
}
