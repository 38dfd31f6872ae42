package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, buf *bytes.Buffer)
	}{
		{
			name: "text format",
			config: Config{
				Level:  LevelInfo,
				Format: FormatText,
			},
			check: func(t *testing.T, buf *bytes.Buffer) {
				if !strings.Contains(buf.String(), "level=INFO") {
					t.Error("expected text format with level=INFO")
				}
			},
		},
		{
			name: "json format",
			config: Config{
				Level:  LevelInfo,
				Format: FormatJSON,
			},
			check: func(t *testing.T, buf *bytes.Buffer) {
				var m map[string]interface{}
				if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
					t.Errorf("expected valid JSON output: %v", err)
				}
				if m["level"] != "INFO" {
					t.Errorf("expected level INFO, got %v", m["level"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Output = buf

			logger := New(tt.config)
			logger.Info("test message")

			tt.check(t, buf)
		})
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		logMethod func(l *Logger)
		expected  bool
	}{
		{
			name:      "debug at debug level",
			level:     LevelDebug,
			logMethod: func(l *Logger) { l.Debug("test") },
			expected:  true,
		},
		{
			name:      "debug at info level",
			level:     LevelInfo,
			logMethod: func(l *Logger) { l.Debug("test") },
			expected:  false,
		},
		{
			name:      "info at info level",
			level:     LevelInfo,
			logMethod: func(l *Logger) { l.Info("test") },
			expected:  true,
		},
		{
			name:      "warn at error level",
			level:     LevelError,
			logMethod: func(l *Logger) { l.Warn("test") },
			expected:  false,
		},
		{
			name:      "error at error level",
			level:     LevelError,
			logMethod: func(l *Logger) { l.Error("test") },
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(Config{
				Level:  tt.level,
				Format: FormatText,
				Output: buf,
			})

			tt.logMethod(logger)

			hasOutput := buf.Len() > 0
			if hasOutput != tt.expected {
				t.Errorf("expected output=%v, got output=%v", tt.expected, hasOutput)
			}
		})
	}
}

func TestContextEnrichment(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: buf,
	})

	ctx := context.Background()
	ctx = WithCorrelationID(ctx, "corr-123")
	ctx = WithTokenizer(ctx, "tiktoken")
	ctx = WithModel(ctx, "gpt-4-turbo")
	ctx = WithStrategy(ctx, "get_encoding")

	logger.InfoContext(ctx, "enriched log")

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	expected := map[string]string{
		"correlation_id": "corr-123",
		"tokenizer":      "tiktoken",
		"model":          "gpt-4-turbo",
		"strategy":       "get_encoding",
	}

	for key, expectedVal := range expected {
		if m[key] != expectedVal {
			t.Errorf("expected %s=%s, got %v", key, expectedVal, m[key])
		}
	}
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: buf,
	})

	childLogger := logger.With("component", "analyzer")
	childLogger.Info("with attributes")

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if m["component"] != "analyzer" {
		t.Errorf("expected component=analyzer, got %v", m["component"])
	}
}

func TestWithGroup(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: buf,
	})

	childLogger := logger.WithGroup("summary")
	childLogger.Info("grouped log", "count", 42)

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	summary, ok := m["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected summary group, got %v", m["summary"])
	}

	if summary["count"] != float64(42) {
		t.Errorf("expected count=42, got %v", summary["count"])
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	if got := CorrelationID(ctx); got != "" {
		t.Errorf("CorrelationID on empty context = %q, want empty", got)
	}

	ctx = WithCorrelationID(ctx, "abc-123")
	if got := CorrelationID(ctx); got != "abc-123" {
		t.Errorf("CorrelationID = %q, want abc-123", got)
	}
}

func TestDomainHelpers(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: buf,
	})
	ctx := context.Background()

	tests := []struct {
		name    string
		log     func()
		wantKey string
	}{
		{
			name: "tokenizer init complete",
			log: func() {
				LogTokenizerInitComplete(ctx, logger, "tiktoken", "get_encoding", 120*time.Millisecond)
			},
			wantKey: "strategy",
		},
		{
			name: "tokenizer init failed",
			log: func() {
				LogTokenizerInitFailed(ctx, logger, "unigram", errors.New("no artifact"), time.Millisecond)
			},
			wantKey: "error",
		},
		{
			name: "analysis complete",
			log: func() {
				LogAnalysisComplete(ctx, logger, "words", 7, 4, time.Millisecond, false)
			},
			wantKey: "total_tokens",
		},
		{
			name: "cost computed",
			log: func() {
				LogCostComputed(ctx, logger, "gpt-4-turbo", 1000, 500, 0.025)
			},
			wantKey: "total_usd",
		},
		{
			name: "pricing reloaded",
			log: func() {
				LogPricingReloaded(ctx, logger, "/tmp/pricing.yaml", 11)
			},
			wantKey: "models",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()

			var m map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
				t.Fatalf("failed to parse JSON: %v", err)
			}
			if _, ok := m[tt.wantKey]; !ok {
				t.Errorf("log entry missing key %q: %v", tt.wantKey, m)
			}
		})
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	first := Default()
	second := Default()
	if first != second {
		t.Error("Default() returned different loggers")
	}
}
