package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func resetLoggingState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	logBuffer = nil
	logCallback = nil
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetLoggingState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"engine": "debug",
			"api":    "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"engine", true, true, true},
		{"api", false, false, true},
		{"surface", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			logger := GetLogger(tt.module)
			handler := logger.Handler()

			gotDebug := handler.Enabled(context.Background(), slog.LevelDebug)
			gotInfo := handler.Enabled(context.Background(), slog.LevelInfo)
			gotWarn := handler.Enabled(context.Background(), slog.LevelWarn)

			if gotDebug != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, gotDebug, tt.wantDebug)
			}
			if gotInfo != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, gotInfo, tt.wantInfo)
			}
			if gotWarn != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, gotWarn, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetLoggingState()

	// Loggers created before Initialize default to info level
	loggerBefore := GetLogger("engine")
	handlerBefore := loggerBefore.Handler()

	if handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Logger created before Initialize should NOT have debug enabled")
	}

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"engine": "debug",
		},
	})

	loggerAfter := GetLogger("engine")

	// Same cached logger, level updated through its LevelVar
	if loggerBefore != loggerAfter {
		t.Error("Logger should be cached - same pointer before and after Initialize")
	}
	if !handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Cached logger should have debug enabled after Initialize updates LevelVar")
	}
}

func TestUpdateLevels(t *testing.T) {
	resetLoggingState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"engine": "debug",
		},
	})

	engine := GetLogger("engine")
	surface := GetLogger("surface")

	if !engine.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("engine should start at debug")
	}
	if surface.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("surface should start at info")
	}

	UpdateLevels(Config{
		Level: "warn",
		Modules: map[string]string{
			"surface": "debug",
		},
	})

	if engine.Handler().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("engine should drop to warn after UpdateLevels removes its override")
	}
	if !surface.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("surface should gain debug after UpdateLevels")
	}
}

func TestUpdateLevelsKeepsBuffer(t *testing.T) {
	resetLoggingState()

	Initialize(Config{Level: "info", Format: "text"})

	GetLogger("bridge").Info("before update")
	before := GetBuffer().Count()
	if before == 0 {
		t.Fatal("Expected buffered entry before UpdateLevels")
	}

	UpdateLevels(Config{Level: "debug"})

	if got := GetBuffer().Count(); got != before {
		t.Errorf("UpdateLevels changed buffer count: got %d, want %d", got, before)
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	multi := NewMultiHandler(debugHandler, infoHandler)
	logger := slog.New(multi).With("module", "test")

	logger.Debug("debug only message")

	output := buf.String()
	if !strings.Contains(output, "debug only message") {
		t.Errorf("Debug message not written via MultiHandler. Output: %s", output)
	}

	// Only the debug handler accepts it
	count := strings.Count(output, "debug only message")
	if count != 1 {
		t.Errorf("Expected 1 debug message, got %d. Output: %s", count, output)
	}
}

func TestBufferHandlerCapturesEntries(t *testing.T) {
	resetLoggingState()

	Initialize(Config{Level: "info", Format: "text"})

	var received []LogEntry
	SetLogCallback(func(entry LogEntry) {
		received = append(received, entry)
	})

	logger := GetLogger("engine")
	logger.Info("link established", "send_port", 9000)

	entries := GetBuffer().ReadAll()
	if len(entries) == 0 {
		t.Fatal("Expected at least one buffered entry")
	}

	last := entries[len(entries)-1]
	if last.Module != "engine" {
		t.Errorf("Expected module engine, got %q", last.Module)
	}
	if last.Message != "link established" {
		t.Errorf("Expected message %q, got %q", "link established", last.Message)
	}
	if got, ok := last.Attributes["send_port"]; !ok || got != int64(9000) {
		t.Errorf("Expected send_port attribute 9000, got %v", got)
	}

	if len(received) == 0 {
		t.Error("Expected callback to receive the entry")
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Write(LogEntry{
			Timestamp: time.Now(),
			Level:     "info",
			Message:   fmt.Sprintf("entry %d", i),
		})
	}

	if rb.Count() != 3 {
		t.Errorf("Expected count 3, got %d", rb.Count())
	}

	entries := rb.ReadAll()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"entry 2", "entry 3", "entry 4"} {
		if entries[i].Message != want {
			t.Errorf("entry %d: got %q, want %q", i, entries[i].Message, want)
		}
	}
}

func TestRingBufferReadLast(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		rb.Write(LogEntry{Message: fmt.Sprintf("entry %d", i)})
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{2, []string{"entry 4", "entry 5"}},
		{4, []string{"entry 2", "entry 3", "entry 4", "entry 5"}},
		{10, []string{"entry 2", "entry 3", "entry 4", "entry 5"}},
	}

	for _, tt := range tests {
		got := rb.ReadLast(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("ReadLast(%d): got %d entries, want %d", tt.n, len(got), len(tt.want))
			continue
		}
		for i := range tt.want {
			if got[i].Message != tt.want[i] {
				t.Errorf("ReadLast(%d)[%d]: got %q, want %q", tt.n, i, got[i].Message, tt.want[i])
			}
		}
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", 0, true},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		got := parseLevel(tt.input)
		if tt.isNil {
			if got != nil {
				t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("parseLevel(%q) = nil, want %v", tt.input, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, tt.want)
		}
	}
}
