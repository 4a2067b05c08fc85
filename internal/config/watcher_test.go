package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReloadsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[osc]\nsend_port = 9000\nreceive_port = 9001\n")

	received := make(chan Settings, 1)
	watcher := NewConfigWatcher(path, LoadSettings, newTestLogger(),
		WithDebounce[Settings](50*time.Millisecond))
	watcher.OnReload(func(s Settings) {
		select {
		case received <- s:
		default:
		}
	})

	if err := watcher.Start(); err != nil {
		t.Fatal(err)
	}
	defer watcher.Stop()

	writeConfig(t, path, "[osc]\nsend_port = 9100\nreceive_port = 9101\n\n[midi]\ndevice = \"FCB1010\"\n")

	select {
	case s := <-received:
		if s.OSC.SendPort != 9100 || s.OSC.ReceivePort != 9101 {
			t.Errorf("Expected ports 9100/9101, got %d/%d", s.OSC.SendPort, s.OSC.ReceivePort)
		}
		if s.MIDI.Device != "FCB1010" {
			t.Errorf("Expected device FCB1010, got %q", s.MIDI.Device)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[osc]\nsend_port = 9000\n")

	var reloads atomic.Int32
	watcher := NewConfigWatcher(path, LoadSettings, newTestLogger(),
		WithDebounce[Settings](100*time.Millisecond))
	watcher.OnReload(func(Settings) {
		reloads.Add(1)
	})

	if err := watcher.Start(); err != nil {
		t.Fatal(err)
	}
	defer watcher.Stop()

	// Several writes inside one debounce window
	for i := 0; i < 5; i++ {
		writeConfig(t, path, "[osc]\nsend_port = 9000\n")
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	if got := reloads.Load(); got != 1 {
		t.Errorf("Expected 1 debounced reload, got %d", got)
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[osc]\nsend_port = 9000\n")

	var calls atomic.Int32
	watcher := NewConfigWatcher(path, LoadSettings, newTestLogger(),
		WithDebounce[Settings](50*time.Millisecond))
	unsubscribe := watcher.OnReload(func(Settings) {
		calls.Add(1)
	})
	unsubscribe()

	if err := watcher.Start(); err != nil {
		t.Fatal(err)
	}
	defer watcher.Stop()

	writeConfig(t, path, "[osc]\nsend_port = 9100\n")
	time.Sleep(300 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("Expected no calls after unsubscribe, got %d", got)
	}
}

func TestWatcherBadFileKeepsPreviousSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[osc]\nsend_port = 9000\n")

	errs := make(chan error, 1)
	reloaded := make(chan Settings, 1)
	watcher := NewConfigWatcher(path, LoadSettings, newTestLogger(),
		WithDebounce[Settings](50*time.Millisecond),
		WithErrorHandler[Settings](func(err error) {
			select {
			case errs <- err:
			default:
			}
		}))
	watcher.OnReload(func(s Settings) {
		select {
		case reloaded <- s:
		default:
		}
	})

	if err := watcher.Start(); err != nil {
		t.Fatal(err)
	}
	defer watcher.Stop()

	writeConfig(t, path, "[osc\nthis is not toml")

	select {
	case <-errs:
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for load error")
	}

	select {
	case s := <-reloaded:
		t.Errorf("Handlers must not run on a broken file, got %+v", s)
	case <-time.After(200 * time.Millisecond):
	}
}
