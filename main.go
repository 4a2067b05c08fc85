package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/loopbridge/cmd"
	"github.com/smazurov/loopbridge/internal/api"
	"github.com/smazurov/loopbridge/internal/bridge"
	"github.com/smazurov/loopbridge/internal/config"
	"github.com/smazurov/loopbridge/internal/events"
	"github.com/smazurov/loopbridge/internal/logging"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"API listen address" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// OSC settings
	OscHost        string `help:"Engine host" default:"127.0.0.1" toml:"osc.host" env:"OSC_HOST"`
	OscSendPort    int    `help:"Engine command port" default:"9000" toml:"osc.send_port" env:"OSC_SEND_PORT"`
	OscReceivePort int    `help:"Local listen port" default:"9001" toml:"osc.receive_port" env:"OSC_RECEIVE_PORT"`

	// MIDI settings
	Device  string `help:"MIDI output port name (case-insensitive substring)" short:"d" default:"" toml:"midi.device" env:"MIDI_DEVICE"`
	Channel int    `help:"MIDI channel (advisory, frames are channel 1)" default:"1" toml:"midi.channel" env:"MIDI_CHANNEL"`

	// Auth settings; auth is disabled while either one is empty
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingBridge  string `help:"Bridge logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingEngine  string `help:"Engine link logging level" default:"info" toml:"logging.engine" env:"LOGGING_ENGINE"`
	LoggingSurface string `help:"MIDI surface logging level" default:"info" toml:"logging.surface" env:"LOGGING_SURFACE"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP    string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingConfig  string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		loadErr := config.LoadConfig(opts, nil)

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"bridge":  opts.LoggingBridge,
				"engine":  opts.LoggingEngine,
				"surface": opts.LoggingSurface,
				"api":     opts.LoggingAPI,
				"http":    opts.LoggingHTTP,
				"config":  opts.LoggingConfig,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")
		if loadErr != nil {
			logger.Warn("Failed to load config", "error", loadErr)
		}

		// Event bus for in-process event handling and SSE
		eventBus := events.New()

		// Forward every log entry to SSE subscribers
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		settings := config.Settings{
			OSC: config.OSCSettings{
				Host:        opts.OscHost,
				SendPort:    opts.OscSendPort,
				ReceivePort: opts.OscReceivePort,
			},
			MIDI: config.MIDISettings{
				Device:  opts.Device,
				Channel: opts.Channel,
			},
			Logging: loggingConfig,
		}

		br := bridge.New(bridge.Options{
			Settings: settings,
			Bus:      eventBus,
		})

		server := api.NewServer(&api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Snapshot:     br.Snapshot,
			EventBus:     eventBus,
		})

		// Reload OSC endpoints, device, and log levels on config file change
		watcher := config.NewConfigWatcher(opts.Config, config.LoadSettings,
			logging.GetLogger("config"))
		watcher.OnReload(br.Reconfigure)

		ctx, cancel := context.WithCancel(context.Background())
		bridgeDone := make(chan struct{})

		hooks.OnStart(func() {
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher not started", "error", watchErr, "path", opts.Config)
			}

			go func() {
				br.Run(ctx)
				close(bridgeDone)
			}()

			logger.Info("Starting HTTP server", "addr", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				cancel()
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping config watcher", "error", stopErr)
			}

			// Let the bridge unregister from the engine and close the device
			cancel()
			select {
			case <-bridgeDone:
			case <-time.After(2 * time.Second):
				logger.Warn("Bridge did not stop in time")
			}
		})
	})

	cli.Root().Use = "loopbridge"
	cli.Root().AddCommand(cmd.CreatePortsCmd())
	cli.Root().AddCommand(cmd.CreateCheckCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
