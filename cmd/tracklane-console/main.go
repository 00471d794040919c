// Command tracklane-console is an interactive console for a tracklane
// session.
//
// It builds a session from a session file, drives the notification queue
// from a periodic update loop and lets the user change parameters, attach
// meters and inspect the queue.
//
// Usage:
//
//	tracklane-console [flags]
//
// Flags:
//
//	-config string      Session file path (default: built-in demo session)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-trace string       File path for notification trace logging (CBOR format)
//	-interval duration  Update loop interval (overrides the session file)
//	-watch              Reload the session file when it changes (default true)
//
// Examples:
//
//	# Start with the demo session
//	tracklane-console
//
//	# Start with a session file and record a trace
//	tracklane-console -config mix.yaml -trace mix.tlog
//
//	# Print every notification as it happens
//	tracklane-console -log-level debug
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"github.com/tracklane/tracklane-go/cmd/tracklane-console/interactive"
	"github.com/tracklane/tracklane-go/pkg/config"
	"github.com/tracklane/tracklane-go/pkg/log"
	"github.com/tracklane/tracklane-go/pkg/session"
	"github.com/tracklane/tracklane-go/pkg/uiloop"
)

//go:embed default_session.yaml
var defaultSession []byte

// Options holds the console command-line options.
type Options struct {
	ConfigFile string
	LogLevel   string
	TraceFile  string
	Interval   time.Duration
	Watch      bool
}

var options Options

func init() {
	flag.StringVar(&options.ConfigFile, "config", "", "Session file path (default: built-in demo session)")
	flag.StringVar(&options.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&options.TraceFile, "trace", "", "File path for notification trace logging (CBOR format)")
	flag.DurationVar(&options.Interval, "interval", 0, "Update loop interval (overrides the session file)")
	flag.BoolVar(&options.Watch, "watch", true, "Reload the session file when it changes")
}

func main() {
	flag.Parse()

	setupLogging(options.LogLevel)

	if err := validateOptions(); err != nil {
		stdlog.Fatalf("Invalid options: %v", err)
	}

	cfg, err := loadConfig(options.ConfigFile)
	if err != nil {
		stdlog.Fatalf("Failed to load session: %v", err)
	}
	if options.Interval > 0 {
		cfg.Queue.FlushInterval = options.Interval
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tracklane> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		stdlog.Fatalf("Failed to create readline: %v", err)
	}
	stdlog.SetOutput(rl.Stderr())

	traceLogger, closeTrace, err := setupTrace(options.TraceFile, options.LogLevel, rl.Stderr())
	if err != nil {
		stdlog.Fatalf("Failed to set up tracing: %v", err)
	}
	defer closeTrace()

	sess, err := session.New(cfg, session.WithLogger(traceLogger))
	if err != nil {
		stdlog.Fatalf("Failed to create session: %v", err)
	}
	defer sess.Close()

	stdlog.Println("Tracklane Console")
	stdlog.Println("=================")
	stdlog.Printf("Session: %s", sess.ID())
	stdlog.Printf("Parameters: %d", len(sess.Names()))
	stdlog.Printf("Queue capacity: %d", sess.Queue().Cap())

	dispatcher := uiloop.NewDispatcher(sess.Queue())
	dispatcher.SetInterval(cfg.Queue.FlushInterval)
	dispatcher.SetRefresh(cfg.Queue.Refresh)
	dispatcher.Start()
	defer dispatcher.Stop()
	stdlog.Printf("Update loop: every %s", dispatcher.Interval())

	console := interactive.New(sess, dispatcher, rl.Stdout())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if options.ConfigFile != "" && options.Watch {
		watcher, err := config.NewWatcher(options.ConfigFile)
		if err != nil {
			stdlog.Printf("Config watching disabled: %v", err)
		} else {
			defer watcher.Close()
			go watchConfig(ctx, watcher, console)
		}
	}

	// Shut down on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			stdlog.Printf("Received signal: %v", sig)
			cancel()
			rl.Close()
		case <-ctx.Done():
		}
	}()

	console.Run(ctx, cancel, rl)
	stdlog.Println("Shutting down...")
}

// setupLogging configures the standard logger for the given level.
func setupLogging(level string) {
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	switch level {
	case "debug":
		stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds | stdlog.Lshortfile)
	case "warn", "error":
		stdlog.SetFlags(stdlog.Ltime)
	}
}

func validateOptions() error {
	switch options.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return fmt.Errorf("unknown log level: %s", options.LogLevel)
	}
	if options.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", options.Interval)
	}
	return nil
}

// loadConfig loads the session file, or the built-in demo session when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Parse(defaultSession)
	}
	return config.Load(path)
}

// setupTrace builds the notification trace logger. Events go to a CBOR
// trace file when path is set and to w as structured log lines at debug
// level. The returned logger is nil when neither is enabled.
func setupTrace(path, level string, w io.Writer) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if path != "" {
		fileLogger, err := log.NewFileLogger(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create trace logger: %w", err)
		}
		stdlog.Printf("Trace logging to: %s", fileLogger.Path())
		loggers = append(loggers, fileLogger)
		closeFn = func() { _ = fileLogger.Close() }
	}

	if level == "debug" {
		handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}

	// Only return a logger when non-nil to avoid typed-nil interface issue.
	if len(loggers) == 0 {
		return nil, closeFn, nil
	}
	return log.NewMultiLogger(loggers...), closeFn, nil
}

// watchConfig applies every reloaded session file to the console.
func watchConfig(ctx context.Context, watcher *config.Watcher, console *interactive.Console) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-watcher.Changes():
			if err := console.Reload(cfg); err != nil {
				stdlog.Printf("Reload failed: %v", err)
			}
		case err := <-watcher.Errors():
			stdlog.Printf("Session file error: %v", err)
		}
	}
}
