// Package main is the entry point for the stormcore command-line driver.
//
// stormcore opens a file and runs a line-oriented command script against
// it, read from -script or standard input.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/dshills/stormcore/internal/app"
	"github.com/dshills/stormcore/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	configPath string
	scriptPath string
	logLevel   string
	readOnly   bool
	watch      bool
	files      []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	lc := app.DefaultLoggerConfig()
	lc.Level = app.ParseLogLevel(cfg.Log.Level)
	logger := app.NewLogger(lc)

	appOpts := []app.Option{app.WithLogger(logger)}
	if opts.readOnly {
		appOpts = append(appOpts, app.WithReadOnly())
	}
	application := app.New(cfg, appOpts...)
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.watch && opts.configPath != "" {
		go func() {
			if err := application.WatchConfig(ctx, opts.configPath); err != nil && ctx.Err() == nil {
				logger.WithComponent("config").Error("watch stopped: %v", err)
			}
		}()
	}

	if len(opts.files) == 0 {
		if _, err := application.NewBuffer("*scratch*", ""); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	for _, path := range opts.files {
		if _, err := application.Open(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	var script io.Reader = os.Stdin
	prompt := ""
	if opts.scriptPath != "" {
		f, err := os.Open(opts.scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		script = f
	} else if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		prompt = "> "
	}

	failed, err := application.Run(ctx, script, os.Stdout, prompt)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if failed > 0 {
		return 2
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.scriptPath, "script", "", "Read commands from file instead of stdin")
	flag.StringVar(&opts.scriptPath, "s", "", "Read commands from file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.readOnly, "readonly", false, "Open files in read-only mode")
	flag.BoolVar(&opts.readOnly, "R", false, "Open files in read-only mode (shorthand)")
	flag.BoolVar(&opts.watch, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "stormcore - scriptable text editing core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: stormcore [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  stormcore                      Edit a scratch buffer from stdin\n")
		fmt.Fprintf(os.Stderr, "  stormcore file.go              Open a file\n")
		fmt.Fprintf(os.Stderr, "  stormcore -s edits.txt file.go Apply a command script\n")
		fmt.Fprintf(os.Stderr, "  echo help | stormcore          List commands\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("stormcore %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	opts.files = flag.Args()
	return opts
}
