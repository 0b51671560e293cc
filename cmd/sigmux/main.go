// Package main is the sigmux command: load a signal table, build a
// dispatcher, and announce a signal.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/sigmux/internal/config"
	"github.com/dshills/sigmux/internal/config/watcher"
	"github.com/dshills/sigmux/internal/diag"
	sig "github.com/dshills/sigmux/internal/signal"
	"github.com/dshills/sigmux/internal/signal/luamod"
	"gopkg.in/yaml.v3"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath  string
	root        string
	sender      string
	params      string
	watch       bool
	verbose     bool
	showVersion bool
	signal      string
}

func run() int {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if opts.showVersion {
		fmt.Printf("sigmux %s (%s)\n", version, commit)
		return 0
	}

	logLevel := slog.LevelInfo
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	var params any
	if opts.params != "" {
		if err := yaml.Unmarshal([]byte(opts.params), &params); err != nil {
			fmt.Fprintf(os.Stderr, "Error: parsing -params: %v\n", err)
			return 2
		}
	}

	dispatch := func() int {
		table, err := config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

		loader, err := luamod.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: creating module loader: %v\n", err)
			return 1
		}
		defer loader.Close()

		d := sig.New(table,
			sig.WithRoot(opts.root),
			sig.WithLoader(loader),
			sig.WithSink(diag.NewSlog(logger)),
		)

		handled, err := d.Dispatch(opts.signal, opts.sender, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if !handled {
			logger.Info("no receivers registered", "signal", opts.signal)
		}
		return 0
	}

	if code := dispatch(); code != 0 || !opts.watch {
		return code
	}

	// Watch mode: re-announce the signal whenever the table changes.
	changed := make(chan string, 1)
	w, err := watcher.New(opts.configPath, func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: watching %s: %v\n", opts.configPath, err)
		return 1
	}
	defer w.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("watching signal table", "path", w.Path())
	for {
		select {
		case <-stop:
			return 0
		case <-changed:
			logger.Info("signal table changed, re-dispatching", "signal", opts.signal)
			if code := dispatch(); code != 0 {
				return code
			}
		}
	}
}

func parseFlags() (options, error) {
	var opts options

	flag.StringVar(&opts.configPath, "config", "signals.toml", "signal table file (TOML or YAML)")
	flag.StringVar(&opts.root, "root", ".", "application root for receiver module paths")
	flag.StringVar(&opts.sender, "sender", "cli", "sender identity label")
	flag.StringVar(&opts.params, "params", "", "signal payload as inline YAML")
	flag.BoolVar(&opts.watch, "watch", false, "re-dispatch when the signal table changes")
	flag.BoolVar(&opts.verbose, "v", false, "verbose diagnostics")
	flag.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	flag.Parse()

	if opts.showVersion {
		return opts, nil
	}

	if flag.NArg() != 1 {
		return opts, fmt.Errorf("usage: sigmux [flags] <signal>")
	}
	opts.signal = flag.Arg(0)
	return opts, nil
}
