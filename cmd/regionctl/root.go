package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"regionnet/internal/config"
)

// Version is the current version of regionctl.
var Version = "0.1.0"

type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "regionctl",
		Short: "Build and run region computation graphs",
		Long: `regionctl builds a graph of Regions connected by Links from a YAML file,
runs it step by step in topological order and records what each Output held
after every step.

Examples:
  regionctl validate -f graph.yaml
  regionctl inspect -f graph.yaml
  regionctl run -f graph.yaml --steps 10
  regionctl run -f graph.yaml --store sqlite --db runs.db
  regionctl trace --run <id> --store sqlite --db runs.db`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error (default from config)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: auto|text|json (default from config)")

	root.AddCommand(
		newRunCmd(flags),
		newValidateCmd(),
		newInspectCmd(flags),
		newTraceCmd(flags),
		newKindsCmd(),
	)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("graph file is required (-f)")
	}
	return config.LoadFromPath(path)
}

// newLogger builds the slog logger for a command. Flags win over config;
// "auto" picks text for terminals and JSON otherwise.
func newLogger(w io.Writer, flags *globalFlags, cfg config.LogConfig) (*slog.Logger, error) {
	levelName := cfg.Level
	if flags.logLevel != "" {
		levelName = flags.logLevel
	}
	format := cfg.Format
	if flags.logFormat != "" {
		format = flags.logFormat
	}

	var level slog.Level
	switch strings.ToLower(levelName) {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level: %s", levelName)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "auto":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return slog.New(slog.NewTextHandler(w, opts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}
