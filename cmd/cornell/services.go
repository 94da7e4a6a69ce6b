package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/cornell/internal/config"
	"github.com/jackzampolin/cornell/internal/home"
	"github.com/jackzampolin/cornell/internal/metrics"
	"github.com/jackzampolin/cornell/internal/prompts"
	"github.com/jackzampolin/cornell/internal/providers"
	"github.com/jackzampolin/cornell/internal/svcctx"
)

// loadServices reads config, sets up logging and the provider registry, and
// attaches the result to the command context.
func loadServices(cmd *cobra.Command) (*svcctx.Services, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if f := mgr.ConfigFile(); f != "" {
		logger.Debug("loaded config", "file", f)
	}

	reg := providers.NewRegistry()
	reg.SetLogger(logger)
	reg.Reload(cfg.ToProviderRegistryConfig())

	// Keep the registry in sync with config edits
	mgr.OnChange(func(c *config.Config) {
		logger.Info("config changed, reloading providers")
		reg.Reload(c.ToProviderRegistryConfig())
	})

	s := &svcctx.Services{
		Config:   mgr,
		Registry: reg,
		Metrics:  metrics.NewRecorder(),
		Logger:   logger,
		Home:     h,
		Prompts:  prompts.NewDefaultResolver(prompts.NewStore(h.PromptsDir()), logger),
	}
	cmd.SetContext(svcctx.WithServices(cmd.Context(), s))
	return s, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// readInput reads the named file, or stdin when name is empty or "-".
// Input must be valid UTF-8.
func readInput(cmd *cobra.Command, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "" || name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("input %s is not valid UTF-8", displayName(name))
	}
	return string(data), nil
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "<stdin>"
	}
	return name
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// writeMetrics exports the recorder when a metrics file is configured.
// The flag wins over metrics_file in config.
func writeMetrics(ctx context.Context, flagPath string) error {
	path := flagPath
	if path == "" {
		if cm := svcctx.ConfigFrom(ctx); cm != nil {
			path = cm.Get().MetricsFile
		}
	}
	if path == "" {
		return nil
	}
	if err := svcctx.MetricsFrom(ctx).WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	svcctx.LoggerFrom(ctx).Debug("wrote metrics", "file", path)
	return nil
}
