package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/sawari_expert/internal/config"
	"github.com/dgnsrekt/sawari_expert/internal/tabpool"
)

var (
	cfg         *config.Config
	flagTabs    int
	flagBrowser string
	flagHeaded  bool
)

var rootCmd = &cobra.Command{
	Use:           "sawari",
	Short:         "sawari scrapes carexpert.com.au model, variant and spec pages over a shared browser tab pool.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("tabs") {
			loaded.MaxTabs = flagTabs
			if !cmd.Flags().Changed("concurrency") {
				loaded.Concurrency = flagTabs
			}
		}
		if cmd.Flags().Changed("browser") {
			loaded.BrowserKind = config.NormalizeBrowserKind(flagBrowser)
		}
		if flagHeaded {
			loaded.Headless = false
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := setupLogger(loaded.LogLevel, loaded.LogFile); err != nil {
			return fmt.Errorf("logger setup failed: %w", err)
		}
		slog.Debug("config loaded",
			"browser", loaded.BrowserKind,
			"max_tabs", loaded.MaxTabs,
			"headless", loaded.Headless,
			"concurrency", loaded.Concurrency,
			"reset_policy", loaded.TabResetPolicy,
			"output_dir", loaded.OutputDir,
		)
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagTabs, "tabs", tabpool.DefaultTabCount, "Number of tabs in the shared browser session.")
	rootCmd.PersistentFlags().StringVar(&flagBrowser, "browser", config.BrowserPrimary, "Browser engine: primary (chromium) or secondary (firefox).")
	rootCmd.PersistentFlags().BoolVar(&flagHeaded, "headed", false, "Show the browser window.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// pool owns the process-wide session manager. release is idempotent so both
// the command's deferred cleanup and an early error path may call it.
type pool struct {
	manager    *tabpool.SessionManager
	dispatcher *tabpool.Dispatcher
	once       sync.Once
}

func newPool(c *config.Config) *pool {
	pc, opts := tabpool.FromConfig(c)
	m := tabpool.NewSessionManager(pc)
	return &pool{manager: m, dispatcher: tabpool.NewDispatcher(m, opts)}
}

func (p *pool) release() {
	p.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := p.manager.Release(ctx); err != nil {
			slog.Error("browser session release failed", "error", err)
		}
	})
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
