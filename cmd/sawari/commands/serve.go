package commands

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/sawari_expert/internal/api"
	"github.com/dgnsrekt/sawari_expert/internal/config"
	"github.com/dgnsrekt/sawari_expert/internal/controller"
	"github.com/dgnsrekt/sawari_expert/internal/crawl"
	"github.com/dgnsrekt/sawari_expert/internal/netutil"
	"github.com/dgnsrekt/sawari_expert/internal/storage"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scrape API over one shared browser session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		srvCfg, err := config.LoadServer()
		if err != nil {
			return err
		}
		slog.Info("server config loaded",
			"bind_addr", srvCfg.BindAddr,
			"port_auto_fallback", srvCfg.PortAutoFallback,
			"port_candidates", srvCfg.PortCandidates,
		)

		bindAddr, err := netutil.SelectBindAddr(srvCfg.BindAddr, srvCfg.PortCandidates, srvCfg.PortAutoFallback)
		if err != nil {
			slog.Error("failed to select bind address", "preferred", srvCfg.BindAddr, "error", err)
			return err
		}

		scraper, snaps, err := newScraper()
		if err != nil {
			return err
		}
		sink := storage.NewItemSink(cfg.OutputDir, cfg.BufferSize, cfg.MaxFileSizeMB)
		defer func() {
			if err := sink.Close(); err != nil {
				slog.Error("output close failed", "error", err)
			}
		}()
		p := newPool(cfg)
		defer p.release()

		runner := &crawl.Runner{
			Dispatcher:  p.dispatcher,
			Scraper:     scraper,
			Sink:        sink,
			Concurrency: cfg.Concurrency,
		}
		svc := controller.NewService(runner, p.manager, snaps)
		srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc)}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("api listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			slog.Error("api server failed", "error", err)
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("api shutdown failed", "error", err)
		}
		return nil
	},
}
