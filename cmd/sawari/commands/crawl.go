package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/sawari_expert/internal/carexpert"
	"github.com/dgnsrekt/sawari_expert/internal/crawl"
	"github.com/dgnsrekt/sawari_expert/internal/notify"
	"github.com/dgnsrekt/sawari_expert/internal/snapshot"
	"github.com/dgnsrekt/sawari_expert/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var spiderCommands = []struct {
	name  string
	short string
	start string
}{
	{carexpert.SpiderModel, "Scrape model pages: model info, pros/cons, FAQs and variant cards.", "https://www.carexpert.com.au/mg/mg4"},
	{carexpert.SpiderVariants, "Scrape variant configuration names from features-and-specs pages.", "https://www.carexpert.com.au/ford/ranger/xl/features-and-specs"},
	{carexpert.SpiderSpecs, "Scrape the specification accordions of variant pages.", "https://www.carexpert.com.au/mg/hs/2025-vibe-jsawk8g520250601"},
	{carexpert.SpiderSections, "Scrape feature and specification sections of variant pages.", "https://www.carexpert.com.au/ford/ranger/2026-xl-jo5ga5kk20250910"},
	{carexpert.SpiderFAQ, "Scrape the FAQ accordions of model pages.", "https://www.carexpert.com.au/mg/hs"},
	{carexpert.SpiderComprehensive, "Scrape model pages, then every linked variant's sections.", "https://www.carexpert.com.au/mg/mg-s5-ev"},
}

func init() {
	for _, sc := range spiderCommands {
		var (
			urls        []string
			urlFile     string
			concurrency int
		)
		cmd := &cobra.Command{
			Use:   sc.name + " [--url <page>]... [--url-file <path>]",
			Short: sc.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				targets, err := collectURLs(urls, urlFile)
				if err != nil {
					return err
				}
				if len(targets) == 0 {
					targets = []string{sc.start}
				}
				if cmd.Flags().Changed("concurrency") {
					cfg.Concurrency = concurrency
				}
				return runSpider(cmd, sc.name, targets)
			},
		}
		cmd.Flags().StringArrayVar(&urls, "url", nil, "Page URL to scrape (repeatable).")
		cmd.Flags().StringVar(&urlFile, "url-file", "", "File with one page URL per line.")
		cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Pages in flight at once (defaults to --tabs).")
		rootCmd.AddCommand(cmd)
	}
}

// collectURLs merges flag URLs with those listed in path, skipping blank
// lines and # comments.
func collectURLs(urls []string, path string) ([]string, error) {
	out := append([]string(nil), urls...)
	if path == "" {
		return out, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return out, nil
}

func newScraper() (*carexpert.Scraper, *snapshot.Store, error) {
	if !cfg.SaveDebugHTML {
		return carexpert.NewScraper(nil), nil, nil
	}
	store, err := snapshot.NewStore(cfg.DebugDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return carexpert.NewScraper(store), store, nil
}

func runSpider(cmd *cobra.Command, spider string, urls []string) error {
	ctx := cmd.Context()

	scraper, _, err := newScraper()
	if err != nil {
		return err
	}
	sink := storage.NewItemSink(cfg.OutputDir, cfg.BufferSize, cfg.MaxFileSizeMB)
	p := newPool(cfg)
	defer p.release()

	runner := &crawl.Runner{
		Dispatcher:  p.dispatcher,
		Scraper:     scraper,
		Sink:        sink,
		Concurrency: cfg.Concurrency,
	}

	slog.Info("crawl starting", "spider", spider, "urls", len(urls), "tabs", cfg.MaxTabs, "browser", cfg.BrowserKind)
	sum, runErr := runner.Run(ctx, spider, urls)
	p.release()
	if err := sink.Close(); err != nil {
		slog.Error("output close failed", "error", err)
	}

	completion := notify.Completion{Spider: spider, Requested: len(urls), Err: runErr}
	if sum != nil {
		completion.Requested = sum.Requested
		completion.Succeeded = sum.Succeeded
		completion.Failed = sum.Failed
		completion.Items = sum.Items
		completion.Elapsed = sum.Elapsed
		for _, f := range sum.Failures {
			slog.Warn("page failed", "url", f.URL, "code", f.Code, "error", f.Error)
		}
		slog.Info("crawl finished",
			"spider", spider,
			"requested", sum.Requested,
			"succeeded", sum.Succeeded,
			"failed", sum.Failed,
			"items", sum.Items,
			"elapsed_ms", sum.Elapsed.Milliseconds(),
		)
	}
	for kind, n := range sink.Counts() {
		slog.Info("rows written", "kind", kind, "rows", n)
	}

	notifyCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := notify.SendCompletion(notifyCtx, http.DefaultClient, cfg.NotifyURL, completion); err != nil {
		slog.Warn("completion notification failed", "error", err)
	}

	if ctx.Err() != nil {
		slog.Warn("crawl interrupted", "spider", spider)
		return nil
	}
	return runErr
}
