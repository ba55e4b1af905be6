package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/sawari_expert/internal/controller"
	"github.com/dgnsrekt/sawari_expert/internal/crawl"
	"github.com/dgnsrekt/sawari_expert/internal/snapshot"
	"github.com/dgnsrekt/sawari_expert/internal/tabpool"
)

type Service interface {
	Spiders() []string
	PoolStats(ctx context.Context) (tabpool.Stats, error)
	Scrape(ctx context.Context, spider, pageURL string, store bool) (controller.ScrapeResult, error)
	Crawl(ctx context.Context, spider string, urls []string) (crawl.Summary, error)
	ListSnapshots(ctx context.Context) ([]snapshot.SnapshotMeta, error)
	GetSnapshot(ctx context.Context, id string) (snapshot.SnapshotMeta, error)
	ReadSnapshotHTML(ctx context.Context, id string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Sawari Expert Scraper API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerMiscHandlers(api, svc)
	registerScrapeHandlers(api, svc)
	registerSnapshotHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return huma.Error503ServiceUnavailable("request canceled")
	}
	var coded *tabpool.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case controller.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case controller.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case tabpool.CodePoolExhausted, tabpool.CodeSessionClosed:
			return huma.Error503ServiceUnavailable(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		case tabpool.CodeNavigationFailure, tabpool.CodeLaunchFailure:
			return huma.Error502BadGateway(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
