package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/sawari_expert/internal/controller"
	"github.com/dgnsrekt/sawari_expert/internal/crawl"
)

func registerScrapeHandlers(api huma.API, svc Service) {
	type scrapeInput struct {
		Body struct {
			Spider string `json:"spider" doc:"Spider name, see /api/v1/spiders"`
			URL    string `json:"url" doc:"carexpert.com.au page URL"`
			Store  bool   `json:"store,omitempty" doc:"Also write items to the output directory"`
		}
	}
	type scrapeOutput struct {
		Body controller.ScrapeResult
	}
	huma.Register(api, huma.Operation{OperationID: "scrape", Method: http.MethodPost, Path: "/api/v1/scrape", Summary: "Scrape one page on a pooled tab", Tags: []string{"Scrape"}},
		func(ctx context.Context, input *scrapeInput) (*scrapeOutput, error) {
			res, err := svc.Scrape(ctx, input.Body.Spider, input.Body.URL, input.Body.Store)
			if err != nil {
				return nil, mapErr(err)
			}
			return &scrapeOutput{Body: res}, nil
		})

	type crawlInput struct {
		Body struct {
			Spider string   `json:"spider" doc:"Spider name, see /api/v1/spiders"`
			URLs   []string `json:"urls" doc:"carexpert.com.au page URLs"`
		}
	}
	type crawlOutput struct {
		Body crawl.Summary
	}
	huma.Register(api, huma.Operation{OperationID: "crawl", Method: http.MethodPost, Path: "/api/v1/crawl", Summary: "Scrape many pages and store the items", Tags: []string{"Scrape"}},
		func(ctx context.Context, input *crawlInput) (*crawlOutput, error) {
			sum, err := svc.Crawl(ctx, input.Body.Spider, input.Body.URLs)
			if err != nil {
				return nil, mapErr(err)
			}
			return &crawlOutput{Body: sum}, nil
		})
}
