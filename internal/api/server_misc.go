package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/sawari_expert/internal/tabpool"
)

func registerMiscHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/api/v1/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type poolOutput struct {
		Body tabpool.Stats
	}
	huma.Register(api, huma.Operation{OperationID: "pool-stats", Method: http.MethodGet, Path: "/api/v1/pool", Summary: "Tab pool occupancy and counters", Tags: []string{"Pool"}},
		func(ctx context.Context, input *struct{}) (*poolOutput, error) {
			stats, err := svc.PoolStats(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &poolOutput{Body: stats}, nil
		})

	type spidersOutput struct {
		Body struct {
			Spiders []string `json:"spiders"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-spiders", Method: http.MethodGet, Path: "/api/v1/spiders", Summary: "List available spiders", Tags: []string{"Scrape"}},
		func(ctx context.Context, input *struct{}) (*spidersOutput, error) {
			out := &spidersOutput{}
			out.Body.Spiders = svc.Spiders()
			return out, nil
		})
}
