// Package crawl fans carexpert pages out over the shared tab pool and
// stores what the spiders extract.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/sawari_expert/internal/carexpert"
	"github.com/dgnsrekt/sawari_expert/internal/tabpool"
)

// Dispatcher runs one request on a pooled tab. *tabpool.Dispatcher
// satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req tabpool.Request, extract tabpool.ExtractFunc) (*tabpool.Response, error)
}

// Sink stores items extracted from a page.
type Sink interface {
	Write(pageURL string, items []carexpert.Item) error
}

// Failure is one page that could not be scraped.
type Failure struct {
	URL   string `json:"url"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

// Summary reports a finished run.
type Summary struct {
	Spider    string        `json:"spider"`
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     int           `json:"items"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Failures  []Failure     `json:"failures,omitempty"`
}

// Runner dispatches URLs concurrently. At most Concurrency pages are in
// flight; the pool bounds real tab use regardless.
type Runner struct {
	Dispatcher  Dispatcher
	Scraper     *carexpert.Scraper
	Sink        Sink
	Concurrency int
}

// Run scrapes urls with the named spider. Pages that fail to load or parse
// are logged and counted. A closed session, a failed launch or a canceled
// ctx aborts the whole run. The comprehensive spider crawls every variant
// page found on the model pages with the sections spider afterwards.
func (r *Runner) Run(ctx context.Context, spider string, urls []string) (*Summary, error) {
	start := time.Now()
	sum := &Summary{Spider: spider}

	fn, err := carexpert.Spider(spider)
	if err != nil {
		return sum, err
	}

	follow, err := r.runPass(ctx, fn, urls, sum)
	if err == nil && spider == carexpert.SpiderComprehensive && len(follow) > 0 {
		sections, _ := carexpert.Spider(carexpert.SpiderSections)
		slog.Info("crawling variant pages", "count", len(follow))
		_, err = r.runPass(ctx, sections, follow, sum)
	}

	sum.Elapsed = time.Since(start)
	slog.Info("crawl finished",
		"spider", spider,
		"requested", sum.Requested,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"items", sum.Items,
		"elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum, err
}

// Scrape runs the named spider on a single page and returns its result
// without storing it.
func (r *Runner) Scrape(ctx context.Context, spider, pageURL string) (*carexpert.Result, error) {
	fn, err := carexpert.Spider(spider)
	if err != nil {
		return nil, err
	}
	var out *carexpert.Result
	_, err = r.Dispatcher.Dispatch(ctx, tabpool.Request{URL: pageURL}, func(ctx context.Context, resp *tabpool.Response) error {
		res, err := fn(ctx, r.scraper(), resp.Page, resp.Request.URL)
		out = res
		return err
	})
	return out, err
}

func (r *Runner) scraper() *carexpert.Scraper {
	if r.Scraper == nil {
		return carexpert.NewScraper(nil)
	}
	return r.Scraper
}

func (r *Runner) runPass(ctx context.Context, fn carexpert.SpiderFunc, urls []string, sum *Summary) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	limit := r.Concurrency
	if limit < 1 {
		limit = tabpool.DefaultTabCount
	}
	g.SetLimit(limit)

	var (
		mu     sync.Mutex
		follow []string
		seen   = map[string]bool{}
	)
	scraper := r.scraper()

	for _, u := range dedupe(urls) {
		mu.Lock()
		sum.Requested++
		mu.Unlock()

		g.Go(func() error {
			var res *carexpert.Result
			_, err := r.Dispatcher.Dispatch(gctx, tabpool.Request{URL: u}, func(ctx context.Context, resp *tabpool.Response) error {
				var err error
				res, err = fn(ctx, scraper, resp.Page, resp.Request.URL)
				return err
			})
			if err == nil && r.Sink != nil && len(res.Items) > 0 {
				if werr := r.Sink.Write(u, res.Items); werr != nil {
					err = fmt.Errorf("store items: %w", werr)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if abort(gctx, err) {
					return err
				}
				sum.Failed++
				sum.Failures = append(sum.Failures, failure(u, err))
				slog.Warn("page failed", "url", u, "error", err)
				return nil
			}
			sum.Succeeded++
			sum.Items += len(res.Items)
			for _, f := range res.Follow {
				if !seen[f] {
					seen[f] = true
					follow = append(follow, f)
				}
			}
			slog.Info("page scraped", "url", u, "items", len(res.Items))
			return nil
		})
	}

	err := g.Wait()
	return follow, err
}

// abort reports whether err must stop the run.
func abort(ctx context.Context, err error) bool {
	if tabpool.Fatal(err) {
		return true
	}
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func failure(u string, err error) Failure {
	f := Failure{URL: u, Error: err.Error()}
	var coded *tabpool.CodedError
	if errors.As(err, &coded) {
		f.Code = coded.Code
	}
	return f
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
