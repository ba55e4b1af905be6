package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgnsrekt/sawari_expert/internal/carexpert"
	"github.com/dgnsrekt/sawari_expert/internal/crawl"
	"github.com/dgnsrekt/sawari_expert/internal/snapshot"
	"github.com/dgnsrekt/sawari_expert/internal/tabpool"
)

// Error codes added on top of the pool's.
const (
	CodeValidation = "VALIDATION"
	CodeNotFound   = "NOT_FOUND"
)

// ScrapedItem tags an extracted record with its kind.
type ScrapedItem struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// ScrapeResult is the outcome of scraping one page on demand.
type ScrapeResult struct {
	Spider string        `json:"spider"`
	URL    string        `json:"url"`
	Items  []ScrapedItem `json:"items"`
	Follow []string      `json:"follow,omitempty"`
	Stored bool          `json:"stored"`
}

// Service exposes scraping and pool inspection to the HTTP API.
type Service struct {
	runner  *crawl.Runner
	manager *tabpool.SessionManager
	snaps   *snapshot.Store
}

// NewService wires the shared runner and manager. snaps may be nil when
// debug snapshots are disabled.
func NewService(runner *crawl.Runner, manager *tabpool.SessionManager, snaps *snapshot.Store) *Service {
	return &Service{runner: runner, manager: manager, snaps: snaps}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &tabpool.CodedError{Code: CodeValidation, Message: fieldName + " is required"}
	}
	return nil
}

func (s *Service) requireSpider(name string) error {
	if err := s.requireNonEmpty(name, "spider"); err != nil {
		return err
	}
	if _, err := carexpert.Spider(name); err != nil {
		return &tabpool.CodedError{Code: CodeValidation, Message: fmt.Sprintf("spider must be one of %s", strings.Join(carexpert.SpiderNames(), ", "))}
	}
	return nil
}

func (s *Service) requireCarExpertURL(raw string) error {
	if err := s.requireNonEmpty(raw, "url"); err != nil {
		return err
	}
	if !strings.HasPrefix(strings.TrimSpace(raw), carexpert.BaseURL+"/") {
		return &tabpool.CodedError{Code: CodeValidation, Message: "url must start with " + carexpert.BaseURL + "/"}
	}
	return nil
}

func (s *Service) Spiders() []string {
	return carexpert.SpiderNames()
}

func (s *Service) PoolStats(context.Context) (tabpool.Stats, error) {
	return s.manager.Stats(), nil
}

// Scrape runs one spider on one page. With store set the items are also
// written to the output directory.
func (s *Service) Scrape(ctx context.Context, spider, pageURL string, store bool) (ScrapeResult, error) {
	if err := s.requireSpider(spider); err != nil {
		return ScrapeResult{}, err
	}
	if err := s.requireCarExpertURL(pageURL); err != nil {
		return ScrapeResult{}, err
	}
	pageURL = strings.TrimSpace(pageURL)

	res, err := s.runner.Scrape(ctx, spider, pageURL)
	if err != nil {
		if errors.Is(err, carexpert.ErrNotFound) {
			return ScrapeResult{}, &tabpool.CodedError{Code: CodeNotFound, Message: "page did not contain the expected content", Cause: err}
		}
		return ScrapeResult{}, err
	}

	out := ScrapeResult{Spider: spider, URL: pageURL, Follow: res.Follow, Items: make([]ScrapedItem, 0, len(res.Items))}
	for _, it := range res.Items {
		out.Items = append(out.Items, ScrapedItem{Kind: it.Kind(), Data: it})
	}
	if store && s.runner.Sink != nil && len(res.Items) > 0 {
		if err := s.runner.Sink.Write(pageURL, res.Items); err != nil {
			return out, fmt.Errorf("store items: %w", err)
		}
		out.Stored = true
	}
	return out, nil
}

// Crawl runs a spider over urls and stores the results.
func (s *Service) Crawl(ctx context.Context, spider string, urls []string) (crawl.Summary, error) {
	if err := s.requireSpider(spider); err != nil {
		return crawl.Summary{}, err
	}
	if len(urls) == 0 {
		return crawl.Summary{}, &tabpool.CodedError{Code: CodeValidation, Message: "urls is required"}
	}
	for _, u := range urls {
		if err := s.requireCarExpertURL(u); err != nil {
			return crawl.Summary{}, err
		}
	}
	sum, err := s.runner.Run(ctx, spider, urls)
	if sum == nil {
		return crawl.Summary{}, err
	}
	return *sum, err
}

func (s *Service) store() (*snapshot.Store, error) {
	if s.snaps == nil {
		return nil, &tabpool.CodedError{Code: CodeNotFound, Message: "debug snapshots are disabled"}
	}
	return s.snaps, nil
}

func (s *Service) ListSnapshots(context.Context) ([]snapshot.SnapshotMeta, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return st.List()
}

func (s *Service) GetSnapshot(_ context.Context, id string) (snapshot.SnapshotMeta, error) {
	st, err := s.store()
	if err != nil {
		return snapshot.SnapshotMeta{}, err
	}
	meta, err := st.Get(strings.TrimSpace(id))
	return meta, snapshotErr(err)
}

func (s *Service) ReadSnapshotHTML(_ context.Context, id string) ([]byte, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	data, err := st.ReadHTML(strings.TrimSpace(id))
	return data, snapshotErr(err)
}

func (s *Service) DeleteSnapshot(_ context.Context, id string) error {
	st, err := s.store()
	if err != nil {
		return err
	}
	return snapshotErr(st.Delete(strings.TrimSpace(id)))
}

func snapshotErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, snapshot.ErrInvalidID):
		return &tabpool.CodedError{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, snapshot.ErrNotFound):
		return &tabpool.CodedError{Code: CodeNotFound, Message: err.Error()}
	}
	return err
}
