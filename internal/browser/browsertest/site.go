// Package browsertest provides an in-memory browser.Driver that serves fixed
// pages, for tests of code built on the tab pool.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgnsrekt/sawari_expert/internal/browser"
)

// Site is a fake browser whose tabs can only visit the URLs in Pages.
// Navigating anywhere else fails like an unreachable host.
type Site struct {
	mu       sync.Mutex
	pages    map[string]string
	tabs     []string
	active   string
	urls     map[string]string
	visits   []string
	launches int
	quits    int
}

var _ browser.Driver = (*Site)(nil)

// NewSite creates a site serving pages keyed by URL.
func NewSite(pages map[string]string) *Site {
	return &Site{pages: pages}
}

// Launch is a browser.LaunchFunc that starts a fresh single-tab browser.
func (s *Site) Launch(context.Context, browser.Options) (browser.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launches++
	s.tabs = []string{"tab-0000"}
	s.active = "tab-0000"
	s.urls = map[string]string{"tab-0000": "about:blank"}
	return s, nil
}

// Launches returns how many times Launch ran.
func (s *Site) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches
}

// Quits returns how many times Quit ran.
func (s *Site) Quits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quits
}

// Visits lists every URL navigated to, in order.
func (s *Site) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

func (s *Site) TabHandles(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tabs...), nil
}

func (s *Site) CurrentTab(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

func (s *Site) OpenTab(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := fmt.Sprintf("tab-%04d", len(s.tabs))
	s.tabs = append(s.tabs, h)
	s.urls[h] = "about:blank"
	return nil
}

func (s *Site) SwitchTo(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[handle]; !ok {
		return browser.ErrUnknownTab
	}
	s.active = handle
	return nil
}

func (s *Site) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, url)
	if _, ok := s.pages[url]; !ok && url != "about:blank" {
		return fmt.Errorf("net::ERR_NAME_NOT_RESOLVED at %s", url)
	}
	s.urls[s.active] = url
	return nil
}

func (s *Site) Content(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[s.urls[s.active]], nil
}

func (s *Site) CurrentURL(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urls[s.active], nil
}

// Evaluate leaves out untouched, as if every script returned nothing.
func (s *Site) Evaluate(ctx context.Context, _ string, _ any) error {
	return ctx.Err()
}

func (s *Site) Quit(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
	return nil
}
