package tabpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/sawari_expert/internal/browser"
	"github.com/dgnsrekt/sawari_expert/internal/config"
)

const blankURL = "about:blank"

// ErrPageReleased is returned by Page commands issued after Dispatch returned.
var ErrPageReleased = errors.New("page used after its tab was released")

// Request is one extraction task.
type Request struct {
	URL  string
	Meta map[string]string
}

// Response is the page state captured for a request. Page stays bound to the
// same live tab until the ExtractFunc returns.
type Response struct {
	URL       string
	Body      []byte
	Request   Request
	SessionID string
	TabID     TabID
	Page      *Page
}

// Text returns the captured document as a string.
func (r *Response) Text() string { return string(r.Body) }

// ExtractFunc consumes a response while its tab is still held.
type ExtractFunc func(ctx context.Context, resp *Response) error

// Page issues further commands against the tab a response was captured from.
// Each command takes the session command lock and switches to the tab first.
type Page struct {
	session  *Session
	tab      TabID
	timeout  time.Duration
	released atomic.Bool
}

func (p *Page) TabID() TabID { return p.tab }

func (p *Page) do(ctx context.Context, fn func(context.Context, browser.Driver) error) error {
	if p.released.Load() {
		return ErrPageReleased
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.session.withTab(ctx, p.tab, func(d browser.Driver) error {
		return fn(ctx, d)
	})
}

// Evaluate runs a JavaScript expression in the tab and decodes its result.
func (p *Page) Evaluate(ctx context.Context, expression string, out any) error {
	return p.do(ctx, func(ctx context.Context, d browser.Driver) error {
		return d.Evaluate(ctx, expression, out)
	})
}

// HTML returns a fresh snapshot of the tab's document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.do(ctx, func(ctx context.Context, d browser.Driver) error {
		var err error
		html, err = d.Content(ctx)
		return err
	})
	return html, err
}

// URL returns the tab's current address.
func (p *Page) URL(ctx context.Context) (string, error) {
	var url string
	err := p.do(ctx, func(ctx context.Context, d browser.Driver) error {
		var err error
		url, err = d.CurrentURL(ctx)
		return err
	})
	return url, err
}

// Navigate loads url in the tab.
func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.do(ctx, func(ctx context.Context, d browser.Driver) error {
		return d.Navigate(ctx, url)
	})
}

// Dispatcher binds requests to tabs of the manager's session. Several
// dispatchers may share one manager; the first to dispatch configures it.
type Dispatcher struct {
	manager *SessionManager
	opts    Options
}

func NewDispatcher(m *SessionManager, opts Options) *Dispatcher {
	return &Dispatcher{manager: m, opts: opts}
}

func (d *Dispatcher) Manager() *SessionManager { return d.manager }

// Dispatch acquires a tab, navigates it to req.URL, captures the document and
// runs extract while the tab is held. The tab returns to the pool on every
// exit path. extract may be nil.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, extract ExtractFunc) (*Response, error) {
	m := d.manager
	m.dispatched.Add(1)

	resp, err := d.dispatch(ctx, req, extract)
	if err != nil {
		m.failed.Add(1)
	}
	return resp, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request, extract ExtractFunc) (*Response, error) {
	m := d.manager
	session, err := m.AcquireOrCreate(ctx, d.opts)
	if err != nil {
		return nil, err
	}

	tab, err := session.pool.Acquire(ctx, m.cfg.AcquireTimeout)
	if err != nil {
		return nil, err
	}

	navFailed := false
	page := &Page{session: session, tab: tab, timeout: m.cfg.NavigationTimeout}
	defer func() {
		page.released.Store(true)
		if navFailed && m.cfg.ResetPolicy == config.ResetBlank {
			d.resetTab(ctx, session, tab)
		}
		if err := session.pool.Release(tab); err != nil {
			slog.Error("failed to return tab to pool", "tab_id", tab.ShortID(), "error", err)
		}
	}()

	var body, resolved string
	navCtx := ctx
	if m.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, m.cfg.NavigationTimeout)
		defer cancel()
	}
	err = session.withTab(navCtx, tab, func(drv browser.Driver) error {
		if err := drv.Navigate(navCtx, req.URL); err != nil {
			return err
		}
		var err error
		if body, err = drv.Content(navCtx); err != nil {
			return fmt.Errorf("read content: %w", err)
		}
		if resolved, err = drv.CurrentURL(navCtx); err != nil {
			return fmt.Errorf("read url: %w", err)
		}
		return nil
	})
	if err != nil {
		if IsCode(err, CodeSessionClosed) {
			return nil, err
		}
		navFailed = true
		slog.Warn("navigation failed", "url", req.URL, "tab_id", tab.ShortID(), "error", err)
		return nil, newError(CodeNavigationFailure, fmt.Sprintf("navigate %s", req.URL), err)
	}
	session.registry.RecordUse(tab, resolved)

	resp := &Response{
		URL:       resolved,
		Body:      []byte(body),
		Request:   req,
		SessionID: session.ID,
		TabID:     tab,
		Page:      page,
	}
	slog.Debug("page captured", "url", resolved, "tab_id", tab.ShortID(), "bytes", len(body))

	if extract != nil {
		if err := extract(ctx, resp); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// resetTab points a tab that failed to navigate back at a blank page.
func (d *Dispatcher) resetTab(ctx context.Context, session *Session, tab TabID) {
	resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err := session.withTab(resetCtx, tab, func(drv browser.Driver) error {
		return drv.Navigate(resetCtx, blankURL)
	})
	if err != nil {
		slog.Warn("tab reset failed", "tab_id", tab.ShortID(), "error", err)
		return
	}
	slog.Debug("tab reset to blank", "tab_id", tab.ShortID())
}
