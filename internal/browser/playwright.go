package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// firefoxDriver drives Firefox through playwright. All tabs are pages of a
// single browser context so they share one window and one cookie jar.
type firefoxDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext

	mu      sync.Mutex
	pages   map[string]playwright.Page
	handles map[playwright.Page]string
	active  string
}

// LaunchFirefox installs the playwright Firefox build if needed, starts it and
// opens the initial tab.
func LaunchFirefox(ctx context.Context, opts Options) (Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runOpts := &playwright.RunOptions{
		Browsers: []string{"firefox"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	if opts.ExtensionPath != "" {
		slog.Warn("extensions are not supported for the secondary browser (continuing)", "path", opts.ExtensionPath)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		FirefoxUserPrefs: map[string]interface{}{
			"browser.link.open_newwindow":             3,
			"browser.link.open_newwindow.restriction": 0,
		},
	}
	if opts.BrowserPath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.BrowserPath)
	}
	b, err := pw.Firefox.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	d := &firefoxDriver{
		pw:      pw,
		browser: b,
		bctx:    bctx,
		pages:   make(map[string]playwright.Page),
		handles: make(map[playwright.Page]string),
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = d.Quit(ctx)
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	d.active = d.track(page)
	slog.Info("firefox started", "headless", opts.Headless, "initial_tab", d.active)
	return d, nil
}

// track assigns a handle to page, reusing an existing one. Caller holds no lock.
func (d *firefoxDriver) track(page playwright.Page) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if h, ok := d.handles[page]; ok {
		return h
	}
	h := uuid.NewString()
	d.handles[page] = h
	d.pages[h] = page
	return h
}

func (d *firefoxDriver) TabHandles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages := d.bctx.Pages()
	handles := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.IsClosed() {
			continue
		}
		handles = append(handles, d.track(p))
	}
	return handles, nil
}

func (d *firefoxDriver) CurrentTab(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active, nil
}

func (d *firefoxDriver) OpenTab(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := d.bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	d.track(page)
	return nil
}

func (d *firefoxDriver) SwitchTo(_ context.Context, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	page, ok := d.pages[handle]
	if !ok || page.IsClosed() {
		return ErrUnknownTab
	}
	if err := page.BringToFront(); err != nil {
		return fmt.Errorf("switch to tab %s: %w", handle, err)
	}
	d.active = handle
	return nil
}

func (d *firefoxDriver) Navigate(ctx context.Context, url string) error {
	gotoOpts := playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}
	if dl, ok := ctx.Deadline(); ok {
		// playwright reads a zero timeout as no timeout.
		remaining := time.Until(dl).Milliseconds()
		if remaining <= 0 {
			return context.DeadlineExceeded
		}
		gotoOpts.Timeout = playwright.Float(float64(remaining))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	page, err := d.current()
	if err != nil {
		return err
	}
	if _, err := page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *firefoxDriver) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, err := d.current()
	if err != nil {
		return "", err
	}
	return page.Content()
}

func (d *firefoxDriver) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, err := d.current()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}

func (d *firefoxDriver) Evaluate(ctx context.Context, expression string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := d.current()
	if err != nil {
		return err
	}
	result, err := page.Evaluate(expression)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if out == nil || result == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode evaluate result: %w", err)
	}
	return json.Unmarshal(raw, out)
}

func (d *firefoxDriver) Quit(context.Context) error {
	var firstErr error
	if d.bctx != nil {
		if err := d.bctx.Close(); err != nil {
			firstErr = err
		}
	}
	if d.browser != nil {
		if err := d.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.pw != nil {
		if err := d.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *firefoxDriver) current() (playwright.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	page, ok := d.pages[d.active]
	if !ok {
		return nil, ErrUnknownTab
	}
	return page, nil
}
