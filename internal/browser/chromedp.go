package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/sawari_expert/internal/netutil"
)

// chromeDriver drives Chromium over one CDP connection. Every tab context is
// derived from browserCtx so all tabs share that connection.
type chromeDriver struct {
	launcher    *Launcher
	profileDir  string
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc

	mu     sync.Mutex
	tabs   map[target.ID]*chromeTab
	active target.ID
}

type chromeTab struct {
	id     target.ID
	ctx    context.Context
	cancel context.CancelFunc
}

// LaunchChrome starts Chromium with remote debugging enabled and attaches to
// its initial tab.
func LaunchChrome(ctx context.Context, opts Options) (Driver, error) {
	address := opts.CDPAddress
	if address == "" {
		address = "127.0.0.1"
	}
	port := opts.CDPPort
	if port == 0 {
		p, err := netutil.FreePort(address)
		if err != nil {
			return nil, err
		}
		port = p
	}

	profileDir, err := os.MkdirTemp("", "sawari-chrome-")
	if err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	l := NewLauncher(LauncherConfig{
		CDPAddress:    address,
		CDPPort:       port,
		BrowserPath:   opts.BrowserPath,
		ProfileDir:    profileDir,
		Headless:      opts.Headless,
		ExtensionPath: opts.ExtensionPath,
	})
	if err := l.Launch(ctx); err != nil {
		_ = os.RemoveAll(profileDir)
		return nil, err
	}

	d := &chromeDriver{
		launcher:   l,
		profileDir: profileDir,
		tabs:       make(map[target.ID]*chromeTab),
	}
	if err := d.attachInitial(ctx); err != nil {
		d.shutdown()
		return nil, err
	}
	return d, nil
}

func (d *chromeDriver) attachInitial(ctx context.Context) error {
	pages, err := d.launcher.PageTargets(ctx)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("browser reported no page targets")
	}
	initial := target.ID(pages[0].ID)

	d.allocCtx, d.allocCancel = chromedp.NewRemoteAllocator(context.Background(), d.launcher.URL())
	d.browserCtx, d.browserStop = chromedp.NewContext(d.allocCtx, chromedp.WithTargetID(initial))
	if err := chromedp.Run(d.browserCtx); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	d.tabs[initial] = &chromeTab{id: initial, ctx: d.browserCtx, cancel: d.browserStop}
	d.active = initial
	slog.Info("attached to initial tab", "target_id", initial, "pid", d.launcher.PID())
	return nil
}

func (d *chromeDriver) TabHandles(ctx context.Context) ([]string, error) {
	runCtx, cancel := bound(ctx, d.browserCtx)
	defer cancel()

	infos, err := chromedp.Targets(runCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate targets: %w", err)
	}
	handles := make([]string, 0, len(infos))
	for _, t := range infos {
		if t.Type != "page" {
			continue
		}
		handles = append(handles, string(t.TargetID))
	}
	return handles, nil
}

func (d *chromeDriver) CurrentTab(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.active), nil
}

func (d *chromeDriver) OpenTab(ctx context.Context) error {
	runCtx, cancel := bound(ctx, d.browserCtx)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		_, err := target.CreateTarget("about:blank").Do(cdp.WithExecutor(ctx, c.Browser))
		return err
	}))
}

func (d *chromeDriver) SwitchTo(ctx context.Context, handle string) error {
	id := target.ID(handle)

	d.mu.Lock()
	if _, ok := d.tabs[id]; ok {
		d.active = id
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	// The first Run starts the tab's event loop, which lives as long as the
	// context it ran on. It must be tabCtx, not a bound command context.
	tabCtx, tabCancel := chromedp.NewContext(d.browserCtx, chromedp.WithTargetID(id))
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return fmt.Errorf("attach to tab %s: %w", handle, err)
	}

	d.mu.Lock()
	d.tabs[id] = &chromeTab{id: id, ctx: tabCtx, cancel: tabCancel}
	d.active = id
	d.mu.Unlock()
	slog.Debug("attached to tab", "target_id", id)
	return nil
}

func (d *chromeDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *chromeDriver) Content(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (d *chromeDriver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := d.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (d *chromeDriver) Evaluate(ctx context.Context, expression string, out any) error {
	if out == nil {
		return d.run(ctx, chromedp.Evaluate(expression, nil))
	}
	var raw []byte
	if err := d.run(ctx, chromedp.Evaluate(expression, &raw)); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (d *chromeDriver) Quit(context.Context) error {
	d.shutdown()
	return nil
}

func (d *chromeDriver) shutdown() {
	d.mu.Lock()
	for id, tab := range d.tabs {
		if tab.ctx != d.browserCtx {
			tab.cancel()
		}
		delete(d.tabs, id)
	}
	d.mu.Unlock()

	if d.browserStop != nil {
		d.browserStop()
	}
	if d.allocCancel != nil {
		d.allocCancel()
	}
	d.launcher.Stop()
	if d.profileDir != "" {
		_ = os.RemoveAll(d.profileDir)
	}
}

// run executes actions against the active tab.
func (d *chromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	d.mu.Lock()
	tab, ok := d.tabs[d.active]
	d.mu.Unlock()
	if !ok {
		return ErrUnknownTab
	}

	runCtx, cancel := bound(ctx, tab.ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// bound derives a context from a chromedp context that also honors the
// caller's deadline and cancellation. Canceling it never closes the tab.
func bound(caller, chromeCtx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(chromeCtx)
	if dl, ok := caller.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, dl)
		prev := cancel
		cancel = func() { cancelDeadline(); prev() }
	}
	stop := context.AfterFunc(caller, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
