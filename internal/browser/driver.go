// Package browser wraps the browser automation engines behind one driver
// contract: a single browser process with several tabs and one active tab
// that receives commands.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// Engine kinds.
const (
	KindPrimary   = "primary"   // Chromium over CDP (chromedp)
	KindSecondary = "secondary" // Firefox over playwright
)

// ErrUnknownTab is returned when a handle does not belong to the driver.
var ErrUnknownTab = errors.New("unknown tab handle")

// Driver is one running browser process. Commands other than TabHandles,
// OpenTab and Quit act on the active tab selected by SwitchTo. Drivers are not
// required to be safe for concurrent command issuance; callers serialize.
type Driver interface {
	// TabHandles enumerates the handles of all open tabs.
	TabHandles(ctx context.Context) ([]string, error)
	// CurrentTab returns the handle of the active tab.
	CurrentTab(ctx context.Context) (string, error)
	// OpenTab opens a new blank tab in the same window.
	OpenTab(ctx context.Context) error
	// SwitchTo makes handle the active tab.
	SwitchTo(ctx context.Context, handle string) error
	// Navigate loads url in the active tab.
	Navigate(ctx context.Context, url string) error
	// Content returns the active tab's serialized document.
	Content(ctx context.Context) (string, error)
	// CurrentURL returns the active tab's resolved address.
	CurrentURL(ctx context.Context) (string, error)
	// Evaluate runs a JavaScript expression in the active tab and decodes
	// its JSON result into out (out may be nil).
	Evaluate(ctx context.Context, expression string, out any) error
	// Quit terminates the browser process.
	Quit(ctx context.Context) error
}

// Options configures a browser launch.
type Options struct {
	Kind          string
	Headless      bool
	ExtensionPath string
	BrowserPath   string
	CDPAddress    string
	CDPPort       int
}

// LaunchFunc starts a browser and returns its driver.
type LaunchFunc func(ctx context.Context, opts Options) (Driver, error)

// Launch starts the engine named by opts.Kind.
func Launch(ctx context.Context, opts Options) (Driver, error) {
	switch opts.Kind {
	case "", KindPrimary:
		return LaunchChrome(ctx, opts)
	case KindSecondary:
		return LaunchFirefox(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported browser kind %q", opts.Kind)
	}
}
