package tabpool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/sawari_expert/internal/browser"
)

// fakeDriver is an in-memory browser. It flags any overlapping command so
// tests can assert the session lock serializes driver access.
type fakeDriver struct {
	mu         sync.Mutex
	tabs       []string
	active     string
	urls       map[string]string
	visits     map[string][]string
	navErr     map[string]error
	staleLists int
	quits      int

	inflight   atomic.Int32
	overlapped atomic.Bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		tabs:   []string{"tab-0000"},
		active: "tab-0000",
		urls:   map[string]string{"tab-0000": "about:blank"},
		visits: map[string][]string{},
		navErr: map[string]error{},
	}
}

func (f *fakeDriver) enter() func() {
	if f.inflight.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	return func() { f.inflight.Add(-1) }
}

func (f *fakeDriver) TabHandles(context.Context) ([]string, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleLists > 0 {
		f.staleLists--
		return append([]string(nil), f.tabs[:1]...), nil
	}
	return append([]string(nil), f.tabs...), nil
}

func (f *fakeDriver) CurrentTab(context.Context) (string, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, nil
}

func (f *fakeDriver) OpenTab(context.Context) error {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	h := fmt.Sprintf("tab-%04d", len(f.tabs))
	f.tabs = append(f.tabs, h)
	f.urls[h] = "about:blank"
	return nil
}

func (f *fakeDriver) SwitchTo(_ context.Context, handle string) error {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.urls[handle]; !ok {
		return browser.ErrUnknownTab
	}
	f.active = handle
	return nil
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	defer f.enter()()
	f.mu.Lock()
	err := f.navErr[url]
	tab := f.active
	f.visits[tab] = append(f.visits[tab], url)
	f.mu.Unlock()
	if errors.Is(err, context.DeadlineExceeded) {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.urls[tab] = url
	f.mu.Unlock()
	return nil
}

func (f *fakeDriver) Content(context.Context) (string, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("<html><body data-tab=%q>%s</body></html>", f.active, f.urls[f.active]), nil
}

func (f *fakeDriver) CurrentURL(context.Context) (string, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.urls[f.active], nil
}

// Evaluate answers every expression with the active tab handle.
func (f *fakeDriver) Evaluate(_ context.Context, _ string, out any) error {
	defer f.enter()()
	f.mu.Lock()
	active := f.active
	f.mu.Unlock()
	if out == nil {
		return nil
	}
	raw, _ := json.Marshal(active)
	return json.Unmarshal(raw, out)
}

func (f *fakeDriver) Quit(context.Context) error {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quits++
	return nil
}

func (f *fakeDriver) visitsFor(tab TabID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.visits[string(tab)]...)
}

func (f *fakeDriver) quitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quits
}

// fakeLauncher counts launches and hands out one driver per launch.
type fakeLauncher struct {
	launches atomic.Int32
	delay    time.Duration
	fail     atomic.Int32
	prepare  func(*fakeDriver)

	mu      sync.Mutex
	drivers []*fakeDriver
}

func (l *fakeLauncher) launch(ctx context.Context, _ browser.Options) (browser.Driver, error) {
	l.launches.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.fail.Load() > 0 {
		l.fail.Add(-1)
		return nil, errors.New("executable not found")
	}
	d := newFakeDriver()
	if l.prepare != nil {
		l.prepare(d)
	}
	l.mu.Lock()
	l.drivers = append(l.drivers, d)
	l.mu.Unlock()
	return d, nil
}

func (l *fakeLauncher) last() *fakeDriver {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.drivers[len(l.drivers)-1]
}

func newTestManager(l *fakeLauncher, mutate ...func(*Config)) *SessionManager {
	cfg := Config{
		AcquireTimeout:    2 * time.Second,
		NavigationTimeout: time.Second,
		SettleDelay:       time.Millisecond,
		SettleAttempts:    5,
		Launch:            l.launch,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return NewSessionManager(cfg)
}
