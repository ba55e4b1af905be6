package tabpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/sawari_expert/internal/browser"
	"github.com/google/uuid"
)

// Session is one running browser process and its fixed set of tabs.
type Session struct {
	ID        string
	Kind      string
	CreatedAt time.Time

	driver   browser.Driver
	registry *TabRegistry
	pool     *TabPool

	// cmdMu serializes driver command issuance across tabs.
	cmdMu  sync.Mutex
	closed atomic.Bool
}

type buildConfig struct {
	tabCount       int
	settleDelay    time.Duration
	settleAttempts int
}

// newSession records the initial tab, opens the rest and fills the pool.
func newSession(ctx context.Context, driver browser.Driver, kind string, cfg buildConfig) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now(),
		driver:    driver,
		registry:  NewTabRegistry(),
	}

	initial, err := driver.CurrentTab(ctx)
	if err != nil {
		return nil, fmt.Errorf("read initial tab: %w", err)
	}
	if _, err := s.registry.Register(TabID(initial)); err != nil {
		return nil, err
	}

	for i := 2; i <= cfg.tabCount; i++ {
		if err := driver.OpenTab(ctx); err != nil {
			return nil, fmt.Errorf("open tab %d: %w", i, err)
		}
		if err := sleepCtx(ctx, cfg.settleDelay); err != nil {
			return nil, err
		}
	}

	handles, err := waitForHandles(ctx, driver, cfg)
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		if s.registry.Count() == cfg.tabCount {
			break
		}
		if s.registry.Contains(TabID(h)) {
			continue
		}
		if _, err := s.registry.Register(TabID(h)); err != nil {
			return nil, err
		}
	}
	if got := s.registry.Count(); got != cfg.tabCount {
		return nil, fmt.Errorf("registered %d tabs, want %d", got, cfg.tabCount)
	}

	pool, err := NewTabPool(s.registry.IDs())
	if err != nil {
		return nil, err
	}
	s.pool = pool

	slog.Info("browser session ready",
		"session_id", s.ID,
		"kind", kind,
		"tab_count", cfg.tabCount)
	return s, nil
}

// waitForHandles polls the driver until it reports at least tabCount tabs.
func waitForHandles(ctx context.Context, driver browser.Driver, cfg buildConfig) ([]string, error) {
	attempts := cfg.settleAttempts
	if attempts < 1 {
		attempts = 1
	}
	var handles []string
	for attempt := 1; attempt <= attempts; attempt++ {
		var err error
		handles, err = driver.TabHandles(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerate tabs: %w", err)
		}
		if len(handles) >= cfg.tabCount {
			return handles, nil
		}
		slog.Debug("waiting for tab handles", "have", len(handles), "want", cfg.tabCount, "attempt", attempt)
		if attempt < attempts {
			if err := sleepCtx(ctx, cfg.settleDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("driver reported %d tabs after %d attempts, want %d", len(handles), attempts, cfg.tabCount)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TabCount is the session's fixed concurrency width.
func (s *Session) TabCount() int { return s.pool.Width() }

// Tabs returns the registry records of every tab.
func (s *Session) Tabs() []TabInfo { return s.registry.Snapshot() }

func (s *Session) Closed() bool { return s.closed.Load() }

// withTab runs fn with exclusive use of the driver after switching to tab.
func (s *Session) withTab(ctx context.Context, tab TabID, fn func(browser.Driver) error) error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if s.closed.Load() {
		return newError(CodeSessionClosed, "session is closed", nil)
	}
	if err := s.driver.SwitchTo(ctx, string(tab)); err != nil {
		return fmt.Errorf("switch to tab %s: %w", tab.ShortID(), err)
	}
	return fn(s.driver)
}

// close wakes pool waiters and terminates the driver after any in-flight
// command finishes.
func (s *Session) close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.pool.Close()

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	if err := s.driver.Quit(ctx); err != nil {
		return fmt.Errorf("quit browser: %w", err)
	}
	return nil
}
