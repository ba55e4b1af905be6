// Package tabpool owns the single browser session of a process and hands its
// tabs out to concurrent requests, one tab per request.
package tabpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/sawari_expert/internal/browser"
	"github.com/dgnsrekt/sawari_expert/internal/config"
)

const DefaultTabCount = 4

// Options selects the browser a session is created with. Only the first
// successful AcquireOrCreate call's options take effect.
type Options struct {
	Kind          string
	TabCount      int
	Headless      bool
	ExtensionPath string
	BrowserPath   string
	CDPAddress    string
	CDPPort       int
}

// Config tunes pool behavior for every session the manager creates.
type Config struct {
	AcquireTimeout    time.Duration
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	SettleAttempts    int
	ResetPolicy       string
	Launch            browser.LaunchFunc
}

// DefaultConfig returns the production pool settings.
func DefaultConfig() Config {
	return Config{
		AcquireTimeout:    60 * time.Second,
		NavigationTimeout: 45 * time.Second,
		SettleDelay:       200 * time.Millisecond,
		SettleAttempts:    10,
		ResetPolicy:       config.ResetReuse,
		Launch:            browser.Launch,
	}
}

// FromConfig derives pool settings and session options from app config.
func FromConfig(c *config.Config) (Config, Options) {
	pc := DefaultConfig()
	pc.AcquireTimeout = c.AcquireTimeout
	pc.NavigationTimeout = c.NavigationTimeout
	pc.SettleDelay = c.TabSettleDelay
	pc.SettleAttempts = c.TabSettleAttempts
	pc.ResetPolicy = c.TabResetPolicy

	return pc, Options{
		Kind:          c.BrowserKind,
		TabCount:      c.MaxTabs,
		Headless:      c.Headless,
		ExtensionPath: c.ExtensionPath,
		BrowserPath:   c.BrowserPath,
		CDPAddress:    c.CDPAddress,
		CDPPort:       c.CDPPort,
	}
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	SessionID  string    `json:"session_id,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Width      int       `json:"width"`
	Available  int       `json:"available"`
	InUse      int       `json:"in_use"`
	Dispatched int64     `json:"dispatched"`
	Failed     int64     `json:"failed"`
	Closed     bool      `json:"closed"`
	Tabs       []TabStat `json:"tabs,omitempty"`
}

type TabStat struct {
	ID      string `json:"id"`
	LastURL string `json:"last_url,omitempty"`
	Uses    int    `json:"uses"`
}

// SessionManager guards creation and teardown of the process's one browser
// session. Construct exactly one per process and share it.
type SessionManager struct {
	cfg Config

	mu       sync.Mutex
	session  *Session
	released bool

	dispatched atomic.Int64
	failed     atomic.Int64
}

func NewSessionManager(cfg Config) *SessionManager {
	def := DefaultConfig()
	if cfg.Launch == nil {
		cfg.Launch = def.Launch
	}
	if cfg.ResetPolicy == "" {
		cfg.ResetPolicy = def.ResetPolicy
	}
	if cfg.SettleAttempts < 1 {
		cfg.SettleAttempts = def.SettleAttempts
	}
	return &SessionManager{cfg: cfg}
}

// AcquireOrCreate returns the live session, launching it on first use.
// Options passed after the session exists are ignored. A launch failure
// leaves the manager empty so the call may be retried.
func (m *SessionManager) AcquireOrCreate(ctx context.Context, opts Options) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return nil, newError(CodeSessionClosed, "session manager has been released", nil)
	}
	if m.session != nil {
		if (opts.TabCount != 0 && opts.TabCount != m.session.TabCount()) ||
			(opts.Kind != "" && opts.Kind != m.session.Kind) {
			slog.Info("browser session already running, ignoring options",
				"session_id", m.session.ID,
				"kind", m.session.Kind,
				"tab_count", m.session.TabCount(),
				"requested_kind", opts.Kind,
				"requested_tab_count", opts.TabCount)
		}
		return m.session, nil
	}

	if opts.TabCount == 0 {
		opts.TabCount = DefaultTabCount
	}
	if opts.TabCount < 1 {
		return nil, newError(CodeLaunchFailure, fmt.Sprintf("tab count must be >= 1, got %d", opts.TabCount), nil)
	}
	if opts.Kind == "" {
		opts.Kind = browser.KindPrimary
	}

	slog.Info("launching browser session", "kind", opts.Kind, "tab_count", opts.TabCount, "headless", opts.Headless)
	driver, err := m.cfg.Launch(ctx, browser.Options{
		Kind:          opts.Kind,
		Headless:      opts.Headless,
		ExtensionPath: opts.ExtensionPath,
		BrowserPath:   opts.BrowserPath,
		CDPAddress:    opts.CDPAddress,
		CDPPort:       opts.CDPPort,
	})
	if err != nil {
		return nil, newError(CodeLaunchFailure, "failed to launch browser", err)
	}

	session, err := newSession(ctx, driver, opts.Kind, buildConfig{
		tabCount:       opts.TabCount,
		settleDelay:    m.cfg.SettleDelay,
		settleAttempts: m.cfg.SettleAttempts,
	})
	if err != nil {
		if qerr := driver.Quit(context.WithoutCancel(ctx)); qerr != nil {
			slog.Debug("quit after failed session build", "error", qerr)
		}
		return nil, newError(CodeLaunchFailure, "failed to build tab pool", err)
	}

	m.session = session
	return session, nil
}

// Release tears down the session. Once a session has been torn down the
// manager is terminal: later AcquireOrCreate and Dispatch calls fail with
// SESSION_CLOSED. Releasing a manager that holds no session changes nothing.
func (m *SessionManager) Release(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		slog.Info("release called with no live browser session")
		return nil
	}

	s := m.session
	m.session = nil
	m.released = true
	slog.Info("releasing browser session", "session_id", s.ID)
	if err := s.close(ctx); err != nil {
		slog.Error("browser session teardown failed", "session_id", s.ID, "error", err)
		return err
	}
	return nil
}

// Current returns the live session, if any.
func (m *SessionManager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.session != nil
}

func (m *SessionManager) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// Stats reports pool occupancy and dispatch counters.
func (m *SessionManager) Stats() Stats {
	st := Stats{
		Dispatched: m.dispatched.Load(),
		Failed:     m.failed.Load(),
	}
	s, ok := m.Current()
	if !ok {
		st.Closed = m.Released()
		return st
	}
	st.SessionID = s.ID
	st.Kind = s.Kind
	st.Width = s.pool.Width()
	st.Available, st.InUse = s.pool.Occupancy()
	st.Closed = s.Closed()
	for _, t := range s.Tabs() {
		st.Tabs = append(st.Tabs, TabStat{ID: string(t.ID), LastURL: t.LastURL, Uses: t.Uses})
	}
	return st
}
