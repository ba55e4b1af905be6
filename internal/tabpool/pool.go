package tabpool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TabPool is a blocking queue of idle tabs. Every member tab is either in the
// queue or checked out to exactly one caller; both sets change under mu so no
// observer sees a tab in neither.
type TabPool struct {
	members map[TabID]struct{}

	mu   sync.Mutex
	idle []TabID
	out  map[TabID]struct{}

	// ready carries one token per return to the queue. Waiters recheck idle
	// after each token, so a stale token only costs a loop.
	ready chan struct{}

	closed    chan struct{}
	closeOnce sync.Once
}

// NewTabPool builds a pool holding every id as idle.
func NewTabPool(ids []TabID) (*TabPool, error) {
	p := &TabPool{
		members: make(map[TabID]struct{}, len(ids)),
		idle:    make([]TabID, 0, len(ids)),
		out:     make(map[TabID]struct{}, len(ids)),
		ready:   make(chan struct{}, len(ids)),
		closed:  make(chan struct{}),
	}
	for _, id := range ids {
		if _, dup := p.members[id]; dup {
			return nil, fmt.Errorf("duplicate tab %s", id)
		}
		p.members[id] = struct{}{}
		p.idle = append(p.idle, id)
	}
	return p, nil
}

// Acquire takes an idle tab, waiting up to timeout (0 waits until ctx ends).
// A closed pool yields SESSION_CLOSED, an expired wait POOL_EXHAUSTED.
func (p *TabPool) Acquire(ctx context.Context, timeout time.Duration) (TabID, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		if p.Closed() {
			return "", newError(CodeSessionClosed, "session is closed", nil)
		}
		if id, ok := p.take(); ok {
			if p.Closed() {
				_ = p.Release(id)
				return "", newError(CodeSessionClosed, "session is closed", nil)
			}
			return id, nil
		}

		select {
		case <-p.ready:
		case <-p.closed:
			return "", newError(CodeSessionClosed, "session is closed", nil)
		case <-expired:
			return "", newError(CodePoolExhausted, fmt.Sprintf("no tab became available within %s", timeout), nil)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// take moves the oldest idle tab to the checked-out set.
func (p *TabPool) take() (TabID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) == 0 {
		return "", false
	}
	id := p.idle[0]
	p.idle = p.idle[1:]
	p.out[id] = struct{}{}
	return id, true
}

// Release returns a checked-out tab to the queue.
func (p *TabPool) Release(id TabID) error {
	if _, ok := p.members[id]; !ok {
		return fmt.Errorf("tab %s does not belong to this pool", id)
	}

	p.mu.Lock()
	if _, ok := p.out[id]; !ok {
		p.mu.Unlock()
		return fmt.Errorf("tab %s is not checked out", id)
	}
	delete(p.out, id)
	p.idle = append(p.idle, id)
	p.mu.Unlock()

	select {
	case p.ready <- struct{}{}:
	default:
		// Buffer full: enough waiters are already due to recheck.
	}
	return nil
}

// Close wakes all waiters with SESSION_CLOSED. Safe to call more than once.
func (p *TabPool) Close() {
	p.closeOnce.Do(func() { close(p.closed) })
}

func (p *TabPool) Closed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// Width is the fixed number of tabs in circulation.
func (p *TabPool) Width() int { return len(p.members) }

func (p *TabPool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

func (p *TabPool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.out)
}

// Occupancy reports idle and checked-out counts from one instant.
func (p *TabPool) Occupancy() (available, inUse int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), len(p.out)
}
