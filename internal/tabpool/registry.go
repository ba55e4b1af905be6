package tabpool

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TabID is the driver's opaque handle for a tab.
type TabID string

// ShortID returns the first 8 chars of the handle for log lines.
func (id TabID) ShortID() string {
	if len(id) >= 8 {
		return string(id[:8])
	}
	return string(id)
}

// TabInfo holds bookkeeping for one tab of a session.
type TabInfo struct {
	ID       TabID
	Index    int
	LastURL  string
	Uses     int
	LastUsed time.Time
}

// TabRegistry maps tab handles to tab metadata. The set is fixed once the
// session has been built.
type TabRegistry struct {
	tabs map[TabID]*TabInfo
	mu   sync.RWMutex
}

func NewTabRegistry() *TabRegistry {
	return &TabRegistry{tabs: make(map[TabID]*TabInfo)}
}

func (r *TabRegistry) Register(id TabID) (*TabInfo, error) {
	if id == "" {
		return nil, fmt.Errorf("empty tab handle")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tabs[id]; ok {
		return nil, fmt.Errorf("tab %s already registered", id)
	}
	info := &TabInfo{ID: id, Index: len(r.tabs)}
	r.tabs[id] = info
	return info, nil
}

func (r *TabRegistry) Get(id TabID) (TabInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.tabs[id]
	if !ok {
		return TabInfo{}, false
	}
	return *info, true
}

func (r *TabRegistry) Contains(id TabID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tabs[id]
	return ok
}

// RecordUse notes that a request navigated the tab to url.
func (r *TabRegistry) RecordUse(id TabID, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.tabs[id]; ok {
		info.LastURL = url
		info.Uses++
		info.LastUsed = time.Now()
	}
}

// IDs returns all handles in registration order.
func (r *TabRegistry) IDs() []TabID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]*TabInfo, 0, len(r.tabs))
	for _, info := range r.tabs {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Index < infos[j].Index })
	ids := make([]TabID, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids
}

// Snapshot returns copies of all tab records in registration order.
func (r *TabRegistry) Snapshot() []TabInfo {
	ids := r.IDs()
	out := make([]TabInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := r.Get(id); ok {
			out = append(out, info)
		}
	}
	return out
}

func (r *TabRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}
