package tabpool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireOrCreateLaunchesOnceUnderConcurrency(t *testing.T) {
	l := &fakeLauncher{delay: 20 * time.Millisecond}
	m := newTestManager(l)
	t.Cleanup(func() { _ = m.Release(context.Background()) })

	const callers = 16
	sessions := make([]*Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 3})
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, l.launches.Load())
	for _, s := range sessions {
		assert.Same(t, sessions[0], s)
	}
}

func TestAcquireOrCreateSecondCallerOptionsIgnored(t *testing.T) {
	l := &fakeLauncher{}
	m := newTestManager(l)
	t.Cleanup(func() { _ = m.Release(context.Background()) })

	first, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 4})
	require.NoError(t, err)
	second, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 8, Kind: "secondary"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 4, second.TabCount())
	assert.Equal(t, "primary", second.Kind)
	assert.Len(t, l.last().tabs, 4)
	assert.EqualValues(t, 1, l.launches.Load())
}

func TestAcquireOrCreateDefaultsTabCount(t *testing.T) {
	m := newTestManager(&fakeLauncher{})
	t.Cleanup(func() { _ = m.Release(context.Background()) })

	s, err := m.AcquireOrCreate(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTabCount, s.TabCount())
}

func TestAcquireOrCreateRejectsNegativeTabCount(t *testing.T) {
	l := &fakeLauncher{}
	m := newTestManager(l)

	_, err := m.AcquireOrCreate(context.Background(), Options{TabCount: -1})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeLaunchFailure))
	assert.Zero(t, l.launches.Load())
}

func TestLaunchFailureLeavesManagerEmpty(t *testing.T) {
	l := &fakeLauncher{}
	l.fail.Store(1)
	m := newTestManager(l)
	t.Cleanup(func() { _ = m.Release(context.Background()) })

	_, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 2})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeLaunchFailure))
	assert.True(t, Fatal(err))
	_, ok := m.Current()
	assert.False(t, ok)

	s, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.TabCount())
	assert.EqualValues(t, 2, l.launches.Load())
}

func TestBuildFailureQuitsDriver(t *testing.T) {
	l := &fakeLauncher{prepare: func(d *fakeDriver) { d.staleLists = 1000 }}
	m := newTestManager(l)

	_, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 3})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeLaunchFailure))
	assert.Equal(t, 1, l.last().quitCount())
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestBuildWaitsForLaggingHandleList(t *testing.T) {
	l := &fakeLauncher{prepare: func(d *fakeDriver) { d.staleLists = 2 }}
	m := newTestManager(l)
	t.Cleanup(func() { _ = m.Release(context.Background()) })

	s, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 3})
	require.NoError(t, err)

	ids := s.registry.IDs()
	require.Len(t, ids, 3)
	assert.Equal(t, TabID("tab-0000"), ids[0])
	assert.ElementsMatch(t, []TabID{"tab-0000", "tab-0001", "tab-0002"}, ids)
	assert.Equal(t, 3, s.pool.Available())
}

func TestReleaseIsIdempotentAndTerminal(t *testing.T) {
	l := &fakeLauncher{}
	m := newTestManager(l)

	_, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 2})
	require.NoError(t, err)

	require.NoError(t, m.Release(context.Background()))
	require.NoError(t, m.Release(context.Background()))
	assert.Equal(t, 1, l.last().quitCount())

	_, err = m.AcquireOrCreate(context.Background(), Options{TabCount: 2})
	assert.True(t, IsCode(err, CodeSessionClosed))

	d := NewDispatcher(m, Options{TabCount: 2})
	_, err = d.Dispatch(context.Background(), Request{URL: "https://example.com"}, nil)
	assert.True(t, IsCode(err, CodeSessionClosed))
	assert.EqualValues(t, 1, l.launches.Load())
}

func TestReleaseWithoutSessionIsNoop(t *testing.T) {
	l := &fakeLauncher{}
	m := newTestManager(l)
	t.Cleanup(func() { _ = m.Release(context.Background()) })

	assert.NoError(t, m.Release(context.Background()))
	assert.False(t, m.Released())
	assert.False(t, m.Stats().Closed)
	assert.Zero(t, l.launches.Load())

	s, err := m.AcquireOrCreate(context.Background(), Options{TabCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.TabCount())
	assert.EqualValues(t, 1, l.launches.Load())
}

func TestStatsReportsPoolOccupancy(t *testing.T) {
	m := newTestManager(&fakeLauncher{})
	t.Cleanup(func() { _ = m.Release(context.Background()) })

	d := NewDispatcher(m, Options{TabCount: 3})
	_, err := d.Dispatch(context.Background(), Request{URL: "https://example.com/a"}, func(ctx context.Context, resp *Response) error {
		st := m.Stats()
		assert.Equal(t, 3, st.Width)
		assert.Equal(t, 2, st.Available)
		assert.Equal(t, 1, st.InUse)
		return nil
	})
	require.NoError(t, err)

	st := m.Stats()
	assert.Equal(t, 3, st.Available)
	assert.Zero(t, st.InUse)
	assert.EqualValues(t, 1, st.Dispatched)
	assert.Zero(t, st.Failed)
	require.Len(t, st.Tabs, 3)

	var uses int
	for _, tab := range st.Tabs {
		uses += tab.Uses
	}
	assert.Equal(t, 1, uses)
}
