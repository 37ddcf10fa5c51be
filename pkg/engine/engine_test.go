package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/telemetry-monitor/pkg/heatmap"
	"github.com/0xmhha/telemetry-monitor/pkg/logger"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// fakeClient returns canned snapshots and records the queries it saw.
type fakeClient struct {
	mu      sync.Mutex
	snap    *snapshot.Snapshot
	err     error
	queries []snapshot.Query
}

func (f *fakeClient) Fetch(_ context.Context, q snapshot.Query) (*snapshot.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}

	snap := *f.snap
	snap.FetchedAt = time.Now()
	return &snap, nil
}

func (f *fakeClient) lastQuery() snapshot.Query {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queries[len(f.queries)-1]
}

// gateClient blocks each Fetch until the test replies, which makes
// overlapping fetch completions deterministic.
type gateClient struct {
	calls chan *fetchCall
}

type fetchCall struct {
	query snapshot.Query
	reply chan *snapshot.Snapshot
}

func (g *gateClient) Fetch(ctx context.Context, q snapshot.Query) (*snapshot.Snapshot, error) {
	call := &fetchCall{query: q, reply: make(chan *snapshot.Snapshot)}
	g.calls <- call

	select {
	case snap := <-call.reply:
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func session(id, user, stat string, usage int64, start time.Time) snapshot.Session {
	return snapshot.Session{
		ID:         id,
		UserID:     user,
		Status:     stat,
		TokenUsage: usage,
		StartTime:  start,
	}
}

func testSnapshot(now time.Time) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Sessions: []snapshot.Session{
			session("s1", "alice", snapshot.StatusRunning, 100, now.Add(-10*time.Minute)),
			session("s2", "alice", snapshot.StatusFinished, 200, now.Add(-30*time.Minute)),
			session("s3", "bob", snapshot.StatusError, 50, now.Add(-20*time.Minute)),
		},
		Service: snapshot.Service{TotalSessions: 3, ActiveSessions: 1},
		ToolStats: []snapshot.ToolStat{
			{Tool: "search", Calls: 5},
			{Tool: "unknown_tool", Calls: 2},
		},
	}
}

func newTestEngine(t *testing.T, client snapshot.Client) *Engine {
	t.Helper()

	e, err := New(Config{
		WindowHours: 1,
		PageSize:    10,
		Catalog: []heatmap.Tool{
			{Name: "search", Category: "retrieval"},
			{Name: "write_file", Category: "files"},
		},
	}, client, logger.Noop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Logf("Close() error = %v", err)
		}
	})

	return e
}

func trendSum(v Views) int64 {
	var sum int64
	for _, val := range v.Trend.Values {
		sum += val
	}
	return sum
}

func TestNew_NilClient(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, nil, logger.Noop())
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRefresh_DerivesAllViews(t *testing.T) {
	t.Parallel()

	now := time.Now()
	client := &fakeClient{snap: testSnapshot(now)}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))

	v := e.Views()

	assert.Equal(t, 1, v.Status.Active)
	assert.Equal(t, 1, v.Status.Finished)
	assert.Equal(t, 1, v.Status.Error)
	assert.Equal(t, 3, v.Status.Total())

	// Catalog order first, uncatalogued appended as "other".
	require.Len(t, v.Tools, 3)
	assert.Equal(t, "search", v.Tools[0].Name)
	assert.Equal(t, 5, v.Tools[0].Calls)
	assert.Equal(t, "write_file", v.Tools[1].Name)
	assert.Equal(t, 0, v.Tools[1].Calls)
	assert.Equal(t, "unknown_tool", v.Tools[2].Name)
	assert.Equal(t, heatmap.CategoryOther, v.Tools[2].Category)

	assert.Equal(t, 1, v.Active.Total)
	assert.Equal(t, 2, v.History.Total)

	require.Len(t, v.Users.Items, 2)
	assert.Equal(t, "alice", v.Users.Items[0].UserID)
	assert.Equal(t, 2, v.Users.Items[0].Sessions)
	assert.Equal(t, int64(300), v.Users.Items[0].TokenUsage)

	assert.Equal(t, 3, v.Service.TotalSessions)
	assert.NotEmpty(t, v.Trend.Labels)
	assert.False(t, v.ZoomLocked)
}

func TestRefresh_RecordsDeltasAcrossPolls(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := testSnapshot(now)
	client := &fakeClient{snap: snap}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	before := trendSum(e.Views())

	// s1 climbs 100 -> 600: exactly one new delta of 500 lands in the trend.
	snap.Sessions[0].TokenUsage = 600
	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))

	assert.Equal(t, before+500, trendSum(e.Views()),
		"trend should grow by exactly the observed increase")
}

func TestRefresh_FetchErrorLeavesViewsIntact(t *testing.T) {
	t.Parallel()

	now := time.Now()
	client := &fakeClient{snap: testSnapshot(now)}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	before := e.Views()

	client.mu.Lock()
	client.err = errors.New("backend down")
	client.mu.Unlock()

	err := e.Refresh(context.Background(), snapshot.ModeFull)
	require.Error(t, err)

	assert.Equal(t, before.Status, e.Views().Status, "failed refresh must not clear views")
}

func TestRefresh_StaleCompletionDiscarded(t *testing.T) {
	t.Parallel()

	client := &gateClient{calls: make(chan *fetchCall, 2)}
	e := newTestEngine(t, client)

	now := time.Now()

	results := make(chan error, 2)
	go func() {
		results <- e.Refresh(context.Background(), snapshot.ModeFull)
	}()
	first := <-client.calls

	go func() {
		results <- e.Refresh(context.Background(), snapshot.ModeFull)
	}()
	second := <-client.calls

	// The newer fetch completes first.
	fresh := testSnapshot(now)
	fresh.Service.TotalSessions = 99
	second.reply <- fresh
	require.NoError(t, <-results)

	// The older fetch completes late and must be discarded.
	first.reply <- testSnapshot(now)
	assert.ErrorIs(t, <-results, ErrStaleSnapshot)

	assert.Equal(t, 99, e.Views().Service.TotalSessions,
		"stale completion overwrote a newer snapshot")
}

func TestRefresh_SessionsModeKeepsToolAndServiceData(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := testSnapshot(now)
	client := &fakeClient{snap: snap}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))

	// A sessions-mode snapshot has no tool stats or service counters.
	client.mu.Lock()
	client.snap = &snapshot.Snapshot{Sessions: snap.Sessions}
	client.mu.Unlock()

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeSessions))

	v := e.Views()
	assert.Equal(t, 3, v.Service.TotalSessions, "service counters lost on sessions refresh")

	var search *int
	for i := range v.Tools {
		if v.Tools[i].Name == "search" {
			search = &v.Tools[i].Calls
		}
	}
	require.NotNil(t, search)
	assert.Equal(t, 5, *search, "tool stats lost on sessions refresh")
}

func TestSetUserFilter_AppliesImmediatelyAndOnNextQuery(t *testing.T) {
	t.Parallel()

	now := time.Now()
	client := &fakeClient{snap: testSnapshot(now)}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	e.SetUserFilter("alice")

	v := e.Views()
	assert.Equal(t, 2, v.Status.Total(), "filter should narrow views without a fetch")

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	assert.Equal(t, "alice", client.lastQuery().UserID)
}

func TestSetRange_ZoomLock(t *testing.T) {
	t.Parallel()

	now := time.Now()
	client := &fakeClient{snap: testSnapshot(now)}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))

	r := timewindow.Range{Start: now.Add(-2 * time.Hour), End: now}
	e.SetRange(r)

	v := e.Views()
	assert.True(t, v.ZoomLocked)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	q := client.lastQuery()
	require.NotNil(t, q.Range)
	assert.Equal(t, r.Start, q.Range.Start)

	e.ClearRange()
	assert.False(t, e.Views().ZoomLocked)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	assert.Nil(t, client.lastQuery().Range)
}

func TestPageCursors_IndependentAndClamped(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := &snapshot.Snapshot{}
	for i := 0; i < 25; i++ {
		snap.Sessions = append(snap.Sessions,
			session("active", "u", snapshot.StatusRunning, 0, now),
			session("done", "u", snapshot.StatusFinished, 0, now))
	}
	client := &fakeClient{snap: snap}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))

	e.SetHistoryPage(2)
	v := e.Views()
	assert.Equal(t, 2, v.History.Current)
	assert.Equal(t, 1, v.Active.Current, "history cursor moved the active cursor")

	// Way past the end: clamps to the last page.
	e.SetActivePage(99)
	v = e.Views()
	assert.Equal(t, v.Active.TotalPages, v.Active.Current)
	assert.Equal(t, 2, v.History.Current)
}

func TestReset_ClearsStateButNotSequence(t *testing.T) {
	t.Parallel()

	now := time.Now()
	client := &fakeClient{snap: testSnapshot(now)}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	e.SetUserFilter("alice")
	e.SetRange(timewindow.Range{Start: now.Add(-time.Hour), End: now})

	e.Reset()

	v := e.Views()
	assert.Equal(t, 0, v.Status.Total())
	assert.False(t, v.ZoomLocked)
	assert.Empty(t, v.Tools)

	// A fresh refresh works after reset.
	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))
	assert.Equal(t, 3, e.Views().Status.Total())
	assert.Empty(t, client.lastQuery().UserID, "reset should drop the user filter from queries")
}

func TestLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Now()
	client := &fakeClient{snap: testSnapshot(now)}

	e, err := New(Config{
		FullInterval: time.Hour,
		WindowHours:  1,
		Immediate:    true,
	}, client, logger.Noop())
	require.NoError(t, err)

	require.NoError(t, e.Start(context.Background()))
	assert.ErrorIs(t, e.Start(context.Background()), ErrEngineRunning)

	// Immediate tick populated the views synchronously.
	assert.Equal(t, 3, e.Views().Status.Total())

	require.NoError(t, e.SetMode(snapshot.ModeSessions))

	require.NoError(t, e.Stop())
	assert.ErrorIs(t, e.Stop(), ErrEngineNotRunning)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Start(context.Background()), ErrEngineClosed)
	assert.ErrorIs(t, e.Refresh(context.Background(), snapshot.ModeFull), ErrEngineClosed)
}

func TestStart_PollErrorKeepsEngineRunning(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: errors.New("backend down")}

	e, err := New(Config{
		FullInterval: time.Hour,
		Immediate:    true,
	}, client, logger.Noop())
	require.NoError(t, err)
	defer func() {
		if err := e.Close(); err != nil {
			t.Logf("Close() error = %v", err)
		}
	}()

	// The immediate tick fails; Start must still succeed.
	require.NoError(t, e.Start(context.Background()))

	assert.Equal(t, 0, e.Views().Status.Total())
	require.NoError(t, e.Stop())
}

func TestUpdates_DeliversDerivedViews(t *testing.T) {
	t.Parallel()

	now := time.Now()
	client := &fakeClient{snap: testSnapshot(now)}
	e := newTestEngine(t, client)

	require.NoError(t, e.Refresh(context.Background(), snapshot.ModeFull))

	select {
	case v := <-e.Updates():
		assert.Equal(t, 3, v.Status.Total())
	default:
		t.Fatal("no update published after refresh")
	}
}
