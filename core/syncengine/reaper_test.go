package syncengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/infrastructure/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedTombstones deletes three tasks and a project now, then one more task
// 700h later, and leaves the clock 750h after the start.
func seedTombstones(t *testing.T, h *harness) {
	t.Helper()
	h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "old", Name: "Old"}}},
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
			{ID: "a", Title: "a"}, {ID: "b", Title: "b"}, {ID: "c", Title: "c"}, {ID: "d", Title: "d"},
		}},
	})
	h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Deleted: []string{"old"}},
		Tasks:    syncengine.TaskChanges{Deleted: []string{"a", "b", "c"}},
	})
	h.clock.Advance(700 * time.Hour)
	h.sync(t, "alice", nil, syncengine.Changes{Tasks: syncengine.TaskChanges{Deleted: []string{"d"}}})
	h.clock.Advance(50 * time.Hour)
}

func TestPurgeRemovesOnlyExpiredTombstones(t *testing.T) {
	h := newHarness(t, defaultOptions())
	seedTombstones(t, h)

	purged, err := h.engine.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged[syncengine.KindTasks])
	assert.Equal(t, int64(1), purged[syncengine.KindProjects])
	assert.Zero(t, purged[syncengine.KindTaskTypes])

	res := h.sync(t, "alice", nil, syncengine.Changes{})
	assert.Equal(t, []string{"d"}, res.Changes.Tasks.Deleted)
	assert.Empty(t, res.Changes.Projects.Deleted)
}

func TestPurgeWaitsOutMargin(t *testing.T) {
	cfg := defaultOptions()
	cfg.PurgeMargin = 10 * time.Hour
	h := newHarness(t, cfg)
	ctx := context.Background()

	h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{{ID: "a", Title: "a"}}},
	})
	h.sync(t, "alice", nil, syncengine.Changes{Tasks: syncengine.TaskChanges{Deleted: []string{"a"}}})

	// Past retention but inside the margin.
	h.clock.Advance(725 * time.Hour)
	purged, err := h.engine.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged[syncengine.KindTasks])

	res := h.sync(t, "alice", nil, syncengine.Changes{})
	assert.Equal(t, []string{"a"}, res.Changes.Tasks.Deleted)

	h.clock.Advance(6 * time.Hour)
	purged, err = h.engine.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged[syncengine.KindTasks])
}

func TestPurgeDisabledWithoutRetention(t *testing.T) {
	cfg := defaultOptions()
	cfg.TombstoneRetention = 0
	h := newHarness(t, cfg)
	seedTombstones(t, h)

	purged, err := h.engine.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged[syncengine.KindTasks])

	res := h.sync(t, "alice", nil, syncengine.Changes{})
	assert.Len(t, res.Changes.Tasks.Deleted, 4)
}

func TestReaperSchedulesKinds(t *testing.T) {
	h := newHarness(t, defaultOptions())
	seedTombstones(t, h)
	ctx := context.Background()
	r := syncengine.NewReaper(h.engine, time.Hour)

	tasks, err := r.Checkout(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, syncengine.KindTasks, tasks.Kind)

	types, err := r.Checkout(ctx, "w2")
	require.NoError(t, err)
	assert.Equal(t, syncengine.KindTaskTypes, types.Kind)

	projects, err := r.Checkout(ctx, "w3")
	require.NoError(t, err)
	assert.Equal(t, syncengine.KindProjects, projects.Kind)

	_, err = r.Checkout(ctx, "w4")
	require.ErrorIs(t, err, workers.ErrNoWorkAvailable)

	// A full batch is followed straight away by another.
	tasks, err = r.Process(ctx, tasks)
	require.NoError(t, err)
	assert.Equal(t, int64(2), tasks.Purged)
	require.NoError(t, r.Complete(ctx, tasks, time.Millisecond))

	tasks, err = r.Checkout(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, syncengine.KindTasks, tasks.Kind)
	tasks, err = r.Process(ctx, tasks)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tasks.Purged)
	require.NoError(t, r.Complete(ctx, tasks, time.Millisecond))

	require.NoError(t, r.Complete(ctx, types, time.Millisecond))
	require.NoError(t, r.Fail(ctx, projects, assert.AnError))

	_, err = r.Checkout(ctx, "w1")
	require.ErrorIs(t, err, workers.ErrNoWorkAvailable)

	h.clock.Advance(time.Hour)
	next, err := r.Checkout(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, syncengine.KindTasks, next.Kind)
}

func TestReaperOnWorkerPool(t *testing.T) {
	h := newHarness(t, defaultOptions())
	seedTombstones(t, h)

	counters := workers.NewCounters()
	pool := workers.New[syncengine.SweepJob](syncengine.NewReaper(h.engine, time.Hour), workers.Options{
		Name:         "reaper",
		WorkerCount:  2,
		PollInterval: time.Millisecond,
		IdleInterval: 5 * time.Millisecond,
		MaxRetries:   1,
	}, workers.WithLogger(h.log.Logger), workers.WithMetrics(counters))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- pool.Start(ctx) }()

	// tasks twice (full batch, then remainder), task types, projects
	require.Eventually(t, func() bool {
		return counters.Snapshot().Completed >= 4
	}, 5*time.Second, 5*time.Millisecond)
	pool.Stop()
	require.NoError(t, <-done)

	res := h.sync(t, "alice", nil, syncengine.Changes{})
	assert.Equal(t, []string{"d"}, res.Changes.Tasks.Deleted)
	assert.Empty(t, res.Changes.Projects.Deleted)
}
