package syncengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/projectsrepo/stores/projectssqlitestore"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo/stores/taskssqlitestore"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo/stores/tasktypessqlitestore"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/core/syncengine/stores/syncsqlitestore"
	"github.com/jrazmi/yata/infrastructure/sqlitedb"
	"github.com/jrazmi/yata/infrastructure/sqlitedb/sqlitetest"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives both row timestamps and the retention horizon.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

type harness struct {
	engine *syncengine.Engine
	stores syncengine.Stores
	tx     syncengine.Transactor
	db     *sqlitedb.DB
	clock  *fakeClock
	log    *logger.Logger
}

func newHarness(t *testing.T, cfg syncengine.Options) *harness {
	t.Helper()
	clock := &fakeClock{cur: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	db := sqlitetest.New(t, sqlitedb.WithNow(clock.Now))
	sqlitetest.SeedUser(t, db, "alice")
	sqlitetest.SeedUser(t, db, "bob")

	log := logger.NewDiscard()
	stores := syncengine.Stores{
		Projects:  projectsrepo.NewRepository(log, projectssqlitestore.NewStore(log, db)),
		TaskTypes: tasktypesrepo.NewRepository(log, tasktypessqlitestore.NewStore(log, db)),
		Tasks:     tasksrepo.NewRepository(log, taskssqlitestore.NewStore(log, db)),
	}
	tx := syncsqlitestore.NewStore(log, db)

	return &harness{
		engine: syncengine.NewEngine(log, tx, stores, cfg, syncengine.WithClock(clock.Now)),
		stores: stores,
		tx:     tx,
		db:     db,
		clock:  clock,
		log:    log,
	}
}

func defaultOptions() syncengine.Options {
	return syncengine.Options{
		Timeout:            5 * time.Second,
		TombstoneRetention: 720 * time.Hour,
		MaxBatch:           100,
		PurgeBatch:         2,
	}
}

func ptr[T any](v T) *T { return &v }

func (h *harness) sync(t *testing.T, userID string, since *time.Time, changes syncengine.Changes) syncengine.Result {
	t.Helper()
	res, err := h.engine.Synchronize(context.Background(), userID, since, changes)
	require.NoError(t, err)
	return res
}

func ids[T syncengine.Versioned](rows []T) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.GetID())
	}
	return out
}

func TestProjectAndTaskCreatedTogether(t *testing.T) {
	h := newHarness(t, defaultOptions())

	h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{
			Created: []projectsrepo.CreateProject{{ID: "P1", Name: "Errands"}},
		},
		Tasks: syncengine.TaskChanges{
			Created: []tasksrepo.CreateTask{{ID: "T1", Title: "Buy milk", ProjectID: ptr("P1")}},
		},
	})

	epoch := syncengine.Epoch
	res := h.sync(t, "alice", &epoch, syncengine.Changes{})
	assert.Equal(t, []string{"P1"}, ids(res.Changes.Projects.Created))
	assert.Equal(t, []string{"T1"}, ids(res.Changes.Tasks.Created))
	assert.Empty(t, res.Changes.Projects.Updated)
	assert.Empty(t, res.Changes.Tasks.Updated)
	assert.Empty(t, res.Changes.Tasks.Deleted)
	assert.Equal(t, "alice", res.Changes.Tasks.Created[0].UserID)
}

func TestUpdateAfterWatermarkIsUpdated(t *testing.T) {
	h := newHarness(t, defaultOptions())

	first := h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{
			Created: []projectsrepo.CreateProject{{ID: "P1", Name: "Errands"}},
		},
		Tasks: syncengine.TaskChanges{
			Created: []tasksrepo.CreateTask{{ID: "T1", Title: "Buy milk", ProjectID: ptr("P1")}},
		},
	})
	w1 := first.Timestamp

	h.clock.Advance(time.Minute)
	second := h.sync(t, "alice", &w1, syncengine.Changes{
		Tasks: syncengine.TaskChanges{
			Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
				{ID: "T1", Fields: tasksrepo.UpdateTask{Status: patch.Value("done")}},
			},
		},
	})

	assert.Empty(t, second.Changes.Tasks.Created)
	require.Equal(t, []string{"T1"}, ids(second.Changes.Tasks.Updated))
	assert.Equal(t, "done", second.Changes.Tasks.Updated[0].Status)
	assert.Zero(t, second.Changes.Projects.Len())
	assert.True(t, second.Timestamp.After(w1))
}

func TestSecondSyncWithoutWritesIsEmpty(t *testing.T) {
	h := newHarness(t, defaultOptions())

	first := h.sync(t, "alice", nil, syncengine.Changes{
		TaskTypes: syncengine.TaskTypeChanges{
			Created: []tasktypesrepo.CreateTaskType{{ID: "bug", Name: "Bug"}},
		},
	})
	require.Len(t, first.Changes.TaskTypes.Created, 1)

	second := h.sync(t, "alice", &first.Timestamp, syncengine.Changes{})
	assert.Zero(t, second.Changes.Projects.Len()+second.Changes.TaskTypes.Len()+second.Changes.Tasks.Len())
	assert.False(t, second.Timestamp.Before(first.Timestamp))
}

func TestDeleteTwiceIsNoop(t *testing.T) {
	h := newHarness(t, defaultOptions())
	h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{{ID: "T1", Title: "x"}}},
	})

	del := syncengine.Changes{Tasks: syncengine.TaskChanges{Deleted: []string{"T1"}}}
	h.sync(t, "alice", nil, del)
	after := h.sync(t, "alice", nil, syncengine.Changes{})

	h.sync(t, "alice", nil, del)
	again := h.sync(t, "alice", nil, syncengine.Changes{})

	assert.Equal(t, after.Changes.Tasks, again.Changes.Tasks)
	assert.Equal(t, []string{"T1"}, again.Changes.Tasks.Deleted)
}

func TestCreateConflictKeepsFirst(t *testing.T) {
	h := newHarness(t, defaultOptions())
	h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "First"}}},
	})

	_, err := h.engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "Second"}}},
	})
	require.ErrorIs(t, err, syncengine.ErrSyncFailed)
	require.ErrorIs(t, err, syncengine.ErrConflict)

	p, err := h.stores.Projects.Get(context.Background(), "alice", "P1")
	require.NoError(t, err)
	assert.Equal(t, "First", p.Name)
}

func TestSparseUpdateKeepsOtherFields(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
			{ID: "T1", Title: "Report", Section: "Today", Order: 4, URLs: []string{"https://example.com"}},
		}},
	})
	before, err := h.stores.Tasks.Get(ctx, "alice", "T1")
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
			{ID: "T1", Fields: tasksrepo.UpdateTask{Status: patch.Value("done")}},
		}},
	})

	after, err := h.stores.Tasks.Get(ctx, "alice", "T1")
	require.NoError(t, err)
	assert.Equal(t, "done", after.Status)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Section, after.Section)
	assert.Equal(t, before.Order, after.Order)
	assert.Equal(t, before.URLs, after.URLs)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestFailedBatchAppliesNothing(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()

	_, err := h.engine.Synchronize(ctx, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "Kept?"}}},
		Tasks: syncengine.TaskChanges{
			Created: []tasksrepo.CreateTask{{ID: "T1", Title: "Kept?"}},
			Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
				{ID: "ghost", Fields: tasksrepo.UpdateTask{Status: patch.Value("done")}},
			},
		},
	})
	require.ErrorIs(t, err, syncengine.ErrSyncFailed)
	require.ErrorIs(t, err, syncengine.ErrNotFound)

	var opErr *syncengine.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, syncengine.KindTasks, opErr.Kind)
	assert.Equal(t, "update", opErr.Op)
	assert.Equal(t, "ghost", opErr.ID)

	_, err = h.stores.Projects.Get(ctx, "alice", "P1")
	assert.ErrorIs(t, err, syncengine.ErrNotFound)
	_, err = h.stores.Tasks.Get(ctx, "alice", "T1")
	assert.ErrorIs(t, err, syncengine.ErrNotFound)

	res := h.sync(t, "alice", nil, syncengine.Changes{})
	assert.Zero(t, res.Changes.Projects.Len()+res.Changes.Tasks.Len())
}

func TestDeletionReachesSecondDevice(t *testing.T) {
	h := newHarness(t, defaultOptions())

	phone := h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{{ID: "T1", Title: "x"}, {ID: "T2", Title: "y"}}},
	})
	laptop := h.sync(t, "alice", nil, syncengine.Changes{})
	require.ElementsMatch(t, []string{"T1", "T2"}, ids(laptop.Changes.Tasks.Created))

	h.clock.Advance(time.Minute)
	h.sync(t, "alice", &phone.Timestamp, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Deleted: []string{"T1"}},
	})

	h.clock.Advance(time.Minute)
	res := h.sync(t, "alice", &laptop.Timestamp, syncengine.Changes{})
	assert.Equal(t, []string{"T1"}, res.Changes.Tasks.Deleted)
	assert.Empty(t, res.Changes.Tasks.Created)
	assert.Empty(t, res.Changes.Tasks.Updated)
}

func TestTombstoneCannotBeRevived(t *testing.T) {
	h := newHarness(t, defaultOptions())
	h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{{ID: "T1", Title: "x"}}},
	})
	h.sync(t, "alice", nil, syncengine.Changes{Tasks: syncengine.TaskChanges{Deleted: []string{"T1"}}})

	_, err := h.engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{{ID: "T1", Title: "again"}}},
	})
	assert.ErrorIs(t, err, syncengine.ErrConflict)

	_, err = h.engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
			{ID: "T1", Fields: tasksrepo.UpdateTask{Title: patch.Value("again")}},
		}},
	})
	assert.ErrorIs(t, err, syncengine.ErrNotFound)
}

func TestSubtaskListedBeforeParent(t *testing.T) {
	h := newHarness(t, defaultOptions())

	res := h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
			{ID: "child", Title: "Pack", ParentID: ptr("parent")},
			{ID: "grandchild", Title: "Socks", ParentID: ptr("child")},
			{ID: "parent", Title: "Trip"},
		}},
	})
	assert.ElementsMatch(t, []string{"parent", "child", "grandchild"}, ids(res.Changes.Tasks.Created))

	child, err := h.stores.Tasks.Get(context.Background(), "alice", "child")
	require.NoError(t, err)
	assert.Equal(t, "parent", *child.ParentID)
}

func TestDanglingReferencesAbortBatch(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	h.sync(t, "bob", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "bobs", Name: "Bob's"}}},
	})
	h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "gone", Name: "Gone"}}},
	})
	h.sync(t, "alice", nil, syncengine.Changes{Projects: syncengine.ProjectChanges{Deleted: []string{"gone"}}})

	for name, ref := range map[string]string{
		"missing":    "nope",
		"other user": "bobs",
		"tombstoned": "gone",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.engine.Synchronize(ctx, "alice", nil, syncengine.Changes{
				Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
					{ID: "ok", Title: "fine"},
					{ID: "T-" + ref, Title: "x", ProjectID: ptr(ref)},
				}},
			})
			require.ErrorIs(t, err, syncengine.ErrNotFound)
			_, err = h.stores.Tasks.Get(ctx, "alice", "ok")
			assert.ErrorIs(t, err, syncengine.ErrNotFound)
		})
	}
}

func TestFreeFormTextIsAccepted(t *testing.T) {
	h := newHarness(t, defaultOptions())

	res := h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: ""}}},
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
			{ID: "T1", Title: "Read", URLs: []string{"example.com/article"}},
			{ID: "T2", Title: "Mail", URLs: []string{"mailto:bob@example.com"}},
			{ID: "T3", Title: ""},
		}},
	})

	assert.ElementsMatch(t, []string{"T1", "T2", "T3"}, ids(res.Changes.Tasks.Created))
	assert.Equal(t, []string{"P1"}, ids(res.Changes.Projects.Created))

	t1, err := h.stores.Tasks.Get(context.Background(), "alice", "T1")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/article"}, t1.URLs)
}

func TestUpdateKeepsReferenceDeletedElsewhere(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()

	laptop := h.sync(t, "alice", nil, syncengine.Changes{
		Projects:  syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "Errands"}}},
		TaskTypes: syncengine.TaskTypeChanges{Created: []tasktypesrepo.CreateTaskType{{ID: "bug", Name: "Bug"}}},
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
			{ID: "T0", Title: "Trip"},
			{ID: "T1", Title: "Buy milk", ProjectID: ptr("P1"), TypeID: ptr("bug"), ParentID: ptr("T0")},
		}},
	})

	h.clock.Advance(time.Minute)
	phone := h.sync(t, "alice", nil, syncengine.Changes{
		Projects:  syncengine.ProjectChanges{Deleted: []string{"P1"}},
		TaskTypes: syncengine.TaskTypeChanges{Deleted: []string{"bug"}},
		Tasks:     syncengine.TaskChanges{Deleted: []string{"T0"}},
	})
	require.Equal(t, []string{"P1"}, phone.Changes.Projects.Deleted)

	h.clock.Advance(time.Minute)
	res := h.sync(t, "alice", &laptop.Timestamp, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
			{ID: "T1", Fields: tasksrepo.UpdateTask{
				Status:    patch.Value("done"),
				ProjectID: patch.Value("P1"),
				TypeID:    patch.Value("bug"),
				ParentID:  patch.Value("T0"),
			}},
		}},
	})
	assert.Equal(t, []string{"P1"}, res.Changes.Projects.Deleted)
	assert.Equal(t, []string{"bug"}, res.Changes.TaskTypes.Deleted)
	assert.Equal(t, []string{"T0"}, res.Changes.Tasks.Deleted)

	t1, err := h.stores.Tasks.Get(ctx, "alice", "T1")
	require.NoError(t, err)
	assert.Equal(t, "done", t1.Status)
	assert.Equal(t, "P1", *t1.ProjectID)

	h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P2", Name: "Other"}}},
	})
	h.sync(t, "alice", nil, syncengine.Changes{Projects: syncengine.ProjectChanges{Deleted: []string{"P2"}}})

	_, err = h.engine.Synchronize(ctx, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
			{ID: "T1", Fields: tasksrepo.UpdateTask{ProjectID: patch.Value("P2")}},
		}},
	})
	require.ErrorIs(t, err, syncengine.ErrNotFound)
}

func TestParentCycleIsRejected(t *testing.T) {
	h := newHarness(t, defaultOptions())
	h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
			{ID: "a", Title: "a"},
			{ID: "b", Title: "b", ParentID: ptr("a")},
		}},
	})

	_, err := h.engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
			{ID: "a", Fields: tasksrepo.UpdateTask{ParentID: patch.Value("b")}},
		}},
	})
	require.ErrorIs(t, err, syncengine.ErrValidation)

	_, err = h.engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{
			{ID: "x", Title: "x", ParentID: ptr("y")},
			{ID: "y", Title: "y", ParentID: ptr("x")},
		}},
	})
	require.ErrorIs(t, err, syncengine.ErrValidation)
}

func TestOwnerComesFromCaller(t *testing.T) {
	h := newHarness(t, defaultOptions())
	h.sync(t, "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "x", UserID: "bob"}}},
	})

	_, err := h.stores.Projects.Get(context.Background(), "bob", "P1")
	assert.ErrorIs(t, err, syncengine.ErrNotFound)
	bobs := h.sync(t, "bob", nil, syncengine.Changes{})
	assert.Zero(t, bobs.Changes.Projects.Len())
}

func TestStaleWatermarkNeedsResync(t *testing.T) {
	h := newHarness(t, defaultOptions())
	stale := h.clock.Now().Add(-721 * time.Hour)

	_, err := h.engine.Synchronize(context.Background(), "alice", &stale, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "x"}}},
	})
	require.ErrorIs(t, err, syncengine.ErrResyncRequired)

	_, err = h.stores.Projects.Get(context.Background(), "alice", "P1")
	assert.ErrorIs(t, err, syncengine.ErrNotFound)

	res := h.sync(t, "alice", nil, syncengine.Changes{})
	assert.Zero(t, res.Changes.Projects.Len())
}

func TestBatchLimit(t *testing.T) {
	cfg := defaultOptions()
	cfg.MaxBatch = 2
	h := newHarness(t, cfg)

	_, err := h.engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Deleted: []string{"a", "b", "c"}},
	})
	require.ErrorIs(t, err, syncengine.ErrValidation)
}

// blockingTasks stalls Create for one id until the context gives up.
type blockingTasks struct {
	syncengine.TaskStore
	id string
}

func (b blockingTasks) Create(ctx context.Context, input tasksrepo.CreateTask) (tasksrepo.Task, error) {
	if input.ID == b.id {
		<-ctx.Done()
		return tasksrepo.Task{}, ctx.Err()
	}
	return b.TaskStore.Create(ctx, input)
}

func TestDeadlineRollsBack(t *testing.T) {
	h := newHarness(t, defaultOptions())
	stores := h.stores
	stores.Tasks = blockingTasks{TaskStore: h.stores.Tasks, id: "slow"}

	cfg := defaultOptions()
	cfg.Timeout = 50 * time.Millisecond
	engine := syncengine.NewEngine(h.log, h.tx, stores, cfg)

	_, err := engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "x"}}},
		Tasks:    syncengine.TaskChanges{Created: []tasksrepo.CreateTask{{ID: "fast", Title: "a"}, {ID: "slow", Title: "b"}}},
	})
	require.ErrorIs(t, err, syncengine.ErrSyncFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	ctx := context.Background()
	_, err = h.stores.Projects.Get(ctx, "alice", "P1")
	assert.ErrorIs(t, err, syncengine.ErrNotFound)
	_, err = h.stores.Tasks.Get(ctx, "alice", "fast")
	assert.ErrorIs(t, err, syncengine.ErrNotFound)
}

type brokenSnapshot struct {
	syncengine.Transactor
}

func (brokenSnapshot) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, watermark time.Time) error) error {
	return errors.New("disk on fire")
}

func TestReadFailureIsStoreUnavailable(t *testing.T) {
	h := newHarness(t, defaultOptions())
	engine := syncengine.NewEngine(h.log, brokenSnapshot{h.tx}, h.stores, defaultOptions())

	res, err := engine.Synchronize(context.Background(), "alice", nil, syncengine.Changes{
		Projects: syncengine.ProjectChanges{Created: []projectsrepo.CreateProject{{ID: "P1", Name: "x"}}},
	})
	require.ErrorIs(t, err, syncengine.ErrStoreUnavailable)
	assert.Zero(t, res.Changes.Projects.Len())
	assert.True(t, res.Timestamp.IsZero())

	// The write phase had already committed; a retry sees the row as created.
	again := h.sync(t, "alice", nil, syncengine.Changes{})
	assert.Equal(t, []string{"P1"}, ids(again.Changes.Projects.Created))
}

func TestApplyForReorder(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	h.sync(t, "alice", nil, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{{ID: "a", Title: "a"}, {ID: "b", Title: "b"}}},
	})

	err := h.engine.Apply(ctx, "alice", syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: []syncengine.Patch[tasksrepo.UpdateTask]{
			{ID: "a", Fields: tasksrepo.UpdateTask{Section: patch.Value("Today"), Order: patch.Value(1)}},
			{ID: "b", Fields: tasksrepo.UpdateTask{Section: patch.Value("Today"), Order: patch.Value(0)}},
		}},
	})
	require.NoError(t, err)

	b, err := h.stores.Tasks.Get(ctx, "alice", "b")
	require.NoError(t, err)
	assert.Equal(t, "Today", b.Section)
	assert.Equal(t, 0, b.Order)
}
