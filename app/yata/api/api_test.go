package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrazmi/yata/app/yata/api"
	"github.com/jrazmi/yata/app/yata/config"
	"github.com/jrazmi/yata/bridge/repositories/projectsrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasktypesrepobridge"
	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/syncbridge"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/infrastructure/sqlitedb/sqlitetest"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewDiscard()
	ds := config.NewSQLiteDatastore(log, sqlitetest.New(t))
	engine := syncengine.NewEngine(log, ds.Tx, ds.Repositories.SyncStores(), syncengine.Options{
		Timeout:            5 * time.Second,
		TombstoneRetention: 720 * time.Hour,
		MaxBatch:           100,
		PurgeBatch:         100,
	})

	h := api.New(config.Yata{
		Build:     "test",
		Logger:    log,
		Telemetry: telemetry.NewTelemetry(),
		Datastore: ds,
		Engine:    engine,
	}, web.HandlerOptions{})

	rec := do(t, h, http.MethodPost, "/api/v1/users", "", map[string]string{"id": "alice", "email": "alice@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return h
}

func do(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSyncFromEpoch(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{
		"changes": map[string]any{
			"projects": map[string]any{"created": []any{map[string]any{"id": "p1", "name": "Inbox"}}},
			"tasks":    map[string]any{"created": []any{map[string]any{"id": "t1", "title": "Buy milk", "projectId": "p1"}}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[syncbridge.SyncResponse](t, rec)
	require.Len(t, resp.Changes.Projects.Created, 1)
	require.Len(t, resp.Changes.Tasks.Created, 1)
	assert.Equal(t, "alice", resp.Changes.Tasks.Created[0].UserID)
	assert.Equal(t, "p1", *resp.Changes.Tasks.Created[0].ProjectID)
	assert.Empty(t, resp.Changes.Tasks.Updated)
	assert.Empty(t, resp.Changes.Tasks.Deleted)
	assert.NotEmpty(t, resp.Timestamp)

	rec = do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{"lastPulledAt": resp.Timestamp})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	again := decode[syncbridge.SyncResponse](t, rec)
	assert.Empty(t, again.Changes.Tasks.Created)
	assert.Empty(t, again.Changes.Projects.Created)
}

func TestSyncUpdatedPatch(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{
		"changes": map[string]any{
			"tasks": map[string]any{"created": []any{map[string]any{"id": "t1", "title": "Pay rent", "dueDate": "2026-03-01"}}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[syncbridge.SyncResponse](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{
		"lastPulledAt": first.Timestamp,
		"changes": map[string]any{
			"tasks": map[string]any{"updated": []any{map[string]any{"id": "t1", "dueDate": "next week"}}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{
		"lastPulledAt": first.Timestamp,
		"changes": map[string]any{
			"tasks": map[string]any{"updated": []any{map[string]any{"id": "t1", "status": "done", "dueDate": nil, "whenDate": ""}}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[syncbridge.SyncResponse](t, rec)
	require.Len(t, resp.Changes.Tasks.Updated, 1)
	got := resp.Changes.Tasks.Updated[0]
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, "Pay rent", got.Title)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.WhenDate)
}

func TestSyncRequiresIdentity(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sync", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errs.Unauthenticated, decode[errs.Error](t, rec).Code)
}

func TestSyncRejectsForeignOwner(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{
		"changes": map[string]any{
			"projects": map[string]any{"created": []any{map[string]any{"id": "p1", "name": "Inbox", "userId": "bob"}}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.Invalid, decode[errs.Error](t, rec).Code)
}

func TestSyncDanglingProjectIsNotFound(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{
		"changes": map[string]any{
			"tasks": map[string]any{"created": []any{map[string]any{"id": "t1", "title": "Orphan", "projectId": "nope"}}},
		},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/tasks", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]tasksrepobridge.Task](t, rec))
}

func TestSyncStaleWatermarkIsGone(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{"lastPulledAt": "2001-01-01T00:00:00.000Z"})
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, errs.ResyncRequired, decode[errs.Error](t, rec).Code)
}

func TestSyncBadTimestamp(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/sync", "alice", map[string]any{"lastPulledAt": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskCRUD(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/tasks", "alice", map[string]any{"title": "Write tests", "dueDate": "2026-03-01T09:00:00.000Z"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[tasksrepobridge.Task](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.UserID)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2026-03-01T09:00:00Z", *created.DueDate)

	rec = do(t, h, http.MethodGet, "/api/v1/tasks/"+created.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Write tests", decode[tasksrepobridge.Task](t, rec).Title)

	rec = do(t, h, http.MethodGet, "/api/v1/tasks/"+created.ID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/tasks/"+created.ID, "alice", map[string]any{"title": "Write more tests", "dueDate": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[tasksrepobridge.Task](t, rec)
	assert.Equal(t, "Write more tests", updated.Title)
	assert.Nil(t, updated.DueDate)

	rec = do(t, h, http.MethodDelete, "/api/v1/tasks/"+created.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/v1/tasks/"+created.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/tasks/"+created.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCRUDEmbedsRelations(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/projects", "alice", map[string]any{"id": "p1", "name": "Home"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, decode[projectsrepobridge.ProjectWithTasks](t, rec).Tasks)

	rec = do(t, h, http.MethodPost, "/api/v1/types", "alice", map[string]any{"id": "chore", "name": "Chore", "icon": "broom"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, body := range []map[string]any{
		{"id": "parent", "title": "Clean", "projectId": "p1", "typeId": "chore"},
		{"id": "child", "title": "Vacuum", "parentId": "parent", "projectId": "p1"},
		{"id": "gone", "title": "Mop", "parentId": "parent"},
	} {
		rec = do(t, h, http.MethodPost, "/api/v1/tasks", "alice", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodDelete, "/api/v1/tasks/gone", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/tasks/parent", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	parent := decode[tasksrepobridge.TaskWithRelations](t, rec)
	require.NotNil(t, parent.Project)
	assert.Equal(t, "Home", parent.Project.Name)
	require.NotNil(t, parent.Type)
	assert.Equal(t, "broom", parent.Type.Icon)
	assert.Nil(t, parent.Parent)
	require.Len(t, parent.Subtasks, 1)
	assert.Equal(t, "child", parent.Subtasks[0].ID)

	rec = do(t, h, http.MethodGet, "/api/v1/tasks", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]tasksrepobridge.TaskWithRelations](t, rec)
	require.Len(t, list, 2)
	for _, task := range list {
		if task.ID == "child" {
			require.NotNil(t, task.Parent)
			assert.Equal(t, "parent", task.Parent.ID)
			assert.Nil(t, task.Type)
			assert.Empty(t, task.Subtasks)
		}
	}

	rec = do(t, h, http.MethodGet, "/api/v1/projects/p1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[projectsrepobridge.ProjectWithTasks](t, rec).Tasks, 2)

	rec = do(t, h, http.MethodGet, "/api/v1/types", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	types := decode[[]tasktypesrepobridge.TaskTypeWithTasks](t, rec)
	require.Len(t, types, 1)
	require.Len(t, types[0].Tasks, 1)
	assert.Equal(t, "parent", types[0].Tasks[0].ID)

	rec = do(t, h, http.MethodDelete, "/api/v1/projects/p1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/tasks/child", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	child := decode[tasksrepobridge.TaskWithRelations](t, rec)
	assert.Nil(t, child.Project)
	require.NotNil(t, child.ProjectID)
	assert.Equal(t, "p1", *child.ProjectID)
}

func TestTaskReorder(t *testing.T) {
	h := newServer(t)

	for _, id := range []string{"a", "b"} {
		rec := do(t, h, http.MethodPost, "/api/v1/tasks", "alice", map[string]any{"id": id, "title": "task " + id})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodPost, "/api/v1/tasks/reorder", "alice", []map[string]any{
		{"id": "a", "section": "today", "order": 2},
		{"id": "b", "section": "today", "order": 1},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/tasks?section=today", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]tasksrepobridge.Task](t, rec)
	require.Len(t, tasks, 2)
	orders := map[string]int{}
	for _, task := range tasks {
		orders[task.ID] = task.Order
	}
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, orders)

	rec = do(t, h, http.MethodPost, "/api/v1/tasks/reorder", "alice", []map[string]any{
		{"id": "a", "section": "later", "order": 0},
		{"id": "missing", "section": "later", "order": 1},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/tasks/a", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "today", decode[tasksrepobridge.Task](t, rec).Section)
}

func TestUsersMe(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/users/me", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"alice@example.com"`)

	rec = do(t, h, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMigrations(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/migrations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"001_init.sql"`)
	assert.Contains(t, rec.Body.String(), `"applied":true`)
}

func TestExpvar(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, api.VarsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requests"`)
}
