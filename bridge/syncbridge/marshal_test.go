package syncbridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeChanges(t *testing.T, body string) *ChangesInput {
	t.Helper()
	var req SyncRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req.Changes
}

func TestTaskPatchDecodesFlattened(t *testing.T) {
	in := decodeChanges(t, `{"changes":{"tasks":{"updated":[
		{"id":"T1","status":"done","dueDate":null,"whenDate":"","startedDate":"2026-03-01","urls":["example.com/a"]}
	]}}}`)

	out, err := MarshalChangesToCore("alice", in)
	require.NoError(t, err)
	require.Len(t, out.Tasks.Updated, 1)

	p := out.Tasks.Updated[0]
	assert.Equal(t, "T1", p.ID)
	assert.True(t, p.Fields.Status.HasValue())
	assert.Equal(t, "done", p.Fields.Status.Value)

	assert.True(t, p.Fields.DueDate.Set)
	assert.True(t, p.Fields.DueDate.Null)

	assert.False(t, p.Fields.WhenDate.Set)

	require.True(t, p.Fields.StartedDate.HasValue())
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), p.Fields.StartedDate.Value)

	assert.Equal(t, []string{"example.com/a"}, p.Fields.URLs.Value)
	assert.False(t, p.Fields.Title.Set)
	assert.False(t, p.Fields.ProjectID.Set)
	assert.False(t, p.Fields.CompletedDate.Set)
}

func TestProjectAndTypePatchesDecode(t *testing.T) {
	in := decodeChanges(t, `{"changes":{
		"projects":{"updated":[{"id":"P1","name":"Home"}],"deleted":["P2"]},
		"taskTypes":{"updated":[{"id":"bug","icon":"🪲"}]}
	}}`)

	out, err := MarshalChangesToCore("alice", in)
	require.NoError(t, err)

	require.Len(t, out.Projects.Updated, 1)
	assert.Equal(t, "P1", out.Projects.Updated[0].ID)
	assert.Equal(t, "Home", out.Projects.Updated[0].Fields.Name.Value)
	assert.Equal(t, []string{"P2"}, out.Projects.Deleted)

	require.Len(t, out.TaskTypes.Updated, 1)
	assert.False(t, out.TaskTypes.Updated[0].Fields.Name.Set)
	assert.Equal(t, "🪲", out.TaskTypes.Updated[0].Fields.Icon.Value)
}

func TestCreatedRecordsAcceptFreeText(t *testing.T) {
	in := decodeChanges(t, `{"changes":{
		"projects":{"created":[{"id":"P1","name":""}]},
		"tasks":{"created":[{"id":"T1","title":"","userId":"alice","urls":["mailto:bob@example.com"],"dueDate":""}]}
	}}`)

	out, err := MarshalChangesToCore("alice", in)
	require.NoError(t, err)
	require.Len(t, out.Tasks.Created, 1)
	assert.Equal(t, []string{"mailto:bob@example.com"}, out.Tasks.Created[0].URLs)
	assert.Nil(t, out.Tasks.Created[0].DueDate)
	require.Len(t, out.Projects.Created, 1)
}

func TestMarshalChangesRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "update without id",
			body: `{"changes":{"tasks":{"updated":[{"id":"T1"},{"status":"done"}]}}}`,
			want: "tasks.updated[1].id",
		},
		{
			name: "project update without id",
			body: `{"changes":{"projects":{"updated":[{"name":"x"}]}}}`,
			want: "projects.updated[0].id",
		},
		{
			name: "bad date in patch",
			body: `{"changes":{"tasks":{"updated":[{"id":"T1","dueDate":"next week"}]}}}`,
			want: "tasks.updated[0]",
		},
		{
			name: "bad date in created",
			body: `{"changes":{"tasks":{"created":[{"id":"T1","title":"x","completedDate":"soon"}]}}}`,
			want: "tasks.created[0]",
		},
		{
			name: "created for another user",
			body: `{"changes":{"taskTypes":{"created":[{"id":"bug","name":"Bug","userId":"bob"}]}}}`,
			want: "taskTypes.created[0].userId",
		},
		{
			name: "created without id",
			body: `{"changes":{"tasks":{"created":[{"title":"x"}]}}}`,
			want: "tasks.created[0].id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalChangesToCore("alice", decodeChanges(t, tt.body))
			require.ErrorIs(t, err, repositories.ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNilChangesIsEmpty(t *testing.T) {
	out, err := MarshalChangesToCore("alice", nil)
	require.NoError(t, err)
	assert.Equal(t, syncengine.Changes{}, out)
}

func TestParseLastPulledAt(t *testing.T) {
	got, err := parseLastPulledAt(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := "2026-01-02T03:04:05.678Z"
	got, err = parseLastPulledAt(&s)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 678000000, time.UTC), *got)

	bad := "yesterday"
	_, err = parseLastPulledAt(&bad)
	require.ErrorIs(t, err, repositories.ErrInvalid)
	assert.Contains(t, err.Error(), "lastPulledAt")
}

func TestMarshalResultEmptyDeltas(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	resp := MarshalResultToBridge(syncengine.Result{Timestamp: ts})

	data, _, err := resp.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"changes": {
			"tasks": {"created": [], "updated": [], "deleted": []},
			"projects": {"created": [], "updated": [], "deleted": []},
			"taskTypes": {"created": [], "updated": [], "deleted": []}
		},
		"timestamp": "2026-01-02T03:04:05Z"
	}`, string(data))
}
