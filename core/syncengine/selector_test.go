package syncengine_test

import (
	"testing"
	"time"

	"github.com/jrazmi/yata/core/syncengine"
	"github.com/stretchr/testify/assert"
)

type row struct {
	id      string
	created time.Time
	updated time.Time
	deleted *time.Time
}

func (r row) GetID() string            { return r.id }
func (r row) GetCreatedAt() time.Time  { return r.created }
func (r row) GetUpdatedAt() time.Time  { return r.updated }
func (r row) GetDeletedAt() *time.Time { return r.deleted }

func TestSelectPartitions(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }
	since, until := at(10), at(20)

	rows := []row{
		{id: "old", created: at(1), updated: at(5)},
		{id: "edge", created: at(1), updated: at(10)},
		{id: "new", created: at(12), updated: at(12)},
		{id: "edited", created: at(1), updated: at(15)},
		{id: "gone", created: at(1), updated: at(16), deleted: ptr(at(16))},
		{id: "born-and-gone", created: at(11), updated: at(17), deleted: ptr(at(17))},
		{id: "at-until", created: at(2), updated: at(20)},
		{id: "future", created: at(21), updated: at(21)},
	}

	d := syncengine.Select(rows, since, until)
	assert.Equal(t, []string{"new"}, ids(d.Created))
	assert.Equal(t, []string{"edited", "at-until"}, ids(d.Updated))
	assert.Equal(t, []string{"gone", "born-and-gone"}, d.Deleted)
	assert.Equal(t, 5, d.Len())
}

func TestSelectEmptyIsNotNil(t *testing.T) {
	d := syncengine.Select[row](nil, syncengine.Epoch, time.Now())
	assert.NotNil(t, d.Created)
	assert.NotNil(t, d.Updated)
	assert.NotNil(t, d.Deleted)
	assert.Zero(t, d.Len())
}

func TestSelectFromEpochHasNoUpdates(t *testing.T) {
	now := time.Now().UTC()
	rows := []row{
		{id: "a", created: now.Add(-time.Hour), updated: now},
		{id: "b", created: now.Add(-time.Minute), updated: now.Add(-time.Minute)},
	}

	d := syncengine.Select(rows, syncengine.Epoch, now)
	assert.Equal(t, []string{"a", "b"}, ids(d.Created))
	assert.Empty(t, d.Updated)
}
