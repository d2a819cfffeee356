package sqlitedb

import (
	"database/sql"
	"sync"
	"time"
)

// Clock hands out strictly increasing microsecond timestamps. SQLite has no
// transaction clock of its own, so every row timestamp and sync watermark
// is drawn from here.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// Micros encodes t for an INTEGER timestamp column.
func Micros(t time.Time) int64 {
	return t.UnixMicro()
}

// FromMicros decodes an INTEGER timestamp column.
func FromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

// NullMicros encodes an optional timestamp, writing NULL for nil.
func NullMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMicro(), Valid: true}
}

// FromNullMicros decodes an optional timestamp column.
func FromNullMicros(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := FromMicros(v.Int64)
	return &t
}
