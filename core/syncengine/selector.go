package syncengine

import "time"

// Epoch is the watermark of a client that has never synced.
var Epoch = time.Unix(0, 0).UTC()

// Select partitions rows changed after since into a Delta. Rows updated at
// or before since, or after until, are dropped; the latter reach the client
// on its next pull. Every remaining row lands in exactly one partition:
// tombstones in Deleted, rows created after since in Created, the rest in
// Updated.
func Select[T Versioned](rows []T, since, until time.Time) Delta[T] {
	d := Delta[T]{
		Created: []T{},
		Updated: []T{},
		Deleted: []string{},
	}
	for _, row := range rows {
		updated := row.GetUpdatedAt()
		if !updated.After(since) || updated.After(until) {
			continue
		}
		switch {
		case row.GetDeletedAt() != nil:
			d.Deleted = append(d.Deleted, row.GetID())
		case row.GetCreatedAt().After(since):
			d.Created = append(d.Created, row)
		default:
			d.Updated = append(d.Updated, row)
		}
	}
	return d
}
