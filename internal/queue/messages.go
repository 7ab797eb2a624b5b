package queue

import "time"

// IngestMsg asks the worker to pull one extraction drop from S3 and store
// its facts.
type IngestMsg struct {
	Key       string `json:"key"`
	RequestBy string `json:"request_by,omitempty"`
}

// RebuildMsg asks the worker to rebuild the snapshot. RequestedAt drives
// coalescing: a rebuild whose snapshot was built after RequestedAt already
// covers this request and the message is dropped.
type RebuildMsg struct {
	RequestedAt time.Time `json:"requested_at"`
	Reason      string    `json:"reason,omitempty"`
}

// SnapshotRebuiltEvent is published on the pubsub exchange after a rebuild
// lands, so API servers can reload without waiting for the next poll.
type SnapshotRebuiltEvent struct {
	Version     int64     `json:"version"`
	EntityCount int       `json:"entity_count"`
	EdgeCount   int       `json:"edge_count"`
	BuiltAt     time.Time `json:"built_at"`
}
