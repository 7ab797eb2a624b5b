package store

import (
	"context"
	"time"

	"factnet/pkg/common"
	"factnet/pkg/snapshot"
)

// SnapshotMeta describes the persisted snapshot without its distance rows.
// The server's refresher compares Version against the in-memory handle to
// decide whether a reload is due.
type SnapshotMeta struct {
	Version        int64
	Principal      string
	PrincipalFound bool
	Sentinel       int
	EntityCount    int
	EdgeCount      int
	BuiltAt        time.Time
}

// FactStorage is the persistence boundary of the engine: the authoritative
// fact, alias, and cluster tables plus the derived snapshot rows. Only facts,
// aliases, and clusters must survive restarts; everything else is
// recomputable from them.
type FactStorage interface {
	// ListFacts returns the deduplicated fact set ordered by ID. Rows that
	// fail to scan are skipped, not fatal: one bad record must not fail an
	// entire result set.
	ListFacts(ctx context.Context) ([]common.Fact, error)
	InsertFacts(ctx context.Context, facts []common.Fact) (int, error)

	ListAliases(ctx context.Context) ([]common.AliasRecord, error)
	UpsertAliases(ctx context.Context, rows []common.AliasRecord) error

	ListClusters(ctx context.Context) ([]common.TagCluster, error)
	ReplaceClusters(ctx context.Context, clusters []common.TagCluster) error

	// SaveSnapshot persists the distance rows and bumps the snapshot version
	// in a single transaction, returning the new version. A failed save
	// leaves the previous snapshot rows untouched.
	SaveSnapshot(ctx context.Context, snap *snapshot.Snapshot) (int64, error)
	SnapshotMeta(ctx context.Context) (*SnapshotMeta, error)
	// LoadSnapshot reassembles a serving snapshot from the persisted
	// distance rows, alias table, and cluster table.
	LoadSnapshot(ctx context.Context) (*snapshot.Snapshot, error)
}
