package pgx

import (
	"context"
	"errors"
	"fmt"
	"sort"

	pgxdriver "github.com/jackc/pgx/v5"

	"factnet/pkg/graph"
	"factnet/pkg/registry"
	"factnet/pkg/snapshot"
	"factnet/pkg/store"
)

const bumpSnapshotMetaQuery = `
INSERT INTO snapshot_meta (id, version, principal, principal_found, sentinel, entity_count, edge_count, built_at)
VALUES (1, 1, $1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET version = snapshot_meta.version + 1,
    principal = EXCLUDED.principal,
    principal_found = EXCLUDED.principal_found,
    sentinel = EXCLUDED.sentinel,
    entity_count = EXCLUDED.entity_count,
    edge_count = EXCLUDED.edge_count,
    built_at = EXCLUDED.built_at
RETURNING version`

// SaveSnapshot replaces the canonical entity distances and bumps the
// snapshot version, all in one transaction. Readers polling SnapshotMeta see
// either the previous snapshot in full or the new one in full.
func (s *Storage) SaveSnapshot(ctx context.Context, snap *snapshot.Snapshot) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM canonical_entities`); err != nil {
		return 0, fmt.Errorf("clear canonical entities: %w", err)
	}

	names := make([]string, 0, len(snap.Distances.Distances))
	for name := range snap.Distances.Distances {
		names = append(names, name)
	}
	sort.Strings(names)

	entityRows := make([][]any, 0, len(names))
	for _, name := range names {
		entityRows = append(entityRows, []any{name, snap.Distances.Distances[name]})
	}
	_, err = tx.CopyFrom(ctx, pgxdriver.Identifier{"canonical_entities"},
		[]string{"entity_name", "distance"}, pgxdriver.CopyFromRows(entityRows))
	if err != nil {
		return 0, fmt.Errorf("copy canonical entities: %w", err)
	}

	var version int64
	err = tx.QueryRow(ctx, bumpSnapshotMetaQuery, snap.Principal, snap.Distances.PrincipalFound,
		snap.Sentinel, snap.EntityCount, snap.EdgeCount, snap.BuiltAt).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("bump snapshot version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	return version, nil
}

// SnapshotMeta returns the persisted snapshot header, or nil when no rebuild
// has ever completed.
func (s *Storage) SnapshotMeta(ctx context.Context) (*store.SnapshotMeta, error) {
	var meta store.SnapshotMeta
	err := s.pool.QueryRow(ctx, `
SELECT version, principal, principal_found, sentinel, entity_count, edge_count, built_at
FROM snapshot_meta WHERE id = 1`).Scan(
		&meta.Version, &meta.Principal, &meta.PrincipalFound, &meta.Sentinel,
		&meta.EntityCount, &meta.EdgeCount, &meta.BuiltAt)
	if errors.Is(err, pgxdriver.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot meta: %w", err)
	}
	return &meta, nil
}

// LoadSnapshot reassembles a serving snapshot from the persisted distance
// rows plus the alias and cluster tables. Returns nil when no snapshot has
// been saved yet.
func (s *Storage) LoadSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	meta, err := s.SnapshotMeta(ctx)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}

	aliases, err := s.ListAliases(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := registry.New(aliases)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	clusters, err := s.ListClusters(ctx)
	if err != nil {
		return nil, err
	}
	clusterMap := make(map[string][]string, len(clusters))
	for _, c := range clusters {
		clusterMap[c.ClusterID] = c.Tags
	}

	rows, err := s.pool.Query(ctx, `SELECT entity_name, distance FROM canonical_entities`)
	if err != nil {
		return nil, fmt.Errorf("load distances: %w", err)
	}
	defer rows.Close()

	distances := make(map[string]int, meta.EntityCount)
	for rows.Next() {
		var name string
		var dist int
		if err := rows.Scan(&name, &dist); err != nil {
			return nil, fmt.Errorf("scan distance: %w", err)
		}
		distances[name] = dist
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load distances: %w", err)
	}

	return &snapshot.Snapshot{
		Version:   meta.Version,
		BuiltAt:   meta.BuiltAt,
		Principal: meta.Principal,
		Sentinel:  meta.Sentinel,
		Registry:  reg,
		Distances: &graph.DistanceIndex{
			Principal:      meta.Principal,
			Sentinel:       meta.Sentinel,
			PrincipalFound: meta.PrincipalFound,
			Distances:      distances,
		},
		Clusters:    clusterMap,
		EntityCount: meta.EntityCount,
		EdgeCount:   meta.EdgeCount,
	}, nil
}
