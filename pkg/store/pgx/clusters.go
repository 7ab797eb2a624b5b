package pgx

import (
	"context"
	"fmt"

	"factnet/pkg/common"
)

func (s *Storage) ListClusters(ctx context.Context) ([]common.TagCluster, error) {
	rows, err := s.pool.Query(ctx, `SELECT cluster_id, tags FROM tag_clusters ORDER BY cluster_id`)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	defer rows.Close()

	var clusters []common.TagCluster
	for rows.Next() {
		var c common.TagCluster
		if err := rows.Scan(&c.ClusterID, &c.Tags); err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		clusters = append(clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	return clusters, nil
}

// ReplaceClusters swaps the whole cluster lookup table. The table is produced
// by an external job as one unit, so partial updates make no sense.
func (s *Storage) ReplaceClusters(ctx context.Context, clusters []common.TagCluster) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace clusters: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tag_clusters`); err != nil {
		return fmt.Errorf("replace clusters: %w", err)
	}
	for _, c := range clusters {
		_, err := tx.Exec(ctx, `INSERT INTO tag_clusters (cluster_id, tags) VALUES ($1, $2)`, c.ClusterID, c.Tags)
		if err != nil {
			return fmt.Errorf("insert cluster %q: %w", c.ClusterID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("replace clusters: %w", err)
	}
	return nil
}
