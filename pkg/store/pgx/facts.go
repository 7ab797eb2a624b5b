package pgx

import (
	"context"
	"fmt"

	"factnet/pkg/common"
	"factnet/pkg/logger"
)

const listFactsQuery = `
SELECT id, public_id, doc_id, timestamp, actor, action, target,
       location, category, tags, sequence_order
FROM facts
ORDER BY id`

func (s *Storage) ListFacts(ctx context.Context) ([]common.Fact, error) {
	rows, err := s.pool.Query(ctx, listFactsQuery)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	var facts []common.Fact
	for rows.Next() {
		var f common.Fact
		err := rows.Scan(&f.ID, &f.PublicID, &f.DocID, &f.Timestamp, &f.Actor,
			&f.Action, &f.Target, &f.Location, &f.Category, &f.Tags, &f.SequenceOrder)
		if err != nil {
			logger.Warn("[Store] Skipping unreadable fact row", "err", err)
			continue
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return facts, nil
}

const insertFactQuery = `
INSERT INTO facts (public_id, doc_id, timestamp, actor, action, target, location, category, tags, sequence_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (doc_id, dedupe_ts, actor, action, target, location) DO NOTHING`

// InsertFacts writes the given facts and returns how many rows were actually
// stored. Facts whose dedupe key already exists are silently dropped by the
// unique index, so re-delivered ingest batches stay idempotent.
func (s *Storage) InsertFacts(ctx context.Context, facts []common.Fact) (int, error) {
	if len(facts) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert facts: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, f := range facts {
		tag, err := tx.Exec(ctx, insertFactQuery, f.PublicID, f.DocID, f.Timestamp,
			f.Actor, f.Action, f.Target, f.Location, f.Category, f.Tags, f.SequenceOrder)
		if err != nil {
			return 0, fmt.Errorf("insert fact %s: %w", f.PublicID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("insert facts: %w", err)
	}
	return inserted, nil
}
