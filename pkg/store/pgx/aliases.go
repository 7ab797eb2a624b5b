package pgx

import (
	"context"
	"fmt"

	"factnet/pkg/common"
)

const listAliasesQuery = `
SELECT original_name, canonical_name, reasoning, created_by, created_at
FROM aliases
ORDER BY original_name`

func (s *Storage) ListAliases(ctx context.Context) ([]common.AliasRecord, error) {
	rows, err := s.pool.Query(ctx, listAliasesQuery)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []common.AliasRecord
	for rows.Next() {
		var a common.AliasRecord
		if err := rows.Scan(&a.OriginalName, &a.CanonicalName, &a.Reasoning, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	return aliases, nil
}

const upsertAliasQuery = `
INSERT INTO aliases (original_name, canonical_name, reasoning, created_by, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (original_name) DO UPDATE
SET canonical_name = EXCLUDED.canonical_name,
    reasoning = EXCLUDED.reasoning,
    created_by = EXCLUDED.created_by`

// UpsertAliases writes alias rows in one transaction. An original name may
// only map to one canonical name, so a re-mapped alias overwrites its row.
func (s *Storage) UpsertAliases(ctx context.Context, aliases []common.AliasRecord) error {
	if len(aliases) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("upsert aliases: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range aliases {
		_, err := tx.Exec(ctx, upsertAliasQuery, a.OriginalName, a.CanonicalName, a.Reasoning, a.CreatedBy, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("upsert alias %q: %w", a.OriginalName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("upsert aliases: %w", err)
	}
	return nil
}
