package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"factnet/internal/util"
	"factnet/pkg/leaselock"
	"factnet/pkg/logger"
	"factnet/pkg/registry"
	"factnet/pkg/snapshot"
	"factnet/pkg/store"

	"github.com/rabbitmq/amqp091-go"
)

// rebuildLockKey serializes snapshot writes across worker replicas.
const rebuildLockKey = "snapshot_rebuild"

// ProcessRebuildMessage rebuilds the snapshot from the authoritative tables
// and persists it under a new version. Consecutive rebuild requests coalesce:
// a message older than the last completed build is acked without work, so a
// burst of ingests pays for one rebuild, not one per message.
func ProcessRebuildMessage(
	ctx context.Context,
	ch *amqp091.Channel,
	st store.FactStorage,
	locker *leaselock.Client,
	cfg snapshot.Config,
	msg string,
) error {
	var data RebuildMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	if locker != nil {
		return locker.WithLease(ctx, rebuildLockKey, leaselock.Options{
			TTL:  2 * time.Minute,
			Wait: true,
		}, func(ctx context.Context) error {
			return rebuild(ctx, ch, st, cfg, data)
		})
	}
	return rebuild(ctx, ch, st, cfg, data)
}

func rebuild(
	ctx context.Context,
	ch *amqp091.Channel,
	st store.FactStorage,
	cfg snapshot.Config,
	data RebuildMsg,
) error {
	meta, err := st.SnapshotMeta(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot meta: %w", err)
	}
	if meta != nil && !data.RequestedAt.IsZero() && !meta.BuiltAt.Before(data.RequestedAt) {
		logger.Info("[Queue] Rebuild already covered by snapshot",
			"version", meta.Version, "built_at", meta.BuiltAt, "requested_at", data.RequestedAt)
		return nil
	}

	start := time.Now()

	aliases, err := st.ListAliases(ctx)
	if err != nil {
		return fmt.Errorf("load aliases: %w", err)
	}
	reg, err := registry.New(aliases)
	if err != nil {
		return fmt.Errorf("alias table integrity: %w", err)
	}
	if missing := reg.Backfill("rebuild", time.Now().UTC()); len(missing) > 0 {
		if err := st.UpsertAliases(ctx, missing); err != nil {
			return fmt.Errorf("backfill aliases: %w", err)
		}
		aliases = append(aliases, missing...)
		logger.Info("[Queue] Backfilled self-referencing aliases", "count", len(missing))
	}

	facts, err := st.ListFacts(ctx)
	if err != nil {
		return fmt.Errorf("load facts: %w", err)
	}
	clusters, err := st.ListClusters(ctx)
	if err != nil {
		return fmt.Errorf("load clusters: %w", err)
	}

	snap, err := snapshot.Build(facts, aliases, clusters, cfg)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}

	version, err := st.SaveSnapshot(ctx, snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	snap.Version = version

	logger.Info("[Queue] Snapshot rebuilt",
		"version", version,
		"entities", snap.EntityCount,
		"edges", snap.EdgeCount,
		"facts", len(facts),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	event, err := json.Marshal(SnapshotRebuiltEvent{
		Version:     version,
		EntityCount: snap.EntityCount,
		EdgeCount:   snap.EdgeCount,
		BuiltAt:     snap.BuiltAt,
	})
	if err != nil {
		return err
	}
	if err := util.RetryErr(3, func() error {
		return PublishTopic(ch, "snapshot.rebuilt", event)
	}); err != nil {
		// The refresher will pick the version up on its next poll anyway.
		logger.Warn("[Queue] Failed to publish rebuilt event", "err", err)
	}
	return nil
}
