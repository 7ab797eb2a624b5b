package server

import (
	"context"
	"time"

	"factnet/pkg/logger"
	"factnet/pkg/snapshot"
	"factnet/pkg/store"
)

// runRefresher polls the persisted snapshot version and swaps in a freshly
// loaded snapshot whenever the worker has published a newer one. The swap is
// a single atomic pointer store; in-flight queries keep the snapshot they
// loaded at request start.
func runRefresher(ctx context.Context, st store.FactStorage, handle *snapshot.Handle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		meta, err := st.SnapshotMeta(ctx)
		if err != nil {
			logger.Error("[Server] Failed to read snapshot meta", "err", err)
			return
		}
		if meta == nil || meta.Version == handle.Version() {
			return
		}

		snap, err := st.LoadSnapshot(ctx)
		if err != nil {
			logger.Error("[Server] Failed to load snapshot", "version", meta.Version, "err", err)
			return
		}
		if snap == nil {
			return
		}

		handle.Store(snap)
		logger.Info("[Server] Snapshot swapped in",
			"version", snap.Version,
			"entities", snap.EntityCount,
			"edges", snap.EdgeCount,
			"principal_found", snap.Distances.PrincipalFound,
		)
	}

	// Pick up an existing snapshot immediately instead of serving the empty
	// one until the first tick.
	refresh()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
