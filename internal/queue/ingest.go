package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"factnet/internal/ingest"
	"factnet/internal/storage"
	"factnet/internal/util"
	"factnet/pkg/logger"
	"factnet/pkg/store"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rabbitmq/amqp091-go"
)

// ProcessIngestMessage pulls one extraction drop from S3, parses and stores
// its facts, then enqueues a rebuild so the new facts become queryable.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	ch *amqp091.Channel,
	st store.FactStorage,
	msg string,
) error {
	var data IngestMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}
	if data.Key == "" {
		return fmt.Errorf("ingest message missing object key")
	}

	inserted, err := processDrop(ctx, s3Client, st, data.Key)
	if err != nil {
		return err
	}

	if inserted == 0 {
		// Everything was a redelivery, the current snapshot already covers it.
		return nil
	}

	rebuild, err := json.Marshal(RebuildMsg{RequestedAt: time.Now().UTC(), Reason: "ingest:" + data.Key})
	if err != nil {
		return err
	}
	if err := PublishFIFO(ch, RebuildQueue, rebuild); err != nil {
		return fmt.Errorf("enqueue rebuild: %w", err)
	}
	return nil
}

// processDrop fetches, parses, and stores one drop, returning the number of
// new rows. S3 fetches are retried; parse problems are per-line, not fatal.
func processDrop(ctx context.Context, s3Client *awss3.Client, st store.FactStorage, key string) (int, error) {
	raw, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) ([]byte, error) {
		return storage.GetFile(ctx, s3Client, key)
	})
	if err != nil {
		return 0, fmt.Errorf("fetch drop %s: %w", key, err)
	}

	facts, skipped, err := ingest.ParseDrop(raw)
	if err != nil {
		return 0, fmt.Errorf("parse drop %s: %w", key, err)
	}
	if len(facts) == 0 {
		logger.Warn("[Queue] Drop contained no usable facts", "key", key, "skipped", skipped)
		deleteDrop(ctx, s3Client, key)
		return 0, nil
	}

	inserted, err := st.InsertFacts(ctx, facts)
	if err != nil {
		return 0, fmt.Errorf("store facts from %s: %w", key, err)
	}
	logger.Info("[Queue] Ingested drop",
		"key", key,
		"parsed", len(facts),
		"inserted", inserted,
		"duplicates", len(facts)-inserted,
		"skipped", skipped,
	)
	deleteDrop(ctx, s3Client, key)
	return inserted, nil
}

// deleteDrop removes a consumed drop so a later sweep does not re-read it.
// A leftover object is only re-ingested and deduplicated, so failures are
// logged, not fatal.
func deleteDrop(ctx context.Context, s3Client *awss3.Client, key string) {
	if err := storage.DeleteFile(ctx, s3Client, key); err != nil {
		logger.Warn("[Queue] Failed to delete processed drop", "key", key, "err", err)
	}
}
