package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"factnet/internal/storage"
	"factnet/pkg/logger"
	"factnet/pkg/store"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

const sweepParallelMax = 4

// SweepDrops ingests every extraction drop under the given prefix. It exists
// for drops written while no worker was running: queue messages for them are
// gone, the objects are not. One rebuild is enqueued at the end if anything
// new landed.
func SweepDrops(
	ctx context.Context,
	s3Client *awss3.Client,
	ch *amqp091.Channel,
	st store.FactStorage,
	prefix string,
) error {
	keys, err := storage.ListFilesWithPrefix(ctx, s3Client, prefix)
	if err != nil {
		return fmt.Errorf("list drops under %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		logger.Debug("[Queue] No drops to sweep", "prefix", prefix)
		return nil
	}
	logger.Info("[Queue] Sweeping drops", "prefix", prefix, "count", len(keys))

	var totalInserted atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelMax)
	for _, key := range keys {
		k := key
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
				inserted, err := processDrop(gCtx, s3Client, st, k)
				if err != nil {
					return err
				}
				totalInserted.Add(int64(inserted))
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if totalInserted.Load() == 0 {
		return nil
	}

	rebuild, err := json.Marshal(RebuildMsg{RequestedAt: time.Now().UTC(), Reason: "sweep:" + prefix})
	if err != nil {
		return err
	}
	if err := PublishFIFO(ch, RebuildQueue, rebuild); err != nil {
		return fmt.Errorf("enqueue rebuild: %w", err)
	}
	return nil
}
