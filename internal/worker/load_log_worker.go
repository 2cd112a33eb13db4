package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/config"
	"github.com/stemsi/majorcatalog/internal/diagnostic"
	"github.com/stemsi/majorcatalog/internal/model"
)

const (
	defaultLoadLogBatch = 100
	loadLogRetryDelay   = 5 * time.Second
)

// LoadLogStore persists batches of detail load records.
type LoadLogStore interface {
	InsertBatch(ctx context.Context, records []model.LoadRecord) (int64, error)
}

// LoadLogWorker consumes detail_load_log_queue and copies the records into
// PostgreSQL in batches.
type LoadLogWorker struct {
	rdb        *redis.Client
	store      LoadLogStore
	queue      string
	batch      int
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewLoadLogWorker creates a new LoadLogWorker.
func NewLoadLogWorker(rdb *redis.Client, store LoadLogStore, batch int, log zerolog.Logger) *LoadLogWorker {
	if batch < 1 {
		batch = defaultLoadLogBatch
	}
	return &LoadLogWorker{
		rdb:        rdb,
		store:      store,
		queue:      config.Keys.DetailLoadLogQueue,
		batch:      batch,
		retryDelay: loadLogRetryDelay,
		log:        log.With().Str("component", "load_log_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *LoadLogWorker) Start(ctx context.Context) {
	w.log.Info().Str("queue", w.queue).Int("batch", w.batch).Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.WithoutCancel(ctx))
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *LoadLogWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	raw := []string{result[1]}
	if w.batch > 1 {
		more, err := w.rdb.LPopCount(ctx, w.queue, w.batch-1).Result()
		switch {
		case err == nil:
			raw = append(raw, more...)
		case !errors.Is(err, redis.Nil):
			w.log.Error().Err(err).Msg("LPopCount error")
		}
	}

	if err := w.flush(ctx, raw); err != nil {
		w.log.Error().Err(err).Int("count", len(raw)).Msg("Persist error, retrying later")
		w.pushBack(context.WithoutCancel(ctx), raw)

		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

// flush decodes raw payloads and writes them in one batch. Payloads that
// cannot be decoded are logged and dropped.
func (w *LoadLogWorker) flush(ctx context.Context, raw []string) error {
	records := decodeRecords(raw, w.log)
	if len(records) == 0 {
		return nil
	}

	n, err := w.store.InsertBatch(ctx, records)
	if err != nil {
		if !rejected(err) {
			return fmt.Errorf("failed to insert load records: %w", err)
		}
		// One bad row fails the whole COPY; retry row by row and drop
		// whatever the database still refuses.
		w.log.Warn().Err(err).Int("count", len(records)).Msg("Batch rejected, inserting rows one by one")
		return w.insertEach(ctx, records)
	}
	w.log.Debug().Int64("count", n).Msg("Load records persisted")
	return nil
}

func (w *LoadLogWorker) insertEach(ctx context.Context, records []model.LoadRecord) error {
	var persisted, dropped int
	for i := range records {
		_, err := w.store.InsertBatch(ctx, records[i:i+1])
		switch {
		case err == nil:
			persisted++
		case rejected(err):
			dropped++
			w.log.Error().Err(err).
				Str("major_id", records[i].MajorID).
				Str("outcome", string(records[i].Outcome)).
				Msg("Dropping load record")
		default:
			return fmt.Errorf("failed to insert load records: %w", err)
		}
	}
	w.log.Debug().Int("count", persisted).Int("dropped", dropped).Msg("Load records persisted")
	return nil
}

// rejected reports whether err is the database refusing the data itself
// (data exception or integrity violation), which no retry can fix.
func rejected(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return false
	}
	class := pgErr.Code[:2]
	return class == "22" || class == "23"
}

func (w *LoadLogWorker) pushBack(ctx context.Context, raw []string) {
	values := make([]any, len(raw))
	for i, r := range raw {
		values[i] = r
	}
	if err := w.rdb.RPush(ctx, w.queue, values...).Err(); err != nil {
		w.log.Error().Err(err).Int("count", len(raw)).Msg("Failed to requeue load records")
	}
}

// drain persists everything left in the queue before shutdown.
func (w *LoadLogWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPopCount(ctx, w.queue, w.batch).Result()
		if err != nil || len(raw) == 0 {
			break
		}

		if err := w.flush(ctx, raw); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.pushBack(ctx, raw)
			break
		}
		drained += len(raw)
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func decodeRecords(raw []string, log zerolog.Logger) []model.LoadRecord {
	records := make([]model.LoadRecord, 0, len(raw))
	for _, r := range raw {
		rec, err := diagnostic.Decode([]byte(r))
		if err != nil {
			log.Error().Err(err).Msg("Unmarshal error")
			continue
		}
		records = append(records, rec)
	}
	return records
}
