// Package diagnostic carries detail-load records to operators.
package diagnostic

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/config"
	"github.com/stemsi/majorcatalog/internal/model"
)

// Recorder receives one record per settled or cancelled detail load.
type Recorder interface {
	Record(ctx context.Context, rec model.LoadRecord)
}

// LogRecorder writes records to the log only.
type LogRecorder struct {
	log zerolog.Logger
}

func NewLogRecorder(log zerolog.Logger) *LogRecorder {
	return &LogRecorder{log: log.With().Str("component", "load_log").Logger()}
}

func (r *LogRecorder) Record(_ context.Context, rec model.LoadRecord) {
	event := r.log.Info()
	if rec.Error != "" && rec.Outcome != model.OutcomeCancelled {
		event = r.log.Warn().Str("error", rec.Error)
	}
	event.
		Str("major_id", rec.MajorID).
		Str("viewer_id", rec.ViewerID).
		Str("outcome", string(rec.Outcome)).
		Int("related_count", rec.RelatedCount).
		Int64("duration_ms", rec.DurationMS).
		Msg("detail load settled")
}

// RedisRecorder queues records for the catalog's load-log worker and also
// logs them.
type RedisRecorder struct {
	rdb   *redis.Client
	queue string
	log   *LogRecorder
}

func NewRedisRecorder(rdb *redis.Client, log zerolog.Logger) *RedisRecorder {
	return &RedisRecorder{
		rdb:   rdb,
		queue: config.Keys.DetailLoadLogQueue,
		log:   NewLogRecorder(log),
	}
}

func (r *RedisRecorder) Record(ctx context.Context, rec model.LoadRecord) {
	r.log.Record(ctx, rec)

	payload, err := Encode(rec)
	if err != nil {
		r.log.log.Error().Err(err).Msg("failed to encode load record")
		return
	}
	if err := r.rdb.RPush(ctx, r.queue, payload).Err(); err != nil {
		r.log.log.Error().Err(err).Str("queue", r.queue).Msg("failed to queue load record")
	}
}

// Encode serializes a record for the queue.
func Encode(rec model.LoadRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// Decode parses a queued record.
func Decode(raw []byte) (model.LoadRecord, error) {
	var rec model.LoadRecord
	err := json.Unmarshal(raw, &rec)
	return rec, err
}
