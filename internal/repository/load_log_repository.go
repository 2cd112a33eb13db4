package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/majorcatalog/internal/model"
)

type LoadLogRepository struct {
	pool *pgxpool.Pool
}

func NewLoadLogRepository(pool *pgxpool.Pool) *LoadLogRepository {
	return &LoadLogRepository{pool: pool}
}

// InsertBatch copies records into detail_load_log.
func (r *LoadLogRepository) InsertBatch(ctx context.Context, records []model.LoadRecord) (int64, error) {
	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"detail_load_log"},
		[]string{"major_id", "viewer_id", "outcome", "related_count", "duration_ms", "error", "recorded_at"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			rec := records[i]
			return []any{
				rec.MajorID,
				rec.ViewerID,
				string(rec.Outcome),
				rec.RelatedCount,
				rec.DurationMS,
				rec.Error,
				rec.RecordedAt,
			}, nil
		}),
	)
}
