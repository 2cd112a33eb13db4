package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/majorcatalog/internal/diagnostic"
	"github.com/stemsi/majorcatalog/internal/model"
)

type fakeStore struct {
	batches [][]model.LoadRecord
	err     error

	// refuse makes any batch holding this major id fail like a too-long value.
	refuse string
}

func (s *fakeStore) InsertBatch(_ context.Context, records []model.LoadRecord) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	for _, r := range records {
		if s.refuse != "" && r.MajorID == s.refuse {
			return 0, &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(64)"}
		}
	}
	s.batches = append(s.batches, records)
	return int64(len(records)), nil
}

func encoded(t *testing.T, rec model.LoadRecord) string {
	t.Helper()
	b, err := diagnostic.Encode(rec)
	require.NoError(t, err)
	return string(b)
}

func TestDecodeRecords_skipsGarbage(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	got := decodeRecords([]string{
		encoded(t, model.LoadRecord{MajorID: "0809", Outcome: model.OutcomePopulated, RecordedAt: at}),
		"{broken",
		encoded(t, model.LoadRecord{MajorID: "9999", Outcome: model.OutcomeNotFound, RecordedAt: at}),
	}, log)

	require.Len(t, got, 2)
	assert.Equal(t, "0809", got[0].MajorID)
	assert.Equal(t, model.OutcomeNotFound, got[1].Outcome)
	assert.True(t, got[0].RecordedAt.Equal(at))
	assert.Contains(t, buf.String(), "Unmarshal error")
}

func TestLoadLogWorker_flushWritesOneBatch(t *testing.T) {
	store := &fakeStore{}
	w := NewLoadLogWorker(nil, store, 10, zerolog.Nop())

	err := w.flush(context.Background(), []string{
		encoded(t, model.LoadRecord{MajorID: "a"}),
		encoded(t, model.LoadRecord{MajorID: "b"}),
	})

	require.NoError(t, err)
	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 2)
}

func TestLoadLogWorker_flushSkipsEmptyBatch(t *testing.T) {
	store := &fakeStore{}
	w := NewLoadLogWorker(nil, store, 10, zerolog.Nop())

	require.NoError(t, w.flush(context.Background(), []string{"nope"}))
	assert.Empty(t, store.batches)
}

func TestLoadLogWorker_flushReportsStoreError(t *testing.T) {
	boom := errors.New("copy failed")
	w := NewLoadLogWorker(nil, &fakeStore{err: boom}, 10, zerolog.Nop())

	err := w.flush(context.Background(), []string{encoded(t, model.LoadRecord{MajorID: "a"})})
	assert.ErrorIs(t, err, boom)
}

func TestLoadLogWorker_flushDropsRejectedRows(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("x", 200)
	store := &fakeStore{refuse: long}
	w := NewLoadLogWorker(nil, store, 10, zerolog.New(&buf))

	err := w.flush(context.Background(), []string{
		encoded(t, model.LoadRecord{MajorID: "a"}),
		encoded(t, model.LoadRecord{MajorID: long}),
		encoded(t, model.LoadRecord{MajorID: "b"}),
	})

	require.NoError(t, err)
	require.Len(t, store.batches, 2)
	assert.Equal(t, "a", store.batches[0][0].MajorID)
	assert.Equal(t, "b", store.batches[1][0].MajorID)
	assert.Contains(t, buf.String(), "Dropping load record")
}

func TestRejected(t *testing.T) {
	assert.True(t, rejected(&pgconn.PgError{Code: "22001"}))
	assert.True(t, rejected(fmt.Errorf("copy: %w", &pgconn.PgError{Code: "23502"})))
	assert.False(t, rejected(&pgconn.PgError{Code: "08006"}))
	assert.False(t, rejected(errors.New("connection reset")))
}

func TestNewLoadLogWorker_defaultsBatch(t *testing.T) {
	w := NewLoadLogWorker(nil, &fakeStore{}, 0, zerolog.Nop())
	assert.Equal(t, defaultLoadLogBatch, w.batch)
	assert.Equal(t, "detail_load_log_queue", w.queue)
}
