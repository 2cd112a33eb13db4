package diagnostic

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/majorcatalog/internal/model"
)

func TestEncodeDecode_keepsFields(t *testing.T) {
	rec := model.LoadRecord{
		MajorID:      "0809",
		ViewerID:     "v1",
		Outcome:      model.OutcomeNotFound,
		RelatedCount: 0,
		DurationMS:   42,
		Error:        "catalog: major not found",
		RecordedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := Encode(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"outcome":"not_found"`)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDecode_rejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("nope"))
	assert.Error(t, err)
}

func TestLogRecorder_warnsOnFailures(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogRecorder(zerolog.New(&buf))

	r.Record(context.Background(), model.LoadRecord{MajorID: "0809", Outcome: model.OutcomeUnavailable, Error: "timeout"})

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"error":"timeout"`)
	assert.Contains(t, out, `"component":"load_log"`)
}
