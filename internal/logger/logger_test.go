package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "json")

	log.Info().Str("major_id", "0809").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"major_id":"0809"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"caller"`)
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	_ = New(&buf, "loud", "json")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
