package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(level zerolog.Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	zl := zerolog.New(buf).Level(level)

	return NewWithLogger(zl), buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func TestLogger_ErrorWithContext(t *testing.T) {
	l, buf := newBuffered(zerolog.InfoLevel)

	l.Error(errors.New("boom"), "ImageUseCase - Delete - key=%s", "images/alice/1.jpg")

	entry := decode(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "ImageUseCase - Delete - key=images/alice/1.jpg", entry["message"])
}

func TestLogger_InfoFormat(t *testing.T) {
	l, buf := newBuffered(zerolog.InfoLevel)

	l.Info("deleted old events, count = %d", 3)

	entry := decode(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "deleted old events, count = 3", entry["message"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBuffered(zerolog.WarnLevel)

	l.Info("dropped")
	l.Debug("dropped too")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Equal(t, "kept", decode(t, buf)["message"])
}

func TestLogger_PercentWithoutArgs(t *testing.T) {
	l, buf := newBuffered(zerolog.InfoLevel)

	l.Info("100% done")

	assert.Equal(t, "100% done", decode(t, buf)["message"])
}
