package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	l.Info("upload finished",
		String("url", "https://i.example/x.png"),
		Int("status", 200),
		Int64("bytes", 1024),
		Float64("progress", 1),
		Bool("quiet", false),
		Duration("elapsed", 1500*time.Millisecond),
		Err(errors.New("boom")),
		Any("headers", map[string]string{"X": "y"}),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "info", got["level"])
	assert.Equal(t, "upload finished", got["message"])
	assert.Equal(t, "https://i.example/x.png", got["url"])
	assert.EqualValues(t, 200, got["status"])
	assert.EqualValues(t, 1024, got["bytes"])
	assert.EqualValues(t, 1, got["progress"])
	assert.Equal(t, false, got["quiet"])
	assert.EqualValues(t, 1500, got["elapsed"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, map[string]interface{}{"X": "y"}, got["headers"])
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	l.Error("shown")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestNewConsoleLogger_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := NewConsoleLogger(&bytes.Buffer{}, tt.level)
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopLogger{}, OrNoop(nil))

	z := NewZerologAdapter()
	assert.Same(t, z, OrNoop(z))

	// must not panic
	OrNoop(nil).Error("ignored", String("k", "v"))
}
