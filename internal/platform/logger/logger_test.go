package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json at configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)
		log.Info("hidden")
		log.Warn("shown", "request_id", "r-1")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "academy", entry["service"])
		assert.Equal(t, "r-1", entry["request_id"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(config.LogConfig{Format: "TEXT"}, &buf).Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}
