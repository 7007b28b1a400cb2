package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/bulksync/lib/config"
)

func TestNewLogger(t *testing.T) {
	{
		// Nil settings
		logger, loggingToSentry := NewLogger(nil)
		assert.NotNil(t, logger)
		assert.False(t, loggingToSentry)
		assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
	}
	{
		// Verbose logging
		logger, loggingToSentry := NewLogger(&config.Settings{VerboseLogging: true})
		assert.False(t, loggingToSentry)
		assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
	}
}

func TestNewTintHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTintHandler(&buf, slog.LevelInfo, true))
	logger.Debug("hidden")
	logger.Info("Staging table created", slog.String("table", "person__bulk_abc"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Staging table created")
	assert.Contains(t, buf.String(), "table=person__bulk_abc")
}
