package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofeed/internal/config"
	"cryptofeed/internal/logging"
)

func TestNewWithWriter_JSON(t *testing.T) {
	t.Parallel()

	// Arrange
	var buf bytes.Buffer
	log, err := logging.NewWithWriter(config.Log{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	// Act
	log.WithField("provider", "coingecko").Debug("provider call succeeded")

	// Assert
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "coingecko", entry["provider"])
	assert.Equal(t, "provider call succeeded", entry["msg"])
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logging.NewWithWriter(config.Log{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_Defaults(t *testing.T) {
	t.Parallel()

	log, err := logging.NewWithWriter(config.Log{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewWithWriter_Invalid(t *testing.T) {
	t.Parallel()

	_, err := logging.NewWithWriter(config.Log{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)

	_, err = logging.NewWithWriter(config.Log{Format: "xml"}, &bytes.Buffer{})
	require.Error(t, err)
}
