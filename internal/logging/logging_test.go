// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})
}

func TestInit_JSON(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "debug", "json"))

	logrus.WithField("pmid", "123").Debug("fetched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched", entry["message"])
	assert.Equal(t, "123", entry["pmid"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestInit_LevelFilters(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "warn", "text"))

	logrus.Info("hidden")
	logrus.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_Defaults(t *testing.T) {
	restore(t)
	require.NoError(t, Init(&bytes.Buffer{}, "", ""))
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestInit_Invalid(t *testing.T) {
	restore(t)
	assert.Error(t, Init(&bytes.Buffer{}, "loud", "text"))
	assert.Error(t, Init(&bytes.Buffer{}, "info", "xml"))
}
