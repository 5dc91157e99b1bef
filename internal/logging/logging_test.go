package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "WARN", false)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("move", "e2e4").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"move":"e2e4"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = New(&buf, "loud", false)
	assert.Error(t, err)
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", true)
	require.NoError(t, err)

	logger.Debug().Int("depth", 3).Msg("search-done")
	assert.Contains(t, buf.String(), "search-done")
	assert.Contains(t, buf.String(), "depth=3")
	assert.NotContains(t, buf.String(), "{")
}

func TestBadgerLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", false)
	require.NoError(t, err)
	bl := BadgerLogger{Logger: logger}

	bl.Errorf("compaction failed: %d\n", 7)
	bl.Infof("opened %s", "db")
	bl.Debugf("not shown")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"message":"compaction failed: 7"`)
	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), `"message":"opened db"`)
	assert.NotContains(t, buf.String(), "not shown")
}
