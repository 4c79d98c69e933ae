//go:build unit

package httpspec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HTTP_THREAD_COUNT", "")
	t.Setenv("HTTP_TIMEOUT_MS", "")

	cfg, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, DefaultThreadCount, cfg.ThreadCount)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, ReportFormatText, cfg.Format)
	assert.False(t, cfg.Quiet)
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_THREAD_COUNT", "8")
	t.Setenv("HTTP_TIMEOUT_MS", "2500")

	cfg, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.ThreadCount)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
}

func TestLoadConfig_InvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("HTTP_THREAD_COUNT", "not-a-number")

	cfg, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, DefaultThreadCount, cfg.ThreadCount)
}

func TestLoadConfig_OptionsOverrideEnvironment(t *testing.T) {
	t.Setenv("HTTP_THREAD_COUNT", "8")

	cfg, err := LoadConfig("", WithThreadCount(2), WithQuiet(true), WithFormat(ReportFormatYAML))

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.ThreadCount)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, ReportFormatYAML, cfg.Format)
}

func TestWithThreadCount_RejectsNonPositive(t *testing.T) {
	_, err := LoadConfig("", WithThreadCount(0))

	require.Error(t, err)
}

func TestWithTimeout_RejectsNonPositive(t *testing.T) {
	_, err := LoadConfig("", WithTimeout(0))

	require.Error(t, err)
}
