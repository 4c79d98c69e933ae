//go:build unit

package httpspec

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildScenarioFiles lays out the §8 "parallel aggregation" scenario: 6
// passing files, 3 failing files, 1 file with a parse error.
func buildScenarioFiles(t *testing.T, serverURL string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string

	write := func(name, content string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}

	for i := 0; i < 6; i++ {
		write(passName(i), "GET "+serverURL+"/ok\n\n//# status == 200\n")
	}
	for i := 0; i < 3; i++ {
		write(failName(i), "GET "+serverURL+"/ok\n\n//# status == 500\n")
	}
	write("invalid_0.http", "GET "+serverURL+"/ok\n\n//# status weird 200\n")

	return paths
}

func passName(i int) string { return "pass_" + itoa(i) + ".http" }
func failName(i int) string { return "fail_" + itoa(i) + ".http" }

func itoa(i int) string {
	digits := "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	return string(digits[i/10]) + string(digits[i%10])
}

func TestPool_ParallelAggregationMatchesTally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	paths := buildScenarioFiles(t, server.URL)

	var sinkBuf bytes.Buffer
	newRunner := func() *Runner { return NewRunner(NewExecutor(time.Second), NewErrorSink(&sinkBuf)) }
	tally := &Tally{}
	pool := NewPool(4, newRunner, tally, nil)

	_, err := pool.Run(context.Background(), paths)

	total, pass, fail, invalid := tally.Snapshot()
	assert.Equal(t, 10, total)
	assert.Equal(t, 6, pass)
	assert.Equal(t, 3, fail)
	assert.Equal(t, 1, invalid)
	require.Error(t, err, "fail and invalid files must surface in the aggregated run error")
	assert.Contains(t, err.Error(), "4 errors occurred")
}

func TestPool_ClampsSizeToAtLeastOne(t *testing.T) {
	newRunner := func() *Runner { return NewRunner(NewExecutor(time.Second), NewErrorSink(&bytes.Buffer{})) }
	pool := NewPool(0, newRunner, &Tally{}, nil)

	assert.Equal(t, 1, pool.size)
}

func TestTally_IncrementsAreIndependent(t *testing.T) {
	tally := &Tally{}
	tally.IncTotal()
	tally.IncTotal()
	tally.IncPass()
	tally.IncFail()
	tally.IncInvalid()

	total, pass, fail, invalid := tally.Snapshot()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, pass)
	assert.Equal(t, 1, fail)
	assert.Equal(t, 1, invalid)
}
