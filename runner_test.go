//go:build unit

package httpspec

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "case.http")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunner_PassWhenAllAssertionsSucceed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	content := "GET " + server.URL + "\n\n//# status == 200\n"
	path := writeTempFile(t, content)

	var sinkBuf bytes.Buffer
	runner := NewRunner(NewExecutor(time.Second), NewErrorSink(&sinkBuf))
	tally := &Tally{}

	outcome, err := runner.RunFile(context.Background(), tally, path)

	assert.Equal(t, OutcomePass, outcome)
	assert.NoError(t, err)
	total, pass, fail, invalid := tally.Snapshot()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, pass)
	assert.Equal(t, 0, fail)
	assert.Equal(t, 0, invalid)
	assert.Empty(t, sinkBuf.String())
}

func TestRunner_FailStopsAtFirstFailingRequest(t *testing.T) {
	var requestCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	content := "GET " + server.URL + "\n\n//# status == 200\n" +
		"###\nGET " + server.URL + "\n\n//# status == 404\n" +
		"###\nGET http://127.0.0.1:1\n\n//# status == 200\n"
	path := writeTempFile(t, content)

	var sinkBuf bytes.Buffer
	runner := NewRunner(NewExecutor(time.Second), NewErrorSink(&sinkBuf))
	tally := &Tally{}

	outcome, err := runner.RunFile(context.Background(), tally, path)

	assert.Equal(t, OutcomeFail, outcome)
	require.Error(t, err)
	assert.Equal(t, 2, requestCount, "the third request must not execute")
	total, pass, fail, invalid := tally.Snapshot()
	assert.Equal(t, 1, total)
	assert.Equal(t, 0, pass)
	assert.Equal(t, 1, fail)
	assert.Equal(t, 0, invalid)
	assert.Contains(t, sinkBuf.String(), "Expected status 404, got 200")
}

func TestRunner_ParseErrorIsInvalid(t *testing.T) {
	path := writeTempFile(t, "GET http://a\n\n//# status weird 200\n")

	var sinkBuf bytes.Buffer
	runner := NewRunner(NewExecutor(time.Second), NewErrorSink(&sinkBuf))
	tally := &Tally{}

	outcome, err := runner.RunFile(context.Background(), tally, path)

	assert.Equal(t, OutcomeInvalid, outcome)
	require.Error(t, err)
	total, _, _, invalid := tally.Snapshot()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, invalid)
	assert.True(t, strings.Contains(sinkBuf.String(), "Invalid"))
}

func TestRunner_TransportFailureIsInvalid(t *testing.T) {
	path := writeTempFile(t, "GET http://127.0.0.1:1\n\n//# status == 200\n")

	var sinkBuf bytes.Buffer
	runner := NewRunner(NewExecutor(200*time.Millisecond), NewErrorSink(&sinkBuf))
	tally := &Tally{}

	outcome, err := runner.RunFile(context.Background(), tally, path)

	assert.Equal(t, OutcomeInvalid, outcome)
	require.Error(t, err)
	_, _, _, invalid := tally.Snapshot()
	assert.Equal(t, 1, invalid)
}
