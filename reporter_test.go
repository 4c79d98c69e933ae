//go:build unit

package httpspec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReport_TextMatchesFixedShape(t *testing.T) {
	tally := &Tally{}
	tally.IncTotal()
	tally.IncPass()
	tally.IncTotal()
	tally.IncFail()

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, tally, ReportFormatText))

	assert.Equal(t, "All 2 tests ran successfully!\n\nPass: 1\nFail: 1\nInvalid: 0\n", buf.String())
}

func TestReport_YAML(t *testing.T) {
	tally := &Tally{}
	tally.IncTotal()
	tally.IncInvalid()

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, tally, ReportFormatYAML))

	var doc summaryDoc
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Total)
	assert.Equal(t, 1, doc.Invalid)
}
