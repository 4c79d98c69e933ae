package httpspec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ReportFormat selects the shape of the end-of-run summary (spec.md §12
// supplements the text-only §6 summary with an additive yaml mode).
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatYAML ReportFormat = "yaml"
)

// summaryDoc is the yaml projection of a Tally snapshot.
type summaryDoc struct {
	Total   int `yaml:"total"`
	Pass    int `yaml:"pass"`
	Fail    int `yaml:"fail"`
	Invalid int `yaml:"invalid"`
}

// Report writes the fixed-shape end-of-run summary for tally to w in the
// given format (spec.md §6). The text form is byte-exact with the spec's
// example; the yaml form is an additive supplement (§12), grounded on the
// ExpectedResponse struct's pre-existing yaml tags in the teacher's
// parser.go.
func Report(w io.Writer, tally *Tally, format ReportFormat) error {
	total, pass, fail, invalid := tally.Snapshot()
	switch format {
	case ReportFormatYAML:
		return reportYAML(w, total, pass, fail, invalid)
	default:
		return reportText(w, total, pass, fail, invalid)
	}
}

func reportText(w io.Writer, total, pass, fail, invalid int) error {
	_, err := fmt.Fprintf(w, "All %d tests ran successfully!\n\nPass: %d\nFail: %d\nInvalid: %d\n",
		total, pass, fail, invalid)
	return err
}

func reportYAML(w io.Writer, total, pass, fail, invalid int) error {
	doc := summaryDoc{Total: total, Pass: pass, Fail: fail, Invalid: invalid}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}
