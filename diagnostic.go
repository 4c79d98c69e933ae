package httpspec

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pmezard/go-difflib/difflib"
)

// FailureReason classifies why an assertion failed.
type FailureReason string

const (
	ReasonStatusMismatch       FailureReason = "status_mismatch"
	ReasonHeaderMismatch       FailureReason = "header_mismatch"
	ReasonHeaderMissing        FailureReason = "header_missing"
	ReasonBodyMismatch         FailureReason = "body_mismatch"
	ReasonContainsFailed       FailureReason = "contains_failed"
	ReasonNotContainsFailed    FailureReason = "not_contains_failed"
	ReasonInvalidAssertionKey  FailureReason = "invalid_assertion_key"
	ReasonStatusFormatError    FailureReason = "status_format_error"
)

// Failure is one structured assertion mismatch, as produced by the
// evaluator (see spec.md §3, §4.2).
type Failure struct {
	Assertion      Assertion
	FilePath       string
	RequestName    string
	AssertionIndex int
	Reason         FailureReason
	Expected       string
	Actual         string
}

// Error renders the failure in the §6 single-line report shape:
// "[Fail] in <path>:<index+1> ..."
func (f Failure) Error() string {
	return fmt.Sprintf("[Fail] in %s:%d %s", f.FilePath, f.AssertionIndex+1, f.describe())
}

func (f Failure) describe() string {
	switch f.Reason {
	case ReasonStatusMismatch:
		return fmt.Sprintf("Expected status %s, got %s", f.Expected, f.Actual)
	case ReasonHeaderMismatch:
		return fmt.Sprintf("Expected header %s to be %q, got %q", f.Assertion.Key, f.Expected, f.Actual)
	case ReasonHeaderMissing:
		return fmt.Sprintf("Expected header %s to be %q, but it was absent", f.Assertion.Key, f.Expected)
	case ReasonBodyMismatch:
		return "Body did not match expected value:\n" + bodyDiff(f.Expected, f.Actual)
	case ReasonContainsFailed:
		return fmt.Sprintf("Expected %s to satisfy %s %q, got %q", f.Assertion.Key, f.Assertion.Op, f.Expected, f.Actual)
	case ReasonNotContainsFailed:
		return fmt.Sprintf("Expected %s to satisfy %s %q, but it did not; got %q", f.Assertion.Key, f.Assertion.Op, f.Expected, f.Actual)
	case ReasonInvalidAssertionKey:
		return fmt.Sprintf("Invalid assertion key %q", f.Assertion.Key)
	case ReasonStatusFormatError:
		return fmt.Sprintf("Could not parse expected status %q", f.Expected)
	default:
		return fmt.Sprintf("assertion failed (%s)", f.Reason)
	}
}

// bodyDiff renders a unified diff between expected and actual body text,
// grounded on the teacher's validator.go use of pmezard/go-difflib for
// body-mismatch reporting.
func bodyDiff(expected, actual string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return expected
	}
	return text
}

// Diagnostic is the ordered collection of failures produced by evaluating
// one request's assertions against its response. An empty Diagnostic means
// every assertion passed.
type Diagnostic struct {
	Failures []Failure
}

func (d *Diagnostic) add(f Failure) {
	d.Failures = append(d.Failures, f)
}

// Empty reports whether every assertion in the request passed.
func (d *Diagnostic) Empty() bool {
	return d == nil || len(d.Failures) == 0
}

// Err renders the Diagnostic as a single aggregated error, or nil if empty.
// Callers that want the structured Failures directly should use d.Failures.
func (d *Diagnostic) Err() error {
	if d.Empty() {
		return nil
	}
	var merr *multierror.Error
	for _, f := range d.Failures {
		merr = multierror.Append(merr, f)
	}
	return merr.ErrorOrNil()
}
