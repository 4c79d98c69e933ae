package httpspec

import (
	"regexp"
	"strconv"
	"strings"
)

// Check evaluates every assertion of req against resp and returns the
// accumulated Diagnostic (spec.md §4.2). It never panics or returns an
// error for assertion-level problems — structural issues are recorded as
// Failures with reason invalid_assertion_key or status_format_error.
func Check(req *Request, resp *Response) *Diagnostic {
	diag := &Diagnostic{}
	for i, a := range req.Assertions {
		evaluateAssertion(diag, a, resp, req.FilePath, req.Name, i)
	}
	return diag
}

func evaluateAssertion(diag *Diagnostic, a Assertion, resp *Response, filePath, reqName string, index int) {
	base := Failure{
		Assertion:      a,
		FilePath:       filePath,
		RequestName:    reqName,
		AssertionIndex: index,
	}

	switch {
	case strings.EqualFold(a.Key, "status"):
		evaluateStatus(diag, a, resp, base)
	case strings.EqualFold(a.Key, "body"):
		evaluateBody(diag, a, resp, base)
	case isHeaderKey(a.Key):
		evaluateHeader(diag, a, resp, base)
	default:
		base.Reason = ReasonInvalidAssertionKey
		base.Expected = a.Value
		diag.add(base)
	}
}

// isHeaderKey reports whether key has the shape header["name"].
func isHeaderKey(key string) bool {
	name, ok := headerKeyName(key)
	return ok && name != ""
}

// headerKeyName extracts the header name between the first and last
// double quote of a header["name"] key, per spec.md §4.2.
func headerKeyName(key string) (string, bool) {
	if !strings.HasPrefix(key, `header["`) || !strings.HasSuffix(key, `"]`) {
		return "", false
	}
	first := strings.IndexByte(key, '"')
	last := strings.LastIndexByte(key, '"')
	if first < 0 || last <= first {
		return "", false
	}
	return key[first+1 : last], true
}

func evaluateStatus(diag *Diagnostic, a Assertion, resp *Response, base Failure) {
	if resp.StatusCode == nil {
		base.Reason = ReasonStatusMismatch
		base.Expected = a.Value
		base.Actual = "<no status>"
		diag.add(base)
		return
	}
	actual := strconv.Itoa(*resp.StatusCode)
	evaluateStringOperator(diag, a, base, actual, statusNumericCompare(a, actual), ReasonStatusMismatch, ReasonStatusFormatError)
}

// statusNumericCompare parses a.Value as a status code and compares it
// numerically to the response status, for the equal/not_equal family.
// It returns (equal, ok); ok is false when either value fails to parse.
func statusNumericCompare(a Assertion, actual string) func() (bool, bool) {
	return func() (bool, bool) {
		expected, err := strconv.ParseUint(a.Value, 10, 16)
		if err != nil {
			return false, false
		}
		actualNum, err := strconv.Atoi(actual)
		if err != nil {
			return false, false
		}
		return actualNum == int(expected), true
	}
}

func evaluateBody(diag *Diagnostic, a Assertion, resp *Response, base Failure) {
	actual := string(resp.Body)
	evaluateGenericOperator(diag, a, base, actual, ReasonBodyMismatch, ReasonContainsFailed, ReasonNotContainsFailed, false)
}

func evaluateHeader(diag *Diagnostic, a Assertion, resp *Response, base Failure) {
	name, _ := headerKeyName(a.Key)
	actual, present := resp.HeaderValue(name)

	if !present {
		evaluateMissingHeader(diag, a, base)
		return
	}
	evaluateGenericOperator(diag, a, base, actual, ReasonHeaderMismatch, ReasonContainsFailed, ReasonNotContainsFailed, true)
}

// evaluateMissingHeader implements the missing-header matrix of spec.md
// §4.2: equal fails as header_missing; not_equal passes; contains/
// starts_with/ends_with/matches_regex fail as contains_failed;
// not_contains/not_matches_regex pass.
func evaluateMissingHeader(diag *Diagnostic, a Assertion, base Failure) {
	switch a.Op {
	case OpEqual:
		base.Reason = ReasonHeaderMissing
		base.Expected = a.Value
		base.Actual = "<absent>"
		diag.add(base)
	case OpNotEqual:
		// pass
	case OpNotContains, OpNotMatchesRegex:
		// pass
	case OpContains, OpStartsWith, OpEndsWith, OpMatchesRegex:
		base.Reason = ReasonContainsFailed
		base.Expected = a.Value
		base.Actual = "<absent>"
		diag.add(base)
	}
}

// evaluateGenericOperator handles the byte-comparison operator family
// (case-insensitive equal for headers, case-sensitive equal for body).
func evaluateGenericOperator(
	diag *Diagnostic, a Assertion, base Failure, actual string,
	mismatchReason, containsFailedReason, notContainsFailedReason FailureReason,
	caseInsensitiveEqual bool,
) {
	switch a.Op {
	case OpEqual, OpNotEqual:
		var eq bool
		if caseInsensitiveEqual {
			eq = strings.EqualFold(actual, a.Value)
		} else {
			eq = actual == a.Value
		}
		pass := eq
		if a.Op == OpNotEqual {
			pass = !eq
		}
		if !pass {
			base.Reason = mismatchReason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
		}
	case OpContains:
		if !strings.Contains(actual, a.Value) {
			base.Reason = containsFailedReason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
		}
	case OpNotContains:
		if strings.Contains(actual, a.Value) {
			base.Reason = notContainsFailedReason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
		}
	case OpStartsWith:
		if !strings.HasPrefix(actual, a.Value) {
			base.Reason = containsFailedReason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
		}
	case OpEndsWith:
		if !strings.HasSuffix(actual, a.Value) {
			base.Reason = containsFailedReason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
		}
	case OpMatchesRegex, OpNotMatchesRegex:
		matched := regexMatches(a.Value, actual)
		pass := matched
		reason := containsFailedReason
		if a.Op == OpNotMatchesRegex {
			pass = !matched
			reason = notContainsFailedReason
		}
		if !pass {
			base.Reason = reason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
		}
	}
}

// evaluateStringOperator is the status-key variant: equal/not_equal compare
// numerically (via cmp), every other operator compares the decimal-ASCII
// rendering of the status as a plain string.
func evaluateStringOperator(
	diag *Diagnostic, a Assertion, base Failure, actual string,
	cmp func() (bool, bool), mismatchReason, formatErrReason FailureReason,
) {
	switch a.Op {
	case OpEqual, OpNotEqual:
		eq, ok := cmp()
		if !ok {
			base.Reason = formatErrReason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
			return
		}
		pass := eq
		if a.Op == OpNotEqual {
			pass = !eq
		}
		if !pass {
			base.Reason = mismatchReason
			base.Expected = a.Value
			base.Actual = actual
			diag.add(base)
		}
	default:
		evaluateGenericOperator(diag, a, base, actual, mismatchReason, ReasonContainsFailed, ReasonNotContainsFailed, false)
	}
}

// regexMatches reports whether actual matches the regex expected. An
// uncompilable expected is treated as a non-match (spec.md §4.2).
func regexMatches(expected, actual string) bool {
	re, err := regexp.Compile(expected)
	if err != nil {
		return false
	}
	return re.MatchString(actual)
}
