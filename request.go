package httpspec

// Header is a single name/value pair as it appeared in a request block.
// Names are compared case-insensitively by callers that look values up;
// the value is preserved exactly as parsed.
type Header struct {
	Name  string
	Value string
}

// Operator is one member of the closed assertion-operator set.
type Operator string

const (
	OpEqual           Operator = "equal"
	OpNotEqual        Operator = "not_equal"
	OpContains        Operator = "contains"
	OpNotContains     Operator = "not_contains"
	OpStartsWith      Operator = "starts_with"
	OpEndsWith        Operator = "ends_with"
	OpMatchesRegex    Operator = "matches_regex"
	OpNotMatchesRegex Operator = "not_matches_regex"
)

// Assertion is a single "//# key op value" line attached to a Request.
type Assertion struct {
	Key   string
	Op    Operator
	Value string
}

// Request is one ###-delimited block of a parsed .http/.httpspec file.
type Request struct {
	// Name is the text following the ### marker that opened this block, if any.
	Name string

	Method      string
	URL         string
	HTTPVersion string

	Headers    []Header
	Body       []byte
	Assertions []Assertion

	// FilePath and LineNumber locate this block for diagnostics.
	FilePath   string
	LineNumber int
}

// HeaderValues returns, in parse order, the values of every header whose
// name matches (case-insensitively).
func (r *Request) HeaderValues(name string) []string {
	var out []string
	for _, h := range r.Headers {
		if equalFoldASCII(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
