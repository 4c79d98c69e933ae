package httpspec

import (
	"fmt"
	"log/slog"
	"strings"
)

// parserState holds the mutable state while scanning one file's lines.
// Modeled on the teacher's requestParserState (parser_state.go):
// a single struct carrying per-block state plus the accumulated output,
// with one method per line-kind handler.
type parserState struct {
	filePath   string
	lineNumber int

	state       blockState
	current     *Request
	bodyLines   []string
	pendingName string // name captured from "###", applied to the next block

	out []*Request
}

func newParserState(filePath string) *parserState {
	return &parserState{filePath: filePath}
}

// processLine dispatches a single already-trimmed line (plus its untrimmed
// original, needed for verbatim body preservation) to the right handler.
func (p *parserState) processLine(originalLine, trimmedLine string) error {
	switch determineLineKind(trimmedLine) {
	case lineEmpty:
		return p.handleEmptyLine()
	case lineSeparator:
		return p.handleSeparator(trimmedLine)
	case lineAssertion:
		return p.handleAssertion(trimmedLine)
	case lineComment:
		return nil
	default:
		return p.handleContent(originalLine, trimmedLine)
	}
}

func (p *parserState) handleEmptyLine() error {
	if p.state == blockStateHeaders {
		p.state = blockStateBody
	}
	// Per spec.md §4.1: any other empty line (before a request line, or
	// already inside the body) is ignored rather than appended to the body.
	return nil
}

func (p *parserState) handleSeparator(trimmedLine string) error {
	p.finalizeCurrentBlock()
	p.pendingName = strings.TrimSpace(trimmedLine[len(requestSeparator):])
	p.state = blockStateNone
	p.current = nil
	p.bodyLines = nil
	return nil
}

// finalizeCurrentBlock attaches the accumulated body (if any) to the
// current request and appends it to the output, but only if the block
// ever acquired a method — otherwise it is silently dropped (spec.md §3
// invariant: "A request with no parseable method is never appended").
func (p *parserState) finalizeCurrentBlock() {
	if p.current == nil || p.current.Method == "" {
		return
	}
	p.current.Body = joinBodyLines(p.bodyLines)
	p.out = append(p.out, p.current)
}

func joinBodyLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (p *parserState) handleAssertion(trimmedLine string) error {
	if p.current == nil || p.current.Method == "" {
		slog.Warn("assertion before any request", "file", p.filePath, "line", p.lineNumber)
		return fmt.Errorf("line %d: %w: assertion appears before any request", p.lineNumber, ErrBadAssertion)
	}
	rest := strings.TrimSpace(trimmedLine[len(assertionPrefix):])
	key, op, value, ok := splitAssertionTokens(rest)
	if !ok {
		slog.Warn("malformed assertion line", "file", p.filePath, "line", p.lineNumber, "content", trimmedLine)
		return fmt.Errorf("line %d: %w: %q", p.lineNumber, ErrBadAssertion, trimmedLine)
	}
	operator, ok := operatorTokens[strings.ToLower(op)]
	if !ok {
		slog.Warn("unrecognized assertion operator", "file", p.filePath, "line", p.lineNumber, "operator", op)
		return fmt.Errorf("line %d: %w: unrecognized operator %q", p.lineNumber, ErrBadAssertion, op)
	}
	p.current.Assertions = append(p.current.Assertions, Assertion{Key: key, Op: operator, Value: value})
	return nil
}

// splitAssertionTokens splits "key op value" into exactly three
// whitespace-delimited tokens, with value allowed to contain internal
// whitespace (it is everything remaining after the second token).
func splitAssertionTokens(s string) (key, op, value string, ok bool) {
	s = strings.TrimSpace(s)
	key, rest, found := cutField(s)
	if !found {
		return "", "", "", false
	}
	op, rest, found = cutField(rest)
	if !found {
		return "", "", "", false
	}
	value = strings.TrimSpace(rest)
	if key == "" || op == "" || value == "" {
		return "", "", "", false
	}
	return key, op, value, true
}

// cutField splits s at the first run of whitespace, returning the first
// field and the (left-trimmed) remainder. found is false if s contains no
// whitespace-delimited remainder.
func cutField(s string) (field, rest string, found bool) {
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return "", "", false
	}
	field = s[:idx]
	rest = strings.TrimLeft(s[idx+1:], " \t")
	return field, rest, true
}

func (p *parserState) handleContent(originalLine, trimmedLine string) error {
	switch p.state {
	case blockStateNone:
		return p.handleRequestLine(trimmedLine)
	case blockStateHeaders:
		return p.handleHeaderLine(trimmedLine)
	default: // blockStateBody
		p.bodyLines = append(p.bodyLines, originalLine)
		return nil
	}
}

func (p *parserState) handleRequestLine(trimmedLine string) error {
	tokens := strings.Fields(trimmedLine)
	method := strings.ToUpper(tokens[0])
	if !standardMethods[method] {
		slog.Warn("unrecognized request method", "file", p.filePath, "line", p.lineNumber, "token", tokens[0])
		return fmt.Errorf("line %d: %w: %q", p.lineNumber, ErrMissingMethod, tokens[0])
	}
	if len(tokens) < 2 {
		slog.Warn("request line missing url", "file", p.filePath, "line", p.lineNumber)
		return fmt.Errorf("line %d: %w", p.lineNumber, ErrMissingURL)
	}
	version := "HTTP/1.1"
	if len(tokens) >= 3 {
		if !validHTTPVersions[strings.ToUpper(tokens[2])] {
			slog.Warn("unrecognized http version", "file", p.filePath, "line", p.lineNumber, "token", tokens[2])
			return fmt.Errorf("line %d: %w: %q", p.lineNumber, ErrBadVersion, tokens[2])
		}
		version = strings.ToUpper(tokens[2])
	}

	p.current = &Request{
		Name:        p.pendingName,
		Method:      method,
		URL:         tokens[1],
		HTTPVersion: version,
		FilePath:    p.filePath,
		LineNumber:  p.lineNumber,
	}
	p.pendingName = ""
	p.bodyLines = nil
	p.state = blockStateHeaders
	return nil
}

func (p *parserState) handleHeaderLine(trimmedLine string) error {
	idx := strings.IndexByte(trimmedLine, ':')
	if idx < 0 {
		slog.Warn("malformed header line", "file", p.filePath, "line", p.lineNumber, "content", trimmedLine)
		return fmt.Errorf("line %d: %w: %q", p.lineNumber, ErrBadHeader, trimmedLine)
	}
	name := strings.TrimSpace(trimmedLine[:idx])
	value := strings.TrimSpace(trimmedLine[idx+1:])
	p.current.Headers = append(p.current.Headers, Header{Name: name, Value: value})
	return nil
}
