package httpspec

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Parse error sentinels (spec.md §4.1). Wrap with fmt.Errorf("...: %w", ...)
// to attach line-number context; callers can still match with errors.Is.
var (
	ErrMissingMethod = errors.New("missing method")
	ErrMissingURL    = errors.New("missing url")
	ErrBadHeader     = errors.New("bad header")
	ErrBadAssertion  = errors.New("bad assertion")
	ErrBadVersion    = errors.New("bad version")
)

// ParseContent turns .http/.httpspec source text into an ordered list of
// Request blocks (spec.md §4.1). On any malformed line the whole file is
// rejected: the returned error wraps one of the sentinels above.
func ParseContent(text string) ([]*Request, error) {
	return parseContentForFile(text, "")
}

// ParseFile reads filePath and parses it via ParseContent. File I/O errors
// surface unchanged, per the §4.1 contract.
func ParseFile(filePath string) ([]*Request, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return parseContentForFile(string(data), filePath)
}

func parseContentForFile(text, filePath string) ([]*Request, error) {
	state := newParserState(filePath)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		state.lineNumber++
		originalLine := strings.TrimRight(scanner.Text(), "\r")
		trimmedLine := strings.TrimSpace(originalLine)
		if err := state.processLine(originalLine, trimmedLine); err != nil {
			if filePath != "" {
				return nil, fmt.Errorf("%s: %w", filePath, err)
			}
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("reading file failed", "file", filePath, "error", err)
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}

	state.finalizeCurrentBlock()
	return state.out, nil
}
