// Command httpspec discovers, parses, executes, and validates .http and
// .httpspec files, printing a pass/fail/invalid tally (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/httpspec-run/httpspec"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("httpspec", flag.ContinueOnError)
	fs.SetOutput(stderr)

	format := fs.String("format", "text", `output format for the summary: "text" or "yaml"`)
	quiet := fs.Bool("quiet", false, "suppress per-failure lines; print only the summary")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: httpspec [flags] [path ...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	paths, err := httpspec.Discover(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg, err := httpspec.LoadConfig(".",
		httpspec.WithFormat(httpspec.ReportFormat(*format)),
		httpspec.WithQuiet(*quiet),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	sink := httpspec.NewErrorSink(sinkWriter(stderr, cfg.Quiet))
	tally := &httpspec.Tally{}
	// Each worker builds its own Executor (and therefore its own
	// http.Client) from this factory; only sink and tally are shared
	// across workers (spec.md §5).
	newRunner := func() *httpspec.Runner {
		return httpspec.NewRunner(httpspec.NewExecutor(cfg.Timeout), sink)
	}
	pool := httpspec.NewPool(cfg.ThreadCount, newRunner, tally, slog.Default())

	if _, err := pool.Run(context.Background(), paths); err != nil {
		slog.Default().Debug("run completed with file-level errors", "errors", err)
	}

	if err := httpspec.Report(stdout, tally, cfg.Format); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	_, _, fail, invalid := tally.Snapshot()
	if fail > 0 || invalid > 0 {
		return 1
	}
	return 0
}

func sinkWriter(stderr io.Writer, quiet bool) io.Writer {
	if quiet {
		return io.Discard
	}
	return stderr
}
