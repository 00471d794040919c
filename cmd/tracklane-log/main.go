// Command tracklane-log is a tool for viewing and analyzing notification
// trace files.
//
// Trace files are written by tracklane-console when started with the
// -trace flag.
//
// Usage:
//
//	tracklane-log <command> [flags] <file.tlog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSON or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	tracklane-log view session.tlog
//
//	# View only overflow drops
//	tracklane-log view -kind drop session.tlog
//
//	# Export to CSV
//	tracklane-log export -format csv -o session.csv session.tlog
//
//	# Keep only one subject's events
//	tracklane-log filter -subject master.gain -o gain.tlog session.tlog
//
//	# Show statistics
//	tracklane-log stats session.tlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tracklane/tracklane-go/cmd/tracklane-log/commands"
)

const usage = `tracklane-log - Notification Trace Analyzer

Usage:
  tracklane-log <command> [flags] <file.tlog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSON or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "tracklane-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set whose usage text starts with summary.
func newFlagSet(name, summary, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "tracklane-log %s - %s\n\nUsage:\n  tracklane-log %s\n\nFlags:\n", name, summary, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// tracePath returns the single positional argument or exits.
func tracePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format", "view [flags] <file.tlog>")
	kind := fs.String("kind", "", "Filter by event kind (push, drop, deliver, reset, clear, resize, bind, unbind)")
	subject := fs.String("subject", "", "Filter by subject name")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	filter := commands.ViewFilter{Subject: *subject}
	if *kind != "" {
		k, err := commands.ParseKindFlag(*kind)
		if err != nil {
			fail(err)
		}
		filter.Kind = &k
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSON or CSV format", "export [flags] <file.tlog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file", "filter [flags] <file.tlog>")
	output := fs.String("o", "", "Output file (required)")
	sessionID := fs.String("session-id", "", "Filter by session ID")
	subject := fs.String("subject", "", "Filter by subject name")
	kind := fs.String("kind", "", "Filter by event kind")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		SessionID: *sessionID,
		Subject:   *subject,
		Kind:      *kind,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file", "stats <file.tlog>")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
