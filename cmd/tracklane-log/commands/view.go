// Package commands implements the tracklane-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tracklane/tracklane-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Kind    *log.Kind
	Subject string
}

// matches reports whether event passes the filter.
func (f ViewFilter) matches(event log.Event) bool {
	if f.Kind != nil && event.Kind != *f.Kind {
		return false
	}
	if f.Subject != "" && event.Subject != f.Subject {
		return false
	}
	return true
}

// formatEvent writes a one-line representation of the event to w.
//
//	2026-01-28T10:15:32.123456Z [sess:0f8e2c1a] PUSH    master.gain  value=0.8 sender  queue=1/1024
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	subject := event.Subject
	if subject == "" {
		subject = "-"
	}

	var details []string
	switch event.Kind {
	case log.KindPush, log.KindDrop:
		details = append(details, "value="+formatValue(event.Value))
		if event.HasSender {
			details = append(details, "sender")
		}
	case log.KindDeliver:
		details = append(details, "value="+formatValue(event.Value))
		if event.HasSender {
			details = append(details, "sender")
		}
		if event.Refresh {
			details = append(details, "refresh")
		}
	case log.KindReset, log.KindClear, log.KindResize:
		details = append(details, fmt.Sprintf("records=%d", event.Count))
	case log.KindBind, log.KindUnbind:
		details = append(details, fmt.Sprintf("observers=%d", event.Count))
	}
	if event.Kind.IsQueueEvent() {
		details = append(details, fmt.Sprintf("queue=%d/%d", event.QueueLen, event.QueueCap))
	}

	fmt.Fprintf(w, "%s [sess:%s] %-7s %s %s\n", ts, shortenSessionID(event.SessionID),
		event.Kind, subject, strings.Join(details, " "))
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseKindFlag parses an event kind from a command-line flag (case-insensitive).
func ParseKindFlag(s string) (log.Kind, error) {
	k, ok := log.ParseKind(s)
	if !ok {
		names := make([]string, len(log.Kinds))
		for i, k := range log.Kinds {
			names[i] = strings.ToLower(k.String())
		}
		return 0, fmt.Errorf("invalid kind: %s (must be one of %s)", s, strings.Join(names, ", "))
	}
	return k, nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if !filter.matches(event) {
			continue
		}
		formatEvent(output, event)
	}

	return nil
}
