package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tracklane/tracklane-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[log.Kind]int
	Subjects     map[string]*SubjectStats
	Sessions     map[string]int
	MaxQueueLen  int
	MaxQueueCap  int
	TimeRange    struct {
		Start time.Time
		End   time.Time
	}
}

// SubjectStats holds statistics for a single subject.
type SubjectStats struct {
	Pushed    int
	Dropped   int
	Delivered int
}

// DropRate returns the fraction of notifications for the subject that
// were dropped on a full queue.
func (s *SubjectStats) DropRate() float64 {
	total := s.Pushed + s.Dropped
	if total == 0 {
		return 0
	}
	return float64(s.Dropped) / float64(total)
}

// CollectStats reads every event from the trace file at path.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind: make(map[log.Kind]int),
		Subjects:     make(map[string]*SubjectStats),
		Sessions:     make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++
		stats.Sessions[event.SessionID]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Kind.IsQueueEvent() {
			stats.MaxQueueLen = max(stats.MaxQueueLen, event.QueueLen)
			stats.MaxQueueCap = max(stats.MaxQueueCap, event.QueueCap)
		}

		if event.Subject == "" {
			continue
		}
		subject, ok := stats.Subjects[event.Subject]
		if !ok {
			subject = &SubjectStats{}
			stats.Subjects[event.Subject] = subject
		}
		switch event.Kind {
		case log.KindPush:
			subject.Pushed++
		case log.KindDrop:
			subject.Dropped++
		case log.KindDeliver:
			subject.Delivered++
		}
	}

	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Tracklane Notification Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:     %d\n", len(stats.Sessions))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for _, kind := range log.Kinds {
		if count := stats.EventsByKind[kind]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", kind.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if stats.MaxQueueCap > 0 {
		fmt.Fprintf(w, "Queue High Water: %d/%d\n", stats.MaxQueueLen, stats.MaxQueueCap)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Subjects: %d\n", len(stats.Subjects))
	if len(stats.Subjects) == 0 {
		return
	}

	names := make([]string, 0, len(stats.Subjects))
	for name := range stats.Subjects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := stats.Subjects[name]
		fmt.Fprintf(w, "  %-24s pushed=%d delivered=%d dropped=%d", name, s.Pushed, s.Delivered, s.Dropped)
		if s.Dropped > 0 {
			fmt.Fprintf(w, " (%.1f%% dropped)", s.DropRate()*100)
		}
		fmt.Fprintln(w)
	}
}
