package log

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestTraceFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test trace: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	now := time.Now()
	path := createTestTraceFile(t, []Event{
		{Timestamp: now, Kind: KindPush, Subject: "a"},
		{Timestamp: now, Kind: KindPush, Subject: "b"},
		{Timestamp: now, Kind: KindDeliver, Subject: "b"},
	})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[0].Subject != "a" || read[2].Kind != KindDeliver {
		t.Errorf("events out of order: %+v", read)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, SessionID: "s1", Kind: KindPush, Subject: "gain"},
		{Timestamp: base.Add(time.Second), SessionID: "s1", Kind: KindDeliver, Subject: "gain"},
		{Timestamp: base.Add(2 * time.Second), SessionID: "s2", Kind: KindPush, Subject: "pan"},
		{Timestamp: base.Add(3 * time.Second), SessionID: "s2", Kind: KindReset},
	}
	path := createTestTraceFile(t, events)

	push := KindPush
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"session", Filter{SessionID: "s2"}, 2},
		{"kind", Filter{Kind: &push}, 2},
		{"subject", Filter{Subject: "gain"}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{Kind: &push, Subject: "pan"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.tlog")); err == nil {
		t.Error("NewReader should fail for a missing file")
	}
}

func TestReaderRejectsUnknownKind(t *testing.T) {
	path := createTestTraceFile(t, []Event{
		{Timestamp: time.Now(), Kind: KindPush},
		{Timestamp: time.Now(), Kind: Kind(200)},
	})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	if _, err := reader.Next(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("second Next error = %v, want ErrUnknownKind", err)
	}
}
