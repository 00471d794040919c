package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/tracklane/tracklane-go/pkg/log"
)

// exportRecord is the JSON form of a trace event.
type exportRecord struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject,omitempty"`
	Value     float64   `json:"value"`
	HasSender bool      `json:"has_sender,omitempty"`
	Refresh   bool      `json:"refresh,omitempty"`
	QueueLen  int       `json:"queue_len"`
	QueueCap  int       `json:"queue_cap"`
	Count     int       `json:"count,omitempty"`
}

func newExportRecord(e log.Event) exportRecord {
	return exportRecord{
		Timestamp: e.Timestamp.UTC(),
		SessionID: e.SessionID,
		Kind:      e.Kind.String(),
		Subject:   e.Subject,
		Value:     e.Value,
		HasSender: e.HasSender,
		Refresh:   e.Refresh,
		QueueLen:  e.QueueLen,
		QueueCap:  e.QueueCap,
		Count:     e.Count,
	}
}

// RunExport exports the trace file to the specified format.
func RunExport(path, format, output string) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "kind", "subject", "value", "has_sender", "refresh", "queue_len", "queue_cap", "count"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Kind.String(),
			event.Subject,
			formatValue(event.Value),
			strconv.FormatBool(event.HasSender),
			strconv.FormatBool(event.Refresh),
			strconv.Itoa(event.QueueLen),
			strconv.Itoa(event.QueueCap),
			strconv.Itoa(event.Count),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}
