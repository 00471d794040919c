package log

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestEncodeDecodeEvent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	event := Event{
		Timestamp: ts,
		SessionID: "5b1f2c9e-0000-4000-8000-000000000001",
		Kind:      KindDeliver,
		Subject:   "master.gain",
		Value:     1.5,
		Refresh:   true,
		QueueLen:  3,
		QueueCap:  1024,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v (nanosecond precision lost?)", decoded.Timestamp, ts)
	}
	if decoded.Kind != KindDeliver {
		t.Errorf("Kind: got %s, want DELIVER", decoded.Kind)
	}
	if decoded.Subject != "master.gain" {
		t.Errorf("Subject: got %q, want %q", decoded.Subject, "master.gain")
	}
	if decoded.Value != 1.5 {
		t.Errorf("Value: got %v, want 1.5", decoded.Value)
	}
	if !decoded.Refresh {
		t.Error("Refresh: got false, want true")
	}
	if decoded.QueueLen != 3 || decoded.QueueCap != 1024 {
		t.Errorf("Queue: got %d/%d, want 3/1024", decoded.QueueLen, decoded.QueueCap)
	}
}

func TestEncodeUsesIntegerKeys(t *testing.T) {
	data, err := EncodeEvent(Event{Timestamp: time.Now(), Kind: KindPush, Subject: "x"})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var raw map[any]any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		t.Fatalf("raw decode failed: %v", err)
	}

	for k := range raw {
		if _, ok := k.(uint64); !ok {
			t.Errorf("key %v (%T) is not an integer", k, k)
		}
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	for i, kind := range []Kind{KindPush, KindPush, KindDeliver} {
		if err := enc.Encode(Event{Kind: kind, QueueLen: i}); err != nil {
			t.Fatalf("Encode %d failed: %v", i, err)
		}
	}

	dec := NewDecoder(&buf)
	var kinds []Kind
	for {
		var e Event
		if err := dec.Decode(&e); err != nil {
			break
		}
		kinds = append(kinds, e.Kind)
	}

	if len(kinds) != 3 || kinds[2] != KindDeliver {
		t.Errorf("stream kinds = %v, want [PUSH PUSH DELIVER]", kinds)
	}
}

func TestDecodeEventInvalid(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("DecodeEvent should fail on garbage input")
	}
}

func TestEncodeRawNonFiniteValues(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		data, err := EncodeEvent(Event{Kind: KindPush, Value: v})
		if err != nil {
			t.Fatalf("EncodeEvent(%v) failed: %v", v, err)
		}
		decoded, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("DecodeEvent(%v) failed: %v", v, err)
		}
		if math.IsNaN(v) != math.IsNaN(decoded.Value) || (!math.IsNaN(v) && decoded.Value != v) {
			t.Errorf("Value: got %v, want %v", decoded.Value, v)
		}
	}
}

func TestEncodeShortestFloat(t *testing.T) {
	short, err := EncodeEvent(Event{Kind: KindPush, Value: 0.5})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	long, err := EncodeEvent(Event{Kind: KindPush, Value: 0.1})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	// 0.5 fits a half-precision float, 0.1 needs all 64 bits.
	if len(long)-len(short) != 6 {
		t.Errorf("encoded sizes %d and %d, want a 6 byte difference", len(short), len(long))
	}

	decoded, err := DecodeEvent(long)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.Value != 0.1 {
		t.Errorf("Value: got %v, want 0.1", decoded.Value)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	data, err := EncodeEvent(Event{Kind: Kind(42)})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	if _, err := DecodeEvent(data); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("DecodeEvent error = %v, want ErrUnknownKind", err)
	}
}
