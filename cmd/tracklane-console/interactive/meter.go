package interactive

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/tracklane/tracklane-go/pkg/observer"
)

const (
	meterNameWidth = 18
	meterBarWidth  = 24
)

// Meter is a console view of one subject. It redraws a bar each time a
// change is delivered to it.
type Meter struct {
	name     string
	out      io.Writer
	observer *observer.Observer
	updates  atomic.Uint64
}

// NewMeter creates a meter bound to subject that draws to out.
func NewMeter(name string, subject *observer.Subject, out io.Writer) *Meter {
	m := &Meter{name: name, out: out}
	m.observer = observer.NewObserver(m)
	m.observer.SetSubject(subject)
	return m
}

// Update draws the meter.
func (m *Meter) Update(refresh bool) {
	m.updates.Add(1)
	if !refresh {
		return
	}
	fmt.Fprintln(m.out, m.Render())
}

// Observer returns the meter's binding.
func (m *Meter) Observer() *observer.Observer {
	return m.observer
}

// Updates returns the number of deliveries received.
func (m *Meter) Updates() uint64 {
	return m.updates.Load()
}

// Bound reports whether the meter still watches a subject. A meter is
// unbound when its subject is closed.
func (m *Meter) Bound() bool {
	return m.observer.Subject() != nil
}

// Close unbinds the meter.
func (m *Meter) Close() {
	m.observer.Close()
}

// Render returns the meter line for the subject's current value.
func (m *Meter) Render() string {
	s := m.observer.Subject()
	if s == nil {
		return nameStyle.Render(m.name) + " " + mutedStyle.Render("(unbound)")
	}

	value := s.Value()
	line := nameStyle.Render(m.name) + " "
	if d := s.Domain(); d.Toggled {
		if value == d.Conform(1) && value != d.Conform(0) {
			return line + onBadge.Render("ON")
		}
		return line + offBadge.Render("OFF")
	}

	scale := s.ScaleFromValue(value)
	filled := int(math.Round(scale * meterBarWidth))
	filled = max(0, min(meterBarWidth, filled))

	bar := filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", meterBarWidth-filled))
	return line + bar + " " + valueStyle.Render(formatValue(value))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
