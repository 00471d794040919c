package observer

import (
	"sync"
	"sync/atomic"
	"weak"

	"github.com/tracklane/tracklane-go/pkg/log"
)

// Subject is an observable scalar parameter value.
//
// The subject's value is always the conformed result of the latest write,
// even when the notification for that write was dropped by a full queue.
type Subject struct {
	queue *Queue
	name  string

	mu           sync.Mutex
	value        float64
	prevValue    float64
	lastValue    float64
	defaultValue float64
	domain       Domain
	curve        Curve
	observers    []weak.Pointer[Observer]
	closed       bool

	// queued is set while exactly one record for this subject sits in queue.
	queued atomic.Bool
}

// SubjectOption configures a Subject.
type SubjectOption func(*Subject)

// WithName sets the name used in trace events.
func WithName(name string) SubjectOption {
	return func(s *Subject) { s.name = name }
}

// WithDomain sets the range and conformance flags.
func WithDomain(d Domain) SubjectOption {
	return func(s *Subject) { s.domain = d }
}

// WithCurve attaches a curve that takes over value conformance.
func WithCurve(c Curve) SubjectOption {
	return func(s *Subject) { s.curve = c }
}

// NewSubject creates a subject publishing to queue. The initial value is
// stored as given; it is not conformed. A nil queue disables notification.
func NewSubject(queue *Queue, value, defaultValue float64, opts ...SubjectOption) *Subject {
	s := &Subject{
		queue:        queue,
		value:        value,
		prevValue:    value,
		lastValue:    value,
		defaultValue: defaultValue,
		domain:       DefaultDomain,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the subject name.
func (s *Subject) Name() string {
	return s.name
}

// SetValue stores the conformed value and, unless a notification is
// already pending, enqueues one carrying the raw value. Writing a value
// equal to the current one does nothing. sender, when non-nil, is the
// observer that made the change; it is skipped on delivery.
func (s *Subject) SetValue(value float64, sender *Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == s.value {
		return
	}

	if !s.queued.Load() {
		s.prevValue = s.value
		if s.queue != nil && !s.closed {
			s.queue.Push(s, sender, value)
		}
	}

	s.value = s.conform(value)
}

// ResetValue sets the subject to its default value.
func (s *Subject) ResetValue(sender *Observer) {
	s.SetValue(s.DefaultValue(), sender)
}

// Value returns the current conformed value.
func (s *Subject) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// PrevValue returns the value held before the pending change. It is only
// meaningful while IsQueued is true.
func (s *Subject) PrevValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prevValue
}

// LastValue returns the value most recently delivered to observers.
func (s *Subject) LastValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastValue
}

// IsQueued reports whether a notification for this subject is pending.
func (s *Subject) IsQueued() bool {
	return s.queued.Load()
}

// Conform maps value onto the subject's legal values: through the curve
// if one is attached, otherwise through the subject's domain.
func (s *Subject) Conform(value float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conform(value)
}

func (s *Subject) conform(value float64) float64 {
	if s.curve != nil {
		return s.curve.Conform(value)
	}
	return s.domain.Conform(value)
}

// ScaleFromValue maps value to a normalized [0, 1] control position.
func (s *Subject) ScaleFromValue(value float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.curve.(Scaler); ok {
		return sc.ScaleFromValue(value)
	}
	return s.domain.Scale(value)
}

// ValueFromScale maps a normalized [0, 1] control position to a conformed value.
func (s *Subject) ValueFromScale(scale float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.curve.(Scaler); ok {
		return sc.ValueFromScale(scale)
	}
	return s.conform(s.domain.Unscale(scale))
}

// Domain returns the subject's range and conformance flags.
func (s *Subject) Domain() Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domain
}

// SetDomain replaces the range and conformance flags. The current value is
// left as is; callers that need it conformed write it back with SetValue.
func (s *Subject) SetDomain(d Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = d
}

// SetRange sets the clamp bounds.
func (s *Subject) SetRange(minValue, maxValue float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain.Min, s.domain.Max = minValue, maxValue
}

// MinValue returns the lower clamp bound.
func (s *Subject) MinValue() float64 {
	return s.Domain().Min
}

// MaxValue returns the upper clamp bound.
func (s *Subject) MaxValue() float64 {
	return s.Domain().Max
}

// SetToggled marks the subject as an on/off value.
func (s *Subject) SetToggled(toggled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain.Toggled = toggled
}

// IsToggled reports whether the subject is an on/off value.
func (s *Subject) IsToggled() bool {
	return s.Domain().Toggled
}

// SetInteger marks the subject as whole-number valued.
func (s *Subject) SetInteger(integer bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain.Integer = integer
}

// IsInteger reports whether the subject is whole-number valued.
func (s *Subject) IsInteger() bool {
	return s.Domain().Integer
}

// SetDefaultValue sets the value ResetValue restores.
func (s *Subject) SetDefaultValue(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultValue = value
}

// DefaultValue returns the value ResetValue restores.
func (s *Subject) DefaultValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultValue
}

// SetCurve attaches a curve, or detaches it when c is nil.
func (s *Subject) SetCurve(c Curve) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curve = c
}

// Curve returns the attached curve, or nil.
func (s *Subject) Curve() Curve {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curve
}

// Notify delivers a change to every bound observer except sender, in
// binding order. Before each Update the subject's LastValue is set to
// value. Observers unbound by an earlier Update in the same pass are
// skipped.
func (s *Subject) Notify(sender *Observer, value float64, refresh bool) {
	for _, o := range s.liveObservers() {
		if sender != nil && o == sender {
			continue
		}
		if o.Subject() != s {
			continue
		}

		s.mu.Lock()
		s.lastValue = value
		s.mu.Unlock()

		o.Update(refresh)
	}
}

// Bind binds o to this subject, unbinding it from any previous subject.
func (s *Subject) Bind(o *Observer) {
	o.SetSubject(s)
}

// Unbind unbinds o if it is bound to this subject.
func (s *Subject) Unbind(o *Observer) {
	o.unbindFrom(s)
}

// ObserverCount returns the number of live bound observers.
func (s *Subject) ObserverCount() int {
	return len(s.liveObservers())
}

// Observers returns the live bound observers in binding order.
func (s *Subject) Observers() []*Observer {
	return s.liveObservers()
}

// Close unbinds every observer. After Close the subject keeps its value
// but no longer accepts observers or enqueues notifications.
func (s *Subject) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	refs := s.observers
	s.observers = nil
	s.mu.Unlock()

	for _, ref := range refs {
		if o := ref.Value(); o != nil {
			o.release(s)
		}
	}
	s.traceBinding(log.KindUnbind, 0)
}

// IsClosed reports whether Close was called.
func (s *Subject) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// attach adds o to the observer list. It fails once the subject is closed.
func (s *Subject) attach(o *Observer) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	ref := weak.Make(o)
	for _, r := range s.observers {
		if r == ref {
			s.mu.Unlock()
			return true
		}
	}
	s.observers = append(s.observers, ref)
	n := len(s.observers)
	s.mu.Unlock()

	s.traceBinding(log.KindBind, n)
	return true
}

// detach removes o from the observer list.
func (s *Subject) detach(o *Observer) {
	s.mu.Lock()
	ref := weak.Make(o)
	found := false
	for i, r := range s.observers {
		if r == ref {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			found = true
			break
		}
	}
	n := len(s.observers)
	s.mu.Unlock()

	if found {
		s.traceBinding(log.KindUnbind, n)
	}
}

// liveObservers resolves the weak observer list, pruning collected entries.
func (s *Subject) liveObservers() []*Observer {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make([]*Observer, 0, len(s.observers))
	refs := s.observers[:0]
	for _, ref := range s.observers {
		if o := ref.Value(); o != nil {
			live = append(live, o)
			refs = append(refs, ref)
		}
	}
	clear(s.observers[len(refs):])
	s.observers = refs
	return live
}

func (s *Subject) traceBinding(kind log.Kind, observers int) {
	if s.queue == nil {
		return
	}
	s.queue.trace(log.Event{Kind: kind, Subject: s.name, Count: observers})
}
