package observer

import "sync"

//go:generate mockery --config ../../.mockery.yaml

// Updater is implemented by views that redraw when a subject changes.
// Update is called only by the subject the owning Observer is bound to,
// and only while that subject is delivering a notification.
type Updater interface {
	Update(refresh bool)
}

// UpdateFunc adapts a function to the Updater interface.
type UpdateFunc func(refresh bool)

// Update calls f(refresh).
func (f UpdateFunc) Update(refresh bool) {
	f(refresh)
}

// Observer binds an Updater to at most one Subject.
//
// Binding is two-way: the subject lists the observer exactly while the
// observer references the subject. An Observer is identified by pointer;
// pass it as sender to SetValue to suppress its own notification.
type Observer struct {
	updater Updater

	mu      sync.Mutex
	subject *Subject
}

// NewObserver creates an unbound observer delivering to updater.
func NewObserver(updater Updater) *Observer {
	return &Observer{updater: updater}
}

// Update forwards to the updater.
func (o *Observer) Update(refresh bool) {
	if o.updater != nil {
		o.updater.Update(refresh)
	}
}

// Subject returns the bound subject, or nil when unbound.
func (o *Observer) Subject() *Subject {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.subject
}

// SetSubject binds the observer to s, unbinding it from its previous
// subject first. A nil s unbinds. Binding to a closed subject leaves the
// observer unbound.
func (o *Observer) SetSubject(s *Subject) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.subject == s {
		return
	}
	if o.subject != nil {
		o.subject.detach(o)
		o.subject = nil
	}
	if s != nil && s.attach(o) {
		o.subject = s
	}
}

// Close unbinds the observer.
func (o *Observer) Close() {
	o.SetSubject(nil)
}

// unbindFrom unbinds the observer only if it is bound to s.
func (o *Observer) unbindFrom(s *Subject) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.subject != s || s == nil {
		return
	}
	s.detach(o)
	o.subject = nil
}

// release drops the reference to s without touching s's observer list.
// Called by a closing subject that has already emptied its list.
func (o *Observer) release(s *Subject) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subject == s {
		o.subject = nil
	}
}

// Value returns the bound subject's current value. ok is false when unbound.
func (o *Observer) Value() (value float64, ok bool) {
	s := o.Subject()
	if s == nil {
		return 0, false
	}
	return s.Value(), true
}

// LastValue returns the value most recently delivered by the bound
// subject. ok is false when unbound.
func (o *Observer) LastValue() (value float64, ok bool) {
	s := o.Subject()
	if s == nil {
		return 0, false
	}
	return s.LastValue(), true
}

// SetValue writes value to the bound subject with this observer as
// sender, so the observer does not get notified of its own change.
// Returns false when unbound.
func (o *Observer) SetValue(value float64) bool {
	s := o.Subject()
	if s == nil {
		return false
	}
	s.SetValue(value, o)
	return true
}

// ResetValue restores the bound subject's default value with this
// observer as sender. Returns false when unbound.
func (o *Observer) ResetValue() bool {
	s := o.Subject()
	if s == nil {
		return false
	}
	s.ResetValue(o)
	return true
}

// Scale returns the bound subject's value as a normalized [0, 1] position.
func (o *Observer) Scale() (scale float64, ok bool) {
	s := o.Subject()
	if s == nil {
		return 0, false
	}
	return s.ScaleFromValue(s.Value()), true
}

// SetScale writes a normalized [0, 1] position to the bound subject with
// this observer as sender. Returns false when unbound.
func (o *Observer) SetScale(scale float64) bool {
	s := o.Subject()
	if s == nil {
		return false
	}
	s.SetValue(s.ValueFromScale(scale), o)
	return true
}

// Domain returns the bound subject's domain. ok is false when unbound.
func (o *Observer) Domain() (d Domain, ok bool) {
	s := o.Subject()
	if s == nil {
		return Domain{}, false
	}
	return s.Domain(), true
}

// DefaultValue returns the bound subject's default value.
func (o *Observer) DefaultValue() (value float64, ok bool) {
	s := o.Subject()
	if s == nil {
		return 0, false
	}
	return s.DefaultValue(), true
}
