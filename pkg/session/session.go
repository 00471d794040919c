// Package session owns the named parameters of a tracklane session.
//
// A Session builds one subject per configured parameter, all publishing
// to a single notification queue. Reapplying a configuration reshapes the
// session in place: existing subjects keep their observers and values,
// new parameters are added and removed ones are closed, which
// force-unbinds whatever was watching them.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tracklane/tracklane-go/pkg/config"
	"github.com/tracklane/tracklane-go/pkg/curve"
	"github.com/tracklane/tracklane-go/pkg/log"
	"github.com/tracklane/tracklane-go/pkg/observer"
)

// Session errors.
var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrClosed           = errors.New("session closed")
)

// Session is a set of named subjects sharing one queue.
type Session struct {
	id     string
	queue  *observer.Queue
	logger log.Logger

	mu     sync.RWMutex
	cfg    *config.Config
	params map[string]*param
	order  []string
	closed bool
}

type param struct {
	subject *observer.Subject
	curve   *curve.Curve
}

// ApplyResult lists the parameters changed by Apply.
type ApplyResult struct {
	Added   []string
	Removed []string
	Updated []string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the trace logger for the session's queue.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates a session from cfg. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:     uuid.NewString(),
		params: make(map[string]*param),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.queue = observer.NewQueue(queueCapacity(cfg), observer.WithLogger(s.logger, s.id))

	for _, p := range cfg.Parameters {
		if err := s.add(p); err != nil {
			return nil, err
		}
	}
	s.cfg = cfg
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Queue returns the session's notification queue.
func (s *Session) Queue() *observer.Queue {
	return s.queue
}

// Config returns the configuration last applied.
func (s *Session) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Subject returns the subject for the named parameter.
func (s *Session) Subject(name string) (*observer.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return p.subject, nil
}

// Curve returns the automation curve of the named parameter, or nil if it
// has none.
func (s *Session) Curve(name string) (*curve.Curve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return p.curve, nil
}

// Names returns the parameter names in configuration order.
func (s *Session) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Apply reshapes the session to cfg.
//
// Pending notifications are discarded first, then the queue is resized.
// Parameters present in both configurations keep their subject, value and
// observers; their domain, default and curve are replaced and the current
// value is written back conformed to the new domain, which notifies
// observers if it changed. Parameters no longer configured are closed.
func (s *Session) Apply(cfg *config.Config) (ApplyResult, error) {
	var result ApplyResult
	if err := cfg.Validate(); err != nil {
		return result, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return result, ErrClosed
	}

	s.queue.Reset()
	s.queue.Resize(queueCapacity(cfg))

	keep := make(map[string]bool, len(cfg.Parameters))
	for _, pc := range cfg.Parameters {
		keep[pc.Name] = true
	}
	for _, name := range s.order {
		if !keep[name] {
			s.params[name].subject.Close()
			delete(s.params, name)
			result.Removed = append(result.Removed, name)
		}
	}

	s.order = s.order[:0]
	for _, pc := range cfg.Parameters {
		p, ok := s.params[pc.Name]
		if !ok {
			if err := s.add(pc); err != nil {
				return result, err
			}
			result.Added = append(result.Added, pc.Name)
			continue
		}

		c, err := pc.NewCurve()
		if err != nil {
			return result, fmt.Errorf("parameter %q: %w", pc.Name, err)
		}
		p.curve = c
		p.subject.SetDomain(pc.Domain())
		p.subject.SetDefaultValue(pc.DefaultValue())
		setCurve(p.subject, c)
		p.subject.SetValue(p.subject.Conform(p.subject.Value()), nil)

		s.order = append(s.order, pc.Name)
		result.Updated = append(result.Updated, pc.Name)
	}

	s.cfg = cfg
	return result, nil
}

// Close closes every subject, force-unbinding their observers.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, name := range s.order {
		s.params[name].subject.Close()
	}
	s.queue.Reset()
	return nil
}

// add creates the subject for pc. Called with s.mu held, or before the
// session is shared.
func (s *Session) add(pc config.Parameter) error {
	c, err := pc.NewCurve()
	if err != nil {
		return fmt.Errorf("parameter %q: %w", pc.Name, err)
	}

	// Subjects start from their conformed value without notifying anyone.
	opts := []observer.SubjectOption{
		observer.WithName(pc.Name),
		observer.WithDomain(pc.Domain()),
	}
	value := pc.Domain().Conform(pc.InitialValue())
	if c != nil {
		opts = append(opts, observer.WithCurve(c))
		value = c.Conform(pc.InitialValue())
	}
	subject := observer.NewSubject(s.queue, value, pc.DefaultValue(), opts...)

	s.params[pc.Name] = &param{subject: subject, curve: c}
	s.order = append(s.order, pc.Name)
	return nil
}

// setCurve attaches c, or detaches any curve when c is nil.
func setCurve(subject *observer.Subject, c *curve.Curve) {
	if c == nil {
		subject.SetCurve(nil)
		return
	}
	subject.SetCurve(c)
}

func queueCapacity(cfg *config.Config) int {
	if cfg.Queue.Capacity == 0 {
		return observer.DefaultQueueCapacity
	}
	return cfg.Queue.Capacity
}
