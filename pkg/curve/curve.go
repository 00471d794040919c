package curve

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/tracklane/tracklane-go/pkg/observer"
)

// Curve errors.
var (
	ErrInvalidStep     = errors.New("curve step must not be negative")
	ErrInvalidLogRange = errors.New("logarithmic curve requires a positive minimum")
	ErrUnknownMode     = errors.New("unknown curve mode")
)

// Mode selects how values are computed between nodes.
type Mode uint8

const (
	// ModeHold keeps a node's value until the next node.
	ModeHold Mode = iota

	// ModeLinear interpolates linearly between nodes.
	ModeLinear
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeHold:
		return "hold"
	case ModeLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name. The empty string selects ModeLinear.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return ModeLinear, nil
	case "hold":
		return ModeHold, nil
	default:
		return 0, ErrUnknownMode
	}
}

// Node is an automation point.
type Node struct {
	Frame uint64
	Value float64
}

// Curve is an automation curve with a value domain.
// It is safe for concurrent use.
type Curve struct {
	mu          sync.RWMutex
	domain      observer.Domain
	step        float64
	logarithmic bool
	mode        Mode
	nodes       []Node
}

// Option configures a Curve.
type Option func(*Curve)

// WithStep snaps continuous values to multiples of step above the minimum.
func WithStep(step float64) Option {
	return func(c *Curve) { c.step = step }
}

// WithLogScale maps control positions logarithmically.
func WithLogScale() Option {
	return func(c *Curve) { c.logarithmic = true }
}

// WithMode sets the interpolation mode.
func WithMode(m Mode) Option {
	return func(c *Curve) { c.mode = m }
}

// New creates a curve over domain.
func New(domain observer.Domain, opts ...Option) (*Curve, error) {
	c := &Curve{domain: domain, mode: ModeLinear}
	for _, opt := range opts {
		opt(c)
	}

	if c.step < 0 || math.IsNaN(c.step) {
		return nil, ErrInvalidStep
	}
	if c.logarithmic && math.Min(domain.Min, domain.Max) <= 0 {
		return nil, ErrInvalidLogRange
	}
	if c.mode != ModeHold && c.mode != ModeLinear {
		return nil, ErrUnknownMode
	}
	return c, nil
}

// Domain returns the curve's domain.
func (c *Curve) Domain() observer.Domain {
	return c.domain
}

// Step returns the snap step, zero when values are not snapped.
func (c *Curve) Step() float64 {
	return c.step
}

// IsLogarithmic reports whether control positions map logarithmically.
func (c *Curve) IsLogarithmic() bool {
	return c.logarithmic
}

// Mode returns the interpolation mode.
func (c *Curve) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SetMode changes the interpolation mode.
func (c *Curve) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// Conform maps value onto the curve's domain, then snaps it to the step
// when the domain is continuous. Conform is idempotent.
func (c *Curve) Conform(value float64) float64 {
	v := c.domain.Conform(value)
	if c.step == 0 || c.domain.Toggled || c.domain.Integer {
		return v
	}

	lo, hi := c.bounds()
	snapped := lo + math.Round((v-lo)/c.step)*c.step
	return math.Min(hi, math.Max(lo, snapped))
}

// ScaleFromValue maps value to a [0, 1] control position.
func (c *Curve) ScaleFromValue(value float64) float64 {
	if !c.logarithmic {
		return c.domain.Scale(value)
	}
	lo, hi := c.bounds()
	if hi <= lo {
		return 0
	}
	v := math.Min(hi, math.Max(lo, value))
	return math.Log(v/lo) / math.Log(hi/lo)
}

// ValueFromScale maps a [0, 1] control position to a conformed value.
func (c *Curve) ValueFromScale(scale float64) float64 {
	if !c.logarithmic {
		return c.Conform(c.domain.Unscale(scale))
	}
	lo, hi := c.bounds()
	s := math.Min(1, math.Max(0, scale))
	return c.Conform(lo * math.Pow(hi/lo, s))
}

// AddNode inserts a node, replacing any node at the same frame. The value
// is conformed before it is stored.
func (c *Curve) AddNode(frame uint64, value float64) {
	node := Node{Frame: frame, Value: c.Conform(value)}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := sort.Search(len(c.nodes), func(i int) bool { return c.nodes[i].Frame >= frame })
	if i < len(c.nodes) && c.nodes[i].Frame == frame {
		c.nodes[i] = node
		return
	}
	c.nodes = append(c.nodes, Node{})
	copy(c.nodes[i+1:], c.nodes[i:])
	c.nodes[i] = node
}

// RemoveNode deletes the node at frame. Returns false if there is none.
func (c *Curve) RemoveNode(frame uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := sort.Search(len(c.nodes), func(i int) bool { return c.nodes[i].Frame >= frame })
	if i == len(c.nodes) || c.nodes[i].Frame != frame {
		return false
	}
	c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
	return true
}

// ClearNodes removes every node.
func (c *Curve) ClearNodes() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = nil
}

// Nodes returns a copy of the nodes in frame order.
func (c *Curve) Nodes() []Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Node(nil), c.nodes...)
}

// ValueAt returns the automation value at frame. ok is false when the
// curve has no nodes.
func (c *Curve) ValueAt(frame uint64) (value float64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.nodes)
	if n == 0 {
		return 0, false
	}

	// i is the first node after frame.
	i := sort.Search(n, func(i int) bool { return c.nodes[i].Frame > frame })
	switch {
	case i == 0:
		return c.nodes[0].Value, true
	case i == n:
		return c.nodes[n-1].Value, true
	}

	prev, next := c.nodes[i-1], c.nodes[i]
	if c.mode == ModeHold {
		return prev.Value, true
	}

	t := float64(frame-prev.Frame) / float64(next.Frame-prev.Frame)
	return c.Conform(prev.Value + t*(next.Value-prev.Value)), true
}

// Apply writes the automation value at frame to subject. Automation has no
// originating view, so every observer is notified. Returns false when the
// curve has no nodes.
func (c *Curve) Apply(subject *observer.Subject, frame uint64) bool {
	v, ok := c.ValueAt(frame)
	if !ok {
		return false
	}
	subject.SetValue(v, nil)
	return true
}

func (c *Curve) bounds() (float64, float64) {
	if c.domain.Max < c.domain.Min {
		return c.domain.Max, c.domain.Min
	}
	return c.domain.Min, c.domain.Max
}

// Compile-time interface satisfaction checks.
var (
	_ observer.Curve  = (*Curve)(nil)
	_ observer.Scaler = (*Curve)(nil)
)
