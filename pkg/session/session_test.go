package session

import (
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklane/tracklane-go/pkg/config"
	"github.com/tracklane/tracklane-go/pkg/log"
	"github.com/tracklane/tracklane-go/pkg/observer"
)

const baseConfig = `
queue:
  capacity: 8
parameters:
  - name: master.gain
    min: 0
    max: 2
    default: 1
    value: 0.8
  - name: master.mute
    toggled: true
  - name: transport.tempo
    min: 20
    max: 300
    default: 120
    integer: true
  - name: send.level
    value: 0.33
    curve: {step: 0.1}
`

type eventRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *eventRecorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) kinds() []log.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []log.Kind
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func mustParse(t *testing.T, data string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(data))
	require.NoError(t, err)
	return cfg
}

func mustSubject(t *testing.T, s *Session, name string) *observer.Subject {
	t.Helper()
	subject, err := s.Subject(name)
	require.NoError(t, err)
	return subject
}

func counter() (*observer.Observer, func() int) {
	var mu sync.Mutex
	n := 0
	o := observer.NewObserver(observer.UpdateFunc(func(bool) {
		mu.Lock()
		n++
		mu.Unlock()
	}))
	return o, func() int {
		mu.Lock()
		defer mu.Unlock()
		return n
	}
}

func TestNew(t *testing.T) {
	s, err := New(mustParse(t, baseConfig))
	require.NoError(t, err)
	defer s.Close()

	_, err = uuid.Parse(s.ID())
	assert.NoError(t, err)
	assert.Equal(t, 8, s.Queue().Cap())
	assert.True(t, s.Queue().IsEmpty(), "building subjects must not notify")

	assert.Equal(t, []string{"master.gain", "master.mute", "transport.tempo", "send.level"}, s.Names())

	tests := []struct {
		name      string
		value     float64
		def       float64
		toggled   bool
		integer   bool
		withCurve bool
	}{
		{"master.gain", 0.8, 1, false, false, false},
		{"master.mute", 0, 0, true, false, false},
		{"transport.tempo", 120, 120, false, true, false},
		{"send.level", 0.3, 0, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := mustSubject(t, s, tt.name)
			assert.Equal(t, tt.name, subject.Name())
			assert.InDelta(t, tt.value, subject.Value(), 1e-12)
			assert.Equal(t, tt.def, subject.DefaultValue())
			assert.Equal(t, tt.toggled, subject.IsToggled())
			assert.Equal(t, tt.integer, subject.IsInteger())

			c, err := s.Curve(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.withCurve, c != nil)
			assert.Equal(t, tt.withCurve, subject.Curve() != nil)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	s, err := New(nil, WithID("fixed"))
	require.NoError(t, err)

	assert.Equal(t, "fixed", s.ID())
	assert.Equal(t, "fixed", s.Queue().SessionID())
	assert.Equal(t, observer.DefaultQueueCapacity, s.Queue().Cap())
	assert.Empty(t, s.Names())
	assert.Equal(t, config.DefaultConfig(), s.Config())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Queue.Capacity = -1

	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestUnknownParameter(t *testing.T) {
	s, err := New(mustParse(t, baseConfig))
	require.NoError(t, err)

	_, err = s.Subject("nope")
	assert.ErrorIs(t, err, ErrUnknownParameter)

	_, err = s.Curve("nope")
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestTraceCarriesSessionID(t *testing.T) {
	rec := &eventRecorder{}
	s, err := New(mustParse(t, baseConfig), WithLogger(rec))
	require.NoError(t, err)

	gain := mustSubject(t, s, "master.gain")
	gain.SetValue(1.5, nil)
	s.Queue().Flush(true)

	assert.Equal(t, []log.Kind{log.KindPush, log.KindDeliver}, rec.kinds())
	for _, e := range rec.events {
		assert.Equal(t, s.ID(), e.SessionID)
		assert.Equal(t, "master.gain", e.Subject)
	}
}

func TestApply(t *testing.T) {
	s, err := New(mustParse(t, baseConfig))
	require.NoError(t, err)

	gainView, gainUpdates := counter()
	gainView.SetSubject(mustSubject(t, s, "master.gain"))
	tempoView, _ := counter()
	tempoView.SetSubject(mustSubject(t, s, "transport.tempo"))

	// A pending change is discarded by Apply.
	mute := mustSubject(t, s, "master.mute")
	mute.SetValue(1, nil)
	require.Equal(t, 1, s.Queue().Len())

	result, err := s.Apply(mustParse(t, `
queue:
  capacity: 4
parameters:
  - name: master.gain
    min: 0
    max: 0.5
    default: 0.25
  - name: master.mute
    toggled: true
  - name: track1.pan
    min: -1
    max: 1
`))
	require.NoError(t, err)

	assert.Equal(t, ApplyResult{
		Added:   []string{"track1.pan"},
		Removed: []string{"transport.tempo", "send.level"},
		Updated: []string{"master.gain", "master.mute"},
	}, result)
	assert.Equal(t, []string{"master.gain", "master.mute", "track1.pan"}, s.Names())
	assert.Equal(t, 4, s.Queue().Cap())
	assert.Equal(t, 4, s.Config().Queue.Capacity)

	// Removed parameters are gone and their observers unbound.
	_, err = s.Subject("transport.tempo")
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.Nil(t, tempoView.Subject())

	// The kept gain subject is reconformed into its new range.
	gain := mustSubject(t, s, "master.gain")
	assert.Same(t, gain, gainView.Subject())
	assert.Equal(t, 0.5, gain.Value())
	assert.Equal(t, 0.25, gain.DefaultValue())

	assert.False(t, mute.IsQueued(), "reset clears pending flags")
	assert.Equal(t, 1.0, mute.Value(), "values survive a reload")

	// Only the reconformed gain is pending.
	assert.Equal(t, 1, s.Queue().Len())
	s.Queue().Flush(true)
	assert.Equal(t, 1, gainUpdates())
	runtime.KeepAlive(gainView)

	pan := mustSubject(t, s, "track1.pan")
	assert.Equal(t, -1.0, pan.Value())
}

func TestApplyAttachesAndDetachesCurves(t *testing.T) {
	s, err := New(mustParse(t, baseConfig))
	require.NoError(t, err)

	_, err = s.Apply(mustParse(t, `
parameters:
  - name: master.gain
    max: 2
    curve: {step: 0.5}
  - name: send.level
`))
	require.NoError(t, err)

	gain := mustSubject(t, s, "master.gain")
	require.NotNil(t, gain.Curve())
	assert.Equal(t, 1.0, gain.Value(), "0.8 snaps to the 0.5 grid")

	level := mustSubject(t, s, "send.level")
	assert.Nil(t, level.Curve())
	c, err := s.Curve("send.level")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestApplyInvalidLeavesSessionUntouched(t *testing.T) {
	s, err := New(mustParse(t, baseConfig))
	require.NoError(t, err)

	bad := config.DefaultConfig()
	bad.Parameters = []config.Parameter{{Name: "a"}, {Name: "a"}}

	_, err = s.Apply(bad)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Len(t, s.Names(), 4)
	assert.Equal(t, 8, s.Queue().Cap())
}

func TestClose(t *testing.T) {
	s, err := New(mustParse(t, baseConfig))
	require.NoError(t, err)

	views := make([]*observer.Observer, 0, len(s.Names()))
	for _, name := range s.Names() {
		o, _ := counter()
		o.SetSubject(mustSubject(t, s, name))
		views = append(views, o)
	}
	mustSubject(t, s, "master.gain").SetValue(0.1, nil)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	for _, o := range views {
		assert.Nil(t, o.Subject())
	}
	assert.True(t, s.Queue().IsEmpty())

	_, err = s.Apply(config.DefaultConfig())
	assert.True(t, errors.Is(err, ErrClosed))
}
