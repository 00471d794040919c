package curve

import (
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklane/tracklane-go/pkg/observer"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		domain observer.Domain
		opts   []Option
		want   error
	}{
		{"default", observer.DefaultDomain, nil, nil},
		{"negative step", observer.DefaultDomain, []Option{WithStep(-0.1)}, ErrInvalidStep},
		{"nan step", observer.DefaultDomain, []Option{WithStep(math.NaN())}, ErrInvalidStep},
		{"log from zero", observer.DefaultDomain, []Option{WithLogScale()}, ErrInvalidLogRange},
		{"log positive", observer.Domain{Min: 20, Max: 20000}, []Option{WithLogScale()}, nil},
		{"bad mode", observer.DefaultDomain, []Option{WithMode(Mode(9))}, ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.domain, tt.opts...)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ModeLinear, c.Mode())
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Hold")
	require.NoError(t, err)
	assert.Equal(t, ModeHold, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLinear, m)

	_, err = ParseMode("cubic")
	assert.ErrorIs(t, err, ErrUnknownMode)

	assert.Equal(t, "hold", ModeHold.String())
	assert.Equal(t, "unknown", Mode(7).String())
}

func TestConformStep(t *testing.T) {
	c, err := New(observer.Domain{Min: 0, Max: 1}, WithStep(0.25))
	require.NoError(t, err)

	tests := []struct {
		in, want float64
	}{
		{0.1, 0},
		{0.13, 0.25},
		{0.6, 0.5},
		{0.9, 1},
		{1.5, 1},
		{-3, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, c.Conform(tt.in), 1e-12, "Conform(%v)", tt.in)
	}
}

func TestConformStepStaysInRange(t *testing.T) {
	// 0.95 rounds up to the 1.2 step, above the maximum.
	c, err := New(observer.Domain{Min: 0, Max: 1}, WithStep(0.6))
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.Conform(0.95))
}

func TestConformIdempotent(t *testing.T) {
	curves := []*Curve{}
	for _, d := range []observer.Domain{
		{Min: 0, Max: 1},
		{Min: -60, Max: 6},
		{Min: 20, Max: 300, Integer: true},
		{Min: 0, Max: 1, Toggled: true},
	} {
		c, err := New(d, WithStep(0.3))
		require.NoError(t, err)
		curves = append(curves, c)
	}

	inputs := []float64{-100, -1, 0, 0.1, 0.45, 0.5, 0.7, 1, 2.2, 17.5, 150.5, 1000, math.NaN()}
	for _, c := range curves {
		for _, in := range inputs {
			once := c.Conform(in)
			assert.Equal(t, once, c.Conform(once), "domain %+v input %v", c.Domain(), in)
		}
	}
}

func TestConformSkipsStepForDiscreteDomains(t *testing.T) {
	c, err := New(observer.Domain{Min: 20, Max: 300, Integer: true}, WithStep(0.5))
	require.NoError(t, err)
	assert.Equal(t, 121.0, c.Conform(120.6))

	c, err = New(observer.Domain{Min: 0, Max: 1, Toggled: true}, WithStep(0.3))
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Conform(0.8))
}

func TestLogScale(t *testing.T) {
	c, err := New(observer.Domain{Min: 20, Max: 20000}, WithLogScale())
	require.NoError(t, err)

	assert.InDelta(t, 0.0, c.ScaleFromValue(20), 1e-12)
	assert.InDelta(t, 1.0, c.ScaleFromValue(20000), 1e-12)
	assert.InDelta(t, 0.5, c.ScaleFromValue(math.Sqrt(20*20000)), 1e-9)

	assert.InDelta(t, 200.0, c.ValueFromScale(1.0/3), 1e-9)
	assert.InDelta(t, 20000.0, c.ValueFromScale(4), 1e-9)
	assert.InDelta(t, 20.0, c.ValueFromScale(-1), 1e-9)
}

func TestLinearScale(t *testing.T) {
	c, err := New(observer.Domain{Min: -60, Max: 6})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, c.ScaleFromValue(-27), 1e-12)
	assert.InDelta(t, -27.0, c.ValueFromScale(0.5), 1e-12)
}

func TestNodes(t *testing.T) {
	c, err := New(observer.Domain{Min: 0, Max: 10})
	require.NoError(t, err)

	c.AddNode(100, 5)
	c.AddNode(0, 1)
	c.AddNode(50, 2)
	c.AddNode(50, 3)
	c.AddNode(200, 99)

	want := []Node{{0, 1}, {50, 3}, {100, 5}, {200, 10}}
	assert.Equal(t, want, c.Nodes())

	assert.True(t, c.RemoveNode(50))
	assert.False(t, c.RemoveNode(50))
	assert.Equal(t, []Node{{0, 1}, {100, 5}, {200, 10}}, c.Nodes())

	c.ClearNodes()
	assert.Empty(t, c.Nodes())
}

func TestValueAt(t *testing.T) {
	c, err := New(observer.Domain{Min: 0, Max: 10})
	require.NoError(t, err)

	_, ok := c.ValueAt(0)
	assert.False(t, ok)

	c.AddNode(100, 2)
	c.AddNode(200, 6)

	tests := []struct {
		name  string
		mode  Mode
		frame uint64
		want  float64
	}{
		{"before first", ModeLinear, 0, 2},
		{"on node", ModeLinear, 100, 2},
		{"midpoint", ModeLinear, 150, 4},
		{"quarter", ModeLinear, 125, 3},
		{"after last", ModeLinear, 500, 6},
		{"hold midpoint", ModeHold, 150, 2},
		{"hold on next", ModeHold, 200, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.SetMode(tt.mode)
			got, ok := c.ValueAt(tt.frame)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestApplyNotifiesAllObservers(t *testing.T) {
	q := observer.NewQueue(8)
	c, err := New(observer.Domain{Min: 0, Max: 1}, WithStep(0.1))
	require.NoError(t, err)
	s := observer.NewSubject(q, 0, 0, observer.WithCurve(c))

	var updates int
	o := observer.NewObserver(observer.UpdateFunc(func(bool) { updates++ }))
	o.SetSubject(s)

	assert.False(t, c.Apply(s, 0), "no nodes")

	c.AddNode(0, 0)
	c.AddNode(100, 1)
	require.True(t, c.Apply(s, 33))

	assert.InDelta(t, 0.3, s.Value(), 1e-12)
	assert.Equal(t, 1, q.Len())

	q.Flush(true)
	assert.Equal(t, 1, updates)
	runtime.KeepAlive(o)
}
