package observer

import (
	"math"
	"testing"
)

func TestDomainConformClamp(t *testing.T) {
	d := DefaultDomain

	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{1.5, 1.0},
		{-0.25, 0.0},
		{math.Inf(1), 1.0},
		{math.Inf(-1), 0.0},
		{math.NaN(), 0.0},
	}

	for _, tt := range tests {
		if got := d.Conform(tt.in); got != tt.want {
			t.Errorf("Conform(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDomainConformToggled(t *testing.T) {
	tests := []struct {
		name   string
		domain Domain
		in     float64
		want   float64
	}{
		{"unit off", Domain{Min: 0, Max: 1, Toggled: true}, 0.0, 0.0},
		{"unit midpoint is off", Domain{Min: 0, Max: 1, Toggled: true}, 0.5, 0.0},
		{"unit on", Domain{Min: 0, Max: 1, Toggled: true}, 0.51, 1.0},
		{"unit above range", Domain{Min: 0, Max: 1, Toggled: true}, 7, 1.0},
		{"unit below range", Domain{Min: 0, Max: 1, Toggled: true}, -3, 0.0},
		{"wide range maps to one", Domain{Min: 0, Max: 2, Toggled: true}, 1.8, 1.0},
		{"wide range maps to zero", Domain{Min: -5, Max: 5, Toggled: true}, -4, 0.0},
		{"one clamped to max", Domain{Min: -1, Max: 0.4, Toggled: true}, 0.9, 0.4},
		{"zero clamped to min", Domain{Min: 2, Max: 5, Toggled: true}, 0, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.domain.Conform(tt.in); got != tt.want {
				t.Errorf("Conform(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDomainConformInteger(t *testing.T) {
	tests := []struct {
		name   string
		domain Domain
		in     float64
		want   float64
	}{
		{"round down", Domain{Min: 20, Max: 300, Integer: true}, 120.4, 120},
		{"round half up", Domain{Min: 20, Max: 300, Integer: true}, 120.5, 121},
		{"below range", Domain{Min: 20, Max: 300, Integer: true}, 10, 20},
		{"above range", Domain{Min: 20, Max: 300, Integer: true}, 1000, 300},
		{"rounded past fractional max", Domain{Min: 0, Max: 1.5, Integer: true}, 1.6, 1.5},
		{"inside fractional range", Domain{Min: 0, Max: 1.5, Integer: true}, 1.2, 1},
		{"rounded below fractional min", Domain{Min: 0.5, Max: 2.5, Integer: true}, 0.5, 1},
		{"no whole number in range", Domain{Min: 0.6, Max: 0.7, Integer: true}, 0.65, 0.7},
		{"negative range", Domain{Min: -6, Max: 6, Integer: true}, -2.6, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.domain.Conform(tt.in); got != tt.want {
				t.Errorf("Conform(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDomainConformIdempotent(t *testing.T) {
	domains := []Domain{
		DefaultDomain,
		{Min: -1, Max: 0.4},
		{Min: 0, Max: 1, Toggled: true},
		{Min: -1, Max: 0.4, Toggled: true},
		{Min: 2, Max: 5, Toggled: true, Integer: true},
		{Min: 20, Max: 300, Integer: true},
		{Min: 0.5, Max: 2.5, Integer: true},
		{Min: 0.6, Max: 0.7, Integer: true},
		{Min: 0, Max: 1.5, Integer: true},
		{Min: 0, Max: 2, Toggled: true},
		{Min: 1, Max: 0},
		{Min: 3, Max: 3},
	}
	inputs := []float64{
		math.Inf(-1), -1000, -1, -0.5, 0, 0.25, 0.4, 0.5, 0.6, 0.65, 0.7,
		1, 1.5, 2.5, 3, 4.49, 120.5, 301, math.Inf(1), math.NaN(),
	}

	for _, d := range domains {
		for _, x := range inputs {
			once := d.Conform(x)
			twice := d.Conform(once)
			if once != twice {
				t.Errorf("%+v: Conform(Conform(%v)) = %v, Conform(%v) = %v", d, x, twice, x, once)
			}
		}
	}
}

func TestDomainScale(t *testing.T) {
	d := Domain{Min: -10, Max: 10}

	if got := d.Scale(0); got != 0.5 {
		t.Errorf("Scale(0) = %v, want 0.5", got)
	}
	if got := d.Scale(20); got != 1 {
		t.Errorf("Scale(20) = %v, want 1", got)
	}
	if got := d.Unscale(0.25); got != -5 {
		t.Errorf("Unscale(0.25) = %v, want -5", got)
	}
	if got := (Domain{Min: 3, Max: 3}).Scale(3); got != 0 {
		t.Errorf("Scale on empty range = %v, want 0", got)
	}
}
