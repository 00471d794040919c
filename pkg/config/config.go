// Package config loads tracklane session files.
//
// A session file declares the notification queue settings and the
// parameters a session exposes:
//
//	queue:
//	  capacity: 1024
//	  flush_interval: 33ms
//	  refresh: true
//	parameters:
//	  - name: master.gain
//	    min: 0
//	    max: 2
//	    default: 1
//	  - name: master.mute
//	    toggled: true
//
// Omitted queue settings keep the values from DefaultConfig. Omitted
// parameter bounds default to the [0, 1] range.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tracklane/tracklane-go/pkg/curve"
	"github.com/tracklane/tracklane-go/pkg/observer"
)

// Default queue settings.
const (
	DefaultFlushInterval = 33 * time.Millisecond
)

// Config is a session configuration.
type Config struct {
	Queue      QueueConfig `yaml:"queue"`
	Parameters []Parameter `yaml:"parameters"`
}

// QueueConfig holds the notification queue settings.
type QueueConfig struct {
	// Capacity is the maximum number of pending notifications.
	Capacity int `yaml:"capacity"`

	// FlushInterval is the host update loop period.
	FlushInterval time.Duration `yaml:"flush_interval"`

	// Refresh is the refresh flag passed to observers on delivery.
	Refresh bool `yaml:"refresh"`
}

// Parameter declares one named subject.
type Parameter struct {
	Name    string       `yaml:"name"`
	Min     *float64     `yaml:"min,omitempty"`
	Max     *float64     `yaml:"max,omitempty"`
	Default *float64     `yaml:"default,omitempty"`
	Value   *float64     `yaml:"value,omitempty"`
	Toggled bool         `yaml:"toggled,omitempty"`
	Integer bool         `yaml:"integer,omitempty"`
	Curve   *CurveConfig `yaml:"curve,omitempty"`
}

// CurveConfig attaches an automation curve to a parameter.
type CurveConfig struct {
	Step float64 `yaml:"step,omitempty"`
	Log  bool    `yaml:"log,omitempty"`
	Mode string  `yaml:"mode,omitempty"`
}

// DefaultConfig returns a configuration with default queue settings and
// no parameters.
func DefaultConfig() *Config {
	return &Config{
		Queue: QueueConfig{
			Capacity:      observer.DefaultQueueCapacity,
			FlushInterval: DefaultFlushInterval,
			Refresh:       true,
		},
	}
}

// Parse parses and validates a YAML session configuration.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{
			Line:    yamlErrorLine(err),
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{
			Message: err.Error(),
			Cause:   err,
		}
	}

	return cfg, nil
}

// Load reads and parses a session configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Queue.Capacity < 0 {
		return fmt.Errorf("%w: queue capacity must not be negative", ErrInvalidConfig)
	}
	if c.Queue.FlushInterval < 0 {
		return fmt.Errorf("%w: flush interval must not be negative", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Parameters))
	for i := range c.Parameters {
		p := &c.Parameters[i]
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: parameter %d has no name", ErrInvalidConfig, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true

		if err := p.validate(); err != nil {
			return fmt.Errorf("%w: parameter %q: %w", ErrInvalidConfig, p.Name, err)
		}
	}
	return nil
}

// Parameter returns the parameter named name.
func (c *Config) Parameter(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Names returns the parameter names in declaration order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Parameters))
	for i, p := range c.Parameters {
		names[i] = p.Name
	}
	return names
}

// Domain returns the parameter's value domain.
func (p Parameter) Domain() observer.Domain {
	d := observer.DefaultDomain
	if p.Min != nil {
		d.Min = *p.Min
	}
	if p.Max != nil {
		d.Max = *p.Max
	}
	d.Toggled = p.Toggled
	d.Integer = p.Integer
	return d
}

// DefaultValue returns the declared default, or the domain minimum.
func (p Parameter) DefaultValue() float64 {
	if p.Default != nil {
		return *p.Default
	}
	return p.Domain().Min
}

// InitialValue returns the declared value, or the default value.
func (p Parameter) InitialValue() float64 {
	if p.Value != nil {
		return *p.Value
	}
	return p.DefaultValue()
}

// NewCurve builds the parameter's automation curve. It returns nil when
// the parameter declares none.
func (p Parameter) NewCurve() (*curve.Curve, error) {
	if p.Curve == nil {
		return nil, nil
	}

	mode, err := curve.ParseMode(p.Curve.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w %q", err, p.Curve.Mode)
	}

	opts := []curve.Option{curve.WithMode(mode)}
	if p.Curve.Step != 0 {
		opts = append(opts, curve.WithStep(p.Curve.Step))
	}
	if p.Curve.Log {
		opts = append(opts, curve.WithLogScale())
	}
	return curve.New(p.Domain(), opts...)
}

func (p Parameter) validate() error {
	for _, v := range []*float64{p.Min, p.Max, p.Default, p.Value} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return errors.New("values must be finite")
		}
	}

	d := p.Domain()
	if d.Min >= d.Max {
		return fmt.Errorf("min %g must be less than max %g", d.Min, d.Max)
	}
	if def := p.DefaultValue(); def < d.Min || def > d.Max {
		return fmt.Errorf("default %g outside [%g, %g]", def, d.Min, d.Max)
	}

	_, err := p.NewCurve()
	return err
}

// yamlErrorLine extracts the line number from a yaml.v3 error message.
func yamlErrorLine(err error) int {
	var line int
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}
