// Package curve implements automation curves for tracklane parameters.
//
// A Curve serves two roles. Attached to a subject it takes over value
// conformance: values are clamped to the curve's domain and, for
// continuous domains, snapped to the curve's step. It also holds the
// automation nodes recorded for the parameter and computes the value at
// any frame, so playback can write it back through Subject.SetValue.
//
// # Modes
//
// Hold keeps each node's value until the next node. Linear interpolates
// between neighbouring nodes. Before the first node and after the last the
// nearest node's value applies.
//
// # Scales
//
// Logarithmic curves map control positions exponentially across the
// range, which is how gain and frequency controls are usually drawn.
// They require a strictly positive minimum.
package curve
