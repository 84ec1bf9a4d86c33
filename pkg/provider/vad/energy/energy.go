// Package energy implements [vad.Detector] using RMS signal energy.
//
// A frame is classified as speech when its full-scale-normalised RMS
// amplitude exceeds a fixed threshold. This is deliberately the simplest
// possible detector: it has no smoothing and no hysteresis, because the
// segmentation layer already debounces per-frame decisions with its
// consecutive-silence and minimum-speech counters.
package energy

import (
	"github.com/t4paN/ava/pkg/audio"
	"github.com/t4paN/ava/pkg/provider/vad"
)

// defaultThreshold is a moderate sensitivity suitable for close-talking
// microphone input at 16 kHz.
const defaultThreshold = 0.01

// Option is a functional option for configuring a [Detector].
type Option func(*Detector)

// WithThreshold sets the RMS level above which a frame counts as speech.
// Typical values are 0.001 (very sensitive) to 0.1 (very strict).
// Default: 0.01.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// Detector is the energy-based [vad.Detector]. It is stateless and safe for
// concurrent use.
type Detector struct {
	threshold float64
}

// Ensure Detector implements vad.Detector at compile time.
var _ vad.Detector = (*Detector)(nil)

// New returns a Detector configured with the supplied options.
func New(opts ...Option) *Detector {
	d := &Detector{threshold: defaultThreshold}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Classify reports whether the frame's RMS amplitude exceeds the threshold.
// It never returns an error.
func (d *Detector) Classify(frame []int16) (bool, error) {
	return audio.RMSInt16(frame) > d.threshold, nil
}

// Reset is a no-op; the energy detector keeps no state between frames.
func (d *Detector) Reset() {}
