// Package capture abstracts microphone input as a stream of fixed-size PCM
// frames.
//
// The segmentation layer consumes frames of exactly Config.FrameSamples
// samples; a Source is responsible for rechunking whatever the OS delivers
// into that size. Delivery is lossy by design: when the consumer falls
// behind, frames are dropped rather than blocking the audio callback.
package capture

import "context"

// Config describes the capture format.
type Config struct {
	// SampleRate in Hz. The builtin recognizer expects 16000.
	SampleRate int

	// FrameSamples is the fixed frame size delivered on Frames.
	FrameSamples int

	// Device names the capture device; empty selects the system default.
	Device string
}

// Source is a live audio input.
type Source interface {
	// Start opens the device and begins delivering frames. The source
	// stops itself when ctx is cancelled.
	Start(ctx context.Context) error

	// Frames delivers mono little-endian PCM frames of exactly
	// Config.FrameSamples samples. The channel closes on Stop.
	Frames() <-chan []int16

	// Errors delivers non-fatal capture errors (e.g. dropped frames). The
	// channel closes on Stop.
	Errors() <-chan error

	// Stop closes the device and both channels. Idempotent.
	Stop() error
}
