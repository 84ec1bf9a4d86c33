// Package stt defines the Transcriber interface for speech-to-text
// backends.
//
// The understanding pipeline treats recognition as an opaque function from
// one endpointed, loudness-normalised utterance buffer to an unstructured
// text hypothesis. There is no streaming here: the segmentation layer has
// already decided where the utterance ends, so a single blocking call per
// utterance keeps the contract minimal and the backends interchangeable.
//
// Implementations must be safe for concurrent use; the pipeline may overlap
// transcription of one utterance with capture of the next.
package stt

import "context"

// Transcriber converts one utterance buffer into a text hypothesis.
type Transcriber interface {
	// Transcribe runs recognition over samples, a mono float32 buffer with
	// values in [-1, 1] at the backend's expected sample rate (16 kHz for
	// the builtin whisper backend). The returned text may be empty and may
	// contain arbitrary artifact glyphs; downstream normalisation must
	// tolerate both. An error indicates the backend failed, not that
	// nothing was said.
	Transcribe(ctx context.Context, samples []float32) (string, error)
}
