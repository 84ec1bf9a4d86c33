// Package vad defines the Detector interface for per-frame voice activity
// classification backends.
//
// A detector answers one narrow question for each fixed-length audio frame:
// does this frame contain speech? All temporal reasoning — when an utterance
// starts, when it ends, how much silence is tolerable — lives in the
// segmentation layer, not here. Keeping the contract binary and per-frame
// makes it trivial to swap the builtin energy detector for a model-backed
// one (e.g. Silero) without touching endpointing logic.
//
// Detectors may carry internal smoothing state; a single Detector must not
// be shared across concurrent audio streams unless the implementation
// documents otherwise.
package vad

// Detector classifies single audio frames as speech or non-speech.
type Detector interface {
	// Classify reports whether the frame contains speech. The frame is raw
	// mono int16 PCM at the sample rate the detector was configured for.
	// An error means the frame could not be classified; callers treat such
	// frames as non-speech and continue.
	Classify(frame []int16) (bool, error)

	// Reset clears any accumulated classification state. Call it between
	// utterances so a previous segment cannot bleed into the next one.
	Reset()
}
